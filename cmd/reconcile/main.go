// reconcile 命令行执行一轮对账，供 cron / k8s CronJob 调度
//
// 退出码：0 成功；1 配置或存储失败；2 已有对账任务在执行
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"attendance-sync/config"
	"attendance-sync/internal/app"
	"attendance-sync/internal/dto"
	pkgerrors "attendance-sync/pkg/errors"
	applogger "attendance-sync/pkg/logger"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitInProgress = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	limit := flag.Int("limit", 0, "单轮最多处理条数（0 取配置默认值）")
	dry := flag.Bool("dry", false, "只计算不写库")
	requeue := flag.Bool("requeue", false, "对账前先将搁置记录重新排队")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		return exitFailure
	}

	logger, err := applogger.NewLogger(&cfg.Log, "attendance-reconcile")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		return exitFailure
	}
	defer logger.Sync()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("初始化依赖失败", zap.Error(err))
		return exitFailure
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *requeue {
		resp, err := a.Service.Reconcile.Requeue(ctx)
		if err != nil {
			logger.Error("重新排队失败", zap.Error(err))
			return exitFailure
		}
		logger.Info("搁置记录已重新排队", zap.Int64("requeued", resp.Requeued))
	}

	resp, err := a.Service.Reconcile.Reconcile(ctx, &dto.ReconcileRequest{Limit: *limit, DryRun: *dry})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrReconcileInProgress) {
			logger.Warn("已有对账任务正在执行，本次跳过")
			return exitInProgress
		}
		logger.Error("对账失败", zap.Error(err))
		return exitFailure
	}

	// 结果以 JSON 输出到 stdout，便于调度系统采集
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		logger.Error("输出对账结果失败", zap.Error(err))
		return exitFailure
	}
	return exitOK
}
