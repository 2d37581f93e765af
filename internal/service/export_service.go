package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"attendance-sync/internal/dto"
	"attendance-sync/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmpty        = errors.New("所选范围内暂无考勤记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// exportMaxRows 单次导出行数上限
const exportMaxRows = 50000

// ExportService 导出业务接口
//
// 设计说明：
//   - 将考勤记录导出为 Excel (.xlsx)，过滤条件与列表查询一致（忽略 take/skip）
//   - 导出只读，不修改 exported 标记；下游工资系统确认后自行回写
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportAttendance(ctx context.Context, q *dto.ListQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance — 导出考勤记录为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "考勤记录"，第 1 行为表头，按记录 id 倒序
//   - 列：记录ID / 原始打卡ID / 员工ID / 设备ID / 打卡时间 / 服务商 / 公司 / 分支 / 已导出 / 入库时间
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportAttendance(ctx context.Context, q *dto.ListQuery) (*bytes.Buffer, string, error) {
	filter, err := BuildListFilter(q)
	if err != nil {
		return nil, "", err
	}
	filter.Offset = 0
	filter.Limit = exportMaxRows

	records, total, err := s.repo.AttendanceRecord.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportEmpty
	}
	if total > int64(len(records)) {
		s.logger.Warn("考勤导出超过行数上限，已截断",
			zap.Int64("total", total),
			zap.Int("exported", len(records)),
		)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤记录"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"记录ID", "原始打卡ID", "员工ID", "设备ID", "打卡时间", "服务商", "公司", "分支", "已导出", "入库时间"}
	widths := []float64{10, 12, 10, 10, 22, 10, 10, 10, 8, 22}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, widths[i])
		f.SetCellValue(sheetName, cell(col, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for _, r := range records {
		values := []interface{}{
			r.ID,
			r.RawPunchID,
			r.EmployeeID,
			r.DeviceID,
			r.LogTime,
			optionalID(r.ProviderID),
			optionalID(r.CompanyID),
			optionalID(r.BranchID),
			yesNo(r.Exported),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheetName, cell("A", row), &values); err != nil {
			s.logger.Error("写入 Excel 行失败", zap.Int("row", row), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("考勤记录_%s.xlsx", s.now().Format("20060102_150405"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func optionalID(id *int64) interface{} {
	if id == nil {
		return ""
	}
	return *id
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
