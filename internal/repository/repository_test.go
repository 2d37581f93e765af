package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendance-sync/config"
	"attendance-sync/internal/model"
	"attendance-sync/internal/repository"
	"attendance-sync/pkg/database"
)

func setupSQLite(t *testing.T) (*repository.Repository, *gorm.DB) {
	t.Helper()
	db, err := database.NewDB(&config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "repo.db"),
	}, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("初始化 SQLite 失败: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	devices := []model.Device{
		{ID: 1, SerialNumber: "SN-ON", Status: model.DeviceStatusActive},
		{ID: 2, SerialNumber: "SN-OFF", Status: model.DeviceStatusInactive},
	}
	if err := db.Create(&devices).Error; err != nil {
		t.Fatalf("写入设备失败: %v", err)
	}
	return repository.NewRepository(db), db
}

func TestDeviceRepo_GetActiveBySerial(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()

	d, err := repo.Device.GetActiveBySerial(ctx, "SN-ON")
	if err != nil || d.ID != 1 {
		t.Fatalf("应查到启用设备，实际 %+v err=%v", d, err)
	}
	if _, err := repo.Device.GetActiveBySerial(ctx, "SN-OFF"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("停用设备应返回 ErrRecordNotFound，实际 %v", err)
	}
	if d, err := repo.Device.GetByID(ctx, 2); err != nil || d.IsActive() {
		t.Errorf("GetByID 应返回停用设备，实际 %+v err=%v", d, err)
	}
}

func TestEmployeeMappingRepo_GetByDeviceAndCode(t *testing.T) {
	repo, db := setupSQLite(t)
	ctx := context.Background()
	db.Create(&model.EmployeeCodeMapping{DeviceID: 1, EmpCode: "7", EmployeeID: 42})

	m, err := repo.EmployeeMapping.GetByDeviceAndCode(ctx, 1, "7")
	if err != nil || m.EmployeeID != 42 {
		t.Fatalf("应查到映射，实际 %+v err=%v", m, err)
	}
	// 映射按设备隔离
	if _, err := repo.EmployeeMapping.GetByDeviceAndCode(ctx, 2, "7"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("其他设备的同一工号不应命中，实际 %v", err)
	}
}

func TestRawPunchRepo_PickAndMark(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()

	punches := []model.RawPunch{
		{DeviceID: 1, DeviceSN: "SN-ON", EmpCode: "1", LogTime: "t1", RawLine: "l1"},
		{DeviceID: 1, DeviceSN: "SN-ON", EmpCode: "2", LogTime: "t2", RawLine: "l2"},
		{DeviceID: 2, DeviceSN: "SN-OFF", EmpCode: "3", LogTime: "t3", RawLine: "l3"},
	}
	if err := repo.RawPunch.BatchCreate(ctx, punches, 2); err != nil {
		t.Fatalf("批量写入失败: %v", err)
	}

	picked, err := repo.RawPunch.PickUnprocessed(ctx, 2, 0, true)
	if err != nil || len(picked) != 2 || picked[0].ID != 1 || picked[1].ID != 2 {
		t.Fatalf("应按 id 升序选取前 2 条，实际 %+v err=%v", picked, err)
	}
	if picked[0].Status != "0" || picked[0].WorkCode != "0" || picked[0].Processed {
		t.Errorf("缺省字段错误: %+v", picked[0])
	}

	n, err := repo.RawPunch.MarkProcessed(ctx, []int64{1, 2})
	if err != nil || n != 2 {
		t.Fatalf("期望标记 2 行，实际 %d err=%v", n, err)
	}
	if n, _ := repo.RawPunch.MarkProcessed(ctx, []int64{1}); n != 0 {
		t.Errorf("重复标记不应计入影响行数，实际 %d", n)
	}

	rest, _ := repo.RawPunch.PickUnprocessed(ctx, 10, 0, true)
	if len(rest) != 1 || rest[0].ID != 3 {
		t.Errorf("剩余未处理应为第 3 条，实际 %+v", rest)
	}
}

func TestAttendanceRecordRepo_ListFilters(t *testing.T) {
	repo, db := setupSQLite(t)
	ctx := context.Background()

	records := []model.AttendanceRecord{
		{RawPunchID: 1, DeviceID: 1, EmployeeID: 10, LogTime: "a"},
		{RawPunchID: 2, DeviceID: 1, EmployeeID: 11, LogTime: "b"},
		{RawPunchID: 3, DeviceID: 2, EmployeeID: 12, LogTime: "c"},
	}
	if err := repo.AttendanceRecord.BatchCreate(ctx, records); err != nil {
		t.Fatalf("批量写入失败: %v", err)
	}
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	db.Model(&model.AttendanceRecord{}).Where("raw_punch_id = ?", 1).Update("created_at", old)

	list, total, err := repo.AttendanceRecord.List(ctx, repository.ListFilter{Limit: 10})
	if err != nil || total != 3 || list[0].RawPunchID != 3 {
		t.Fatalf("应按 id 倒序返回 3 条，实际 total=%d err=%v", total, err)
	}

	_, total, _ = repo.AttendanceRecord.List(ctx, repository.ListFilter{Limit: 10, ActiveOnly: true})
	if total != 2 {
		t.Errorf("activeOnly 期望 2 条，实际 %d", total)
	}

	from := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	_, total, _ = repo.AttendanceRecord.List(ctx, repository.ListFilter{Limit: 10, From: &from})
	if total != 2 {
		t.Errorf("from 过滤期望 2 条，实际 %d", total)
	}

	to := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)
	_, total, _ = repo.AttendanceRecord.List(ctx, repository.ListFilter{Limit: 10, To: &to})
	if total != 1 {
		t.Errorf("to 过滤期望 1 条，实际 %d", total)
	}

	page, _, _ := repo.AttendanceRecord.List(ctx, repository.ListFilter{Offset: 1, Limit: 1})
	if len(page) != 1 || page[0].RawPunchID != 2 {
		t.Errorf("分页错误: %+v", page)
	}
}

func TestRepository_WithTxNil(t *testing.T) {
	repo := &repository.Repository{}
	if repo.WithTx(nil) != repo {
		t.Error("nil 事务应返回自身")
	}
	tx, err := repo.BeginTx(context.Background())
	if tx != nil || err != nil {
		t.Error("无底层连接时 BeginTx 应返回 nil")
	}
}
