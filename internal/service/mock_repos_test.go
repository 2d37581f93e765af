package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"attendance-sync/internal/model"
	"attendance-sync/internal/repository"
)

var errMockDB = errors.New("mock db error")

// ── Mock DeviceRepository ──

type mockDeviceRepo struct {
	devices map[int64]*model.Device
	calls   int
	err     error
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{devices: make(map[int64]*model.Device)}
}

func (m *mockDeviceRepo) add(id int64, sn, status string) *model.Device {
	d := &model.Device{ID: id, SerialNumber: sn, Status: status}
	m.devices[id] = d
	return d
}

func (m *mockDeviceRepo) GetByID(_ context.Context, id int64) (*model.Device, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if d, ok := m.devices[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeviceRepo) GetActiveBySerial(_ context.Context, serialNumber string) (*model.Device, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.devices {
		if d.SerialNumber == serialNumber && d.IsActive() {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock EmployeeMappingRepository ──

type mockEmployeeMappingRepo struct {
	mappings map[mappingKey]*model.EmployeeCodeMapping
	calls    int
}

func newMockEmployeeMappingRepo() *mockEmployeeMappingRepo {
	return &mockEmployeeMappingRepo{mappings: make(map[mappingKey]*model.EmployeeCodeMapping)}
}

func (m *mockEmployeeMappingRepo) add(deviceID int64, empCode string, employeeID int64) {
	m.mappings[mappingKey{deviceID: deviceID, empCode: empCode}] = &model.EmployeeCodeMapping{
		DeviceID:   deviceID,
		EmpCode:    empCode,
		EmployeeID: employeeID,
	}
}

func (m *mockEmployeeMappingRepo) GetByDeviceAndCode(_ context.Context, deviceID int64, empCode string) (*model.EmployeeCodeMapping, error) {
	m.calls++
	if mp, ok := m.mappings[mappingKey{deviceID: deviceID, empCode: empCode}]; ok {
		return mp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock RawPunchRepository ──

type mockRawPunchRepo struct {
	mu      sync.Mutex
	punches []*model.RawPunch
	nextID  int64
	skips   *mockPunchSkipRepo

	createErr error
	// beforeMark 在 MarkProcessed 执行前回调，用于模拟并发对账抢先处理
	beforeMark func(ids []int64)
}

func newMockRawPunchRepo(skips *mockPunchSkipRepo) *mockRawPunchRepo {
	return &mockRawPunchRepo{nextID: 1, skips: skips}
}

func (m *mockRawPunchRepo) seed(deviceID int64, sn, empCode, logTime string) *model.RawPunch {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &model.RawPunch{
		ID:        m.nextID,
		DeviceID:  deviceID,
		DeviceSN:  sn,
		EmpCode:   empCode,
		LogTime:   logTime,
		Status:    "0",
		WorkCode:  "0",
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.punches = append(m.punches, p)
	return p
}

func (m *mockRawPunchRepo) get(id int64) *model.RawPunch {
	for _, p := range m.punches {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *mockRawPunchRepo) unprocessed() int {
	n := 0
	for _, p := range m.punches {
		if !p.Processed {
			n++
		}
	}
	return n
}

func (m *mockRawPunchRepo) BatchCreate(_ context.Context, punches []model.RawPunch, _ int) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range punches {
		p := punches[i]
		p.ID = m.nextID
		p.CreatedAt = time.Now()
		m.nextID++
		m.punches = append(m.punches, &p)
	}
	return nil
}

func (m *mockRawPunchRepo) PickUnprocessed(_ context.Context, limit, maxAttempts int, _ bool) ([]model.RawPunch, error) {
	var result []model.RawPunch
	for _, p := range m.punches {
		if p.Processed || m.skips.parked(p.ID, maxAttempts) {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockRawPunchRepo) MarkProcessed(_ context.Context, ids []int64) (int64, error) {
	if m.beforeMark != nil {
		m.beforeMark(ids)
	}
	var n int64
	for _, id := range ids {
		if p := m.get(id); p != nil && !p.Processed {
			p.Processed = true
			n++
		}
	}
	return n, nil
}

func (m *mockRawPunchRepo) CountParked(_ context.Context, maxAttempts int) (int64, error) {
	var n int64
	for _, p := range m.punches {
		if !p.Processed && m.skips.parked(p.ID, maxAttempts) {
			n++
		}
	}
	return n, nil
}

func (m *mockRawPunchRepo) List(_ context.Context, filter repository.ListFilter) ([]model.RawPunch, int64, error) {
	var all []model.RawPunch
	for i := len(m.punches) - 1; i >= 0; i-- {
		all = append(all, *m.punches[i])
	}
	return page(all, filter), int64(len(all)), nil
}

// ── Mock AttendanceRecordRepository ──

type mockAttendanceRecordRepo struct {
	records []model.AttendanceRecord
	nextID  int64
	listErr error
}

func newMockAttendanceRecordRepo() *mockAttendanceRecordRepo {
	return &mockAttendanceRecordRepo{nextID: 1}
}

func (m *mockAttendanceRecordRepo) BatchCreate(_ context.Context, records []model.AttendanceRecord) error {
	seen := make(map[int64]bool, len(m.records))
	for _, r := range m.records {
		seen[r.RawPunchID] = true
	}
	for _, r := range records {
		if seen[r.RawPunchID] {
			return errors.New("duplicate raw_punch_id")
		}
	}
	for _, r := range records {
		r.ID = m.nextID
		r.CreatedAt = time.Now()
		m.nextID++
		m.records = append(m.records, r)
	}
	return nil
}

func (m *mockAttendanceRecordRepo) List(_ context.Context, filter repository.ListFilter) ([]model.AttendanceRecord, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var all []model.AttendanceRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		all = append(all, m.records[i])
	}
	return page(all, filter), int64(len(all)), nil
}

// ── Mock PunchSkipRepository ──

type mockPunchSkipRepo struct {
	skips map[int64]*model.RawPunchSkip
}

func newMockPunchSkipRepo() *mockPunchSkipRepo {
	return &mockPunchSkipRepo{skips: make(map[int64]*model.RawPunchSkip)}
}

func (m *mockPunchSkipRepo) parked(id int64, maxAttempts int) bool {
	if maxAttempts <= 0 {
		return false
	}
	s, ok := m.skips[id]
	return ok && s.Attempts >= maxAttempts
}

func (m *mockPunchSkipRepo) Record(_ context.Context, skips []model.RawPunchSkip) error {
	for _, s := range skips {
		if existing, ok := m.skips[s.RawPunchID]; ok {
			existing.Attempts++
			existing.Reason = s.Reason
			existing.LastAttemptAt = s.LastAttemptAt
			continue
		}
		m.skips[s.RawPunchID] = &s
	}
	return nil
}

func (m *mockPunchSkipRepo) DeleteByRawPunchIDs(_ context.Context, ids []int64) error {
	for _, id := range ids {
		delete(m.skips, id)
	}
	return nil
}

func (m *mockPunchSkipRepo) ResetParked(_ context.Context, maxAttempts int) (int64, error) {
	if maxAttempts <= 0 {
		return 0, nil
	}
	var n int64
	for id, s := range m.skips {
		if s.Attempts >= maxAttempts {
			delete(m.skips, id)
			n++
		}
	}
	return n, nil
}

// ── 测试辅助 ──

type mockRepos struct {
	devices  *mockDeviceRepo
	mappings *mockEmployeeMappingRepo
	punches  *mockRawPunchRepo
	records  *mockAttendanceRecordRepo
	skips    *mockPunchSkipRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	skips := newMockPunchSkipRepo()
	m := &mockRepos{
		devices:  newMockDeviceRepo(),
		mappings: newMockEmployeeMappingRepo(),
		punches:  newMockRawPunchRepo(skips),
		records:  newMockAttendanceRecordRepo(),
		skips:    skips,
	}
	repo := &repository.Repository{
		Device:           m.devices,
		EmployeeMapping:  m.mappings,
		RawPunch:         m.punches,
		AttendanceRecord: m.records,
		PunchSkip:        m.skips,
	}
	return repo, m
}

func page[T any](all []T, filter repository.ListFilter) []T {
	if filter.Offset >= len(all) {
		return nil
	}
	end := len(all)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return all[filter.Offset:end]
}
