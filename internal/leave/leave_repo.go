package leave

import (
	"context"
	"database/sql"
	"time"

	"dayflow-hris/internal/shared/connection"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

type TeamSummaryCounts struct {
	OnLeaveToday      int64
	PendingRequests   int64
	ApprovedThisMonth int64
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Leave, error)
	FindByEmployee(ctx context.Context, employeeID string, filter LeaveFilter) ([]Leave, error)
	FindAll(ctx context.Context, filter LeaveFilter) ([]Leave, int64, error)
	FindPending(ctx context.Context) ([]Leave, error)
	LockEmployee(ctx context.Context, employeeID string) error
	HasOverlap(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
	DeletePending(ctx context.Context, id, employeeID string) (int64, error)
	Reject(ctx context.Context, id, adminID, reason string, at time.Time) (int64, error)
	MarkApproved(ctx context.Context, id, adminID string, at time.Time) error

	EnsureBalance(ctx context.Context, employeeID string, year, paidTotal, sickTotal int) error
	FindBalance(ctx context.Context, employeeID string, year int) (*Balance, error)
	IncrementUsed(ctx context.Context, employeeID string, year int, leaveType string, days int) (int64, error)

	UpsertOnLeaveAttendance(ctx context.Context, employeeID string, date time.Time, notes string) error
	FindApprovedInRange(ctx context.Context, from, to time.Time) ([]Leave, error)
	CountTeamSummary(ctx context.Context, today, monthStart, monthEnd time.Time) (TeamSummaryCounts, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Omit("Employee", "Approver").Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Preload("Approver").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string, filter LeaveFilter) ([]Leave, error) {
	var leaves []Leave
	db := r.db.WithContext(ctx).
		Preload("Approver").
		Where("employee_id = ?", employeeID)
	db = applyFilter(db, filter)
	err := db.Order("created_at DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAll(ctx context.Context, filter LeaveFilter) ([]Leave, int64, error) {
	db := applyFilter(r.db.WithContext(ctx).Model(&Leave{}), filter)
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leaves []Leave
	err := db.
		Preload("Employee").
		Preload("Approver").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&leaves).Error
	return leaves, total, err
}

func (r *repository) FindPending(ctx context.Context) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&leaves).Error
	return leaves, err
}

// LockEmployee serialises leave writes for one employee until the surrounding
// transaction ends. Must run inside WithTx.
func (r *repository) LockEmployee(ctx context.Context, employeeID string) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", "leave:"+employeeID).
		Error
}

// HasOverlap ignores rejected requests; pending and approved both block.
func (r *repository) HasOverlap(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status <> ?", StatusRejected).
		Where("start_date <= ? AND end_date >= ?", endDate.Format(dateLayout), startDate.Format(dateLayout)).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) DeletePending(ctx context.Context, id, employeeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND employee_id = ? AND status = ?", id, employeeID, StatusPending).
		Delete(&Leave{})
	return res.RowsAffected, res.Error
}

func (r *repository) Reject(ctx context.Context, id, adminID, reason string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":           StatusRejected,
			"approved_by":      adminID,
			"approved_at":      at,
			"rejection_reason": reason,
			"updated_at":       at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) MarkApproved(ctx context.Context, id, adminID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      StatusApproved,
			"approved_by": adminID,
			"approved_at": at,
			"updated_at":  at,
		}).Error
}

func (r *repository) EnsureBalance(ctx context.Context, employeeID string, year, paidTotal, sickTotal int) error {
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return err
	}
	b := Balance{
		ID:             uuid.New(),
		EmployeeID:     empUUID,
		Year:           year,
		PaidLeaveTotal: paidTotal,
		SickLeaveTotal: sickTotal,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(&b).Error
}

func (r *repository) FindBalance(ctx context.Context, employeeID string, year int) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// IncrementUsed adds days to the used counter only while it stays within the
// total. Zero rows affected means the balance could not cover the request.
func (r *repository) IncrementUsed(ctx context.Context, employeeID string, year int, leaveType string, days int) (int64, error) {
	var used, total string
	switch leaveType {
	case TypePaid:
		used, total = "paid_leave_used", "paid_leave_total"
	case TypeSick:
		used, total = "sick_leave_used", "sick_leave_total"
	default:
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&Balance{}).
		Where("employee_id = ? AND year = ?", employeeID, year).
		Where(used+" + ? <= "+total, days).
		Updates(map[string]any{
			used:         gorm.Expr(used+" + ?", days),
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) UpsertOnLeaveAttendance(ctx context.Context, employeeID string, date time.Time, notes string) error {
	query := `
INSERT INTO attendances (id, employee_id, attendance_date, status, notes, created_at, updated_at)
VALUES (gen_random_uuid(), ?, ?, 'OnLeave', ?, NOW(), NOW())
ON CONFLICT (employee_id, attendance_date)
DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = NOW()
`
	return r.db.WithContext(ctx).Exec(query, employeeID, date.Format(dateLayout), notes).Error
}

func (r *repository) FindApprovedInRange(ctx context.Context, from, to time.Time) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", to.Format(dateLayout), from.Format(dateLayout)).
		Order("start_date ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) CountTeamSummary(ctx context.Context, today, monthStart, monthEnd time.Time) (TeamSummaryCounts, error) {
	var counts TeamSummaryCounts
	query := `
SELECT
	(SELECT COUNT(*) FROM leave_requests
		WHERE status = 'Approved' AND ? BETWEEN start_date AND end_date) AS on_leave_today,
	(SELECT COUNT(*) FROM leave_requests WHERE status = 'Pending') AS pending_requests,
	(SELECT COUNT(*) FROM leave_requests
		WHERE status = 'Approved' AND approved_at::date BETWEEN ? AND ?) AS approved_this_month
`
	err := r.db.WithContext(ctx).
		Raw(query, today.Format(dateLayout), monthStart.Format(dateLayout), monthEnd.Format(dateLayout)).
		Scan(&counts).Error
	return counts, err
}

func applyFilter(db *gorm.DB, filter LeaveFilter) *gorm.DB {
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Year > 0 {
		db = db.Where("EXTRACT(YEAR FROM start_date) = ?", filter.Year)
	}
	return db
}
