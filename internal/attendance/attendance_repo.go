package attendance

import (
	"context"
	"database/sql"
	"time"

	"dayflow-hris/internal/shared/connection"

	"gorm.io/gorm"
)

const leaveStatusApproved = "Approved"

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	Update(ctx context.Context, a *Attendance) error
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)
	FindByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
	FindByDate(ctx context.Context, date time.Time) ([]Attendance, error)
	FindApprovedLeaves(ctx context.Context, employeeID string, from, to time.Time) ([]ApprovedLeave, error)
	CountTeam(ctx context.Context, date time.Time) (TeamCounts, error)
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("attendance_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("attendance_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByDate(ctx context.Context, date time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("attendance_date = ?", date.Format("2006-01-02")).
		Order("check_in_time ASC").
		Find(&rows).Error
	return rows, err
}

// FindApprovedLeaves returns approved requests that touch [from, to].
func (r *repository) FindApprovedLeaves(ctx context.Context, employeeID string, from, to time.Time) ([]ApprovedLeave, error) {
	var leaves []ApprovedLeave
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("status = ?", leaveStatusApproved).
		Where("start_date <= ? AND end_date >= ?", to.Format("2006-01-02"), from.Format("2006-01-02")).
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) CountTeam(ctx context.Context, date time.Time) (TeamCounts, error) {
	var counts TeamCounts
	day := date.Format("2006-01-02")
	query := `
SELECT
	(SELECT COUNT(*) FROM employees WHERE is_active = TRUE) AS total_employees,
	(SELECT COUNT(DISTINCT employee_id) FROM attendances
		WHERE attendance_date = ? AND status = 'Present') AS present,
	(SELECT COUNT(DISTINCT employee_id) FROM leave_requests
		WHERE status = 'Approved' AND ? BETWEEN start_date AND end_date) AS on_leave
`
	err := r.db.WithContext(ctx).Raw(query, day, day).Scan(&counts).Error
	return counts, err
}
