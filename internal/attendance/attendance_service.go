package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "dayflow-hris/internal/attendance/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, employeeID string) (AttendanceResponse, error)
	CheckOut(ctx context.Context, employeeID string) (AttendanceResponse, error)
	GetToday(ctx context.Context, employeeID string) (TodayStatusResponse, error)
	GetHistory(ctx context.Context, employeeID string, month, year int) ([]AttendanceResponse, error)
	GetSummary(ctx context.Context, employeeID string, month, year int) (Summary, error)
	GetByDate(ctx context.Context, date string) ([]AttendanceResponse, error)
	GetTeamOverview(ctx context.Context, date string) (TeamOverviewResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, now: time.Now, logger: l}
}

func (s *service) CheckIn(ctx context.Context, employeeID string) (AttendanceResponse, error) {
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.now().UTC()
	today := dateOnly(now)

	if _, onLeave, err := s.leaveOn(ctx, qtx, employeeID, today); err != nil {
		return AttendanceResponse{}, err
	} else if onLeave {
		return AttendanceResponse{}, attendanceerrors.ErrOnApprovedLeave
	}

	existing, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}

	var row *Attendance
	switch {
	case existing != nil && existing.CheckInTime != nil:
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	case existing != nil:
		// baris hari ini sudah ada (mis. Absent dari admin), cukup diisi jam masuk
		existing.CheckInTime = &now
		existing.Status = StatusPresent
		if err := qtx.Update(ctx, existing); err != nil {
			return AttendanceResponse{}, err
		}
		row = existing
	default:
		row = &Attendance{
			ID:             uuid.New(),
			EmployeeID:     empUUID,
			AttendanceDate: today,
			CheckInTime:    &now,
			Status:         StatusPresent,
		}
		if err := qtx.Create(ctx, row); err != nil {
			return AttendanceResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("checked in", zap.String("employee_id", employeeID), zap.Time("at", now))
	return mapToResponse(*row), nil
}

func (s *service) CheckOut(ctx context.Context, employeeID string) (AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.now().UTC()
	today := dateOnly(now)

	if _, onLeave, err := s.leaveOn(ctx, qtx, employeeID, today); err != nil {
		return AttendanceResponse{}, err
	} else if onLeave {
		return AttendanceResponse{}, attendanceerrors.ErrOnApprovedLeave
	}

	row, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
		}
		return AttendanceResponse{}, err
	}
	if row.CheckInTime == nil {
		return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
	}
	if row.CheckOutTime != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	row.CheckOutTime = &now
	row.TotalHours = decimal.NewNullDecimal(HoursBetween(*row.CheckInTime, now))

	if err := qtx.Update(ctx, row); err != nil {
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("checked out",
		zap.String("employee_id", employeeID),
		zap.String("total_hours", row.TotalHours.Decimal.String()),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetToday(ctx context.Context, employeeID string) (TodayStatusResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return TodayStatusResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	today := dateOnly(s.now().UTC())
	resp := TodayStatusResponse{Date: today.Format(dateLayout)}

	leave, onLeave, err := s.leaveOn(ctx, s.repo, employeeID, today)
	if err != nil {
		return TodayStatusResponse{}, err
	}
	if onLeave {
		resp.Status = StatusOnLeave
		resp.LeaveType = leave.LeaveType
		return resp, nil
	}

	row, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resp.Status = StatusAbsent
			return resp, nil
		}
		return TodayStatusResponse{}, err
	}

	full := mapToResponse(*row)
	resp.Status = row.Status
	resp.CheckInTime = full.CheckInTime
	resp.CheckOutTime = full.CheckOutTime
	resp.TotalHours = full.TotalHours
	return resp, nil
}

func (s *service) GetHistory(ctx context.Context, employeeID string, month, year int) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, attendanceerrors.ErrInvalidEmployeeID
	}
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.FindByEmployeeBetween(ctx, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

// GetSummary loads the month's rows and approved leave and reduces them with
// Summarize.
func (s *service) GetSummary(ctx context.Context, employeeID string, month, year int) (Summary, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return Summary{}, attendanceerrors.ErrInvalidEmployeeID
	}
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return Summary{}, err
	}

	rows, err := s.repo.FindByEmployeeBetween(ctx, employeeID, start, end)
	if err != nil {
		s.logger.Error("load attendance failed", zap.String("employee_id", employeeID), zap.Error(err))
		return Summary{}, err
	}
	leaves, err := s.repo.FindApprovedLeaves(ctx, employeeID, start, end)
	if err != nil {
		s.logger.Error("load approved leave failed", zap.String("employee_id", employeeID), zap.Error(err))
		return Summary{}, err
	}

	summary, err := Summarize(year, month, rows, leaves)
	if err != nil {
		return Summary{}, err
	}
	if !summary.Reconciled {
		s.logger.Warn("attendance does not reconcile with working days",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Int("working_days", summary.WorkingDays),
			zap.Int("present_days", summary.PresentDays),
			zap.Int("paid_leave_days", summary.PaidLeaveDays),
			zap.Int("sick_leave_days", summary.SickLeaveDays),
			zap.Int("unpaid_leave_days", summary.UnpaidLeaveDays),
		)
	}
	return summary, nil
}

func (s *service) GetByDate(ctx context.Context, date string) ([]AttendanceResponse, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.FindByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetTeamOverview(ctx context.Context, date string) (TeamOverviewResponse, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return TeamOverviewResponse{}, err
	}
	counts, err := s.repo.CountTeam(ctx, day)
	if err != nil {
		return TeamOverviewResponse{}, err
	}
	return TeamOverviewResponse{
		Date:           day.Format(dateLayout),
		TotalEmployees: counts.TotalEmployees,
		Present:        counts.Present,
		OnLeave:        counts.OnLeave,
		Absent:         max(0, counts.TotalEmployees-counts.Present-counts.OnLeave),
	}, nil
}

func (s *service) leaveOn(ctx context.Context, repo Repository, employeeID string, day time.Time) (ApprovedLeave, bool, error) {
	leaves, err := repo.FindApprovedLeaves(ctx, employeeID, day, day)
	if err != nil {
		return ApprovedLeave{}, false, err
	}
	if len(leaves) == 0 {
		return ApprovedLeave{}, false, nil
	}
	return leaves[0], true, nil
}

// parseDate treats an empty string as today.
func (s *service) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return dateOnly(s.now().UTC()), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, attendanceerrors.ErrInvalidDate
	}
	return t, nil
}

// HoursBetween is the elapsed time in hours rounded to 2 places.
func HoursBetween(from, to time.Time) decimal.Decimal {
	return decimal.NewFromInt(to.Sub(from).Nanoseconds()).
		DivRound(decimal.NewFromInt(int64(time.Hour)), 2)
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID.String(),
		AttendanceDate: a.AttendanceDate.Format(dateLayout),
		Status:         a.Status,
		Notes:          a.Notes,
	}
	if a.CheckInTime != nil {
		v := a.CheckInTime.Format(time.RFC3339)
		resp.CheckInTime = &v
	}
	if a.CheckOutTime != nil {
		v := a.CheckOutTime.Format(time.RFC3339)
		resp.CheckOutTime = &v
	}
	if a.TotalHours.Valid {
		h := a.TotalHours.Decimal
		resp.TotalHours = &h
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.FirstName + " " + a.Employee.LastName
		resp.LoginID = a.Employee.LoginID
		resp.Department = a.Employee.Department
	}
	return resp
}

func mapToListResponse(rows []Attendance) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res
}
