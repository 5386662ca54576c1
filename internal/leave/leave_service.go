package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dayflow-hris/internal/attendance"
	"dayflow-hris/internal/config"
	"dayflow-hris/internal/events"
	leaveerrors "dayflow-hris/internal/leave/errors"
	"dayflow-hris/internal/messaging/kafka"
	"dayflow-hris/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leaveOverlapConstraint = "ex_leave_requests_no_overlap"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Request(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetBalance(ctx context.Context, employeeID string, year int) (BalanceResponse, error)
	GetMine(ctx context.Context, employeeID string, filter LeaveFilter) ([]LeaveResponse, error)
	GetPending(ctx context.Context) ([]LeaveResponse, error)
	GetAll(ctx context.Context, filter LeaveFilter) ([]LeaveResponse, int64, error)
	Approve(ctx context.Context, id, adminID string) (LeaveResponse, error)
	Reject(ctx context.Context, id, adminID, reason string) (LeaveResponse, error)
	Cancel(ctx context.Context, id, employeeID string) error
	EnsureBalance(ctx context.Context, employeeID string, year int) error
	GetCalendar(ctx context.Context, year, month int) ([]CalendarEntry, error)
	GetTeamSummary(ctx context.Context) (TeamSummaryResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	cfg    config.LeaveConfig
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, cfg config.LeaveConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, outbox: outbox, cfg: cfg, now: time.Now, logger: l}
}

func (s *service) Request(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("leave request received",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	empUUID, startDate, endDate, err := validateCreateRequest(employeeID, req)
	if err != nil {
		s.logger.Warn("leave request validation failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.LockEmployee(ctx, employeeID); err != nil {
		s.logger.Error("lock employee for leave request failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	overlap, err := qtx.HasOverlap(ctx, employeeID, startDate, endDate)
	if err != nil {
		s.logger.Error("leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	days := DaysBetween(startDate, endDate)
	if req.LeaveType != TypeUnpaid {
		year := startDate.Year()
		if err := qtx.EnsureBalance(ctx, employeeID, year, s.cfg.PaidLeaveTotal, s.cfg.SickLeaveTotal); err != nil {
			return LeaveResponse{}, err
		}
		balance, err := qtx.FindBalance(ctx, employeeID, year)
		if err != nil {
			return LeaveResponse{}, err
		}
		if remaining, _ := balance.Remaining(req.LeaveType); remaining < days {
			return LeaveResponse{}, leaveerrors.InsufficientBalance(req.LeaveType, remaining)
		}
	}

	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: empUUID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     req.Reason,
		Status:     StatusPending,
	}
	if err := qtx.Create(ctx, l); err != nil {
		if apperror.IsExclusionViolation(err, leaveOverlapConstraint) {
			return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
		}
		s.logger.Error("create leave failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave requested",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("days", days),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetBalance(ctx context.Context, employeeID string, year int) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	if year == 0 {
		year = s.now().UTC().Year()
	}
	if year < 1900 || year > 9999 {
		return BalanceResponse{}, leaveerrors.ErrInvalidYear
	}

	if err := s.EnsureBalance(ctx, employeeID, year); err != nil {
		return BalanceResponse{}, err
	}
	b, err := s.repo.FindBalance(ctx, employeeID, year)
	if err != nil {
		return BalanceResponse{}, err
	}

	return BalanceResponse{
		EmployeeID: employeeID,
		Year:       year,
		Paid: BalanceDetail{
			Total:     b.PaidLeaveTotal,
			Used:      b.PaidLeaveUsed,
			Remaining: b.PaidLeaveTotal - b.PaidLeaveUsed,
		},
		Sick: BalanceDetail{
			Total:     b.SickLeaveTotal,
			Used:      b.SickLeaveUsed,
			Remaining: b.SickLeaveTotal - b.SickLeaveUsed,
		},
	}, nil
}

// EnsureBalance creates the year's balance row with the configured defaults
// if it does not exist yet.
func (s *service) EnsureBalance(ctx context.Context, employeeID string, year int) error {
	if _, err := uuid.Parse(employeeID); err != nil {
		return leaveerrors.ErrInvalidEmployeeID
	}
	return s.repo.EnsureBalance(ctx, employeeID, year, s.cfg.PaidLeaveTotal, s.cfg.SickLeaveTotal)
}

func (s *service) GetMine(ctx context.Context, employeeID string, filter LeaveFilter) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}
	leaves, err := s.repo.FindByEmployee(ctx, employeeID, filter)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetPending(ctx context.Context) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindPending(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetAll(ctx context.Context, filter LeaveFilter) ([]LeaveResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	leaves, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(leaves), total, nil
}

// Approve consumes balance, writes OnLeave attendance for every covered date
// and queues the leave_approved event in one transaction.
func (s *service) Approve(ctx context.Context, id, adminID string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	employeeID := l.EmployeeID.String()
	days := l.Days()
	year := l.StartDate.Year()

	if l.LeaveType != TypeUnpaid {
		if err := qtx.EnsureBalance(ctx, employeeID, year, s.cfg.PaidLeaveTotal, s.cfg.SickLeaveTotal); err != nil {
			return LeaveResponse{}, err
		}
		affected, err := qtx.IncrementUsed(ctx, employeeID, year, l.LeaveType, days)
		if err != nil {
			s.logger.Error("increment leave balance failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
		if affected == 0 {
			balance, err := qtx.FindBalance(ctx, employeeID, year)
			if err != nil {
				return LeaveResponse{}, err
			}
			remaining, _ := balance.Remaining(l.LeaveType)
			s.logger.Warn("approve leave rejected by balance",
				zap.String("leave_id", id),
				zap.Int("days", days),
				zap.Int("remaining", remaining),
			)
			return LeaveResponse{}, leaveerrors.InsufficientBalance(l.LeaveType, remaining)
		}
	}

	notes := l.LeaveType + " Leave"
	for d := l.StartDate; !d.After(l.EndDate); d = d.AddDate(0, 0, 1) {
		if err := qtx.UpsertOnLeaveAttendance(ctx, employeeID, d, notes); err != nil {
			s.logger.Error("mark attendance on leave failed",
				zap.String("leave_id", id),
				zap.String("date", d.Format(dateLayout)),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	at := s.now().UTC()
	if err := qtx.MarkApproved(ctx, id, adminID, at); err != nil {
		return LeaveResponse{}, err
	}

	payload := events.LeaveApprovedEvent{
		EventType:  events.LeaveApprovedEventType,
		LeaveID:    id,
		EmployeeID: employeeID,
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format(dateLayout),
		EndDate:    l.EndDate.Format(dateLayout),
		Days:       days,
		ApprovedBy: adminID,
		OccurredAt: at,
	}
	event, err := kafka.NewOutboxEvent(ctx, "leave", id, events.LeaveApprovedEventType, events.LeaveApprovedTopic, payload)
	if err != nil {
		return LeaveResponse{}, err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("queue leave approved event failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l.Status = StatusApproved
	l.ApprovedBy = &adminUUID
	l.ApprovedAt = &at

	s.logger.Info("leave approved",
		zap.String("leave_id", id),
		zap.String("employee_id", employeeID),
		zap.String("approved_by", adminID),
		zap.Int("days", days),
	)
	return mapToResponse(*l), nil
}

func (s *service) Reject(ctx context.Context, id, adminID, reason string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	if _, err := uuid.Parse(adminID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	if reason == "" {
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}

	affected, err := s.repo.Reject(ctx, id, adminID, reason, s.now().UTC())
	if err != nil {
		return LeaveResponse{}, err
	}
	if affected == 0 {
		return LeaveResponse{}, leaveerrors.ErrNotFoundOrProcessed
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave rejected", zap.String("leave_id", id), zap.String("rejected_by", adminID))
	return mapToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, id, employeeID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}
	affected, err := s.repo.DeletePending(ctx, id, employeeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return leaveerrors.ErrCannotCancel
	}
	s.logger.Info("leave cancelled", zap.String("leave_id", id), zap.String("employee_id", employeeID))
	return nil
}

func (s *service) GetCalendar(ctx context.Context, year, month int) ([]CalendarEntry, error) {
	start, end, err := attendance.MonthBounds(year, month)
	if err != nil {
		return nil, err
	}
	leaves, err := s.repo.FindApprovedInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	entries := make([]CalendarEntry, len(leaves))
	for i, l := range leaves {
		entries[i] = CalendarEntry{
			ID:         l.ID.String(),
			EmployeeID: l.EmployeeID.String(),
			LeaveType:  l.LeaveType,
			StartDate:  l.StartDate.Format(dateLayout),
			EndDate:    l.EndDate.Format(dateLayout),
		}
		if l.Employee != nil {
			entries[i].EmployeeName = l.Employee.FullName()
			entries[i].Department = l.Employee.Department
		}
	}
	return entries, nil
}

func (s *service) GetTeamSummary(ctx context.Context) (TeamSummaryResponse, error) {
	now := s.now().UTC()
	start, end, err := attendance.MonthBounds(now.Year(), int(now.Month()))
	if err != nil {
		return TeamSummaryResponse{}, err
	}
	counts, err := s.repo.CountTeamSummary(ctx, now, start, end)
	if err != nil {
		return TeamSummaryResponse{}, err
	}
	return TeamSummaryResponse{
		OnLeaveToday:      counts.OnLeaveToday,
		PendingRequests:   counts.PendingRequests,
		ApprovedThisMonth: counts.ApprovedThisMonth,
	}, nil
}

func validateCreateRequest(employeeID string, req CreateLeaveRequest) (uuid.UUID, time.Time, time.Time, error) {
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidEmployeeID
	}

	switch req.LeaveType {
	case TypePaid, TypeSick, TypeUnpaid:
	default:
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidLeaveType
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}

	return empUUID, startDate, endDate, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		EmployeeID:      l.EmployeeID.String(),
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		Days:            l.Days(),
		Reason:          l.Reason,
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
		CreatedAt:       l.CreatedAt.Format(time.RFC3339),
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.FullName()
		resp.LoginID = l.Employee.LoginID
		resp.Department = l.Employee.Department
	}
	if l.Approver != nil {
		resp.ApproverName = l.Approver.FullName()
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	res := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		res[i] = mapToResponse(l)
	}
	return res
}
