package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dayflow-hris/internal/bootstrap"
	"dayflow-hris/internal/events"
	"dayflow-hris/internal/payroll"
	payrollerrors "dayflow-hris/internal/payroll/errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type PayslipComputer interface {
	ComputePayslip(ctx context.Context, employeeID string, year, month int) (payroll.Payslip, error)
}

// ConsumeLeaveApproved recomputes the payslip of every month an approved
// leave touches and records the new figures in the audit log.
func ConsumeLeaveApproved(
	ctx context.Context,
	reader MessageReader,
	payslips PayslipComputer,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_approved")
	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		return HandleLeaveApproved(ctx, msg, payslips, audit, log)
	})
}

func HandleLeaveApproved(
	ctx context.Context,
	msg kafkago.Message,
	payslips PayslipComputer,
	audit bootstrap.AuditLogger,
	log *zap.Logger,
) error {
	var event events.LeaveApprovedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("%w: decode leave_approved: %v", errPoison, err)
	}

	start, err := time.Parse("2006-01-02", event.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start_date %q", errPoison, event.StartDate)
	}
	end, err := time.Parse("2006-01-02", event.EndDate)
	if err != nil || end.Before(start) {
		return fmt.Errorf("%w: end_date %q", errPoison, event.EndDate)
	}

	for _, ym := range monthsBetween(start, end) {
		slip, err := payslips.ComputePayslip(ctx, event.EmployeeID, ym.year, ym.month)
		if err != nil {
			if errors.Is(err, payrollerrors.ErrSalaryStructureNotFound) || errors.Is(err, payrollerrors.ErrEmployeeNotFound) {
				log.Warn("no payslip to recompute",
					zap.String("employee_id", event.EmployeeID),
					zap.Int("year", ym.year),
					zap.Int("month", ym.month),
					zap.Error(err),
				)
				continue
			}
			return err
		}

		audit.Log(ctx, bootstrap.AuditLog{
			Action:  "PAYSLIP_RECOMPUTED",
			Message: "payslip recomputed after leave approval",
			Meta: map[string]any{
				"leave_id":     event.LeaveID,
				"employee_id":  event.EmployeeID,
				"year":         ym.year,
				"month":        ym.month,
				"payable_days": slip.Attendance.PayableDays,
				"net_salary":   slip.NetSalary.StringFixed(2),
			},
		})
	}

	log.Info("leave_approved handled",
		zap.String("leave_id", event.LeaveID),
		zap.String("employee_id", event.EmployeeID),
	)
	return nil
}

type yearMonth struct {
	year  int
	month int
}

func monthsBetween(start, end time.Time) []yearMonth {
	var out []yearMonth
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		out = append(out, yearMonth{year: cur.Year(), month: int(cur.Month())})
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}
