package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"dayflow-hris/internal/bootstrap"
	"dayflow-hris/internal/events"
	"dayflow-hris/internal/payroll"
	payrollerrors "dayflow-hris/internal/payroll/errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []kafkago.Message
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	offsets := make([]int64, 0, len(r.committed))
	for _, m := range r.committed {
		offsets = append(offsets, m.Offset)
	}
	return offsets
}

func fastRetries(t *testing.T) {
	t.Helper()
	prev := retryBackoff
	retryBackoff = time.Millisecond
	t.Cleanup(func() { retryBackoff = prev })
}

type fakeBalances struct {
	calls []int
	// errs[i] is returned on call i+1, later calls succeed
	errs   []error
	onCall func(n int)
}

func (f *fakeBalances) EnsureBalance(ctx context.Context, employeeID string, year int) error {
	f.calls = append(f.calls, year)
	n := len(f.calls)
	if f.onCall != nil {
		f.onCall(n)
	}
	if n <= len(f.errs) {
		return f.errs[n-1]
	}
	return nil
}

type fakePayslips struct {
	months []string
	err    map[string]error
	// failures[month] transient errors before that month succeeds
	failures map[string]int
}

func (f *fakePayslips) ComputePayslip(ctx context.Context, employeeID string, year, month int) (payroll.Payslip, error) {
	key := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	f.months = append(f.months, key)
	if err := f.err[key]; err != nil {
		return payroll.Payslip{}, err
	}
	if f.failures[key] > 0 {
		f.failures[key]--
		return payroll.Payslip{}, errors.New("driver: bad connection")
	}
	return payroll.Payslip{NetSalary: decimal.NewFromInt(46800)}, nil
}

type recordingAudit struct {
	entries []bootstrap.AuditLog
}

func (a *recordingAudit) Log(ctx context.Context, entry bootstrap.AuditLog) {
	a.entries = append(a.entries, entry)
}

func message(t *testing.T, offset int64, v any) kafkago.Message {
	t.Helper()
	raw, err := json.Marshal(v)
	assert.NoError(t, err)
	return kafkago.Message{Topic: "t", Offset: offset, Value: raw}
}

func TestConsumeEmployeeLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, messages: []kafkago.Message{
		message(t, 1, events.EmployeeCreatedEvent{
			EventType:   events.EmployeeCreatedEventType,
			EmployeeID:  uuid.NewString(),
			JoiningDate: "2025-11-03",
		}),
		{Topic: "t", Offset: 2, Value: []byte("not json")},
	}}
	balances := &fakeBalances{}

	ConsumeEmployeeLifecycle(ctx, reader, balances, zap.NewNop())

	assert.Equal(t, []int{2025}, balances.calls)
	assert.Len(t, reader.committed, 2, "poison message is committed too")
}

func TestConsumeEmployeeLifecycle_RetryableErrorIsNotCommitted(t *testing.T) {
	fastRetries(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, messages: []kafkago.Message{
		message(t, 1, events.EmployeeCreatedEvent{EmployeeID: uuid.NewString(), OccurredAt: time.Now()}),
		message(t, 2, events.EmployeeCreatedEvent{EmployeeID: uuid.NewString(), OccurredAt: time.Now()}),
	}}
	reset := errors.New("connection reset")
	balances := &fakeBalances{
		errs: []error{reset, reset, reset},
		onCall: func(n int) {
			if n == 3 {
				cancel()
			}
		},
	}

	ConsumeEmployeeLifecycle(ctx, reader, balances, zap.NewNop())

	assert.Len(t, balances.calls, 3, "same message retried until shutdown")
	assert.Empty(t, reader.committed)
	assert.Len(t, reader.messages, 1, "next message is not fetched while one is failing")
}

func TestConsumeLeaveApproved_RetriesBeforeMovingOn(t *testing.T) {
	fastRetries(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	employeeID := uuid.NewString()
	reader := &fakeReader{cancel: cancel, messages: []kafkago.Message{
		message(t, 1, events.LeaveApprovedEvent{
			EventType: events.LeaveApprovedEventType, LeaveID: uuid.NewString(), EmployeeID: employeeID,
			StartDate: "2026-01-12", EndDate: "2026-01-13",
		}),
		message(t, 2, events.LeaveApprovedEvent{
			EventType: events.LeaveApprovedEventType, LeaveID: uuid.NewString(), EmployeeID: employeeID,
			StartDate: "2026-03-02", EndDate: "2026-03-02",
		}),
	}}
	payslips := &fakePayslips{failures: map[string]int{"2026-01": 1}}
	audit := &recordingAudit{}

	ConsumeLeaveApproved(ctx, reader, payslips, audit, zap.NewNop())

	assert.Equal(t, []string{"2026-01", "2026-01", "2026-03"}, payslips.months)
	assert.Equal(t, []int64{1, 2}, reader.committedOffsets())
	if assert.Len(t, audit.entries, 2) {
		assert.Equal(t, 1, audit.entries[0].Meta["month"])
		assert.Equal(t, 3, audit.entries[1].Meta["month"])
	}
}

func TestHandleLeaveApproved_RecomputesEveryTouchedMonth(t *testing.T) {
	payslips := &fakePayslips{err: map[string]error{
		"2026-01": payrollerrors.ErrSalaryStructureNotFound,
	}}
	audit := &recordingAudit{}

	msg := message(t, 1, events.LeaveApprovedEvent{
		EventType:  events.LeaveApprovedEventType,
		LeaveID:    uuid.NewString(),
		EmployeeID: uuid.NewString(),
		LeaveType:  "Paid",
		StartDate:  "2026-01-29",
		EndDate:    "2026-02-03",
		Days:       6,
	})

	err := HandleLeaveApproved(context.Background(), msg, payslips, audit, zap.NewNop())

	assert.NoError(t, err)
	assert.Equal(t, []string{"2026-01", "2026-02"}, payslips.months)
	assert.Len(t, audit.entries, 1)
	assert.Equal(t, "PAYSLIP_RECOMPUTED", audit.entries[0].Action)
	assert.Equal(t, "46800.00", audit.entries[0].Meta["net_salary"])
}

func TestHandleLeaveApproved_Poison(t *testing.T) {
	msg := message(t, 1, events.LeaveApprovedEvent{StartDate: "2026-02-03", EndDate: "2026-01-29"})

	err := HandleLeaveApproved(context.Background(), msg, &fakePayslips{}, &recordingAudit{}, zap.NewNop())

	assert.ErrorIs(t, err, errPoison)
}

func TestMonthsBetween(t *testing.T) {
	start := time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []yearMonth{{2025, 12}, {2026, 1}, {2026, 2}}, monthsBetween(start, end))
}
