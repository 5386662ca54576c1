package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dayflow-hris/internal/events"
	"dayflow-hris/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const leaveBalanceConstraint = "uq_leave_balances_employee_year"

// MessageReader is the part of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// errPoison marks a message that can never be processed. It is committed and
// skipped instead of being retried.
var errPoison = errors.New("poison message")

type handlerFunc func(ctx context.Context, msg kafkago.Message) error

// Delay before retrying a failed message. It doubles per attempt up to
// maxRetryBackoff.
var (
	retryBackoff    = 500 * time.Millisecond
	maxRetryBackoff = 30 * time.Second
)

// run fetches messages until ctx is done. A message is committed once handle
// succeeds or reports errPoison. Any other error is retried on the same
// message, so the offset never moves past an unprocessed event.
func run(ctx context.Context, reader MessageReader, log *zap.Logger, handle handlerFunc) {
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		if err := handleWithRetry(ctx, msg, log, handle); err != nil {
			if !errors.Is(err, errPoison) {
				log.Info("consumer stopped before message was handled",
					zap.String("topic", msg.Topic),
					zap.Int64("offset", msg.Offset),
				)
				return
			}
			log.Warn("skipping poison message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.Error(err))
		}
	}
}

// handleWithRetry returns nil, an errPoison error, or ctx.Err().
func handleWithRetry(ctx context.Context, msg kafkago.Message, log *zap.Logger, handle handlerFunc) error {
	delay := retryBackoff
	for attempt := 1; ; attempt++ {
		err := handle(ctx, msg)
		if err == nil || errors.Is(err, errPoison) {
			return err
		}

		log.Error("handle message failed, retrying",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryBackoff {
			delay = maxRetryBackoff
		}
	}
}

type BalanceInitializer interface {
	EnsureBalance(ctx context.Context, employeeID string, year int) error
}

// ConsumeEmployeeLifecycle opens the joining year's leave balance for every
// employee_created event.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	balances BalanceInitializer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		return HandleEmployeeCreated(ctx, msg, balances, log)
	})
}

func HandleEmployeeCreated(ctx context.Context, msg kafkago.Message, balances BalanceInitializer, log *zap.Logger) error {
	var event events.EmployeeCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("%w: decode employee_created: %v", errPoison, err)
	}
	if event.EventType != "" && event.EventType != events.EmployeeCreatedEventType {
		return nil
	}

	year := event.OccurredAt.UTC().Year()
	if event.JoiningDate != "" {
		joined, err := time.Parse("2006-01-02", event.JoiningDate)
		if err != nil {
			return fmt.Errorf("%w: joining_date %q", errPoison, event.JoiningDate)
		}
		year = joined.Year()
	}

	if err := balances.EnsureBalance(ctx, event.EmployeeID, year); err != nil {
		if apperror.IsUniqueViolation(err, leaveBalanceConstraint) {
			log.Warn("leave balance already exists, skipping", zap.String("employee_id", event.EmployeeID))
			return nil
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeInvalidInput {
			return fmt.Errorf("%w: %v", errPoison, err)
		}
		return err
	}

	log.Info("leave balance opened from employee_created event",
		zap.String("employee_id", event.EmployeeID),
		zap.Int("year", year),
	)
	return nil
}
