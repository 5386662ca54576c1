package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dayflow-hris/internal/events"
	"dayflow-hris/internal/messaging/kafka"
	"dayflow-hris/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestNewOutboxEvent(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "req-7")

	event, err := kafka.NewOutboxEvent(ctx, "leave", "leave-1", events.LeaveApprovedEventType, events.LeaveApprovedTopic,
		events.LeaveApprovedEvent{LeaveID: "leave-1", Days: 3})

	assert.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "req-7", event.RequestID)
	assert.Equal(t, kafka.OutboxStatusPending, event.Status)
	assert.JSONEq(t, `{"event_type":"","leave_id":"leave-1","employee_id":"","leave_type":"","start_date":"","end_date":"","days":3,"approved_by":"","occurred_at":"0001-01-01T00:00:00Z"}`, string(event.Payload))
}

func TestValidateOutboxEvent(t *testing.T) {
	valid := kafka.OutboxEvent{ID: "o-1", Topic: "t", Payload: []byte(`{}`), Status: kafka.OutboxStatusPending}
	assert.NoError(t, kafka.ValidateOutboxEvent(valid))

	noTopic := valid
	noTopic.Topic = ""
	assert.EqualError(t, kafka.ValidateOutboxEvent(noTopic), "outbox topic is required")

	badStatus := valid
	badStatus.Status = "queued"
	assert.EqualError(t, kafka.ValidateOutboxEvent(badStatus), "invalid outbox status: queued")
}

func TestOutboxRepository_CreateInsideTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	event := kafka.OutboxEvent{
		ID: "o-1", RequestID: "req-1", AggregateType: "leave", AggregateID: "leave-1",
		EventType: "leave_approved", Topic: "t", Payload: []byte(`{}`), Status: kafka.OutboxStatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs("o-1", "req-1", "leave", "leave-1", "leave_approved", "t", []byte(`{}`), kafka.OutboxStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	assert.NoError(t, err)
	assert.NoError(t, kafka.NewOutboxRepository(db).WithTx(tx).Create(context.Background(), event))
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "request_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "next_retry_at",
	}).AddRow("o-1", "", "leave", "leave-1", "leave_approved", "t", []byte(`{}`), "failed", 2, now)

	mock.ExpectQuery("SELECT (.+) FROM outbox_events").
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, kafka.MaxDeliveryAttempts, 50).
		WillReturnRows(rows)

	got, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 50)

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].RetryCount)
	assert.Equal(t, "leave-1", got[0].AggregateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs("o-1", kafka.OutboxStatusFailed, "broker down", kafka.MaxDeliveryAttempts, float64(15)).
		WillReturnError(errors.New("db down"))

	err = kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "o-1", "broker down")
	assert.EqualError(t, err, "db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}
