package events

import "time"

const EmployeeCreatedTopic = "hr.employee.lifecycle.v1"

const EmployeeCreatedEventType = "employee_created"

// EmployeeCreatedEvent is published by the user store when an account is
// provisioned.
type EmployeeCreatedEvent struct {
	EventType   string    `json:"event_type"`
	EmployeeID  string    `json:"employee_id"`
	JoiningDate string    `json:"joining_date,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
