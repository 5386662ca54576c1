package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePaid   = "Paid"
	TypeSick   = "Sick"
	TypeUnpaid = "Unpaid"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`

	LeaveType string    `gorm:"type:varchar(10);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	Reason    string    `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(10);not null;default:'Pending';index:idx_leave_requests_status"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Employee *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
	Approver *EmployeeRef `gorm:"foreignKey:ApprovedBy;references:ID"`
}

func (Leave) TableName() string {
	return "leave_requests"
}

// Days is the inclusive calendar-day length of the request.
func (l Leave) Days() int {
	return DaysBetween(l.StartDate, l.EndDate)
}

func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

type EmployeeRef struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	LoginID    string    `gorm:"column:login_id"`
	FirstName  string    `gorm:"column:first_name"`
	LastName   string    `gorm:"column:last_name"`
	Department *string   `gorm:"column:department"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}

func (e EmployeeRef) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Balance is one employee's annual allocation, created on first use.
type Balance struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;not null"`
	Year           int       `gorm:"not null"`
	PaidLeaveTotal int       `gorm:"not null;default:12"`
	PaidLeaveUsed  int       `gorm:"not null;default:0"`
	SickLeaveTotal int       `gorm:"not null;default:6"`
	SickLeaveUsed  int       `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Balance) TableName() string {
	return "leave_balances"
}

// Remaining returns the unused days for a balance-tracked type. Unpaid leave
// is not tracked and reports ok=false.
func (b Balance) Remaining(leaveType string) (int, bool) {
	switch leaveType {
	case TypePaid:
		return b.PaidLeaveTotal - b.PaidLeaveUsed, true
	case TypeSick:
		return b.SickLeaveTotal - b.SickLeaveUsed, true
	default:
		return 0, false
	}
}
