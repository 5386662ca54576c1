package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusOnLeave = "OnLeave"
)

const (
	LeaveTypePaid   = "Paid"
	LeaveTypeSick   = "Sick"
	LeaveTypeUnpaid = "Unpaid"
)

type Attendance struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID     uuid.UUID           `gorm:"column:employee_id;type:uuid;not null;index"`
	AttendanceDate time.Time           `gorm:"column:attendance_date;type:date;not null;index"`
	CheckInTime    *time.Time          `gorm:"column:check_in_time;type:timestamptz"`
	CheckOutTime   *time.Time          `gorm:"column:check_out_time;type:timestamptz"`
	Status         string              `gorm:"column:status;type:varchar(20);not null;default:Absent"`
	TotalHours     decimal.NullDecimal `gorm:"column:total_hours;type:numeric(4,2)"`
	Notes          *string             `gorm:"column:notes;type:text"`
	CreatedAt      time.Time           `gorm:"column:created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at"`
	Employee       *EmployeeRef        `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Attendance) TableName() string {
	return "attendances"
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

// ApprovedLeave is the read side of leave_requests that attendance needs.
type ApprovedLeave struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid"`
	LeaveType  string    `gorm:"column:leave_type"`
	StartDate  time.Time `gorm:"column:start_date;type:date"`
	EndDate    time.Time `gorm:"column:end_date;type:date"`
}

func (ApprovedLeave) TableName() string {
	return "leave_requests"
}

type TeamCounts struct {
	TotalEmployees int64
	Present        int64
	OnLeave        int64
}
