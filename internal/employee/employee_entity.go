package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Employee is a read model over the employees table. Records are owned by
// the user store; this service never creates or edits them.
type Employee struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	LoginID     string    `gorm:"column:login_id;uniqueIndex"`
	FirstName   string    `gorm:"column:first_name"`
	LastName    string    `gorm:"column:last_name"`
	Email       string    `gorm:"column:email;uniqueIndex"`
	Department  *string   `gorm:"column:department"`
	Role        string    `gorm:"column:role"`
	JoiningDate time.Time `gorm:"column:joining_date;type:date"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Employee) TableName() string {
	return "employees"
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
