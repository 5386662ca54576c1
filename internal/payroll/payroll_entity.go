package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run records one bulk generation. Payslips themselves are computed on demand
// and never stored.
type Run struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Year        int        `gorm:"not null;index:idx_payroll_runs_period"`
	Month       int        `gorm:"not null;index:idx_payroll_runs_period"`
	RunNumber   int64      `gorm:"not null"`
	RequestID   string     `gorm:"type:varchar(64)"`
	GeneratedBy *uuid.UUID `gorm:"type:uuid"`

	// Totals dihitung dari payslip yang berhasil saja
	TotalEmployees  int             `gorm:"not null;default:0"`
	FailedEmployees int             `gorm:"not null;default:0"`
	GrossSalary     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalDeductions decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	NetSalary       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PFDeduction     decimal.Decimal `gorm:"column:pf_deduction;type:numeric(14,2);not null"`

	CreatedAt time.Time
}

func (Run) TableName() string {
	return "payroll_runs"
}
