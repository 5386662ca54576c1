package salarystructure

import (
	"time"

	"dayflow-hris/internal/payroll/calculator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalaryStructure is one version of an employee's pay breakdown. Versions are
// keyed by (employee_id, effective_from).
type SalaryStructure struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID        uuid.UUID       `gorm:"type:uuid;index"`
	MonthWage         decimal.Decimal `gorm:"type:numeric(12,2)"`
	YearlyWage        decimal.Decimal `gorm:"type:numeric(14,2)"`
	BasicSalary       decimal.Decimal `gorm:"type:numeric(12,2)"`
	HRA               decimal.Decimal `gorm:"column:hra;type:numeric(12,2)"`
	StandardAllowance decimal.Decimal `gorm:"type:numeric(12,2)"`
	PerformanceBonus  decimal.Decimal `gorm:"type:numeric(12,2)"`
	LTA               decimal.Decimal `gorm:"column:lta;type:numeric(12,2)"`
	FixedAllowance    decimal.Decimal `gorm:"type:numeric(12,2)"`
	PFDeduction       decimal.Decimal `gorm:"column:pf_deduction;type:numeric(12,2)"`
	ProfessionalTax   decimal.Decimal `gorm:"type:numeric(12,2)"`
	EffectiveFrom     time.Time       `gorm:"type:date"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	EmployeeName string `gorm:"->;-:migration"`
	LoginID      string `gorm:"->;-:migration"`
}

func (SalaryStructure) TableName() string {
	return "salary_structures"
}

// Breakdown rebuilds the full-month figures from the stored components.
func (s SalaryStructure) Breakdown() calculator.Breakdown {
	totalDeductions := s.PFDeduction.Add(s.ProfessionalTax)
	return calculator.Breakdown{
		MonthWage:         s.MonthWage,
		YearlyWage:        s.YearlyWage,
		BasicSalary:       s.BasicSalary,
		HRA:               s.HRA,
		StandardAllowance: s.StandardAllowance,
		PerformanceBonus:  s.PerformanceBonus,
		LTA:               s.LTA,
		FixedAllowance:    s.FixedAllowance,
		GrossSalary:       s.MonthWage,
		PFDeduction:       s.PFDeduction,
		ProfessionalTax:   s.ProfessionalTax,
		TotalDeductions:   totalDeductions,
		NetSalary:         s.MonthWage.Sub(totalDeductions),
	}
}

func newFromBreakdown(employeeID uuid.UUID, effectiveFrom time.Time, b calculator.Breakdown) *SalaryStructure {
	return &SalaryStructure{
		ID:                uuid.New(),
		EmployeeID:        employeeID,
		MonthWage:         b.MonthWage,
		YearlyWage:        b.YearlyWage,
		BasicSalary:       b.BasicSalary,
		HRA:               b.HRA,
		StandardAllowance: b.StandardAllowance,
		PerformanceBonus:  b.PerformanceBonus,
		LTA:               b.LTA,
		FixedAllowance:    b.FixedAllowance,
		PFDeduction:       b.PFDeduction,
		ProfessionalTax:   b.ProfessionalTax,
		EffectiveFrom:     effectiveFrom,
	}
}
