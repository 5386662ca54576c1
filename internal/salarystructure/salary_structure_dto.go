package salarystructure

import "github.com/shopspring/decimal"

type UpsertSalaryStructureRequest struct {
	MonthWage     decimal.Decimal `json:"month_wage"`
	EffectiveFrom string          `json:"effective_from"`
}

type SalaryStructureResponse struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	EmployeeName      string          `json:"employee_name,omitempty"`
	LoginID           string          `json:"login_id,omitempty"`
	MonthWage         decimal.Decimal `json:"month_wage"`
	YearlyWage        decimal.Decimal `json:"yearly_wage"`
	BasicSalary       decimal.Decimal `json:"basic_salary"`
	HRA               decimal.Decimal `json:"hra"`
	StandardAllowance decimal.Decimal `json:"standard_allowance"`
	PerformanceBonus  decimal.Decimal `json:"performance_bonus"`
	LTA               decimal.Decimal `json:"lta"`
	FixedAllowance    decimal.Decimal `json:"fixed_allowance"`
	GrossSalary       decimal.Decimal `json:"gross_salary"`
	PFDeduction       decimal.Decimal `json:"pf_deduction"`
	ProfessionalTax   decimal.Decimal `json:"professional_tax"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	NetSalary         decimal.Decimal `json:"net_salary"`
	EffectiveFrom     string          `json:"effective_from"`
}
