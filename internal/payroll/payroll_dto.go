package payroll

import "github.com/shopspring/decimal"

type GeneratePayrollRequest struct {
	Year  int `json:"year" binding:"required,min=1900,max=9999"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

type Period struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
}

type PayslipEmployee struct {
	ID          string  `json:"id"`
	LoginID     string  `json:"login_id"`
	Name        string  `json:"name"`
	Department  *string `json:"department,omitempty"`
	JoiningDate string  `json:"joining_date"`
}

type PayslipAttendance struct {
	TotalWorkingDays int             `json:"total_working_days"`
	PresentDays      int             `json:"present_days"`
	PaidLeaveDays    int             `json:"paid_leave_days"`
	SickLeaveDays    int             `json:"sick_leave_days"`
	UnpaidLeaveDays  int             `json:"unpaid_leave_days"`
	AbsentDays       int             `json:"absent_days"`
	PayableDays      int             `json:"payable_days"`
	PayableRatio     decimal.Decimal `json:"payable_ratio"`
}

type Earnings struct {
	BasicSalary       decimal.Decimal `json:"basic_salary"`
	HRA               decimal.Decimal `json:"hra"`
	StandardAllowance decimal.Decimal `json:"standard_allowance"`
	PerformanceBonus  decimal.Decimal `json:"performance_bonus"`
	LTA               decimal.Decimal `json:"lta"`
	FixedAllowance    decimal.Decimal `json:"fixed_allowance"`
	GrossSalary       decimal.Decimal `json:"gross_salary"`
}

type Deductions struct {
	PF              decimal.Decimal `json:"pf"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	LossOfPay       decimal.Decimal `json:"loss_of_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
}

type FullMonthSalary struct {
	MonthWage       decimal.Decimal `json:"month_wage"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	PF              decimal.Decimal `json:"pf"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	NetSalary       decimal.Decimal `json:"net_salary"`
}

type Payslip struct {
	Employee            PayslipEmployee   `json:"employee"`
	Period              Period            `json:"period"`
	Attendance          PayslipAttendance `json:"attendance"`
	Earnings            Earnings          `json:"earnings"`
	Deductions          Deductions        `json:"deductions"`
	NetSalary           decimal.Decimal   `json:"net_salary"`
	FullMonthSalary     FullMonthSalary   `json:"full_month_salary"`
	SalaryEffectiveFrom string            `json:"salary_effective_from"`
	// AttendanceAnomaly is set when payable days exceed working days or the
	// month's day counts do not reconcile.
	AttendanceAnomaly bool `json:"attendance_anomaly"`
}

type RunSummary struct {
	TotalEmployees  int             `json:"total_employees"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	PFDeduction     decimal.Decimal `json:"pf_deduction"`
}

type RunError struct {
	EmployeeID string `json:"employee_id"`
	LoginID    string `json:"login_id"`
	Name       string `json:"name"`
	Error      string `json:"error"`
}

type PayrollRunResult struct {
	RunNumber int64      `json:"run_number"`
	Period    Period     `json:"period"`
	Summary   RunSummary `json:"summary"`
	Payslips  []Payslip  `json:"payslips"`
	Errors    []RunError `json:"errors"`
}

type RunResponse struct {
	ID              string          `json:"id"`
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	RunNumber       int64           `json:"run_number"`
	GeneratedBy     *string         `json:"generated_by,omitempty"`
	TotalEmployees  int             `json:"total_employees"`
	FailedEmployees int             `json:"failed_employees"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	PFDeduction     decimal.Decimal `json:"pf_deduction"`
	CreatedAt       string          `json:"created_at"`
}

type PayrollSummary struct {
	EmployeesWithSalary int64           `json:"employees_with_salary"`
	TotalMonthlyWage    decimal.Decimal `json:"total_monthly_wage"`
	AverageSalary       decimal.Decimal `json:"average_salary"`
}

type CurrentSalary struct {
	MonthWage     decimal.Decimal `json:"month_wage"`
	BasicSalary   decimal.Decimal `json:"basic_salary"`
	EffectiveFrom string          `json:"effective_from"`
}

type EmployeeSalaryResponse struct {
	EmployeeID  string         `json:"employee_id"`
	LoginID     string         `json:"login_id"`
	Name        string         `json:"name"`
	Department  *string        `json:"department,omitempty"`
	JoiningDate string         `json:"joining_date"`
	IsActive    bool           `json:"is_active"`
	Salary      *CurrentSalary `json:"salary"`
}
