package calculator

import (
	"net/http"

	"dayflow-hris/internal/shared/apperror"

	"github.com/shopspring/decimal"
)

var (
	ErrZeroWorkingDays = apperror.New(
		apperror.CodeInvalidInput,
		"total working days must be greater than zero",
		http.StatusBadRequest,
	)
	ErrNegativePayableDays = apperror.New(
		apperror.CodeInvalidInput,
		"payable days cannot be negative",
		http.StatusBadRequest,
	)
)

type Prorated struct {
	TotalWorkingDays int             `json:"total_working_days"`
	PayableDays      int             `json:"payable_days"`
	Ratio            decimal.Decimal `json:"ratio"`

	BasicSalary       decimal.Decimal `json:"basic_salary"`
	HRA               decimal.Decimal `json:"hra"`
	StandardAllowance decimal.Decimal `json:"standard_allowance"`
	PerformanceBonus  decimal.Decimal `json:"performance_bonus"`
	LTA               decimal.Decimal `json:"lta"`
	FixedAllowance    decimal.Decimal `json:"fixed_allowance"`
	GrossSalary       decimal.Decimal `json:"gross_salary"`

	PFDeduction     decimal.Decimal `json:"pf_deduction"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	LossOfPay       decimal.Decimal `json:"loss_of_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`

	// PayableExceedsWorking marks attendance data that claims more payable
	// days than the month has working days. Values are not clamped.
	PayableExceedsWorking bool `json:"payable_exceeds_working"`
}

// Prorate scales full by payableDays/totalWorkingDays. Each earning, gross and
// PF is scaled and rounded on its own. Professional tax is charged in full for
// any month with at least one payable day.
func Prorate(full Breakdown, totalWorkingDays, payableDays int) (Prorated, error) {
	if totalWorkingDays <= 0 {
		return Prorated{}, ErrZeroWorkingDays
	}
	if payableDays < 0 {
		return Prorated{}, ErrNegativePayableDays
	}

	payable := decimal.NewFromInt(int64(payableDays))
	total := decimal.NewFromInt(int64(totalWorkingDays))
	scale := func(v decimal.Decimal) decimal.Decimal {
		return round(v.Mul(payable).Div(total))
	}

	p := Prorated{
		TotalWorkingDays:      totalWorkingDays,
		PayableDays:           payableDays,
		Ratio:                 payable.DivRound(total, 4),
		BasicSalary:           scale(full.BasicSalary),
		HRA:                   scale(full.HRA),
		StandardAllowance:     scale(full.StandardAllowance),
		PerformanceBonus:      scale(full.PerformanceBonus),
		LTA:                   scale(full.LTA),
		FixedAllowance:        scale(full.FixedAllowance),
		GrossSalary:           scale(full.GrossSalary),
		PFDeduction:           scale(full.PFDeduction),
		ProfessionalTax:       decimal.Zero,
		PayableExceedsWorking: payableDays > totalWorkingDays,
	}
	if payableDays > 0 {
		p.ProfessionalTax = full.ProfessionalTax
	}

	p.LossOfPay = full.GrossSalary.Sub(p.GrossSalary)
	p.TotalDeductions = p.PFDeduction.Add(p.ProfessionalTax).Add(p.LossOfPay)
	p.NetSalary = p.GrossSalary.Sub(p.PFDeduction).Sub(p.ProfessionalTax)

	return p, nil
}
