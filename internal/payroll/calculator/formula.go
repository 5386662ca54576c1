// Package calculator holds the pure salary arithmetic: the monthly wage
// breakdown and its proration by payable days. Nothing here touches storage.
package calculator

import (
	"net/http"

	"dayflow-hris/internal/shared/apperror"

	"github.com/shopspring/decimal"
)

var (
	basicRate = decimal.RequireFromString("0.50")
	hraRate   = decimal.RequireFromString("0.50")
	bonusRate = decimal.RequireFromString("0.0833")
	ltaRate   = decimal.RequireFromString("0.0833")
	pfRate    = decimal.RequireFromString("0.12")
	monthsPer = decimal.NewFromInt(12)
)

var ErrInvalidMonthWage = apperror.New(
	apperror.CodeInvalidInput,
	"month wage must be greater than zero",
	http.StatusBadRequest,
)

type Config struct {
	StandardAllowance decimal.Decimal
	ProfessionalTax   decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		StandardAllowance: decimal.NewFromInt(4167),
		ProfessionalTax:   decimal.NewFromInt(200),
	}
}

// Breakdown is a full-month salary split. Every field is rounded to 2 places.
type Breakdown struct {
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
}

// Earnings returns the six earning components in display order.
func (b Breakdown) Earnings() []decimal.Decimal {
	return []decimal.Decimal{b.BasicSalary, b.HRA, b.StandardAllowance, b.PerformanceBonus, b.LTA, b.FixedAllowance}
}

type Formula struct {
	cfg Config
}

func NewFormula(cfg Config) *Formula {
	return &Formula{cfg: cfg}
}

// Calculate splits monthWage into earnings and deductions. Earnings keep full
// precision until output and are rounded once per field, so the rounded
// earnings may differ from monthWage by at most 0.02.
//
// fixedAllowance is the balancing term and goes negative for wages below the
// fixed components; it is returned as is.
func (f *Formula) Calculate(monthWage decimal.Decimal) (Breakdown, error) {
	if !monthWage.IsPositive() {
		return Breakdown{}, ErrInvalidMonthWage
	}

	basic := monthWage.Mul(basicRate)
	hra := basic.Mul(hraRate)
	std := f.cfg.StandardAllowance
	bonus := basic.Mul(bonusRate)
	lta := basic.Mul(ltaRate)
	fixed := monthWage.Sub(basic.Add(hra).Add(std).Add(bonus).Add(lta))
	gross := basic.Add(hra).Add(std).Add(bonus).Add(lta).Add(fixed)

	// deductions and net are derived from already rounded figures so that a
	// payslip reconciles with a manual calculation to the cent
	pf := round(round(basic).Mul(pfRate))
	pt := round(f.cfg.ProfessionalTax)
	totalDeductions := pf.Add(pt)
	net := round(gross).Sub(totalDeductions)

	return Breakdown{
		MonthWage:         round(monthWage),
		YearlyWage:        round(monthWage.Mul(monthsPer)),
		BasicSalary:       round(basic),
		HRA:               round(hra),
		StandardAllowance: round(std),
		PerformanceBonus:  round(bonus),
		LTA:               round(lta),
		FixedAllowance:    round(fixed),
		GrossSalary:       round(gross),
		PFDeduction:       pf,
		ProfessionalTax:   pt,
		TotalDeductions:   totalDeductions,
		NetSalary:         net,
	}, nil
}

// round is half away from zero, which is what decimal.Round does.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
