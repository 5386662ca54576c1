package calculator_test

import (
	"errors"
	"testing"

	"dayflow-hris/internal/payroll/calculator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), field)
}

func TestFormula_Calculate_FiftyThousand(t *testing.T) {
	f := calculator.NewFormula(calculator.DefaultConfig())

	b, err := f.Calculate(money("50000"))
	assert.NoError(t, err)

	assertMoney(t, "50000.00", b.MonthWage, "monthWage")
	assertMoney(t, "600000.00", b.YearlyWage, "yearlyWage")
	assertMoney(t, "25000.00", b.BasicSalary, "basic")
	assertMoney(t, "12500.00", b.HRA, "hra")
	assertMoney(t, "4167.00", b.StandardAllowance, "standard")
	assertMoney(t, "2082.50", b.PerformanceBonus, "bonus")
	assertMoney(t, "2082.50", b.LTA, "lta")
	assertMoney(t, "4168.00", b.FixedAllowance, "fixed")
	assertMoney(t, "50000.00", b.GrossSalary, "gross")
	assertMoney(t, "3000.00", b.PFDeduction, "pf")
	assertMoney(t, "200.00", b.ProfessionalTax, "pt")
	assertMoney(t, "3200.00", b.TotalDeductions, "deductions")
	assertMoney(t, "46800.00", b.NetSalary, "net")
}

func TestFormula_Calculate_RejectsNonPositiveWage(t *testing.T) {
	f := calculator.NewFormula(calculator.DefaultConfig())

	for _, wage := range []string{"0", "-1", "-50000.25"} {
		_, err := f.Calculate(money(wage))
		assert.True(t, errors.Is(err, calculator.ErrInvalidMonthWage), wage)
	}
}

func TestFormula_Calculate_NegativeFixedAllowanceIsKept(t *testing.T) {
	f := calculator.NewFormula(calculator.DefaultConfig())

	b, err := f.Calculate(money("5000"))
	assert.NoError(t, err)
	assertMoney(t, "-3333.50", b.FixedAllowance, "fixed")
	assertMoney(t, "5000.00", b.GrossSalary, "gross")
}

func TestFormula_Calculate_CustomConstants(t *testing.T) {
	f := calculator.NewFormula(calculator.Config{
		StandardAllowance: money("5000"),
		ProfessionalTax:   money("250"),
	})

	b, err := f.Calculate(money("50000"))
	assert.NoError(t, err)
	assertMoney(t, "5000.00", b.StandardAllowance, "standard")
	assertMoney(t, "3335.00", b.FixedAllowance, "fixed")
	assertMoney(t, "46750.00", b.NetSalary, "net")
}

func TestFormula_Calculate_Properties(t *testing.T) {
	f := calculator.NewFormula(calculator.DefaultConfig())
	tolerance := money("0.02")
	half := money("0.5")
	twelvePct := money("0.12")

	wages := []string{
		"0.01", "1", "999.99", "8333.50", "10000", "12345.67", "33333", "33333.33",
		"47999.99", "50000", "77777.77", "99999.99", "123456.78", "1000000",
	}

	for _, w := range wages {
		wage := money(w)
		b, err := f.Calculate(wage)
		assert.NoError(t, err, w)

		sum := decimal.Zero
		for _, e := range b.Earnings() {
			sum = sum.Add(e)
		}
		assert.True(t, sum.Sub(wage).Abs().LessThanOrEqual(tolerance), "earnings sum drift for %s: %s", w, sum)

		assert.True(t, b.BasicSalary.Equal(wage.Mul(half).Round(2)), "basic for %s", w)
		assert.True(t, b.PFDeduction.Equal(b.BasicSalary.Mul(twelvePct).Round(2)), "pf for %s", w)
		assert.True(t, b.GrossSalary.Equal(wage.Round(2)), "gross for %s", w)

		again, err := f.Calculate(wage)
		assert.NoError(t, err)
		assert.Equal(t, b, again, "idempotent for %s", w)
	}
}
