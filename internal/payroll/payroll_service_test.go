package payroll_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"dayflow-hris/internal/attendance"
	"dayflow-hris/internal/employee"
	employeeerrors "dayflow-hris/internal/employee/errors"
	"dayflow-hris/internal/payroll"
	"dayflow-hris/internal/payroll/calculator"
	payrollerrors "dayflow-hris/internal/payroll/errors"
	"dayflow-hris/internal/salarystructure"
	salarystructureerrors "dayflow-hris/internal/salarystructure/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeRepository struct {
	mu   sync.Mutex
	runs []payroll.Run
	err  error
}

func (f *fakeRepository) WithTx(tx *sql.Tx) payroll.Repository { return f }

func (f *fakeRepository) CreateRun(ctx context.Context, run *payroll.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeRepository) FindRuns(ctx context.Context, year, month int) ([]payroll.Run, error) {
	return f.runs, nil
}

type fakeSalaries struct {
	structures map[string]*salarystructure.SalaryStructure
	totals     salarystructure.WageTotals
	totalsFn   func() (salarystructure.WageTotals, error)
	rows       []salarystructure.EmployeeSalaryRow
}

func (f *fakeSalaries) FindEffective(ctx context.Context, employeeID string, asOf time.Time) (*salarystructure.SalaryStructure, error) {
	s, ok := f.structures[employeeID]
	if !ok || s.EffectiveFrom.After(asOf) {
		return nil, salarystructureerrors.ErrSalaryStructureNotFound
	}
	return s, nil
}

func (f *fakeSalaries) ListCurrent(ctx context.Context) ([]salarystructure.EmployeeSalaryRow, error) {
	return f.rows, nil
}

func (f *fakeSalaries) CurrentWageTotals(ctx context.Context) (salarystructure.WageTotals, error) {
	if f.totalsFn != nil {
		return f.totalsFn()
	}
	return f.totals, nil
}

type fakeEmployees struct {
	employees []employee.Employee
	listFn    func() ([]employee.Employee, error)
}

func (f *fakeEmployees) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID.String() == id {
			e := e
			return &e, nil
		}
	}
	return nil, employeeerrors.ErrEmployeeNotFound
}

func (f *fakeEmployees) ListActiveWithSalaryStructure(ctx context.Context) ([]employee.Employee, error) {
	if f.listFn != nil {
		return f.listFn()
	}
	return f.employees, nil
}

type fakeAttendance struct {
	summaries map[string]attendance.Summary
	fallback  attendance.Summary
}

func (f *fakeAttendance) GetSummary(ctx context.Context, employeeID string, month, year int) (attendance.Summary, error) {
	if s, ok := f.summaries[employeeID]; ok {
		return s, nil
	}
	return f.fallback, nil
}

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) GetNextValue(ctx context.Context, scope, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

func structureFor(t *testing.T, employeeID uuid.UUID, wage string, effectiveFrom string) *salarystructure.SalaryStructure {
	t.Helper()
	b, err := calculator.NewFormula(calculator.DefaultConfig()).Calculate(decimal.RequireFromString(wage))
	assert.NoError(t, err)
	from, err := time.Parse("2006-01-02", effectiveFrom)
	assert.NoError(t, err)

	return &salarystructure.SalaryStructure{
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
		EffectiveFrom:     from,
	}
}

func newEmployee(loginID, first, last string) employee.Employee {
	return employee.Employee{
		ID:          uuid.New(),
		LoginID:     loginID,
		FirstName:   first,
		LastName:    last,
		JoiningDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
	}
}

func fullMonth(year, month int) attendance.Summary {
	return attendance.Summary{
		Year: year, Month: month,
		WorkingDays: 22, PresentDays: 22, PayableDays: 22,
		Reconciled: true,
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: want %s got %s", field, want, got)
}

func TestPayrollService_ComputePayslip(t *testing.T) {
	ctx := context.Background()
	emp := newEmployee("DF0001", "Mira", "Shah")

	salaries := &fakeSalaries{structures: map[string]*salarystructure.SalaryStructure{
		emp.ID.String(): structureFor(t, emp.ID, "50000", "2026-01-01"),
	}}
	employees := &fakeEmployees{employees: []employee.Employee{emp}}
	att := &fakeAttendance{summaries: map[string]attendance.Summary{
		emp.ID.String(): {
			Year: 2026, Month: 3,
			WorkingDays: 22, PresentDays: 18, PaidLeaveDays: 2, AbsentDays: 2, PayableDays: 20,
			Reconciled: true,
		},
	}}
	svc := payroll.NewService(&fakeRepository{}, salaries, employees, att, &fakeCounter{}, nil)

	t.Run("prorates eighteen present and two paid leave days", func(t *testing.T) {
		slip, err := svc.ComputePayslip(ctx, emp.ID.String(), 2026, 3)

		assert.NoError(t, err)
		assert.Equal(t, "March", slip.Period.MonthName)
		assert.Equal(t, "Mira Shah", slip.Employee.Name)
		assert.Equal(t, 20, slip.Attendance.PayableDays)
		assertMoney(t, "22727.27", slip.Earnings.BasicSalary, "basic")
		assertMoney(t, "45454.55", slip.Earnings.GrossSalary, "gross")
		assertMoney(t, "2727.27", slip.Deductions.PF, "pf")
		assertMoney(t, "200", slip.Deductions.ProfessionalTax, "pt")
		assertMoney(t, "4545.45", slip.Deductions.LossOfPay, "lop")
		assertMoney(t, "7472.72", slip.Deductions.TotalDeductions, "total deductions")
		assertMoney(t, "42527.28", slip.NetSalary, "net")
		assertMoney(t, "46800", slip.FullMonthSalary.NetSalary, "full net")
		assert.False(t, slip.AttendanceAnomaly)
	})

	t.Run("no structure effective on first of month", func(t *testing.T) {
		_, err := svc.ComputePayslip(ctx, emp.ID.String(), 2025, 12)
		assert.ErrorIs(t, err, payrollerrors.ErrSalaryStructureNotFound)
	})

	t.Run("unknown employee", func(t *testing.T) {
		other := uuid.New()
		salaries.structures[other.String()] = structureFor(t, other, "30000", "2026-01-01")

		_, err := svc.ComputePayslip(ctx, other.String(), 2026, 3)
		assert.ErrorIs(t, err, payrollerrors.ErrEmployeeNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := svc.ComputePayslip(ctx, "nope", 2026, 3)
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidEmployeeID)

		_, err = svc.ComputePayslip(ctx, emp.ID.String(), 2026, 13)
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidPeriod)
	})

	t.Run("payable above working is flagged", func(t *testing.T) {
		att.summaries[emp.ID.String()] = attendance.Summary{
			Year: 2026, Month: 4, WorkingDays: 22, PresentDays: 23, PayableDays: 23,
		}

		slip, err := svc.ComputePayslip(ctx, emp.ID.String(), 2026, 4)
		assert.NoError(t, err)
		assert.True(t, slip.AttendanceAnomaly)
	})
}

func TestPayrollService_GenerateMonthlyPayroll(t *testing.T) {
	ctx := context.Background()

	emps := []employee.Employee{
		newEmployee("DF0001", "Ana", "Ruiz"),
		newEmployee("DF0002", "Ben", "Okafor"),
		newEmployee("DF0003", "Chen", "Li"),
		newEmployee("DF0004", "Dara", "Kim"),
		newEmployee("DF0005", "Eli", "Stone"),
	}
	structures := map[string]*salarystructure.SalaryStructure{}
	for _, e := range emps[:4] {
		structures[e.ID.String()] = structureFor(t, e.ID, "50000", "2026-01-01")
	}
	// DF0005 has a structure, but it only starts mid-month
	structures[emps[4].ID.String()] = structureFor(t, emps[4].ID, "50000", "2026-03-16")

	repo := &fakeRepository{}
	svc := payroll.NewService(
		repo,
		&fakeSalaries{structures: structures},
		&fakeEmployees{employees: emps},
		&fakeAttendance{fallback: fullMonth(2026, 3)},
		&fakeCounter{},
		nil,
	)

	result, err := svc.GenerateMonthlyPayroll(ctx, 2026, 3)

	assert.NoError(t, err)
	assert.Len(t, result.Payslips, 4)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "DF0005", result.Errors[0].LoginID)
	assert.Equal(t, "Eli Stone", result.Errors[0].Name)
	assert.Equal(t, "No salary structure found for this employee", result.Errors[0].Error)

	assert.Equal(t, 4, result.Summary.TotalEmployees)
	assertMoney(t, "200000", result.Summary.GrossSalary, "gross")
	assertMoney(t, "12800", result.Summary.TotalDeductions, "deductions")
	assertMoney(t, "187200", result.Summary.NetSalary, "net")
	assertMoney(t, "12000", result.Summary.PFDeduction, "pf")
	assert.Equal(t, int64(1), result.RunNumber)
	assert.Equal(t, "March", result.Period.MonthName)

	for i, slip := range result.Payslips {
		assert.Equal(t, emps[i].LoginID, slip.Employee.LoginID, "payslips keep employee order")
	}

	assert.Len(t, repo.runs, 1)
	assert.Equal(t, 4, repo.runs[0].TotalEmployees)
	assert.Equal(t, 1, repo.runs[0].FailedEmployees)

	again, err := svc.GenerateMonthlyPayroll(ctx, 2026, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), again.RunNumber)
}

func TestPayrollService_GenerateMonthlyPayroll_CallerLeavesSharedRun(t *testing.T) {
	emp := newEmployee("DF0001", "Ana", "Ruiz")
	structures := map[string]*salarystructure.SalaryStructure{
		emp.ID.String(): structureFor(t, emp.ID, "50000", "2026-01-01"),
	}

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	employees := &fakeEmployees{listFn: func() ([]employee.Employee, error) {
		once.Do(func() { close(started) })
		<-release
		return []employee.Employee{emp}, nil
	}}

	repo := &fakeRepository{}
	svc := payroll.NewService(
		repo,
		&fakeSalaries{structures: structures},
		employees,
		&fakeAttendance{fallback: fullMonth(2026, 3)},
		&fakeCounter{},
		nil,
	)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.GenerateMonthlyPayroll(ctxA, 2026, 3)
		errA <- err
	}()
	<-started

	type outcome struct {
		result payroll.PayrollRunResult
		err    error
	}
	resB := make(chan outcome, 1)
	go func() {
		r, err := svc.GenerateMonthlyPayroll(context.Background(), 2026, 3)
		resB <- outcome{r, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	time.Sleep(20 * time.Millisecond)
	close(release)

	b := <-resB
	assert.NoError(t, b.err, "a live caller is not failed by another caller's cancellation")
	assert.Len(t, b.result.Payslips, 1)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.NotEmpty(t, repo.runs, "the run finishes after the starting caller left")
}

func TestPayrollService_GenerateMonthlyPayroll_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid period", func(t *testing.T) {
		svc := payroll.NewService(&fakeRepository{}, &fakeSalaries{}, &fakeEmployees{}, &fakeAttendance{}, &fakeCounter{}, nil)
		_, err := svc.GenerateMonthlyPayroll(ctx, 2026, 0)
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidPeriod)
	})

	t.Run("run record fails", func(t *testing.T) {
		repo := &fakeRepository{err: errors.New("db down")}
		svc := payroll.NewService(repo, &fakeSalaries{}, &fakeEmployees{}, &fakeAttendance{}, &fakeCounter{}, nil)

		_, err := svc.GenerateMonthlyPayroll(ctx, 2026, 3)
		assert.EqualError(t, err, "db down")
	})
}

func TestPayrollService_GetPayrollSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("computes and caches", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(payroll.SummaryCacheKey).RedisNil()
		mock.Regexp().ExpectSet(payroll.SummaryCacheKey, `.*`, time.Minute).SetVal("OK")

		salaries := &fakeSalaries{totals: salarystructure.WageTotals{
			EmployeesWithSalary: 3,
			TotalMonthlyWage:    decimal.NewFromInt(100000),
		}}
		svc := payroll.NewService(&fakeRepository{}, salaries, &fakeEmployees{}, &fakeAttendance{}, &fakeCounter{}, rdb)

		resp, err := svc.GetPayrollSummary(ctx)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), resp.EmployeesWithSalary)
		assertMoney(t, "33333", resp.AverageSalary, "average")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("served from cache", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(payroll.SummaryCacheKey).
			SetVal(`{"employees_with_salary":2,"total_monthly_wage":"80000","average_salary":"40000"}`)

		salaries := &fakeSalaries{totalsFn: func() (salarystructure.WageTotals, error) {
			t.Fatal("cache hit must not query the database")
			return salarystructure.WageTotals{}, nil
		}}
		svc := payroll.NewService(&fakeRepository{}, salaries, &fakeEmployees{}, &fakeAttendance{}, &fakeCounter{}, rdb)

		resp, err := svc.GetPayrollSummary(ctx)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), resp.EmployeesWithSalary)
		assertMoney(t, "40000", resp.AverageSalary, "average")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPayrollService_GetAllSalaries(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	salaries := &fakeSalaries{rows: []salarystructure.EmployeeSalaryRow{
		{
			EmployeeID:    uuid.NewString(),
			LoginID:       "DF0001",
			FirstName:     "Ana",
			LastName:      "Ruiz",
			MonthWage:     decimal.NewNullDecimal(decimal.NewFromInt(50000)),
			BasicSalary:   decimal.NewNullDecimal(decimal.NewFromInt(25000)),
			EffectiveFrom: &from,
		},
		{EmployeeID: uuid.NewString(), LoginID: "DF0002", FirstName: "Ben", LastName: "Okafor"},
	}}
	svc := payroll.NewService(&fakeRepository{}, salaries, &fakeEmployees{}, &fakeAttendance{}, &fakeCounter{}, nil)

	resp, err := svc.GetAllSalaries(context.Background())

	assert.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.NotNil(t, resp[0].Salary)
	assert.Equal(t, "2026-01-01", resp[0].Salary.EffectiveFrom)
	assert.Nil(t, resp[1].Salary)
}
