package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dayflow-hris/internal/attendance"
	"dayflow-hris/internal/employee"
	employeeerrors "dayflow-hris/internal/employee/errors"
	"dayflow-hris/internal/payroll/calculator"
	payrollerrors "dayflow-hris/internal/payroll/errors"
	"dayflow-hris/internal/salarystructure"
	"dayflow-hris/internal/shared/cachekey"
	salarystructureerrors "dayflow-hris/internal/salarystructure/errors"
	"dayflow-hris/internal/shared/contextutil"
	"dayflow-hris/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	dateLayout = "2006-01-02"

	SummaryCacheKey = cachekey.PayrollSummary
	summaryCacheTTL = time.Minute
	runCounterType  = "payroll_run"
	generateWorkers = 4
)

type SalaryStructureReader interface {
	FindEffective(ctx context.Context, employeeID string, asOf time.Time) (*salarystructure.SalaryStructure, error)
	ListCurrent(ctx context.Context) ([]salarystructure.EmployeeSalaryRow, error)
	CurrentWageTotals(ctx context.Context) (salarystructure.WageTotals, error)
}

type EmployeeDirectory interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	ListActiveWithSalaryStructure(ctx context.Context) ([]employee.Employee, error)
}

type AttendanceSummarizer interface {
	GetSummary(ctx context.Context, employeeID string, month, year int) (attendance.Summary, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	ComputePayslip(ctx context.Context, employeeID string, year, month int) (Payslip, error)
	GenerateMonthlyPayroll(ctx context.Context, year, month int) (PayrollRunResult, error)
	GetRuns(ctx context.Context, year, month int) ([]RunResponse, error)
	GetPayrollSummary(ctx context.Context) (PayrollSummary, error)
	GetAllSalaries(ctx context.Context) ([]EmployeeSalaryResponse, error)
}

type service struct {
	repo       Repository
	salaries   SalaryStructureReader
	employees  EmployeeDirectory
	attendance AttendanceSummarizer
	counter    counter.Repository
	rdb        *redis.Client
	sf         *singleflight.Group
	logger     *zap.Logger
}

func NewService(
	repo Repository,
	salaries SalaryStructureReader,
	employees EmployeeDirectory,
	summarizer AttendanceSummarizer,
	counterRepo counter.Repository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		repo:       repo,
		salaries:   salaries,
		employees:  employees,
		attendance: summarizer,
		counter:    counterRepo,
		rdb:        rdb,
		sf:         &singleflight.Group{},
		logger:     l,
	}
}

// ComputePayslip builds one employee's payslip for a month from the salary
// version effective on the first of that month and the attendance summary.
func (s *service) ComputePayslip(ctx context.Context, employeeID string, year, month int) (Payslip, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(employeeID); err != nil {
		return Payslip{}, payrollerrors.ErrInvalidEmployeeID
	}
	periodStart, _, err := attendance.MonthBounds(year, month)
	if err != nil {
		return Payslip{}, payrollerrors.ErrInvalidPeriod
	}

	structure, err := s.salaries.FindEffective(ctx, employeeID, periodStart)
	if err != nil {
		if errors.Is(err, salarystructureerrors.ErrSalaryStructureNotFound) {
			return Payslip{}, payrollerrors.ErrSalaryStructureNotFound
		}
		return Payslip{}, err
	}

	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employeeerrors.ErrEmployeeNotFound) {
			return Payslip{}, payrollerrors.ErrEmployeeNotFound
		}
		return Payslip{}, err
	}

	summary, err := s.attendance.GetSummary(ctx, employeeID, month, year)
	if err != nil {
		return Payslip{}, err
	}

	full := structure.Breakdown()
	prorated, err := calculator.Prorate(full, summary.WorkingDays, summary.PayableDays)
	if err != nil {
		return Payslip{}, err
	}

	anomaly := prorated.PayableExceedsWorking || !summary.Reconciled
	if prorated.PayableExceedsWorking {
		log.Warn("payable days exceed working days",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Int("working_days", summary.WorkingDays),
			zap.Int("payable_days", summary.PayableDays),
		)
	}

	return composePayslip(*emp, *structure, full, summary, prorated, anomaly), nil
}

func composePayslip(
	emp employee.Employee,
	structure salarystructure.SalaryStructure,
	full calculator.Breakdown,
	summary attendance.Summary,
	p calculator.Prorated,
	anomaly bool,
) Payslip {
	return Payslip{
		Employee: PayslipEmployee{
			ID:          emp.ID.String(),
			LoginID:     emp.LoginID,
			Name:        emp.FullName(),
			Department:  emp.Department,
			JoiningDate: emp.JoiningDate.Format(dateLayout),
		},
		Period: newPeriod(summary.Year, summary.Month),
		Attendance: PayslipAttendance{
			TotalWorkingDays: summary.WorkingDays,
			PresentDays:      summary.PresentDays,
			PaidLeaveDays:    summary.PaidLeaveDays,
			SickLeaveDays:    summary.SickLeaveDays,
			UnpaidLeaveDays:  summary.UnpaidLeaveDays,
			AbsentDays:       summary.AbsentDays,
			PayableDays:      summary.PayableDays,
			PayableRatio:     p.Ratio,
		},
		Earnings: Earnings{
			BasicSalary:       p.BasicSalary,
			HRA:               p.HRA,
			StandardAllowance: p.StandardAllowance,
			PerformanceBonus:  p.PerformanceBonus,
			LTA:               p.LTA,
			FixedAllowance:    p.FixedAllowance,
			GrossSalary:       p.GrossSalary,
		},
		Deductions: Deductions{
			PF:              p.PFDeduction,
			ProfessionalTax: p.ProfessionalTax,
			LossOfPay:       p.LossOfPay,
			TotalDeductions: p.TotalDeductions,
		},
		NetSalary: p.NetSalary,
		FullMonthSalary: FullMonthSalary{
			MonthWage:       full.MonthWage,
			GrossSalary:     full.GrossSalary,
			PF:              full.PFDeduction,
			ProfessionalTax: full.ProfessionalTax,
			NetSalary:       full.NetSalary,
		},
		SalaryEffectiveFrom: structure.EffectiveFrom.Format(dateLayout),
		AttendanceAnomaly:   anomaly,
	}
}

// GenerateMonthlyPayroll computes a payslip for every active employee with a
// salary structure. One employee failing never aborts the run; the failure is
// reported in Errors and left out of the totals.
func (s *service) GenerateMonthlyPayroll(ctx context.Context, year, month int) (PayrollRunResult, error) {
	if _, _, err := attendance.MonthBounds(year, month); err != nil {
		return PayrollRunResult{}, payrollerrors.ErrInvalidPeriod
	}

	// run identik yang bersamaan cukup dihitung sekali.
	// The shared run is detached from the starting caller's cancellation; each
	// caller stops waiting on its own ctx. The run row records the caller that
	// started it.
	key := fmt.Sprintf("payroll:generate:%04d-%02d", year, month)
	runCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		return s.generate(runCtx, year, month)
	})

	select {
	case <-ctx.Done():
		s.logger.Warn("caller left before payroll run finished", zap.String("key", key), zap.Error(ctx.Err()))
		return PayrollRunResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return PayrollRunResult{}, res.Err
		}
		if res.Shared {
			s.logger.Debug("payroll run shared with concurrent caller", zap.String("key", key))
		}
		return res.Val.(PayrollRunResult), nil
	}
}

func (s *service) generate(ctx context.Context, year, month int) (PayrollRunResult, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Info("payroll run started", zap.Int("year", year), zap.Int("month", month))

	emps, err := s.employees.ListActiveWithSalaryStructure(ctx)
	if err != nil {
		return PayrollRunResult{}, err
	}

	slips := make([]*Payslip, len(emps))
	failures := make([]error, len(emps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(generateWorkers)
	for i, emp := range emps {
		i, emp := i, emp
		g.Go(func() error {
			slip, err := s.ComputePayslip(gctx, emp.ID.String(), year, month)
			if err != nil {
				failures[i] = err
				return nil
			}
			slips[i] = &slip
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return PayrollRunResult{}, err
	}

	result := PayrollRunResult{
		Period:   newPeriod(year, month),
		Payslips: make([]Payslip, 0, len(emps)),
		Errors:   make([]RunError, 0),
		Summary: RunSummary{
			GrossSalary:     decimal.Zero,
			TotalDeductions: decimal.Zero,
			NetSalary:       decimal.Zero,
			PFDeduction:     decimal.Zero,
		},
	}
	for i, emp := range emps {
		if failures[i] != nil {
			log.Warn("payslip failed",
				zap.String("employee_id", emp.ID.String()),
				zap.String("login_id", emp.LoginID),
				zap.Error(failures[i]),
			)
			result.Errors = append(result.Errors, RunError{
				EmployeeID: emp.ID.String(),
				LoginID:    emp.LoginID,
				Name:       emp.FullName(),
				Error:      failures[i].Error(),
			})
			continue
		}
		slip := *slips[i]
		result.Payslips = append(result.Payslips, slip)
		result.Summary.GrossSalary = result.Summary.GrossSalary.Add(slip.Earnings.GrossSalary)
		result.Summary.TotalDeductions = result.Summary.TotalDeductions.Add(slip.Deductions.TotalDeductions)
		result.Summary.NetSalary = result.Summary.NetSalary.Add(slip.NetSalary)
		result.Summary.PFDeduction = result.Summary.PFDeduction.Add(slip.Deductions.PF)
	}
	result.Summary.TotalEmployees = len(result.Payslips)

	runNumber, err := s.counter.GetNextValue(ctx, fmt.Sprintf("%04d-%02d", year, month), runCounterType)
	if err != nil {
		log.Error("payroll run counter failed", zap.Error(err))
		return PayrollRunResult{}, err
	}
	result.RunNumber = runNumber

	run := &Run{
		ID:              uuid.New(),
		Year:            year,
		Month:           month,
		RunNumber:       runNumber,
		RequestID:       contextutil.GetRequestID(ctx),
		TotalEmployees:  result.Summary.TotalEmployees,
		FailedEmployees: len(result.Errors),
		GrossSalary:     result.Summary.GrossSalary,
		TotalDeductions: result.Summary.TotalDeductions,
		NetSalary:       result.Summary.NetSalary,
		PFDeduction:     result.Summary.PFDeduction,
	}
	if actor, err := uuid.Parse(contextutil.GetEmployeeID(ctx)); err == nil {
		run.GeneratedBy = &actor
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		log.Error("record payroll run failed", zap.Error(err))
		return PayrollRunResult{}, err
	}

	log.Info("payroll run finished",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int64("run_number", runNumber),
		zap.Int("payslips", len(result.Payslips)),
		zap.Int("errors", len(result.Errors)),
		zap.String("net_salary", result.Summary.NetSalary.String()),
	)
	return result, nil
}

func (s *service) GetRuns(ctx context.Context, year, month int) ([]RunResponse, error) {
	if _, _, err := attendance.MonthBounds(year, month); err != nil {
		return nil, payrollerrors.ErrInvalidPeriod
	}
	runs, err := s.repo.FindRuns(ctx, year, month)
	if err != nil {
		return nil, err
	}
	res := make([]RunResponse, len(runs))
	for i, r := range runs {
		res[i] = mapRunToResponse(r)
	}
	return res, nil
}

func (s *service) GetPayrollSummary(ctx context.Context) (PayrollSummary, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, SummaryCacheKey).Result(); err == nil {
			var resp PayrollSummary
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	totals, err := s.salaries.CurrentWageTotals(ctx)
	if err != nil {
		return PayrollSummary{}, err
	}
	resp := PayrollSummary{
		EmployeesWithSalary: totals.EmployeesWithSalary,
		TotalMonthlyWage:    totals.TotalMonthlyWage,
		AverageSalary:       totals.AverageWage(),
	}

	if s.rdb != nil {
		if jsonData, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, SummaryCacheKey, jsonData, summaryCacheTTL)
		}
	}
	return resp, nil
}

func (s *service) GetAllSalaries(ctx context.Context) ([]EmployeeSalaryResponse, error) {
	rows, err := s.salaries.ListCurrent(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]EmployeeSalaryResponse, len(rows))
	for i, r := range rows {
		res[i] = EmployeeSalaryResponse{
			EmployeeID:  r.EmployeeID,
			LoginID:     r.LoginID,
			Name:        r.FirstName + " " + r.LastName,
			Department:  r.Department,
			JoiningDate: r.JoiningDate.Format(dateLayout),
			IsActive:    r.IsActive,
		}
		if r.MonthWage.Valid && r.EffectiveFrom != nil {
			res[i].Salary = &CurrentSalary{
				MonthWage:     r.MonthWage.Decimal,
				BasicSalary:   r.BasicSalary.Decimal,
				EffectiveFrom: r.EffectiveFrom.Format(dateLayout),
			}
		}
	}
	return res, nil
}

func newPeriod(year, month int) Period {
	return Period{Year: year, Month: month, MonthName: time.Month(month).String()}
}

func mapRunToResponse(r Run) RunResponse {
	resp := RunResponse{
		ID:              r.ID.String(),
		Year:            r.Year,
		Month:           r.Month,
		RunNumber:       r.RunNumber,
		TotalEmployees:  r.TotalEmployees,
		FailedEmployees: r.FailedEmployees,
		GrossSalary:     r.GrossSalary,
		TotalDeductions: r.TotalDeductions,
		NetSalary:       r.NetSalary,
		PFDeduction:     r.PFDeduction,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.GeneratedBy != nil {
		v := r.GeneratedBy.String()
		resp.GeneratedBy = &v
	}
	return resp
}
