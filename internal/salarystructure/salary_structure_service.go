package salarystructure

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dayflow-hris/internal/employee"
	employeeerrors "dayflow-hris/internal/employee/errors"
	"dayflow-hris/internal/payroll/calculator"
	salarystructureerrors "dayflow-hris/internal/salarystructure/errors"
	"dayflow-hris/internal/shared/cachekey"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// EmployeeFinder is the slice of the employee directory this package needs.
type EmployeeFinder interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
}

//go:generate mockgen -source=salary_structure_service.go -destination=mock/salary_structure_service_mock.go -package=mock
type Service interface {
	Upsert(ctx context.Context, employeeID string, req UpsertSalaryStructureRequest) (SalaryStructureResponse, error)
	GetCurrent(ctx context.Context, employeeID string) (SalaryStructureResponse, error)
	GetHistory(ctx context.Context, employeeID string) ([]SalaryStructureResponse, error)
	FindEffective(ctx context.Context, employeeID string, asOf time.Time) (*SalaryStructure, error)
	ListCurrent(ctx context.Context) ([]EmployeeSalaryRow, error)
	CurrentWageTotals(ctx context.Context) (WageTotals, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees EmployeeFinder
	formula   *calculator.Formula
	rdb       *redis.Client
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees EmployeeFinder,
	formula *calculator.Formula,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("salarystructure.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarystructure.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		formula:   formula,
		rdb:       rdb,
		now:       time.Now,
		logger:    l,
	}
}

// Upsert writes the version for (employee, effective_from), replacing it if it
// already exists. An empty effective_from means today.
func (s *service) Upsert(
	ctx context.Context,
	employeeID string,
	req UpsertSalaryStructureRequest,
) (SalaryStructureResponse, error) {
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return SalaryStructureResponse{}, salarystructureerrors.ErrInvalidEmployeeID
	}

	effectiveFrom, err := s.parseEffectiveFrom(req.EffectiveFrom)
	if err != nil {
		return SalaryStructureResponse{}, err
	}

	breakdown, err := s.formula.Calculate(req.MonthWage)
	if err != nil {
		s.logger.Warn("rejected salary structure",
			zap.String("employee_id", employeeID),
			zap.String("month_wage", req.MonthWage.String()),
			zap.Error(err),
		)
		return SalaryStructureResponse{}, err
	}
	if breakdown.FixedAllowance.IsNegative() {
		s.logger.Warn("fixed allowance is negative",
			zap.String("employee_id", employeeID),
			zap.String("fixed_allowance", breakdown.FixedAllowance.String()),
		)
	}

	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		if errors.Is(err, employeeerrors.ErrEmployeeNotFound) {
			return SalaryStructureResponse{}, salarystructureerrors.ErrEmployeeNotFound
		}
		return SalaryStructureResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryStructureResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	structure := newFromBreakdown(empUUID, effectiveFrom, breakdown)
	if err := qtx.Upsert(ctx, structure); err != nil {
		s.logger.Error("upsert salary structure failed", zap.String("employee_id", employeeID), zap.Error(err))
		return SalaryStructureResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return SalaryStructureResponse{}, err
	}
	s.invalidateSummary(ctx)

	s.logger.Info("salary structure saved",
		zap.String("employee_id", employeeID),
		zap.String("effective_from", effectiveFrom.Format(dateLayout)),
		zap.String("month_wage", breakdown.MonthWage.String()),
	)

	return mapToResponse(*structure), nil
}

func (s *service) GetCurrent(ctx context.Context, employeeID string) (SalaryStructureResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return SalaryStructureResponse{}, salarystructureerrors.ErrInvalidEmployeeID
	}

	structure, err := s.repo.FindLatest(ctx, employeeID)
	if err != nil {
		return SalaryStructureResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*structure), nil
}

func (s *service) GetHistory(ctx context.Context, employeeID string) ([]SalaryStructureResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, salarystructureerrors.ErrInvalidEmployeeID
	}

	history, err := s.repo.FindHistory(ctx, employeeID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(history), nil
}

// FindEffective returns the newest version whose effective_from is on or
// before asOf.
func (s *service) FindEffective(ctx context.Context, employeeID string, asOf time.Time) (*SalaryStructure, error) {
	structure, err := s.repo.FindEffective(ctx, employeeID, asOf)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return structure, nil
}

func (s *service) ListCurrent(ctx context.Context) ([]EmployeeSalaryRow, error) {
	return s.repo.ListCurrent(ctx)
}

func (s *service) CurrentWageTotals(ctx context.Context) (WageTotals, error) {
	totals, err := s.repo.CurrentWageTotals(ctx)
	if err != nil {
		s.logger.Error("wage totals failed", zap.Error(err))
		return WageTotals{}, err
	}
	return totals, nil
}

// invalidateSummary drops the cached payroll summary so the next read sees the
// new wage totals. A failed delete only leaves it stale until the TTL.
func (s *service) invalidateSummary(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cachekey.PayrollSummary).Err(); err != nil {
		s.logger.Warn("invalidate payroll summary cache failed", zap.Error(err))
	}
}

func (s *service) parseEffectiveFrom(raw string) (time.Time, error) {
	if raw == "" {
		now := s.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, salarystructureerrors.ErrInvalidEffectiveDate
	}
	return t, nil
}

func mapToResponse(s SalaryStructure) SalaryStructureResponse {
	b := s.Breakdown()
	return SalaryStructureResponse{
		ID:                s.ID.String(),
		EmployeeID:        s.EmployeeID.String(),
		EmployeeName:      s.EmployeeName,
		LoginID:           s.LoginID,
		MonthWage:         b.MonthWage,
		YearlyWage:        b.YearlyWage,
		BasicSalary:       b.BasicSalary,
		HRA:               b.HRA,
		StandardAllowance: b.StandardAllowance,
		PerformanceBonus:  b.PerformanceBonus,
		LTA:               b.LTA,
		FixedAllowance:    b.FixedAllowance,
		GrossSalary:       b.GrossSalary,
		PFDeduction:       b.PFDeduction,
		ProfessionalTax:   b.ProfessionalTax,
		TotalDeductions:   b.TotalDeductions,
		NetSalary:         b.NetSalary,
		EffectiveFrom:     s.EffectiveFrom.Format(dateLayout),
	}
}

func mapToListResponse(history []SalaryStructure) []SalaryStructureResponse {
	res := make([]SalaryStructureResponse, len(history))
	for i, s := range history {
		res[i] = mapToResponse(s)
	}
	return res
}

// AverageWage is total/count rounded to whole units, zero when nobody has a
// salary.
func (t WageTotals) AverageWage() decimal.Decimal {
	if t.EmployeesWithSalary == 0 {
		return decimal.Zero
	}
	return t.TotalMonthlyWage.DivRound(decimal.NewFromInt(t.EmployeesWithSalary), 0)
}
