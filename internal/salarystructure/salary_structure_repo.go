package salarystructure

import (
	"context"
	"database/sql"
	"time"

	"dayflow-hris/internal/shared/connection"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmployeeSalaryRow is an employee joined with their newest salary version,
// if any.
type EmployeeSalaryRow struct {
	EmployeeID    string
	LoginID       string
	FirstName     string
	LastName      string
	Department    *string
	JoiningDate   time.Time
	IsActive      bool
	MonthWage     decimal.NullDecimal
	BasicSalary   decimal.NullDecimal
	EffectiveFrom *time.Time
}

type WageTotals struct {
	EmployeesWithSalary int64
	TotalMonthlyWage    decimal.Decimal
}

//go:generate mockgen -source=salary_structure_repo.go -destination=mock/salary_structure_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Upsert(ctx context.Context, s *SalaryStructure) error
	FindEffective(ctx context.Context, employeeID string, asOf time.Time) (*SalaryStructure, error)
	FindLatest(ctx context.Context, employeeID string) (*SalaryStructure, error)
	FindHistory(ctx context.Context, employeeID string) ([]SalaryStructure, error)
	ListCurrent(ctx context.Context) ([]EmployeeSalaryRow, error)
	CurrentWageTotals(ctx context.Context) (WageTotals, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) Upsert(ctx context.Context, s *SalaryStructure) error {
	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "employee_id"}, {Name: "effective_from"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"month_wage", "yearly_wage", "basic_salary", "hra",
					"standard_allowance", "performance_bonus", "lta", "fixed_allowance",
					"pf_deduction", "professional_tax", "updated_at",
				}),
			},
			clause.Returning{},
		).
		Create(s).Error
}

func (r *repository) FindEffective(ctx context.Context, employeeID string, asOf time.Time) (*SalaryStructure, error) {
	var s SalaryStructure
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND effective_from <= ?", employeeID, asOf.Format("2006-01-02")).
		Order("effective_from DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindLatest(ctx context.Context, employeeID string) (*SalaryStructure, error) {
	var s SalaryStructure
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("effective_from DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindHistory(ctx context.Context, employeeID string) ([]SalaryStructure, error) {
	var history []SalaryStructure
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("effective_from DESC").
		Find(&history).Error
	return history, err
}

func (r *repository) ListCurrent(ctx context.Context) ([]EmployeeSalaryRow, error) {
	var rows []EmployeeSalaryRow
	query := `
SELECT
	e.id AS employee_id,
	e.login_id,
	e.first_name,
	e.last_name,
	e.department,
	e.joining_date,
	e.is_active,
	ss.month_wage,
	ss.basic_salary,
	ss.effective_from
FROM employees e
LEFT JOIN LATERAL (
	SELECT month_wage, basic_salary, effective_from
	FROM salary_structures
	WHERE employee_id = e.id
	ORDER BY effective_from DESC
	LIMIT 1
) ss ON TRUE
ORDER BY e.first_name ASC, e.last_name ASC
`
	err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error
	return rows, err
}

func (r *repository) CurrentWageTotals(ctx context.Context) (WageTotals, error) {
	var totals WageTotals
	query := `
SELECT
	COUNT(*) AS employees_with_salary,
	COALESCE(SUM(cur.month_wage), 0) AS total_monthly_wage
FROM (
	SELECT DISTINCT ON (ss.employee_id) ss.month_wage
	FROM salary_structures ss
	JOIN employees e ON e.id = ss.employee_id
	WHERE e.is_active = TRUE
	ORDER BY ss.employee_id, ss.effective_from DESC
) cur
`
	err := r.db.WithContext(ctx).Raw(query).Scan(&totals).Error
	return totals, err
}
