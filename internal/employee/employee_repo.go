package employee

import (
	"context"
	"database/sql"

	"dayflow-hris/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindAll(ctx context.Context, filter ListEmployeesFilter) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindActiveWithSalaryStructure(ctx context.Context) ([]Employee, error)
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

func (r *repository) FindAll(ctx context.Context, filter ListEmployeesFilter) ([]Employee, error) {
	var employees []Employee
	db := r.db.WithContext(ctx).Model(&Employee{})
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("first_name ASC, last_name ASC").Find(&employees).Error
	return employees, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindActiveWithSalaryStructure(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("EXISTS (SELECT 1 FROM salary_structures ss WHERE ss.employee_id = employees.id)").
		Order("first_name ASC, last_name ASC").
		Find(&employees).Error
	return employees, err
}
