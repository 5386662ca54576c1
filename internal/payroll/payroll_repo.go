package payroll

import (
	"context"
	"database/sql"

	"dayflow-hris/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateRun(ctx context.Context, run *Run) error
	FindRuns(ctx context.Context, year, month int) ([]Run, error)
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

func (r *repository) CreateRun(ctx context.Context, run *Run) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) FindRuns(ctx context.Context, year, month int) ([]Run, error) {
	var runs []Run
	err := r.db.WithContext(ctx).
		Where("year = ? AND month = ?", year, month).
		Order("run_number DESC").
		Find(&runs).Error
	return runs, err
}
