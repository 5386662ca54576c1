package employee

import (
	"context"
	"encoding/json"
	"time"

	employeeerrors "dayflow-hris/internal/employee/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const EmployeeOptionsKey = "employees:options"

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, filter ListEmployeesFilter) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeOption, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	ListActiveWithSalaryStructure(ctx context.Context) ([]Employee, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) GetAll(ctx context.Context, filter ListEmployeesFilter) ([]EmployeeResponse, error) {
	emps, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	res := make([]EmployeeResponse, len(emps))
	for i, e := range emps {
		res[i] = mapToResponse(e)
	}
	return res, nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOption, error) {
	// 1. Cek Redis
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result(); err == nil {
			var resp []EmployeeOption
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight supaya cache miss tidak jadi banyak query paralel
	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		emps, err := s.repo.FindAll(ctx, ListEmployeesFilter{ActiveOnly: true})
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOption, len(emps))
		for i, e := range emps {
			resp[i] = EmployeeOption{ID: e.ID.String(), LoginID: e.LoginID, FullName: e.FullName()}
		}

		// 3. Simpan ke Redis, data master jadi TTL 1 jam cukup
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, time.Hour)
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]EmployeeOption), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	e, err := s.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

// FindByID returns the raw record for collaborators that need identity data.
func (s *service) FindByID(ctx context.Context, id string) (*Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return e, nil
}

func (s *service) ListActiveWithSalaryStructure(ctx context.Context) ([]Employee, error) {
	emps, err := s.repo.FindActiveWithSalaryStructure(ctx)
	if err != nil {
		s.logger.Error("list active employees with salary failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return emps, nil
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID.String(),
		LoginID:     e.LoginID,
		FullName:    e.FullName(),
		Email:       e.Email,
		Department:  e.Department,
		Role:        e.Role,
		JoiningDate: e.JoiningDate.Format("2006-01-02"),
		IsActive:    e.IsActive,
	}
}
