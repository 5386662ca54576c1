package salarystructure_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dayflow-hris/internal/salarystructure"
	salarystructureerrors "dayflow-hris/internal/salarystructure/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	upsertFn     func(ctx context.Context, employeeID string, req salarystructure.UpsertSalaryStructureRequest) (salarystructure.SalaryStructureResponse, error)
	getCurrentFn func(ctx context.Context, employeeID string) (salarystructure.SalaryStructureResponse, error)
}

func (f *fakeService) Upsert(ctx context.Context, employeeID string, req salarystructure.UpsertSalaryStructureRequest) (salarystructure.SalaryStructureResponse, error) {
	return f.upsertFn(ctx, employeeID, req)
}
func (f *fakeService) GetCurrent(ctx context.Context, employeeID string) (salarystructure.SalaryStructureResponse, error) {
	return f.getCurrentFn(ctx, employeeID)
}
func (f *fakeService) GetHistory(ctx context.Context, employeeID string) ([]salarystructure.SalaryStructureResponse, error) {
	return nil, nil
}
func (f *fakeService) FindEffective(ctx context.Context, employeeID string, asOf time.Time) (*salarystructure.SalaryStructure, error) {
	return nil, nil
}
func (f *fakeService) ListCurrent(ctx context.Context) ([]salarystructure.EmployeeSalaryRow, error) {
	return nil, nil
}
func (f *fakeService) CurrentWageTotals(ctx context.Context) (salarystructure.WageTotals, error) {
	return salarystructure.WageTotals{}, nil
}

func TestHandler_Upsert(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()

	svc := &fakeService{
		upsertFn: func(ctx context.Context, eid string, req salarystructure.UpsertSalaryStructureRequest) (salarystructure.SalaryStructureResponse, error) {
			assert.Equal(t, employeeID, eid)
			assert.True(t, req.MonthWage.Equal(decimal.NewFromInt(50000)))
			assert.Equal(t, "2026-03-01", req.EffectiveFrom)
			return salarystructure.SalaryStructureResponse{EmployeeID: eid, MonthWage: req.MonthWage}, nil
		},
	}
	h := salarystructure.NewHandler(svc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "employeeId", Value: employeeID}}
	c.Request = httptest.NewRequest(http.MethodPost, "/salary-structures/"+employeeID,
		strings.NewReader(`{"month_wage":"50000","effective_from":"2026-03-01"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Upsert(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestHandler_GetCurrent_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		getCurrentFn: func(ctx context.Context, employeeID string) (salarystructure.SalaryStructureResponse, error) {
			return salarystructure.SalaryStructureResponse{}, salarystructureerrors.ErrSalaryStructureNotFound
		},
	}
	h := salarystructure.NewHandler(svc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "employeeId", Value: uuid.New().String()}}
	c.Request = httptest.NewRequest(http.MethodGet, "/salary-structures/x", nil)

	h.GetCurrent(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No salary structure found for this employee")
}
