package attendance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dayflow-hris/internal/attendance"
	attendanceerrors "dayflow-hris/internal/attendance/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	checkInFn    func(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error)
	getHistoryFn func(ctx context.Context, employeeID string, month, year int) ([]attendance.AttendanceResponse, error)
	getSummaryFn func(ctx context.Context, employeeID string, month, year int) (attendance.Summary, error)
}

func (f *fakeService) CheckIn(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	return f.checkInFn(ctx, employeeID)
}
func (f *fakeService) CheckOut(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	return attendance.AttendanceResponse{}, nil
}
func (f *fakeService) GetToday(ctx context.Context, employeeID string) (attendance.TodayStatusResponse, error) {
	return attendance.TodayStatusResponse{}, nil
}
func (f *fakeService) GetHistory(ctx context.Context, employeeID string, month, year int) ([]attendance.AttendanceResponse, error) {
	return f.getHistoryFn(ctx, employeeID, month, year)
}
func (f *fakeService) GetSummary(ctx context.Context, employeeID string, month, year int) (attendance.Summary, error) {
	return f.getSummaryFn(ctx, employeeID, month, year)
}
func (f *fakeService) GetByDate(ctx context.Context, date string) ([]attendance.AttendanceResponse, error) {
	return nil, nil
}
func (f *fakeService) GetTeamOverview(ctx context.Context, date string) (attendance.TeamOverviewResponse, error) {
	return attendance.TeamOverviewResponse{}, nil
}

func TestHandler_CheckInAndHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()

	svc := &fakeService{
		checkInFn: func(ctx context.Context, eid string) (attendance.AttendanceResponse, error) {
			assert.Equal(t, employeeID, eid)
			return attendance.AttendanceResponse{ID: uuid.New().String(), EmployeeID: eid, Status: attendance.StatusPresent}, nil
		},
		getHistoryFn: func(ctx context.Context, eid string, month, year int) ([]attendance.AttendanceResponse, error) {
			assert.Equal(t, 3, month)
			assert.Equal(t, 2026, year)
			return []attendance.AttendanceResponse{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
		},
	}
	h := attendance.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("employee_id", employeeID)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/check-in", nil)
	h.CheckIn(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Set("employee_id", employeeID)
	c2.Request = httptest.NewRequest(http.MethodGet, "/attendances/history?month=3&year=2026&page=2&page_size=2", nil)
	h.GetHistory(c2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), `"meta"`)
	assert.Contains(t, w2.Body.String(), `"id":"c"`)
	assert.NotContains(t, w2.Body.String(), `"id":"a"`)
}

func TestHandler_CheckIn_Conflict(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		checkInFn: func(ctx context.Context, eid string) (attendance.AttendanceResponse, error) {
			return attendance.AttendanceResponse{}, attendanceerrors.ErrOnApprovedLeave
		},
	}
	h := attendance.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("employee_id", uuid.New().String())
	c.Request = httptest.NewRequest(http.MethodPost, "/attendances/check-in", nil)
	h.CheckIn(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Cannot mark attendance while on approved leave")
}

func TestHandler_GetSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := uuid.New().String()

	svc := &fakeService{
		getSummaryFn: func(ctx context.Context, eid string, month, year int) (attendance.Summary, error) {
			assert.Equal(t, target, eid)
			if month == 13 {
				return attendance.Summary{}, attendanceerrors.ErrInvalidPeriod
			}
			return attendance.Summary{Year: year, Month: month, WorkingDays: 22, PayableDays: 20, Reconciled: true}, nil
		},
	}
	h := attendance.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "employeeId", Value: target}}
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances/summary/"+target+"?month=3&year=2026", nil)
	h.GetSummary(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"payable_days":20`)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Params = gin.Params{{Key: "employeeId", Value: target}}
	c2.Request = httptest.NewRequest(http.MethodGet, "/attendances/summary/"+target+"?month=13&year=2026", nil)
	h.GetSummary(c2)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}
