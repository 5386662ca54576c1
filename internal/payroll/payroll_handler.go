package payroll

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dayflow-hris/internal/middleware"
	"dayflow-hris/internal/shared/apperror"
	"dayflow-hris/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("payroll.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("payroll request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetPayslip(c *gin.Context) {
	year, month := periodFromQuery(c)

	resp, err := h.service.ComputePayslip(c.Request.Context(), c.Param("employeeId"), year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetMyPayslip(c *gin.Context) {
	year, month := periodFromQuery(c)
	employeeID := c.GetString(string(middleware.ContextEmployeeID))

	resp, err := h.service.ComputePayslip(c.Request.Context(), employeeID, year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadPayslip(c *gin.Context) {
	year, month := periodFromQuery(c)

	slip, err := h.service.ComputePayslip(c.Request.Context(), c.Param("employeeId"), year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	pdf, err := RenderPayslipPDF(slip)
	if err != nil {
		h.logger.Error("render payslip pdf failed", zap.Error(err))
		h.writeServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("payslip-%s-%04d-%02d.pdf", slip.Employee.LoginID, year, month)
	response.Attachment(c, filename, "application/pdf", pdf)
}

func (h *Handler) Generate(c *gin.Context) {
	var req GeneratePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.GenerateMonthlyPayroll(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	middleware.RememberResponse(c, h.rdb, http.StatusOK, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetRuns(c *gin.Context) {
	year, month := periodFromQuery(c)

	resp, err := h.service.GetRuns(c.Request.Context(), year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetSummary(c *gin.Context) {
	resp, err := h.service.GetPayrollSummary(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAllSalaries(c *gin.Context) {
	resp, err := h.service.GetAllSalaries(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// periodFromQuery reads ?year=&month=, defaulting to the current month.
func periodFromQuery(c *gin.Context) (int, int) {
	now := time.Now().UTC()
	year := now.Year()
	month := int(now.Month())
	if v := c.Query("year"); v != "" {
		year, _ = strconv.Atoi(v)
	}
	if v := c.Query("month"); v != "" {
		month, _ = strconv.Atoi(v)
	}
	return year, month
}
