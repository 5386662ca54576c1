package attendance

import (
	"net/http"
	"strconv"
	"time"

	"dayflow-hris/internal/middleware"
	"dayflow-hris/internal/shared/apperror"
	"dayflow-hris/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) CheckIn(c *gin.Context) {
	employeeID := c.GetString(string(middleware.ContextEmployeeID))

	resp, err := h.service.CheckIn(c.Request.Context(), employeeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) CheckOut(c *gin.Context) {
	employeeID := c.GetString(string(middleware.ContextEmployeeID))

	resp, err := h.service.CheckOut(c.Request.Context(), employeeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetToday(c *gin.Context) {
	employeeID := c.GetString(string(middleware.ContextEmployeeID))

	resp, err := h.service.GetToday(c.Request.Context(), employeeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetHistory(c *gin.Context) {
	employeeID := c.GetString(string(middleware.ContextEmployeeID))
	month, year := periodFromQuery(c)

	resp, err := h.service.GetHistory(c.Request.Context(), employeeID, month, year)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "31"))
	if pageSize < 1 {
		pageSize = 31
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetSummary(c *gin.Context) {
	month, year := periodFromQuery(c)

	resp, err := h.service.GetSummary(c.Request.Context(), c.Param("employeeId"), month, year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByDate(c *gin.Context) {
	resp, err := h.service.GetByDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetTeamOverview(c *gin.Context) {
	resp, err := h.service.GetTeamOverview(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// periodFromQuery reads ?month=&year=, defaulting to the current month.
// Unparseable values become 0 and are rejected by the service.
func periodFromQuery(c *gin.Context) (int, int) {
	now := time.Now().UTC()
	month := int(now.Month())
	year := now.Year()
	if v := c.Query("month"); v != "" {
		month, _ = strconv.Atoi(v)
	}
	if v := c.Query("year"); v != "" {
		year, _ = strconv.Atoi(v)
	}
	return month, year
}
