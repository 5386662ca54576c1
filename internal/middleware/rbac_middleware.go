package middleware

import (
	"net/http"

	"dayflow-hris/internal/domain"
	"dayflow-hris/internal/shared/apperror"
	"dayflow-hris/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type ContextKey string

const (
	ContextEmployeeID ContextKey = "employee_id"
	ContextRole       ContextKey = "role"
)

// RBACService adalah interface lokal.
// Apapun package yang punya method Enforce(domain.EnforceRequest) bisa masuk ke sini.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, service, resource, action) {
			return
		}
		c.Next()
	}
}

// SelfOrAuthorize lolos tanpa cek policy ketika :param sama dengan employee
// yang sedang login; selain itu perlu resource:action.
func SelfOrAuthorize(service RBACService, param, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if employeeID := c.GetString(string(ContextEmployeeID)); employeeID != "" && employeeID == c.Param(param) {
			c.Next()
			return
		}
		if !authorize(c, service, resource, action) {
			return
		}
		c.Next()
	}
}

func authorize(c *gin.Context, service RBACService, resource, action string) bool {
	if c.GetString(string(ContextEmployeeID)) == "" {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing auth context", nil)
		c.Abort()
		return false
	}

	allowed, err := service.Enforce(domain.EnforceRequest{
		Role:     c.GetString(string(ContextRole)),
		Resource: resource,
		Action:   action,
	})
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		c.Abort()
		return false
	}

	if !allowed {
		response.Error(c, http.StatusForbidden, apperror.CodeForbidden,
			"You do not have permission to access this resource",
			gin.H{"required": resource + ":" + action},
		)
		c.Abort()
		return false
	}
	return true
}
