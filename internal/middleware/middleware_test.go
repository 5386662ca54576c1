package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dayflow-hris/internal/domain"
	"dayflow-hris/internal/middleware"
	"dayflow-hris/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return signed
}

type fakeRBAC struct {
	allowed bool
	err     error
	got     domain.EnforceRequest
}

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	f.got = req
	return f.allowed, f.err
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", testSecret)

	router := gin.New()
	router.GET("/me", middleware.AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"employee_id": c.GetString("employee_id"), "role": c.GetString("role")})
	})

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"employee_id": "emp-1", "role": domain.RoleAdmin, "exp": time.Now().Add(time.Hour).Unix()})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"employee_id":"emp-1"`)
		assert.Contains(t, w.Body.String(), `"role":"Admin"`)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"employee_id": "emp-1", "exp": time.Now().Add(-time.Hour).Unix()})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("token from cookie without employee id", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"role": domain.RoleEmployee})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Employee ID not found")
	})
}

func withIdentity(employeeID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("employee_id", employeeID)
		c.Set("role", role)
		c.Next()
	}
}

func TestRBACAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("allowed", func(t *testing.T) {
		svc := &fakeRBAC{allowed: true}
		router := gin.New()
		router.GET("/x", withIdentity("emp-1", domain.RoleAdmin), middleware.RBACAuthorize(svc, "payroll", "generate"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, domain.EnforceRequest{Role: domain.RoleAdmin, Resource: "payroll", Action: "generate"}, svc.got)
	})

	t.Run("forbidden", func(t *testing.T) {
		router := gin.New()
		router.GET("/x", withIdentity("emp-1", domain.RoleEmployee), middleware.RBACAuthorize(&fakeRBAC{}, "payroll", "generate"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "payroll:generate")
	})

	t.Run("enforcer error", func(t *testing.T) {
		router := gin.New()
		router.GET("/x", withIdentity("emp-1", domain.RoleAdmin), middleware.RBACAuthorize(&fakeRBAC{err: errors.New("boom")}, "payroll", "read"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("missing identity", func(t *testing.T) {
		router := gin.New()
		router.GET("/x", middleware.RBACAuthorize(&fakeRBAC{allowed: true}, "payroll", "read"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSelfOrAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeRBAC{allowed: false}
	router := gin.New()
	router.GET("/payslips/:employeeId",
		withIdentity("emp-1", domain.RoleEmployee),
		middleware.SelfOrAuthorize(svc, "employeeId", "payroll", "read"),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payslips/emp-1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payslips/emp-2", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimitByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/x", withIdentity("emp-1", domain.RoleEmployee), middleware.RateLimitByUser(0.001, 1), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/x", middleware.RateLimitByIP(0.001, 1), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	fromIP := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":40000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, fromIP("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, fromIP("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, fromIP("10.0.0.2"), "buckets are per IP")
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/x", middleware.RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, contextutil.GetRequestID(c.Request.Context()))
	})

	tests := []struct {
		name     string
		header   string
		keepsOwn bool
	}{
		{"caller id is kept", "req-abc-123", true},
		{"missing id is generated", "", false},
		{"too long id is replaced", strings.Repeat("a", 65), false},
		{"id with spaces is replaced", "req 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set(middleware.HeaderRequestID, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get(middleware.HeaderRequestID)
			assert.Equal(t, got, w.Body.String())
			if tt.keepsOwn {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
				assert.Len(t, got, 36)
			}
		})
	}
}

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cacheKey := "idemp:/leaves:emp-1:key-1"
	lockKey := cacheKey + ":lock"

	newRouter := func(t *testing.T, handlerCalls *int) (*gin.Engine, redismock.ClientMock) {
		rdb, mock := redismock.NewClientMock()
		router := gin.New()
		router.POST("/leaves", withIdentity("emp-1", domain.RoleEmployee), middleware.Idempotency(rdb), func(c *gin.Context) {
			*handlerCalls++
			c.Status(http.StatusCreated)
		})
		return router, mock
	}

	t.Run("first request takes the lock", func(t *testing.T) {
		calls := 0
		router, mock := newRouter(t, &calls)
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
		mock.ExpectDel(lockKey).SetVal(1)

		req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replays cached response", func(t *testing.T) {
		calls := 0
		router, mock := newRouter(t, &calls)
		mock.ExpectGet(cacheKey).SetVal(`{"status":201,"data":{"id":"leave-1"}}`)

		req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 0, calls)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.Contains(t, w.Body.String(), `"id":"leave-1"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects concurrent duplicate", func(t *testing.T) {
		calls := 0
		router, mock := newRouter(t, &calls)
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

		req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, calls)
	})

	t.Run("no key passes through", func(t *testing.T) {
		calls := 0
		router, mock := newRouter(t, &calls)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
