package middleware

import (
	"dayflow-hris/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Request ID, biasanya sudah di-set oleh RequestID()
		rid := c.GetString("request_id")
		if rid == "" {
			rid = c.GetHeader(HeaderRequestID)
		}
		if rid == "" {
			rid = uuid.New().String()
			c.Header(HeaderRequestID, rid)
		}

		// 2. Actor (diisi AuthMiddleware, kosong untuk route publik)
		uid := c.GetString(string(ContextEmployeeID))
		role := c.GetString("role")

		// 3. Scoped logger yang sudah ditempeli metadata
		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("employee_id", uid),
			zap.String("role", role),
		)

		// 4. Propagasi ke standard context supaya service tidak perlu tahu Gin
		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithEmployeeID(ctx, uid)
		ctx = contextutil.WithRole(ctx, role)
		ctx = contextutil.WithLogger(ctx, reqLogger)

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
