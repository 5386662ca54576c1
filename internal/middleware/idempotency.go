package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dayflow-hris/internal/shared/apperror"
	"dayflow-hris/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyCacheKey = "idempotency_cache_key"
	idempotencyLockKey  = "idempotency_lock_key"
	idempotencyTTL      = 24 * time.Hour
	idempotencyLockTTL  = 30 * time.Second
)

type cachedResponse struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Idempotency memutar ulang response sukses untuk POST dengan Idempotency-Key
// yang sama, dan menolak request kembar yang masih diproses.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	log := zap.L().Named("middleware.idempotency")
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		employeeID := c.GetString(string(ContextEmployeeID))
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), employeeID, idempKey)
		lockKey := cacheKey + ":lock"
		ctx := c.Request.Context()

		// 1. Cek cache
		val, err := rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached cachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				log.Debug("idempotent replay", zap.String("key", cacheKey))
				c.Header("Idempotent-Replayed", "true")
				response.Success(c, cached.Status, cached.Data, nil)
				c.Abort()
				return
			}
		}

		// 2. Atomic lock; expiry pendek supaya lock hilang sendiri kalau proses crash
		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock unavailable, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			abortWith(c, apperror.ErrRequestInFlight)
			return
		}

		c.Set(idempotencyCacheKey, cacheKey)
		c.Set(idempotencyLockKey, lockKey)

		c.Next()

		_ = rdb.Del(ctx, lockKey).Err()
	}
}

// RememberResponse menyimpan payload sukses agar bisa diputar ulang oleh Idempotency.
// No-op kalau request tidak membawa Idempotency-Key.
func RememberResponse(c *gin.Context, rdb *redis.Client, status int, data any) {
	if rdb == nil {
		return
	}
	cacheKey := c.GetString(idempotencyCacheKey)
	if cacheKey == "" {
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	payload, err := json.Marshal(cachedResponse{Status: status, Data: raw})
	if err != nil {
		return
	}
	if err := rdb.Set(c.Request.Context(), cacheKey, payload, idempotencyTTL).Err(); err != nil {
		zap.L().Named("middleware.idempotency").Warn("store idempotent response failed", zap.Error(err))
	}
}
