package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type bodyWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the cached response for a repeated
// X-Idempotency-Key so retried notify/event requests do not fan out twice.
// Responses are cached in redis for 24h, scoped by API key.
func IdempotencyMiddleware(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempotencyKey := c.GetHeader("X-Idempotency-Key")
		if idempotencyKey == "" || rdb == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		apiKey := c.GetHeader("X-API-Key")
		redisKey := fmt.Sprintf("idempotency:%s:%s", apiKey, idempotencyKey)

		if resp, err := rdb.Get(ctx, redisKey).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(resp))
			c.Abort()
			return
		}

		bw := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		c.Next()

		if c.Writer.Status() < 400 {
			rdb.Set(ctx, redisKey, bw.body, 24*time.Hour)
		}
	}
}
