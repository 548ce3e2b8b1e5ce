package handler

import (
	"net/http"
	"time"

	"github.com/ewillweb/internal/locale"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID 透传或生成请求 ID。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger 用 zap 记录每个请求。
func (a *API) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		}
		switch {
		case status >= http.StatusInternalServerError:
			a.log.Error("request", kv...)
		case status >= http.StatusBadRequest:
			a.log.Warn("request", kv...)
		default:
			a.log.Debug("request", kv...)
		}
	}
}

// Recovery 把 panic 转成 500 INTERNAL_ERROR。
func (a *API) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		a.log.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		abortError(c, http.StatusInternalServerError, CodeInternal, msg(c, locale.MsgInternal))
	})
}
