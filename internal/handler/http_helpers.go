package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/ewillweb/internal/locale"
	"github.com/gin-gonic/gin"
)

// APIVersion 出现在每个响应的 meta.version 中。
const APIVersion = "1.0.0"

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUnauthorized     = "UNAUTHORIZED"
)

const (
	cacheListing = "s-maxage=300, stale-while-revalidate=60"
	cacheDetail  = "s-maxage=600, stale-while-revalidate=120"
	cacheContent = "s-maxage=300, stale-while-revalidate"
)

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type responseMeta struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Cached    *bool  `json:"cached,omitempty"`
}

type envelope struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data"`
	Error   *apiError    `json:"error,omitempty"`
	Meta    responseMeta `json:"meta"`
}

func newMeta() responseMeta {
	return responseMeta{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:   APIVersion,
	}
}

func respondOK(c *gin.Context, status int, data interface{}, cached bool) {
	meta := newMeta()
	meta.Cached = &cached
	c.JSON(status, envelope{Success: true, Data: data, Meta: meta})
}

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, envelope{
		Success: false,
		Data:    nil,
		Error:   &apiError{Code: code, Message: message, Details: details},
		Meta:    newMeta(),
	})
}

func abortError(c *gin.Context, status int, code, message string) {
	respondError(c, status, code, message, nil)
	c.Abort()
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, msg(c, locale.MsgInvalidJSON), nil)
		return false
	}
	return true
}

// clientIP 只取 x-forwarded-for 的第一段，没有时返回空。
func clientIP(c *gin.Context) string {
	forwarded := c.GetHeader("X-Forwarded-For")
	if forwarded == "" {
		return ""
	}
	return strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
}

func setCacheControl(c *gin.Context, value string) {
	c.Header("Cache-Control", value)
}
