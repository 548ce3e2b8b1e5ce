package handler

import (
	"net/http"

	"github.com/ewillweb/internal/locale"

	"github.com/gin-gonic/gin"
)

// Health 报告运行环境与数据来源，供部署探活。
func (a *API) Health(c *gin.Context) {
	database := "connected"
	if a.mockMode {
		database = "mock"
	}
	contentSource := ""
	if a.content != nil {
		contentSource = a.content.ProviderName()
	}
	respondOK(c, http.StatusOK, gin.H{
		"status":         "ok",
		"timestamp":      a.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		"version":        APIVersion,
		"environment":    a.environment,
		"database":       database,
		"content_source": contentSource,
	}, false)
}

// NotFound 用于未注册路由。
func (a *API) NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, CodeNotFound, msg(c, locale.MsgNotFound), nil)
}

// MethodNotAllowed 用于路径存在但方法不匹配的请求。
func (a *API) MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, CodeMethodNotAllowed, msg(c, locale.MsgMethodNotAllowed), nil)
}
