package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ewillweb/internal/db"
	"github.com/ewillweb/internal/locale"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserID   = "user_id"
	sessionUsername = "username"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login 校验账号密码并写入会话。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, msg(c, locale.MsgInvalidJSON), nil)
		return
	}

	admin, err := a.auth.Authenticate(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, db.ErrInvalidCredentials) {
			a.log.Warn("admin login rejected", "username", req.Username, "ip", clientIP(c))
			respondError(c, http.StatusUnauthorized, CodeUnauthorized, msg(c, locale.MsgInvalidLogin), nil)
			return
		}
		a.internalError(c, "admin login failed", err)
		return
	}

	// 设置会话
	session := sessions.Default(c)
	session.Set(sessionUserID, admin.ID)
	session.Set(sessionUsername, admin.Username)
	if err := session.Save(); err != nil {
		a.log.Error("save session failed", "error", err)
		respondError(c, http.StatusInternalServerError, CodeInternal, msg(c, locale.MsgSessionSaveFailed), nil)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"username": admin.Username}, false)
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.log.Warn("clear session failed", "error", err)
	}
	respondOK(c, http.StatusOK, gin.H{"message": msg(c, locale.MsgLoggedOut)}, false)
}

// AuthRequired 未登录时返回 401 而不是跳转。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserID) == nil {
			abortError(c, http.StatusUnauthorized, CodeUnauthorized, msg(c, locale.MsgUnauthorized))
			return
		}
		c.Next()
	}
}

// Me 返回当前登录账号。
func (a *API) Me(c *gin.Context) {
	session := sessions.Default(c)
	respondOK(c, http.StatusOK, gin.H{"username": session.Get(sessionUsername)}, false)
}

// InvalidateCache 清空页面与清单缓存。
func (a *API) InvalidateCache(c *gin.Context) {
	if err := a.content.Invalidate(c.Request.Context()); err != nil {
		a.internalError(c, "invalidate content cache failed", err)
		return
	}
	a.log.Info("content cache invalidated")
	respondOK(c, http.StatusOK, gin.H{"message": msg(c, locale.MsgCacheInvalidated)}, false)
}

// NotifyStats 返回邮件通知队列的计数。
func (a *API) NotifyStats(c *gin.Context) {
	if a.queue == nil {
		respondOK(c, http.StatusOK, nil, false)
		return
	}
	respondOK(c, http.StatusOK, a.queue.Stats(), false)
}
