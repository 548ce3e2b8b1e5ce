package handler

import (
	"errors"
	"net/http"

	"github.com/ewillweb/internal/locale"
	"github.com/ewillweb/internal/service"
	"github.com/gin-gonic/gin"
)

// ListEvents 返回分页后的活动列表，非法的过滤条件直接忽略。
func (a *API) ListEvents(c *gin.Context) {
	params := service.ListParamsFromQuery(c.Request.URL.Query())
	list, err := a.events.List(c.Request.Context(), params)
	if err != nil {
		a.internalError(c, "list events failed", err)
		return
	}
	setCacheControl(c, cacheListing)
	respondOK(c, http.StatusOK, list, false)
}

// GetEvent 按 event_id 返回活动详情。
func (a *API) GetEvent(c *gin.Context) {
	detail, err := a.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			respondError(c, http.StatusNotFound, CodeNotFound, msg(c, locale.MsgEventNotFound), nil)
			return
		}
		a.internalError(c, "get event failed", err)
		return
	}
	setCacheControl(c, cacheDetail)
	respondOK(c, http.StatusOK, detail, false)
}

func (a *API) CreateEvent(c *gin.Context) {
	var input service.EventInput
	if !bindJSON(c, &input) {
		return
	}
	detail, err := a.events.Create(c.Request.Context(), input)
	if err != nil {
		a.eventWriteError(c, err)
		return
	}
	a.log.Info("event created", "event_id", detail.ID)
	respondOK(c, http.StatusCreated, detail, false)
}

func (a *API) UpdateEvent(c *gin.Context) {
	var input service.EventInput
	if !bindJSON(c, &input) {
		return
	}
	detail, err := a.events.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		a.eventWriteError(c, err)
		return
	}
	respondOK(c, http.StatusOK, detail, false)
}

func (a *API) DeleteEvent(c *gin.Context) {
	id := c.Param("id")
	if err := a.events.Delete(c.Request.Context(), id); err != nil {
		a.eventWriteError(c, err)
		return
	}
	a.log.Info("event deleted", "event_id", id)
	respondOK(c, http.StatusOK, gin.H{"id": id, "deleted": true}, false)
}

func (a *API) eventWriteError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr)
	case errors.Is(err, service.ErrEventNotFound):
		respondError(c, http.StatusNotFound, CodeNotFound, msg(c, locale.MsgEventNotFound), nil)
	case errors.Is(err, service.ErrStoreReadOnly):
		respondError(c, http.StatusMethodNotAllowed, CodeMethodNotAllowed, msg(c, locale.MsgReadOnly), nil)
	default:
		a.internalError(c, "write event failed", err)
	}
}

func respondValidation(c *gin.Context, verr *service.ValidationError) {
	respondError(c, http.StatusBadRequest, CodeValidation, msg(c, locale.MsgValidationFailed),
		gin.H{"errors": verr.Errors})
}

// internalError 记录原始错误，对外只返回通用文案。
func (a *API) internalError(c *gin.Context, message string, err error) {
	a.log.Error(message, "path", c.Request.URL.Path, "error", err)
	respondError(c, http.StatusInternalServerError, CodeInternal, msg(c, locale.MsgInternal), nil)
}
