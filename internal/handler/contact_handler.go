package handler

import (
	"errors"
	"net/http"

	"github.com/ewillweb/internal/service"
	"github.com/gin-gonic/gin"
)

// SubmitContact 处理联系表单：校验、保存并排队发送通知邮件。
func (a *API) SubmitContact(c *gin.Context) {
	var form service.ContactForm
	if !bindJSON(c, &form) {
		return
	}
	receipt, err := a.contact.Submit(c.Request.Context(), form, clientIP(c))
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondValidation(c, verr)
			return
		}
		a.internalError(c, "contact submit failed", err)
		return
	}
	respondOK(c, http.StatusCreated, receipt, false)
}

// ListSubmissions 供后台分页查看表单记录。
func (a *API) ListSubmissions(c *gin.Context) {
	page := service.ListParamsFromQuery(c.Request.URL.Query())
	list, err := a.contact.ListSubmissions(c.Request.Context(), page.Page, page.PageSize)
	if err != nil {
		a.internalError(c, "list submissions failed", err)
		return
	}
	respondOK(c, http.StatusOK, list, false)
}
