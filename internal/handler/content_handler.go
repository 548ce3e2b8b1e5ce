package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/ewillweb/internal/locale"
	"github.com/ewillweb/internal/service"
	"github.com/gin-gonic/gin"
)

// GetPage 返回单页 JSON，原样保留 header/footer 等布局字段。
func (a *API) GetPage(c *gin.Context) {
	page, cached, err := a.content.Page(c.Request.Context(), c.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSlug):
			respondError(c, http.StatusBadRequest, CodeValidation, msg(c, locale.MsgInvalidSlug), nil)
		case errors.Is(err, service.ErrPageNotFound):
			respondError(c, http.StatusNotFound, CodeNotFound, msg(c, locale.MsgPageNotFound), nil)
		default:
			a.internalError(c, "load page failed", err)
		}
		return
	}
	setCacheControl(c, cacheContent)
	respondOK(c, http.StatusOK, page, cached)
}

func (a *API) ListPages(c *gin.Context) {
	slugs, cached, err := a.content.PageSlugs(c.Request.Context())
	if err != nil {
		a.manifestError(c, "list pages failed", err)
		return
	}
	setCacheControl(c, cacheContent)
	respondOK(c, http.StatusOK, slugs, cached)
}

// ListPagesByType 按产品线分类列出页面 slug。
func (a *API) ListPagesByType(c *gin.Context) {
	slugs, cached, err := a.content.PagesByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidPageType) {
			respondError(c, http.StatusBadRequest, CodeValidation, msg(c, locale.MsgInvalidPageType),
				gin.H{"allowed": service.PageTypes})
			return
		}
		a.manifestError(c, "list pages by type failed", err)
		return
	}
	setCacheControl(c, cacheContent)
	respondOK(c, http.StatusOK, slugs, cached)
}

func (a *API) GetAsset(c *gin.Context) {
	asset, err := a.content.Asset(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			respondError(c, http.StatusNotFound, CodeNotFound, msg(c, locale.MsgAssetNotFound), nil)
			return
		}
		a.manifestError(c, "load asset failed", err)
		return
	}
	setCacheControl(c, cacheContent)
	respondOK(c, http.StatusOK, asset, false)
}

func (a *API) AssetManifest(c *gin.Context) {
	manifest, cached, err := a.content.AssetManifest(c.Request.Context())
	if err != nil {
		a.manifestError(c, "load asset manifest failed", err)
		return
	}
	setCacheControl(c, cacheContent)
	respondOK(c, http.StatusOK, manifest, cached)
}

func (a *API) ContentManifest(c *gin.Context) {
	manifest, cached, err := a.content.ContentManifest(c.Request.Context())
	if err != nil {
		a.manifestError(c, "load content manifest failed", err)
		return
	}
	setCacheControl(c, cacheContent)
	respondOK(c, http.StatusOK, manifest, cached)
}

// manifestError 区分“尚未构建”与其他读取失败。
func (a *API) manifestError(c *gin.Context, message string, err error) {
	if errors.Is(err, os.ErrNotExist) {
		a.log.Warn(message, "error", err)
		respondError(c, http.StatusNotFound, CodeNotFound, msg(c, locale.MsgManifestMissing), nil)
		return
	}
	a.internalError(c, message, err)
}
