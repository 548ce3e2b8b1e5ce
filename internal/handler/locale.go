package handler

import (
	"net/http"
	"strings"

	"github.com/ewillweb/internal/locale"
	"github.com/gin-gonic/gin"
)

const (
	localeContextKey = "__request_locale"
	langCookie       = "ew_lang"
	langCookieMaxAge = 365 * 24 * 60 * 60
)

// langSource 记录语言来自哪里，query 来源需要回写 cookie。
type langSource int

const (
	langDefault langSource = iota
	langQuery
	langCookieValue
	langHeader
)

// LocaleMiddleware picks the message language once per request and advertises it.
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		pref, source := negotiate(c)
		if source == langQuery {
			rememberLanguage(c, pref.Language)
		}
		c.Set(localeContextKey, pref)
		c.Header("Content-Language", pref.ContentLang)
		if source == langQuery || source == langCookieValue {
			addVary(c, "Accept-Language", "Cookie")
		} else {
			addVary(c, "Accept-Language")
		}
		c.Next()
	}
}

// negotiate: ?lang= > ew_lang cookie > Accept-Language > 中文。
func negotiate(c *gin.Context) (locale.Preference, langSource) {
	if lang := locale.NormalizeLanguage(c.Query("lang")); lang != "" {
		return locale.PreferenceForLanguage(lang), langQuery
	}
	if raw, err := c.Cookie(langCookie); err == nil {
		if lang := locale.NormalizeLanguage(raw); lang != "" {
			return locale.PreferenceForLanguage(lang), langCookieValue
		}
	}
	if lang := locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language")); lang != "" {
		return locale.PreferenceForLanguage(lang), langHeader
	}
	return locale.PreferenceForLanguage(locale.LanguageChinese), langDefault
}

func requestLocale(c *gin.Context) locale.Preference {
	if v, ok := c.Get(localeContextKey); ok {
		if pref, ok := v.(locale.Preference); ok {
			return pref
		}
	}
	pref, _ := negotiate(c)
	return pref
}

func rememberLanguage(c *gin.Context, lang string) {
	https := c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     langCookie,
		Value:    lang,
		Path:     "/",
		MaxAge:   langCookieMaxAge,
		HttpOnly: true,
		Secure:   https,
		SameSite: http.SameSiteLaxMode,
	})
}

// msg 返回当前请求语言下的固定文案。
func msg(c *gin.Context, key string) string {
	return locale.T(requestLocale(c).Language, key)
}

func addVary(c *gin.Context, names ...string) {
	current := c.Writer.Header().Get("Vary")
	for _, name := range names {
		present := false
		for _, token := range strings.Split(current, ",") {
			if strings.EqualFold(strings.TrimSpace(token), name) {
				present = true
				break
			}
		}
		if present {
			continue
		}
		if current == "" {
			current = name
		} else {
			current += ", " + name
		}
	}
	if current != "" {
		c.Header("Vary", current)
	}
}
