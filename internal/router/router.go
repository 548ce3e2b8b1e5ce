package router

import (
	"strings"
	"time"

	"github.com/ewillweb/internal/config"
	"github.com/ewillweb/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "ewillweb_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg config.AppConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(handler.RequestID())
	r.Use(api.RequestLogger())
	r.Use(api.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(api.LocaleMiddleware())

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.Environment == "production",
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.NoRoute(api.NotFound)
	r.NoMethod(api.MethodNotAllowed)

	public := r.Group("/api")
	{
		public.GET("/health", api.Health)

		public.GET("/events", api.ListEvents)
		public.GET("/events/:id", api.GetEvent)

		public.POST("/contact", api.SubmitContact)
		public.POST("/contact/submit", api.SubmitContact)

		public.GET("/pages", api.ListPages)
		public.GET("/pages/type/:type", api.ListPagesByType)
		public.GET("/pages/:slug", api.GetPage)
		public.GET("/assets/:id", api.GetAsset)
		public.GET("/manifests/assets", api.AssetManifest)
		public.GET("/manifests/content", api.ContentManifest)
	}

	// 后台管理路由
	admin := r.Group("/admin/api")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		auth := admin.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/me", api.Me)

			auth.POST("/events", api.CreateEvent)
			auth.PUT("/events/:id", api.UpdateEvent)
			auth.DELETE("/events/:id", api.DeleteEvent)

			auth.GET("/contact/submissions", api.ListSubmissions)
			auth.POST("/cache/invalidate", api.InvalidateCache)
			auth.GET("/notify/stats", api.NotifyStats)
		}
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOriginFunc:  originMatcher(origins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Language"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

type wildcardOrigin struct {
	scheme string
	suffix string
}

// originMatcher 支持精确匹配和 "https://*.vercel.app" 形式的子域通配。
func originMatcher(allowed []string) func(string) bool {
	exact := make(map[string]struct{}, len(allowed))
	var wildcards []wildcardOrigin
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if scheme, host, ok := strings.Cut(origin, "://*."); ok {
			wildcards = append(wildcards, wildcardOrigin{scheme: scheme + "://", suffix: "." + host})
			continue
		}
		if origin != "" {
			exact[origin] = struct{}{}
		}
	}
	return func(origin string) bool {
		if _, ok := exact[origin]; ok {
			return true
		}
		for _, w := range wildcards {
			host, ok := strings.CutPrefix(origin, w.scheme)
			if ok && len(host) > len(w.suffix) && strings.HasSuffix(host, w.suffix) {
				return true
			}
		}
		return false
	}
}
