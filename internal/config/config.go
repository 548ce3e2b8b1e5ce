package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 内容数据源
const (
	DataSourceDB   = "db"
	DataSourceJSON = "json"
	DataSourceAPI  = "api"
	DataSourceMock = "mock"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	Environment       string
	DatabaseURL       string
	SessionSecret     string
	GinMode           string
	LogMode           string
	PublicDir         string
	DataSource        string
	APIBaseURL        string
	APITimeout        time.Duration
	ContentCacheTTL   time.Duration
	RedisAddr         string
	CORSOrigins       []string
	ResendAPIKey      string
	ContactEmail      string
	FromEmail         string
	NotifyWorkers     int
	NotifyQueueSize   int
	SuperRootUserName string
	SuperRootPassword string
}

// MockMode 在未配置 DATABASE_URL 时为 true，事件与联系表单使用内置样例数据。
func (c AppConfig) MockMode() bool {
	return c.DatabaseURL == ""
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("NODE_ENV", "development")
	v.SetDefault("SESSION_SECRET", "ewillweb-dev-secret")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("PUBLIC_DIR", "public")
	v.SetDefault("API_TIMEOUT", 5000)
	v.SetDefault("CONTENT_CACHE_TTL", "5m")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:4321,https://*.vercel.app")
	v.SetDefault("CONTACT_EMAIL", "sales@ewill.com.tw")
	v.SetDefault("FROM_EMAIL", "noreply@ewill.com.tw")
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 64)

	get := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	port := get("PORT")
	listenAddr := get("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	apiBaseURL := get("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = get("API_URL")
	}
	if apiBaseURL == "" {
		apiBaseURL = "/api"
	}

	databaseURL := get("DATABASE_URL")

	cacheTTL, err := time.ParseDuration(get("CONTENT_CACHE_TTL"))
	if err != nil || cacheTTL < 0 {
		cacheTTL = 5 * time.Minute
	}

	apiTimeout := time.Duration(v.GetInt("API_TIMEOUT")) * time.Millisecond
	if apiTimeout <= 0 {
		apiTimeout = 5 * time.Second
	}

	workers := v.GetInt("NOTIFY_WORKERS")
	if workers <= 0 {
		workers = 1
	}
	queueSize := v.GetInt("NOTIFY_QUEUE_SIZE")
	if queueSize <= 0 {
		queueSize = 64
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		Environment:       get("NODE_ENV"),
		DatabaseURL:       databaseURL,
		SessionSecret:     get("SESSION_SECRET"),
		GinMode:           get("GIN_MODE"),
		LogMode:           get("LOG_MODE"),
		PublicDir:         get("PUBLIC_DIR"),
		DataSource:        resolveDataSource(get("DATA_SOURCE"), v.GetBool("USE_API"), databaseURL),
		APIBaseURL:        strings.TrimRight(apiBaseURL, "/"),
		APITimeout:        apiTimeout,
		ContentCacheTTL:   cacheTTL,
		RedisAddr:         get("REDIS_ADDR"),
		CORSOrigins:       splitList(get("CORS_ALLOWED_ORIGINS")),
		ResendAPIKey:      get("RESEND_API_KEY"),
		ContactEmail:      get("CONTACT_EMAIL"),
		FromEmail:         get("FROM_EMAIL"),
		NotifyWorkers:     workers,
		NotifyQueueSize:   queueSize,
		SuperRootUserName: get("SUPER_ROOT_USER_NAME"),
		SuperRootPassword: get("SUPER_ROOT_PASSWORD"),
	}
}

// resolveDataSource 选择页面内容的来源：显式 DATA_SOURCE 优先，其次 USE_API，最后按是否配置数据库决定。
func resolveDataSource(explicit string, useAPI bool, databaseURL string) string {
	switch strings.ToLower(explicit) {
	case DataSourceDB, DataSourceJSON, DataSourceAPI, DataSourceMock:
		return strings.ToLower(explicit)
	}
	if useAPI {
		return DataSourceAPI
	}
	if databaseURL != "" {
		return DataSourceDB
	}
	return DataSourceJSON
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
