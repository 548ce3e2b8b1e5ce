package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ewillweb/internal/cache"
	"github.com/ewillweb/internal/content"
	"github.com/ewillweb/internal/logger"
)

const (
	PageTypeSecurity       = "security"
	PageTypeInfrastructure = "infrastructure"
	PageTypeManufacturing  = "manufacturing"
	PageTypeEvent          = "event"
	PageTypeGeneral        = "general"
)

// PageTypes 是 /api/pages/type/:type 允许的取值。
var PageTypes = []string{PageTypeSecurity, PageTypeInfrastructure, PageTypeManufacturing, PageTypeEvent, PageTypeGeneral}

var pageTypeSlugs = map[string][]string{
	PageTypeSecurity: {
		"acunetix", "array", "bitdefender", "deep_instinct", "fortinet",
		"ist", "logsec", "palo_alto", "security_scorecard", "sonarqube",
		"tenable_nessus", "vicarius_vrx",
	},
	PageTypeInfrastructure: {"proxmox_ve", "ubuntu", "vmware"},
	PageTypeManufacturing: {
		"ai_agent", "ai_forecasting", "aps", "cms_568", "data_middleware",
		"jennifer_apm", "mes", "scm", "wms", "smartmanufacturing_ai",
	},
}

var (
	// ErrInvalidSlug 表示 slug 不符合 ^[a-z0-9_]+$ 或超过 100 字符。
	ErrInvalidSlug     = errors.New("invalid page slug")
	ErrInvalidPageType = errors.New("invalid page type")

	pageSlugPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

const (
	cacheKeyAssetManifest   = "manifest:assets"
	cacheKeyContentManifest = "manifest:content"
	cacheKeyPagePrefix      = "page:"
)

// ValidPageSlug reports whether slug can be requested through the pages API.
func ValidPageSlug(slug string) bool {
	return len(slug) <= 100 && pageSlugPattern.MatchString(slug)
}

// IsValidPageType reports whether value is one of PageTypes.
func IsValidPageType(value string) bool {
	for _, t := range PageTypes {
		if t == value {
			return true
		}
	}
	return false
}

// ContentService 在 ContentProvider 之上加一层显式缓存。
// 返回值中的 bool 表示是否命中缓存，对应响应 meta.cached。
type ContentService struct {
	provider ContentProvider
	cache    cache.Cache
	ttl      time.Duration
	log      *logger.Logger
}

// NewContentService 创建服务。ttl <= 0 时不缓存。
func NewContentService(provider ContentProvider, c cache.Cache, ttl time.Duration, log *logger.Logger) *ContentService {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ContentService{provider: provider, cache: c, ttl: ttl, log: log}
}

// ProviderName 返回当前数据源名称。
func (s *ContentService) ProviderName() string {
	return s.provider.Name()
}

// Page 返回页面 JSON。
func (s *ContentService) Page(ctx context.Context, slug string) (json.RawMessage, bool, error) {
	if !ValidPageSlug(slug) {
		return nil, false, ErrInvalidSlug
	}
	key := cacheKeyPagePrefix + slug
	if data, ok := s.cached(ctx, key); ok {
		return json.RawMessage(data), true, nil
	}
	data, err := s.provider.Page(ctx, slug)
	if err != nil {
		return nil, false, err
	}
	s.store(ctx, key, data)
	return data, false, nil
}

// AssetManifest 返回资源清单。
func (s *ContentService) AssetManifest(ctx context.Context) (*content.AssetManifest, bool, error) {
	var manifest content.AssetManifest
	if s.cachedJSON(ctx, cacheKeyAssetManifest, &manifest) {
		return &manifest, true, nil
	}
	fresh, err := s.provider.AssetManifest(ctx)
	if err != nil {
		return nil, false, err
	}
	s.storeJSON(ctx, cacheKeyAssetManifest, fresh)
	return fresh, false, nil
}

// ContentManifest 返回内容清单。
func (s *ContentService) ContentManifest(ctx context.Context) (*content.ContentManifest, bool, error) {
	var manifest content.ContentManifest
	if s.cachedJSON(ctx, cacheKeyContentManifest, &manifest) {
		return &manifest, true, nil
	}
	fresh, err := s.provider.ContentManifest(ctx)
	if err != nil {
		return nil, false, err
	}
	s.storeJSON(ctx, cacheKeyContentManifest, fresh)
	return fresh, false, nil
}

// Asset 查询单张图片。
func (s *ContentService) Asset(ctx context.Context, id string) (*content.AssetEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrAssetNotFound
	}
	return s.provider.Asset(ctx, id)
}

// PageSlugs 列出除 header/footer 外的所有页面。
func (s *ContentService) PageSlugs(ctx context.Context) ([]string, bool, error) {
	manifest, cached, err := s.ContentManifest(ctx)
	if err != nil {
		return nil, false, err
	}
	slugs := make([]string, 0, len(manifest.Pages))
	for _, page := range manifest.Pages {
		if content.IsLayoutComponent(page.Module) {
			continue
		}
		slugs = append(slugs, page.Slug)
	}
	return slugs, cached, nil
}

// PagesByType 按分类列出页面：event 为 event_ 前缀，general 为其余未分类页面。
func (s *ContentService) PagesByType(ctx context.Context, pageType string) ([]string, bool, error) {
	if !IsValidPageType(pageType) {
		return nil, false, ErrInvalidPageType
	}
	slugs, cached, err := s.PageSlugs(ctx)
	if err != nil {
		return nil, false, err
	}

	categorized := make(map[string]string)
	for t, list := range pageTypeSlugs {
		for _, slug := range list {
			categorized[slug] = t
		}
	}

	out := make([]string, 0)
	for _, slug := range slugs {
		isEvent := strings.HasPrefix(slug, "event_")
		switch pageType {
		case PageTypeEvent:
			if isEvent {
				out = append(out, slug)
			}
		case PageTypeGeneral:
			if _, ok := categorized[slug]; !ok && !isEvent {
				out = append(out, slug)
			}
		default:
			if categorized[slug] == pageType {
				out = append(out, slug)
			}
		}
	}
	sort.Strings(out)
	return out, cached, nil
}

// Invalidate 清空内容缓存，下一次请求重新读取数据源。
func (s *ContentService) Invalidate(ctx context.Context) error {
	if err := s.cache.Flush(ctx); err != nil {
		return err
	}
	s.log.Info("content cache invalidated", "provider", s.provider.Name())
	return nil
}

func (s *ContentService) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("content cache read failed", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

func (s *ContentService) cachedJSON(ctx context.Context, key string, dst interface{}) bool {
	data, ok := s.cached(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn("content cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (s *ContentService) store(ctx context.Context, key string, data []byte) {
	if s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn("content cache write failed", "key", key, "error", err)
	}
}

func (s *ContentService) storeJSON(ctx context.Context, key string, value interface{}) {
	if s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("content cache encode failed", "key", key, "error", err)
		return
	}
	s.store(ctx, key, data)
}
