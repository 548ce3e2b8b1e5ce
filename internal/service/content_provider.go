package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ewillweb/internal/config"
	"github.com/ewillweb/internal/content"
	"github.com/ewillweb/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound  = errors.New("page not found")
	ErrAssetNotFound = errors.New("asset not found")
)

// ContentProvider 是页面与资源数据的来源，启动时按 DATA_SOURCE 选定。
// Page 返回页面 JSON 原文，以保留 header/footer 的自定义字段。
type ContentProvider interface {
	Name() string
	Page(ctx context.Context, slug string) (json.RawMessage, error)
	Asset(ctx context.Context, id string) (*content.AssetEntry, error)
	AssetManifest(ctx context.Context) (*content.AssetManifest, error)
	ContentManifest(ctx context.Context) (*content.ContentManifest, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewContentProvider 根据配置选择实现。db 模式需要 gdb 非空。
func NewContentProvider(cfg config.AppConfig, gdb *gorm.DB) (ContentProvider, error) {
	switch cfg.DataSource {
	case config.DataSourceDB:
		if gdb == nil {
			return nil, errors.New("data source db requires DATABASE_URL")
		}
		return NewDBProvider(gdb), nil
	case config.DataSourceAPI:
		return NewAPIProvider(cfg.APIBaseURL, cfg.APITimeout), nil
	case config.DataSourceMock:
		return NewMockProvider(cfg.PublicDir), nil
	case config.DataSourceJSON, "":
		return NewJSONProvider(cfg.PublicDir), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

// DBProvider 从 pages / assets 表读取，由 sitectl seed 写入。
type DBProvider struct {
	db *gorm.DB
}

func NewDBProvider(gdb *gorm.DB) *DBProvider {
	return &DBProvider{db: gdb}
}

func (p *DBProvider) Name() string { return config.DataSourceDB }

type pageRow struct {
	Slug        string          `json:"slug"`
	Module      string          `json:"module"`
	Template    *string         `json:"template"`
	SEO         json.RawMessage `json:"seo"`
	URLMapping  json.RawMessage `json:"url_mapping"`
	Content     string          `json:"content"`
	ContentHTML string          `json:"content_html,omitempty"`
	Layout      json.RawMessage `json:"layout"`
	AIO         json.RawMessage `json:"aio,omitempty"`
	GeneratedAt string          `json:"generated_at"`
}

func rawOrNull(data []byte) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(data)
}

func (p *DBProvider) Page(ctx context.Context, slug string) (json.RawMessage, error) {
	var page db.Page
	if err := p.db.WithContext(ctx).Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	row := pageRow{
		Slug:        page.Slug,
		Module:      page.Module,
		Template:    page.Template,
		SEO:         rawOrNull(page.SEO),
		URLMapping:  rawOrNull(page.URLMapping),
		Content:     page.Content,
		ContentHTML: page.ContentHTML,
		Layout:      rawOrNull(page.Layout),
		GeneratedAt: page.GeneratedAt,
	}
	if len(page.AIO) > 0 {
		row.AIO = json.RawMessage(page.AIO)
	}
	return json.Marshal(row)
}

func assetEntryFromRow(asset db.Asset) content.AssetEntry {
	entry := content.AssetEntry{
		ID:             asset.ImageID,
		OriginalPath:   asset.OriginalPath,
		NormalizedPath: asset.NormalizedPath,
		Alt:            asset.Alt,
		Width:          asset.Width,
		Height:         asset.Height,
	}
	if len(asset.Variants) > 0 {
		_ = json.Unmarshal(asset.Variants, &entry.Variants)
	}
	return entry
}

func (p *DBProvider) Asset(ctx context.Context, id string) (*content.AssetEntry, error) {
	var asset db.Asset
	if err := p.db.WithContext(ctx).Where("image_id = ?", id).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	entry := assetEntryFromRow(asset)
	return &entry, nil
}

func (p *DBProvider) AssetManifest(ctx context.Context) (*content.AssetManifest, error) {
	var assets []db.Asset
	if err := p.db.WithContext(ctx).Order("image_id").Find(&assets).Error; err != nil {
		return nil, err
	}
	manifest := &content.AssetManifest{
		GeneratedAt: formatISO(time.Now()),
		Target:      string(content.TargetAstro),
		Assets:      make([]content.AssetEntry, 0, len(assets)),
	}
	for _, asset := range assets {
		manifest.Assets = append(manifest.Assets, assetEntryFromRow(asset))
	}
	return manifest, nil
}

// ContentManifest 不含 header/footer，generated_at 取各页最新值。
func (p *DBProvider) ContentManifest(ctx context.Context) (*content.ContentManifest, error) {
	var pages []db.Page
	if err := p.db.WithContext(ctx).
		Select("slug", "module", "generated_at").
		Where("module NOT IN ?", content.LayoutComponents).
		Order("slug").
		Find(&pages).Error; err != nil {
		return nil, err
	}
	manifest := &content.ContentManifest{Pages: make([]content.PageEntry, 0, len(pages))}
	for _, page := range pages {
		if page.GeneratedAt > manifest.GeneratedAt {
			manifest.GeneratedAt = page.GeneratedAt
		}
		manifest.Pages = append(manifest.Pages, content.PageEntry{
			Slug:   page.Slug,
			Module: page.Module,
			Path:   "pages/" + page.Slug + ".json",
		})
	}
	return manifest, nil
}

// JSONProvider 读取构建产物目录（PUBLIC_DIR）下的 JSON 文件。
type JSONProvider struct {
	name  string
	build content.BuildConfig
}

func NewJSONProvider(publicDir string) *JSONProvider {
	return &JSONProvider{name: config.DataSourceJSON, build: content.BuildConfig{OutputDir: publicDir}}
}

// NewMockProvider 与 JSONProvider 读取同一份构建产物，只在名称上区分。
func NewMockProvider(publicDir string) *JSONProvider {
	p := NewJSONProvider(publicDir)
	p.name = config.DataSourceMock
	return p
}

func (p *JSONProvider) Name() string { return p.name }

func (p *JSONProvider) Page(_ context.Context, slug string) (json.RawMessage, error) {
	path := filepath.Join(p.build.ContentOutputDir(), "pages", slug+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("page %s: invalid json", slug)
	}
	return json.RawMessage(data), nil
}

func (p *JSONProvider) Asset(ctx context.Context, id string) (*content.AssetEntry, error) {
	manifest, err := p.AssetManifest(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range manifest.Assets {
		if entry.ID == id {
			found := entry
			return &found, nil
		}
	}
	return nil, ErrAssetNotFound
}

func (p *JSONProvider) AssetManifest(context.Context) (*content.AssetManifest, error) {
	return content.ReadAssetManifest(p.build.AssetManifestPath())
}

func (p *JSONProvider) ContentManifest(context.Context) (*content.ContentManifest, error) {
	return content.ReadContentManifest(p.build.ContentManifestPath())
}

// APIProvider 读取另一个实例的 /api 接口，解开统一响应信封。
type APIProvider struct {
	baseURL string
	http    httpDoer
}

func NewAPIProvider(baseURL string, timeout time.Duration) *APIProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &APIProvider{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient 替换底层客户端，主要用于测试。
func (p *APIProvider) SetHTTPClient(client httpDoer) {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	p.http = client
}

func (p *APIProvider) Name() string { return config.DataSourceAPI }

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *APIProvider) fetch(ctx context.Context, endpoint string, notFound error) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("创建内容 API 请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ewillweb-content/1.0")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求内容 API 失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("读取内容 API 响应失败: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound && notFound != nil {
		return nil, notFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("内容 API 返回 %d", resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("解析内容 API 响应失败: %w", err)
	}
	if !envelope.Success {
		if envelope.Error != nil && envelope.Error.Code == "NOT_FOUND" && notFound != nil {
			return nil, notFound
		}
		if envelope.Error != nil {
			return nil, fmt.Errorf("内容 API 错误 %s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return nil, errors.New("内容 API 返回失败")
	}
	return envelope.Data, nil
}

func (p *APIProvider) Page(ctx context.Context, slug string) (json.RawMessage, error) {
	return p.fetch(ctx, "/pages/"+url.PathEscape(slug), ErrPageNotFound)
}

func (p *APIProvider) Asset(ctx context.Context, id string) (*content.AssetEntry, error) {
	data, err := p.fetch(ctx, "/assets/"+url.PathEscape(id), ErrAssetNotFound)
	if err != nil {
		return nil, err
	}
	var entry content.AssetEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("解析资源失败: %w", err)
	}
	return &entry, nil
}

func (p *APIProvider) AssetManifest(ctx context.Context) (*content.AssetManifest, error) {
	data, err := p.fetch(ctx, "/manifests/assets", nil)
	if err != nil {
		return nil, err
	}
	var manifest content.AssetManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("解析资源清单失败: %w", err)
	}
	return &manifest, nil
}

func (p *APIProvider) ContentManifest(ctx context.Context) (*content.ContentManifest, error) {
	data, err := p.fetch(ctx, "/manifests/content", nil)
	if err != nil {
		return nil, err
	}
	var manifest content.ContentManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("解析内容清单失败: %w", err)
	}
	return &manifest, nil
}
