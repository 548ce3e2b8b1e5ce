package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ewillweb/internal/logger"
	"gopkg.in/yaml.v3"
)

// LayoutComponents 是保留全部 YAML 字段的共享布局模块。
var LayoutComponents = []string{"header", "footer"}

// IsLayoutComponent reports whether module is header or footer.
func IsLayoutComponent(module string) bool {
	for _, name := range LayoutComponents {
		if name == module {
			return true
		}
	}
	return false
}

// SEO 是页面的搜索引擎信息。
type SEO struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
}

// URLMapping 记录旧站与新站的网址对应关系。
type URLMapping struct {
	CurrentURL string `json:"current_url" yaml:"current_url"`
	NewURL     string `json:"new_url" yaml:"new_url"`
	OldURL     string `json:"old_url,omitempty" yaml:"old_url"`
	Redirect   bool   `json:"redirect,omitempty" yaml:"redirect"`
}

// PageDocument 是 content/pages/<slug>.json 的结构。
type PageDocument struct {
	Slug        string                 `json:"slug"`
	Module      string                 `json:"module"`
	Template    string                 `json:"template,omitempty"`
	SEO         SEO                    `json:"seo"`
	URLMapping  URLMapping             `json:"url_mapping"`
	Layout      map[string]interface{} `json:"layout"`
	AIO         map[string]interface{} `json:"aio,omitempty"`
	Content     string                 `json:"content"`
	ContentHTML string                 `json:"content_html"`
	GeneratedAt string                 `json:"generated_at"`
}

type pageSource struct {
	Template   string                 `yaml:"template"`
	SEO        SEO                    `yaml:"seo"`
	URLMapping URLMapping             `yaml:"url_mapping"`
	Layout     map[string]interface{} `yaml:"layout"`
	AIO        map[string]interface{} `yaml:"aio"`
}

// Builder 读取 pages/<slug>/index.yml 与 index.md，产出页面 JSON 与内容清单。
type Builder struct {
	cfg       BuildConfig
	log       *logger.Logger
	renderer  *Renderer
	validator *PageValidator
	now       func() time.Time
}

// NewBuilder 创建内容构建器。
func NewBuilder(cfg BuildConfig, log *logger.Logger) (*Builder, error) {
	if log == nil {
		log = logger.Nop()
	}
	validator, err := NewPageValidator()
	if err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg, log: log, renderer: NewRenderer(), validator: validator, now: time.Now}, nil
}

// Run 构建全部页面。缺失或格式错误的 index.yml 会被记录并排除在清单之外，其余页面继续构建。
func (b *Builder) Run(ctx context.Context) (*ContentManifest, *Report, error) {
	report := &Report{}

	assetManifest, err := ReadAssetManifest(b.cfg.AssetManifestPath())
	if err != nil {
		return nil, report, fmt.Errorf("asset manifest unavailable, run normalize first: %w", err)
	}
	resolver := NewAssetResolver(assetManifest, "/"+assetsDirName)

	modules, err := listModules(b.cfg.ContentDir, nil)
	if err != nil {
		return nil, report, fmt.Errorf("content directory not found: %w", err)
	}
	b.log.Info("building content", "target", b.cfg.Target, "modules", len(modules), "output", b.cfg.OutputDir)

	pagesDir := filepath.Join(b.cfg.ContentOutputDir(), pagesDirName)
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return nil, report, fmt.Errorf("create pages dir: %w", err)
	}

	generatedAt := b.now().UTC().Format(time.RFC3339Nano)
	manifest := &ContentManifest{GeneratedAt: generatedAt, Target: string(b.cfg.Target), Pages: []PageEntry{}}

	for _, module := range modules {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		doc, err := b.buildPage(module, resolver, generatedAt, report)
		if err != nil {
			b.log.Error("failed to build page", "module", module, "error", err)
			report.fail(module, "%v", err)
			continue
		}
		if err := os.WriteFile(filepath.Join(pagesDir, module+".json"), doc, 0o644); err != nil {
			b.log.Error("failed to write page", "module", module, "error", err)
			report.fail(module, "write: %v", err)
			continue
		}
		report.Processed++
		manifest.Pages = append(manifest.Pages, PageEntry{
			Slug:   module,
			Module: module,
			Path:   pagesDirName + "/" + module + ".json",
		})
	}

	if err := writeJSON(b.cfg.ContentManifestPath(), manifest); err != nil {
		return nil, report, fmt.Errorf("write content manifest: %w", err)
	}
	b.log.Info("content manifest written", "path", b.cfg.ContentManifestPath(), "pages", len(manifest.Pages), "failed", len(report.Errors))
	return manifest, report, nil
}

func (b *Builder) buildPage(module string, resolver *AssetResolver, generatedAt string, report *Report) ([]byte, error) {
	moduleDir := filepath.Join(b.cfg.ContentDir, module)
	ymlData, err := os.ReadFile(filepath.Join(moduleDir, "index.yml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.New("index.yml not found")
		}
		return nil, err
	}
	markdown, err := readOptional(filepath.Join(moduleDir, "index.md"))
	if err != nil {
		return nil, err
	}

	if IsLayoutComponent(module) {
		fields := map[string]interface{}{}
		if err := yaml.Unmarshal(ymlData, &fields); err != nil {
			return nil, fmt.Errorf("malformed index.yml: %w", err)
		}
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["slug"] = module
		fields["module"] = module
		fields["content"] = markdown
		fields["generated_at"] = generatedAt
		return json.MarshalIndent(fields, "", "  ")
	}

	var src pageSource
	if err := yaml.Unmarshal(ymlData, &src); err != nil {
		return nil, fmt.Errorf("malformed index.yml: %w", err)
	}

	html, err := b.renderer.Render(markdown)
	if err != nil {
		return nil, fmt.Errorf("render index.md: %w", err)
	}

	keywords := src.SEO.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	doc := PageDocument{
		Slug:     module,
		Module:   module,
		Template: strings.TrimSpace(src.Template),
		SEO: SEO{
			Title:       src.SEO.Title,
			Description: src.SEO.Description,
			Keywords:    keywords,
		},
		URLMapping:  src.URLMapping,
		Layout:      b.resolveLayout(module, src.Layout, resolver, report),
		AIO:         src.AIO,
		Content:     markdown,
		ContentHTML: html,
		GeneratedAt: generatedAt,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	problems, err := b.validator.Validate(data)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("schema validation failed: %s", joinProblems(problems))
	}
	return data, nil
}

// resolveLayout 解析 hero.image 与各 section 的 image_ids / image_id，其余字段原样保留。
func (b *Builder) resolveLayout(module string, layout map[string]interface{}, resolver *AssetResolver, report *Report) map[string]interface{} {
	resolved := map[string]interface{}{}
	for key, value := range layout {
		switch key {
		case "hero":
			resolved[key] = b.resolveHero(module, value, resolver, report)
		case "sections":
			resolved[key] = b.resolveSections(module, value, resolver, report)
		default:
			resolved[key] = value
		}
	}
	return resolved
}

func (b *Builder) resolveHero(module string, value interface{}, resolver *AssetResolver, report *Report) interface{} {
	hero, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	out := make(map[string]interface{}, len(hero))
	for key, v := range hero {
		if key != "image" {
			out[key] = v
			continue
		}
		ref, ok := imageRefFrom(v)
		if !ok {
			continue
		}
		if img, found := resolver.Resolve(ref); found {
			out["image"] = img
		} else {
			b.missingAsset(module, ref.ID, report)
		}
	}
	return out
}

func (b *Builder) resolveSections(module string, value interface{}, resolver *AssetResolver, report *Report) interface{} {
	items, ok := value.([]interface{})
	if !ok {
		return value
	}
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		section, ok := item.(map[string]interface{})
		if !ok {
			out = append(out, item)
			continue
		}
		resolvedSection := make(map[string]interface{}, len(section)+1)
		for key, v := range section {
			switch key {
			case "image_ids":
				ids, _ := v.([]interface{})
				images := make([]ResolvedImage, 0, len(ids))
				for _, raw := range ids {
					id := fmt.Sprint(raw)
					if img, found := resolver.ResolveID(id); found {
						images = append(images, img)
					} else {
						b.missingAsset(module, id, report)
					}
				}
				resolvedSection["images"] = images
			case "image_id":
				resolvedSection[key] = v
				id := fmt.Sprint(v)
				if img, found := resolver.ResolveID(id); found {
					resolvedSection["image"] = img
				} else {
					b.missingAsset(module, id, report)
				}
			default:
				resolvedSection[key] = v
			}
		}
		out = append(out, resolvedSection)
	}
	return out
}

func (b *Builder) missingAsset(module, id string, report *Report) {
	b.log.Warn("asset not found", "module", module, "image_id", id)
	report.warn(module, "asset not found: %s", id)
}

func imageRefFrom(value interface{}) (ImageRef, bool) {
	switch v := value.(type) {
	case string:
		return ImageRef{ID: v}, v != ""
	case map[string]interface{}:
		ref := ImageRef{}
		ref.ID, _ = v["id"].(string)
		ref.Desktop, _ = v["desktop"].(string)
		ref.Mobile, _ = v["mobile"].(string)
		return ref, ref.ID != ""
	}
	return ImageRef{}, false
}

// listModules 返回 pages/ 下排序后的非隐藏子目录，exclude 中的名称被跳过。
func listModules(contentDir string, exclude map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(contentDir)
	if err != nil {
		return nil, err
	}
	modules := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") || exclude[name] {
			continue
		}
		modules = append(modules, name)
	}
	return modules, nil
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}
