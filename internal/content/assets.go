package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ewillweb/internal/logger"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"gopkg.in/yaml.v3"
)

// ImagePattern 匹配可被规范化的图片扩展名（对小写文件名匹配）。
const ImagePattern = "*.{jpg,jpeg,png,gif,webp,svg}"

// DefaultMobileMaxWidth 是移动端版本的最大宽度，超出时等比缩小。
const DefaultMobileMaxWidth = 750

// AssetMeta 是图片旁的 <file>.yml 描述文件。
type AssetMeta struct {
	ID       string `yaml:"id"`
	Alt      string `yaml:"alt"`
	Variants struct {
		Desktop string `yaml:"desktop"`
		Mobile  string `yaml:"mobile"`
	} `yaml:"variants"`
}

// Normalizer 扫描 pages/*/assets/ 下的图片，输出 ASCII 小写文件名与资源清单。
type Normalizer struct {
	cfg            BuildConfig
	log            *logger.Logger
	MobileMaxWidth int
	now            func() time.Time
}

// NewNormalizer 创建规范化器。
func NewNormalizer(cfg BuildConfig, log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{cfg: cfg, log: log, MobileMaxWidth: DefaultMobileMaxWidth, now: time.Now}
}

// Run 处理全部图片并写出 asset-manifest.json。单张图片失败只记录，不中断整体运行。
func (n *Normalizer) Run(ctx context.Context) (*AssetManifest, *Report, error) {
	report := &Report{}
	sources, err := n.discover(report)
	if err != nil {
		return nil, report, err
	}
	n.log.Info("normalizing assets", "target", n.cfg.Target, "count", len(sources), "output", n.cfg.OutputDir)

	if err := os.MkdirAll(n.cfg.AssetsOutputDir(), 0o755); err != nil {
		return nil, report, fmt.Errorf("create assets dir: %w", err)
	}

	used := make(map[string]struct{}, len(sources))
	entries := make([]AssetEntry, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		entry, err := n.normalize(src, used)
		if err != nil {
			n.log.Error("failed to normalize asset", "path", src, "error", err)
			report.fail(src, "%v", err)
			continue
		}
		report.Processed++
		n.log.Debug("asset normalized", "source", src, "normalized", entry.NormalizedPath)
		entries = append(entries, entry)
	}

	manifest := &AssetManifest{
		GeneratedAt: n.now().UTC().Format(time.RFC3339Nano),
		Target:      string(n.cfg.Target),
		Assets:      entries,
	}
	if err := writeJSON(n.cfg.AssetManifestPath(), manifest); err != nil {
		return nil, report, fmt.Errorf("write asset manifest: %w", err)
	}
	n.log.Info("asset manifest written", "path", n.cfg.AssetManifestPath(), "assets", len(entries), "failed", len(report.Errors))
	return manifest, report, nil
}

// discover 按模块名与文件名排序返回所有图片路径。无法读取的目录记录警告后跳过。
func (n *Normalizer) discover(report *Report) ([]string, error) {
	modules, err := os.ReadDir(n.cfg.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("content directory not found: %w", err)
	}

	var sources []string
	for _, module := range modules {
		if !module.IsDir() {
			continue
		}
		assetsDir := filepath.Join(n.cfg.ContentDir, module.Name(), assetsDirName)
		files, err := os.ReadDir(assetsDir)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				n.log.Warn("skipping unreadable assets directory", "dir", assetsDir, "error", err)
				report.warn(assetsDir, "unreadable: %v", err)
			}
			continue
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if ok, _ := doublestar.Match(ImagePattern, strings.ToLower(file.Name())); ok {
				sources = append(sources, filepath.Join(assetsDir, file.Name()))
			}
		}
	}
	return sources, nil
}

func (n *Normalizer) normalize(src string, used map[string]struct{}) (AssetEntry, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return AssetEntry{}, err
	}

	hash := ShortHash(data)
	ext := strings.ToLower(filepath.Ext(src))
	dir := filepath.Dir(src)
	meta := loadAssetMeta(src)

	id := strings.TrimSpace(meta.ID)
	if id == "" {
		id = Slugify(strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)))
	}
	if id == "" {
		id = "img_" + hash
	}
	uniqueID := id
	for counter := 1; ; counter++ {
		if _, taken := used[uniqueID]; !taken {
			break
		}
		uniqueID = fmt.Sprintf("%s_%d", id, counter)
	}
	used[uniqueID] = struct{}{}

	stem := Slugify(uniqueID)
	if stem == "" {
		stem = "img"
	}
	base := stem
	if !strings.HasSuffix(stem, "_"+hash) {
		base += "_" + hash
	}
	outDir := n.cfg.AssetsOutputDir()
	normalizedPath := filepath.Join(outDir, base+ext)
	desktopPath := filepath.Join(outDir, base+"_desktop"+ext)
	mobilePath := filepath.Join(outDir, base+"_mobile"+ext)

	desktopSource := variantSource(dir, meta.Variants.Desktop, src)
	mobileSource := variantSource(dir, meta.Variants.Mobile, src)

	if err := os.WriteFile(normalizedPath, data, 0o644); err != nil {
		return AssetEntry{}, err
	}
	if err := copyFile(desktopSource, desktopPath); err != nil {
		return AssetEntry{}, err
	}
	if err := n.writeMobile(mobileSource, mobilePath, ext); err != nil {
		return AssetEntry{}, err
	}

	entry := AssetEntry{
		ID:             uniqueID,
		OriginalPath:   n.relToRoot(src),
		NormalizedPath: n.webPath(normalizedPath),
		Variants: Variants{
			Desktop: n.webPath(desktopPath),
			Mobile:  n.webPath(mobilePath),
		},
		Alt: meta.Alt,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		entry.Width, entry.Height = cfg.Width, cfg.Height
	}
	return entry, nil
}

// writeMobile 对宽于 MobileMaxWidth 的 JPEG/PNG 生成缩小版本，其余格式直接复制。
func (n *Normalizer) writeMobile(src, dst, ext string) error {
	if n.MobileMaxWidth <= 0 || (ext != ".jpg" && ext != ".jpeg" && ext != ".png") {
		return copyFile(src, dst)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		n.log.Warn("cannot decode image for mobile variant, copying", "path", src, "error", err)
		return os.WriteFile(dst, data, 0o644)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= n.MobileMaxWidth {
		return os.WriteFile(dst, data, 0o644)
	}

	height := bounds.Dy() * n.MobileMaxWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}
	scaled := image.NewRGBA(image.Rect(0, 0, n.MobileMaxWidth, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if ext == ".png" {
		err = png.Encode(&buf, scaled)
	} else {
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

func (n *Normalizer) webPath(abs string) string {
	rel, err := filepath.Rel(n.cfg.OutputDir, abs)
	if err != nil {
		rel = filepath.Base(abs)
	}
	return "/" + filepath.ToSlash(rel)
}

func (n *Normalizer) relToRoot(abs string) string {
	rel, err := filepath.Rel(n.cfg.Root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// loadAssetMeta 依次尝试 <file>.yml 与 <name>.yml；解析失败按无描述处理。
func loadAssetMeta(src string) AssetMeta {
	var meta AssetMeta
	for _, candidate := range sidecarCandidates(src) {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &meta); err != nil {
			return AssetMeta{}
		}
		return meta
	}
	return meta
}

func sidecarCandidates(src string) []string {
	withExt := src + ".yml"
	withoutExt := strings.TrimSuffix(src, filepath.Ext(src)) + ".yml"
	if withExt == withoutExt {
		return []string{withExt}
	}
	return []string{withExt, withoutExt}
}

func variantSource(dir, variant, fallback string) string {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return fallback
	}
	candidate := filepath.Join(dir, filepath.FromSlash(path.Clean(variant)))
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return fallback
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
