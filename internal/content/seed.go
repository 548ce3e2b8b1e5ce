package content

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ewillweb/internal/db"
	"github.com/ewillweb/internal/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedResult 统计写入数据库的页面与图片数量。
type SeedResult struct {
	Pages  int
	Assets int
}

// Seed 将已构建的页面（不含 header/footer）与资源清单按 slug / image_id 覆盖写入数据库。
func Seed(ctx context.Context, gdb *gorm.DB, cfg BuildConfig, log *logger.Logger) (SeedResult, error) {
	if log == nil {
		log = logger.Nop()
	}
	var result SeedResult

	contentManifest, err := ReadContentManifest(cfg.ContentManifestPath())
	if err != nil {
		return result, fmt.Errorf("content manifest unavailable, run build first: %w", err)
	}
	assetManifest, err := ReadAssetManifest(cfg.AssetManifestPath())
	if err != nil {
		return result, fmt.Errorf("asset manifest unavailable, run build first: %w", err)
	}

	tx := gdb.WithContext(ctx)
	for _, entry := range contentManifest.Pages {
		if IsLayoutComponent(entry.Module) {
			continue
		}
		var doc PageDocument
		if err := readJSON(filepath.Join(cfg.ContentOutputDir(), filepath.FromSlash(entry.Path)), &doc); err != nil {
			return result, err
		}
		page, err := pageRecord(doc)
		if err != nil {
			return result, fmt.Errorf("page %s: %w", doc.Slug, err)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"module", "template", "seo", "url_mapping", "content", "content_html", "layout", "aio", "generated_at", "updated_at"}),
		}).Create(&page).Error; err != nil {
			return result, fmt.Errorf("upsert page %s: %w", doc.Slug, err)
		}
		result.Pages++
		log.Debug("page seeded", "slug", doc.Slug)
	}

	for _, asset := range assetManifest.Assets {
		variants, err := json.Marshal(asset.Variants)
		if err != nil {
			return result, err
		}
		record := db.Asset{
			ImageID:        asset.ID,
			OriginalPath:   asset.OriginalPath,
			NormalizedPath: asset.NormalizedPath,
			Variants:       datatypes.JSON(variants),
			Alt:            asset.Alt,
			Width:          asset.Width,
			Height:         asset.Height,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "image_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"original_path", "normalized_path", "variants", "alt", "width", "height", "updated_at"}),
		}).Create(&record).Error; err != nil {
			return result, fmt.Errorf("upsert asset %s: %w", asset.ID, err)
		}
		result.Assets++
	}

	log.Info("database seeded", "pages", result.Pages, "assets", result.Assets)
	return result, nil
}

func pageRecord(doc PageDocument) (db.Page, error) {
	page := db.Page{
		Slug:        doc.Slug,
		Module:      doc.Module,
		Content:     doc.Content,
		ContentHTML: doc.ContentHTML,
		GeneratedAt: doc.GeneratedAt,
	}
	if doc.Template != "" {
		template := doc.Template
		page.Template = &template
	}
	var err error
	if page.SEO, err = toJSON(doc.SEO); err != nil {
		return page, err
	}
	if page.URLMapping, err = toJSON(doc.URLMapping); err != nil {
		return page, err
	}
	if page.Layout, err = toJSON(doc.Layout); err != nil {
		return page, err
	}
	if doc.AIO != nil {
		if page.AIO, err = toJSON(doc.AIO); err != nil {
			return page, err
		}
	}
	return page, nil
}

func toJSON(value interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
