package content

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAssetManifest(t *testing.T, cfg BuildConfig) {
	t.Helper()
	manifest := AssetManifest{
		GeneratedAt: "2025-03-01T08:00:00Z",
		Target:      "static",
		Assets: []AssetEntry{
			{
				ID:             "hero",
				NormalizedPath: "/assets/hero_aaaaaaaa.jpg",
				Variants:       Variants{Desktop: "/assets/hero_aaaaaaaa_desktop.jpg", Mobile: "/assets/hero_aaaaaaaa_mobile.jpg"},
				Alt:            "Hero",
			},
			{
				ID:             "hero_small",
				NormalizedPath: "/assets/hero_small_bbbbbbbb.jpg",
				Variants:       Variants{Desktop: "/assets/hero_small_bbbbbbbb_desktop.jpg", Mobile: "/assets/hero_small_bbbbbbbb_mobile.jpg"},
			},
			{
				ID:             "plant",
				NormalizedPath: "/assets/plant_cccccccc.png",
				Variants:       Variants{Desktop: "/assets/plant_cccccccc_desktop.png", Mobile: "/assets/plant_cccccccc_mobile.png"},
				Alt:            "Plant",
			},
		},
	}
	require.NoError(t, writeJSON(cfg.AssetManifestPath(), manifest))
}

func newTestBuilder(t *testing.T, root string) (*Builder, BuildConfig) {
	t.Helper()
	cfg := NewBuildConfig(root, TargetStatic)
	b, err := NewBuilder(cfg, nil)
	require.NoError(t, err)
	b.now = fixedClock
	return b, cfg
}

func TestBuilderResolvesImagesAndWritesManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "home", "index.yml"), `seo:
  title: Home
  description: Welcome
url_mapping:
  current_url: /index.php
  new_url: /
layout:
  theme: dark
  hero:
    title: Hello
    image:
      id: hero
      mobile: hero_small
  sections:
    - type: gallery
      image_ids: [plant, missing]
      columns: 3
    - type: image
      image_id: plant
`)
	writeFile(t, filepath.Join(root, "pages", "home", "index.md"), "## Welcome\n\n**bold**<script>alert(1)</script>\n")
	writeFile(t, filepath.Join(root, "pages", "footer", "index.yml"), "copyright: ACME\nlinks:\n  - label: Privacy\n    href: /privacy\n")
	writeFile(t, filepath.Join(root, "pages", "broken", "index.yml"), "seo: [unclosed\n")
	writeFile(t, filepath.Join(root, "pages", "nomd", "index.md"), "## No yaml\n")

	b, cfg := newTestBuilder(t, root)
	writeAssetManifest(t, cfg)

	manifest, report, err := b.Run(context.Background())
	require.NoError(t, err)

	want := []PageEntry{
		{Slug: "footer", Module: "footer", Path: "pages/footer.json"},
		{Slug: "home", Module: "home", Path: "pages/home.json"},
	}
	if diff := cmp.Diff(want, manifest.Pages); diff != "" {
		t.Fatalf("manifest pages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "static", manifest.Target)
	assert.Len(t, report.Errors, 2)
	assert.Len(t, report.Warnings, 1)

	data, err := os.ReadFile(filepath.Join(cfg.ContentOutputDir(), "pages", "home.json"))
	require.NoError(t, err)
	var doc struct {
		Slug       string     `json:"slug"`
		SEO        SEO        `json:"seo"`
		URLMapping URLMapping `json:"url_mapping"`
		Layout     struct {
			Theme string `json:"theme"`
			Hero  struct {
				Title string        `json:"title"`
				Image ResolvedImage `json:"image"`
			} `json:"hero"`
			Sections []struct {
				Type    string          `json:"type"`
				Columns int             `json:"columns"`
				Images  []ResolvedImage `json:"images"`
				ImageID string          `json:"image_id"`
				Image   *ResolvedImage  `json:"image"`
			} `json:"sections"`
		} `json:"layout"`
		ContentHTML string `json:"content_html"`
		GeneratedAt string `json:"generated_at"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "home", doc.Slug)
	assert.Equal(t, []string{}, doc.SEO.Keywords)
	assert.Equal(t, "/", doc.URLMapping.NewURL)
	assert.Equal(t, "dark", doc.Layout.Theme)
	assert.Equal(t, "Hello", doc.Layout.Hero.Title)
	assert.Equal(t, ResolvedImage{
		ID:      "hero",
		Desktop: "/assets/hero_aaaaaaaa_desktop.jpg",
		Mobile:  "/assets/hero_small_bbbbbbbb.jpg",
		Alt:     "Hero",
	}, doc.Layout.Hero.Image)
	require.Len(t, doc.Layout.Sections, 2)
	assert.Equal(t, 3, doc.Layout.Sections[0].Columns)
	require.Len(t, doc.Layout.Sections[0].Images, 1)
	assert.Equal(t, "plant", doc.Layout.Sections[0].Images[0].ID)
	require.NotNil(t, doc.Layout.Sections[1].Image)
	assert.Equal(t, "/assets/plant_cccccccc_mobile.png", doc.Layout.Sections[1].Image.Mobile)
	assert.Contains(t, doc.ContentHTML, "<strong>bold</strong>")
	assert.NotContains(t, doc.ContentHTML, "<script>")
	assert.Equal(t, "2025-03-01T08:00:00Z", doc.GeneratedAt)

	footer, err := os.ReadFile(filepath.Join(cfg.ContentOutputDir(), "pages", "footer.json"))
	require.NoError(t, err)
	var footerDoc map[string]interface{}
	require.NoError(t, json.Unmarshal(footer, &footerDoc))
	assert.Equal(t, "ACME", footerDoc["copyright"])
	assert.Equal(t, "footer", footerDoc["slug"])
	assert.Equal(t, "", footerDoc["content"])
	assert.Len(t, footerDoc["links"], 1)
}

func TestBuilderRequiresAssetManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "home", "index.yml"), "seo: {}\n")

	b, _ := newTestBuilder(t, root)
	_, _, err := b.Run(context.Background())
	assert.ErrorContains(t, err, "normalize")
}

func TestBuilderRejectsInvalidSlug(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "Bad Name", "index.yml"), "seo: {}\n")

	b, cfg := newTestBuilder(t, root)
	writeAssetManifest(t, cfg)

	manifest, report, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, manifest.Pages)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Message, "schema validation failed")
}

func TestAssetResolverIgnoresDefaultVariantNames(t *testing.T) {
	resolver := NewAssetResolver(&AssetManifest{Assets: []AssetEntry{{
		ID:       "logo",
		Variants: Variants{Desktop: "/assets/logo_1_desktop.svg", Mobile: "/assets/logo_1_mobile.svg"},
	}}}, "")

	img, ok := resolver.Resolve(ImageRef{ID: "logo", Desktop: "logo_desktop", Mobile: "unknown"})
	require.True(t, ok)
	assert.Equal(t, "/assets/logo_1_desktop.svg", img.Desktop)
	assert.Equal(t, "/assets/logo_1_mobile.svg", img.Mobile)

	_, ok = resolver.ResolveID("nope")
	assert.False(t, ok)
}
