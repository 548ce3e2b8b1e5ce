package content

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(root string) (*Normalizer, BuildConfig) {
	cfg := NewBuildConfig(root, TargetStatic)
	n := NewNormalizer(cfg, nil)
	n.now = fixedClock
	return n, cfg
}

func TestNormalizerProducesLowercaseASCIIPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "about", "assets", "工廠全景.JPG"), "factory-bytes")
	writeFile(t, filepath.Join(root, "pages", "about", "assets", "Team Photo.png"), "team-bytes")
	writeFile(t, filepath.Join(root, "pages", "about", "assets", "notes.txt"), "ignored")

	n, cfg := newTestNormalizer(root)
	manifest, report, err := n.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, manifest.Assets, 2)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, "static", manifest.Target)
	assert.Equal(t, "2025-03-01T08:00:00Z", manifest.GeneratedAt)

	ascii := regexp.MustCompile(`^/assets/[a-z0-9_-]+\.(jpg|png)$`)
	for _, asset := range manifest.Assets {
		assert.Regexp(t, ascii, asset.NormalizedPath)
		assert.Regexp(t, regexp.MustCompile(`_desktop\.(jpg|png)$`), asset.Variants.Desktop)
		assert.Regexp(t, regexp.MustCompile(`_mobile\.(jpg|png)$`), asset.Variants.Mobile)
		_, err := os.Stat(filepath.Join(cfg.OutputDir, filepath.FromSlash(asset.NormalizedPath)))
		assert.NoError(t, err)
	}

	byOriginal := map[string]AssetEntry{}
	for _, asset := range manifest.Assets {
		byOriginal[asset.OriginalPath] = asset
	}
	team := byOriginal["pages/about/assets/Team Photo.png"]
	assert.Equal(t, "team_photo", team.ID)
	assert.Equal(t, "/assets/team_photo_"+ShortHash([]byte("team-bytes"))+".png", team.NormalizedPath)

	factory := byOriginal["pages/about/assets/工廠全景.JPG"]
	hash := ShortHash([]byte("factory-bytes"))
	assert.Equal(t, "img_"+hash, factory.ID)
	assert.Equal(t, "/assets/img_"+hash+".jpg", factory.NormalizedPath)
	assert.Equal(t, "/assets/img_"+hash+"_mobile.jpg", factory.Variants.Mobile)

	_, err = ReadAssetManifest(cfg.AssetManifestPath())
	assert.NoError(t, err)
}

func TestNormalizerCollisionKeepsBothAssets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "a", "assets", "Logo.svg"), "<svg>a</svg>")
	writeFile(t, filepath.Join(root, "pages", "b", "assets", "logo.svg"), "<svg>b</svg>")

	n, cfg := newTestNormalizer(root)
	manifest, _, err := n.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, manifest.Assets, 2)

	ids := []string{manifest.Assets[0].ID, manifest.Assets[1].ID}
	assert.ElementsMatch(t, []string{"logo", "logo_1"}, ids)
	assert.NotEqual(t, manifest.Assets[0].NormalizedPath, manifest.Assets[1].NormalizedPath)

	for _, asset := range manifest.Assets {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, filepath.FromSlash(asset.NormalizedPath)))
		assert.NoError(t, err)
	}
}

func TestNormalizerUsesSidecarMetadata(t *testing.T) {
	root := t.TempDir()
	assets := filepath.Join(root, "pages", "home", "assets")
	writeFile(t, filepath.Join(assets, "首頁橫幅.jpg"), "desktop-original")
	writeFile(t, filepath.Join(assets, "首頁橫幅_手機.jpg"), "mobile-crop")
	writeFile(t, filepath.Join(assets, "首頁橫幅.jpg.yml"), "id: home_banner\nalt: 首頁橫幅\nvariants:\n  mobile: 首頁橫幅_手機.jpg\n")

	n, cfg := newTestNormalizer(root)
	manifest, _, err := n.Run(context.Background())
	require.NoError(t, err)

	var banner AssetEntry
	for _, asset := range manifest.Assets {
		if asset.ID == "home_banner" {
			banner = asset
		}
	}
	require.Equal(t, "home_banner", banner.ID)
	assert.Equal(t, "首頁橫幅", banner.Alt)

	mobile, err := os.ReadFile(filepath.Join(cfg.OutputDir, filepath.FromSlash(banner.Variants.Mobile)))
	require.NoError(t, err)
	assert.Equal(t, "mobile-crop", string(mobile))
}

func TestNormalizerDownscalesMobileVariant(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "pages", "home", "assets", "wide.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, pngBytes(t, 1500, 300, color.RGBA{R: 200, A: 255}), 0o644))

	n, cfg := newTestNormalizer(root)
	manifest, _, err := n.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, manifest.Assets, 1)
	asset := manifest.Assets[0]
	assert.Equal(t, 1500, asset.Width)
	assert.Equal(t, 300, asset.Height)

	f, err := os.Open(filepath.Join(cfg.OutputDir, filepath.FromSlash(asset.Variants.Mobile)))
	require.NoError(t, err)
	defer f.Close()
	mobileCfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, DefaultMobileMaxWidth, mobileCfg.Width)
	assert.Equal(t, 150, mobileCfg.Height)
}

func TestNormalizerMissingContentDir(t *testing.T) {
	n, _ := newTestNormalizer(t.TempDir())
	_, _, err := n.Run(context.Background())
	assert.Error(t, err)
}
