package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Variants 是图片的响应式版本路径。
type Variants struct {
	Desktop string `json:"desktop"`
	Mobile  string `json:"mobile"`
}

// AssetEntry 是 asset-manifest.json 中的一项。
type AssetEntry struct {
	ID             string   `json:"id"`
	OriginalPath   string   `json:"original_path"`
	NormalizedPath string   `json:"normalized_path"`
	Variants       Variants `json:"variants"`
	Alt            string   `json:"alt"`
	Width          int      `json:"width,omitempty"`
	Height         int      `json:"height,omitempty"`
}

// AssetManifest 汇总一次规范化产出的全部图片。
type AssetManifest struct {
	GeneratedAt string       `json:"generated_at"`
	Target      string       `json:"target"`
	Assets      []AssetEntry `json:"assets"`
}

// PageEntry 是内容清单中的一页。
type PageEntry struct {
	Slug   string `json:"slug"`
	Module string `json:"module"`
	Path   string `json:"path"`
}

// ContentManifest 索引所有已构建的页面。
type ContentManifest struct {
	GeneratedAt string      `json:"generated_at"`
	Target      string      `json:"target,omitempty"`
	Pages       []PageEntry `json:"pages"`
}

// ReadAssetManifest 读取并解析 asset-manifest.json。
func ReadAssetManifest(path string) (*AssetManifest, error) {
	var manifest AssetManifest
	if err := readJSON(path, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// ReadContentManifest 读取并解析 content/manifest.json。
func ReadContentManifest(path string) (*ContentManifest, error) {
	var manifest ContentManifest
	if err := readJSON(path, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
