package content

import (
	"path"
	"strings"
)

// ImageRef 是 index.yml 中对图片的引用，desktop/mobile 可指向其他 image_id。
type ImageRef struct {
	ID      string `json:"id"`
	Desktop string `json:"desktop,omitempty"`
	Mobile  string `json:"mobile,omitempty"`
}

// ResolvedImage 是解析后可直接渲染的图片。
type ResolvedImage struct {
	ID      string `json:"id"`
	Desktop string `json:"desktop"`
	Mobile  string `json:"mobile"`
	Alt     string `json:"alt"`
}

// AssetResolver 根据资源清单把 image_id 解析为公开路径。
type AssetResolver struct {
	assets     map[string]AssetEntry
	publicPath string
}

// NewAssetResolver 以清单建立索引，publicPath 为空时使用 /assets。
func NewAssetResolver(manifest *AssetManifest, publicPath string) *AssetResolver {
	if publicPath == "" {
		publicPath = "/" + assetsDirName
	}
	r := &AssetResolver{
		assets:     make(map[string]AssetEntry),
		publicPath: strings.TrimRight(publicPath, "/"),
	}
	if manifest != nil {
		for _, asset := range manifest.Assets {
			r.assets[asset.ID] = asset
		}
	}
	return r
}

// Resolve 解析图片引用；未知 id 返回 false。
func (r *AssetResolver) Resolve(ref ImageRef) (ResolvedImage, bool) {
	asset, ok := r.assets[ref.ID]
	if !ok {
		return ResolvedImage{}, false
	}

	desktop := asset.Variants.Desktop
	mobile := asset.Variants.Mobile
	if ref.Desktop != "" && ref.Desktop != ref.ID+"_desktop" {
		if override, ok := r.assets[ref.Desktop]; ok {
			desktop = override.NormalizedPath
		}
	}
	if ref.Mobile != "" && ref.Mobile != ref.ID+"_mobile" {
		if override, ok := r.assets[ref.Mobile]; ok {
			mobile = override.NormalizedPath
		}
	}

	return ResolvedImage{
		ID:      ref.ID,
		Desktop: r.publicPath + "/" + path.Base(desktop),
		Mobile:  r.publicPath + "/" + path.Base(mobile),
		Alt:     asset.Alt,
	}, true
}

// ResolveID 等价于 Resolve(ImageRef{ID: id})。
func (r *AssetResolver) ResolveID(id string) (ResolvedImage, bool) {
	return r.Resolve(ImageRef{ID: id})
}
