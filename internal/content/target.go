package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Target 决定构建产物写入哪个前端工程的目录约定。
type Target string

const (
	TargetNext   Target = "next"
	TargetNuxt   Target = "nuxt"
	TargetAstro  Target = "astro"
	TargetStatic Target = "static"
)

const (
	pagesDirName   = "pages"
	assetsDirName  = "assets"
	contentDirName = "content"
)

var targetConfigFiles = []struct {
	target Target
	files  []string
}{
	{TargetNext, []string{"next.config.ts", "next.config.js", "next.config.mjs"}},
	{TargetNuxt, []string{"nuxt.config.ts", "nuxt.config.js"}},
	{TargetAstro, []string{"astro.config.mjs", "astro.config.ts"}},
}

// ParseTarget 解析命令行传入的目标名称。空字符串返回空 Target，表示自动探测。
func ParseTarget(raw string) (Target, error) {
	switch Target(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case TargetNext:
		return TargetNext, nil
	case TargetNuxt:
		return TargetNuxt, nil
	case TargetAstro:
		return TargetAstro, nil
	case TargetStatic:
		return TargetStatic, nil
	}
	return "", fmt.Errorf("unknown target %q (expected next, nuxt, astro or static)", raw)
}

// DetectTarget 依次在根目录与其直接子目录中查找框架配置文件，找不到时返回 static。
func DetectTarget(root string) Target {
	for _, dir := range candidateDirs(root) {
		for _, entry := range targetConfigFiles {
			if hasAnyFile(dir, entry.files) {
				return entry.target
			}
		}
	}
	return TargetStatic
}

// FindProjectDir 返回包含目标框架配置文件的目录；static 或未找到时返回空字符串。
func FindProjectDir(root string, target Target) string {
	for _, entry := range targetConfigFiles {
		if entry.target != target {
			continue
		}
		for _, dir := range candidateDirs(root) {
			if hasAnyFile(dir, entry.files) {
				return dir
			}
		}
	}
	return ""
}

// BuildConfig 描述一次构建的输入与输出目录。
type BuildConfig struct {
	Root       string
	Target     Target
	ContentDir string
	OutputDir  string
}

// AssetsOutputDir 是规范化图片的输出目录。
func (c BuildConfig) AssetsOutputDir() string {
	return filepath.Join(c.OutputDir, assetsDirName)
}

// ContentOutputDir 是页面 JSON 与内容清单的输出目录。
func (c BuildConfig) ContentOutputDir() string {
	return filepath.Join(c.OutputDir, contentDirName)
}

// AssetManifestPath 返回 asset-manifest.json 的路径。
func (c BuildConfig) AssetManifestPath() string {
	return filepath.Join(c.OutputDir, "asset-manifest.json")
}

// ContentManifestPath 返回 content/manifest.json 的路径。
func (c BuildConfig) ContentManifestPath() string {
	return filepath.Join(c.ContentOutputDir(), "manifest.json")
}

// NewBuildConfig 根据目标计算输出目录；target 为空时自动探测。
func NewBuildConfig(root string, target Target) BuildConfig {
	if target == "" {
		target = DetectTarget(root)
	}

	cfg := BuildConfig{
		Root:       root,
		Target:     target,
		ContentDir: filepath.Join(root, pagesDirName),
	}

	if target == TargetStatic {
		cfg.OutputDir = filepath.Join(root, "static-app")
		return cfg
	}

	if projectDir := FindProjectDir(root, target); projectDir != "" {
		cfg.OutputDir = filepath.Join(projectDir, "public")
	} else {
		cfg.OutputDir = filepath.Join(root, string(target)+"-app", "public")
	}
	return cfg
}

// candidateDirs 返回根目录以及非隐藏、非 node_modules 的直接子目录。
func candidateDirs(root string) []string {
	dirs := []string{root}
	entries, err := os.ReadDir(root)
	if err != nil {
		return dirs
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") || name == "node_modules" {
			continue
		}
		dirs = append(dirs, filepath.Join(root, name))
	}
	return dirs
}

func hasAnyFile(dir string, names []string) bool {
	for _, name := range names {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
