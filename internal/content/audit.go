package content

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RuleNoRawAssetRef 禁止在 Markdown 中直接引用未规范化的 assets/ 原始文件。
const RuleNoRawAssetRef = "no-raw-asset-ref"

// Violation 是一条审计违规。
type Violation struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	Rule       string `json:"rule"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s:%d:%d %s [%s] %s", v.File, v.Line, v.Column, v.Message, v.Rule, v.Suggestion)
}

// AuditResult 汇总审计结果。
type AuditResult struct {
	FilesChecked int
	Violations   []Violation
}

// Passed 在没有任何违规时为 true。
func (r AuditResult) Passed() bool {
	return len(r.Violations) == 0
}

var (
	rawMarkdownRef   = regexp.MustCompile(`!\[([^\]]*)\]\((?:\./)?assets/([^)]+)\)`)
	rawHTMLImgRef    = regexp.MustCompile(`<img[^>]+src=["'](?:\./)?assets/([^"']+)["']`)
	normalizedName   = regexp.MustCompile(`^[a-z0-9_-]+_[a-f0-9]{6,}\.(?:jpg|jpeg|png|gif|webp|svg)$`)
	asciiLowerSimple = regexp.MustCompile(`^[a-z0-9_.-]+$`)
)

// IsNormalizedFilename 判断文件名是否为 <name>_<hash>.<ext> 的规范形式。
func IsNormalizedFilename(name string) bool {
	if strings.HasPrefix(name, "dist/assets/") {
		return true
	}
	base := path.Base(name)
	return normalizedName.MatchString(strings.ToLower(base)) && asciiLowerSimple.MatchString(base)
}

// Audit 检查 pages/*/index.md 中的原始图片引用。
func Audit(root string) (AuditResult, error) {
	contentDir := filepath.Join(root, pagesDirName)
	modules, err := listModules(contentDir, nil)
	if err != nil {
		return AuditResult{}, fmt.Errorf("content directory not found: %w", err)
	}

	var result AuditResult
	for _, module := range modules {
		mdPath := filepath.Join(contentDir, module, "index.md")
		data, err := os.ReadFile(mdPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return result, err
		}
		result.FilesChecked++
		rel, relErr := filepath.Rel(root, mdPath)
		if relErr != nil {
			rel = mdPath
		}
		result.Violations = append(result.Violations, AuditMarkdown(filepath.ToSlash(rel), string(data))...)
	}
	return result, nil
}

// AuditMarkdown 按行检查 Markdown 图片与 <img> 标签，列号从 1 开始。
func AuditMarkdown(file, markdown string) []Violation {
	var violations []Violation
	for i, line := range strings.Split(markdown, "\n") {
		for _, loc := range rawMarkdownRef.FindAllStringSubmatchIndex(line, -1) {
			assetPath := line[loc[4]:loc[5]]
			if IsNormalizedFilename(assetPath) {
				continue
			}
			violations = append(violations, Violation{
				File:       file,
				Line:       i + 1,
				Column:     utf8.RuneCountInString(line[:loc[0]]) + 1,
				Rule:       RuleNoRawAssetRef,
				Message:    "raw asset reference assets/" + assetPath,
				Suggestion: "move the image to index.yml and reference it via layout.hero.image.id or an image_id field",
			})
		}
		for _, loc := range rawHTMLImgRef.FindAllStringSubmatchIndex(line, -1) {
			assetPath := line[loc[2]:loc[3]]
			if IsNormalizedFilename(assetPath) {
				continue
			}
			violations = append(violations, Violation{
				File:       file,
				Line:       i + 1,
				Column:     utf8.RuneCountInString(line[:loc[0]]) + 1,
				Rule:       RuleNoRawAssetRef,
				Message:    "raw asset reference assets/" + assetPath,
				Suggestion: "move the image to the index.yml layout configuration",
			})
		}
	}
	return violations
}
