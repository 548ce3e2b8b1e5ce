package content

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	SectionText  = "text"
	SectionImage = "image"
)

// deprecatedPlaceholder 是已迁移到 index.yml 的页面留下的 index.md 内容。
const deprecatedPlaceholder = "# This file is deprecated. Content is now managed in index.yml's 'sections' array."

// Section 是 layout.sections 中的一个区块。只有 text 与 image 可由 Markdown 同步。
type Section struct {
	Type    string `yaml:"type"`
	Label   string `yaml:"label,omitempty"`
	Title   string `yaml:"title,omitempty"`
	Content string `yaml:"content,omitempty"`
	ImageID string `yaml:"image_id,omitempty"`
	Display string `yaml:"display,omitempty"`
}

type textSectionYAML struct {
	Type    string `yaml:"type"`
	Label   string `yaml:"label,omitempty"`
	Title   string `yaml:"title,omitempty"`
	Content string `yaml:"content"`
}

type imageSectionYAML struct {
	Type    string `yaml:"type"`
	ImageID string `yaml:"image_id"`
	Display string `yaml:"display,omitempty"`
}

// MarshalYAML 按区块类型输出字段，text 区块总是包含 content。
func (s Section) MarshalYAML() (interface{}, error) {
	switch s.Type {
	case SectionText:
		return textSectionYAML{Type: s.Type, Label: s.Label, Title: s.Title, Content: s.Content}, nil
	case SectionImage:
		return imageSectionYAML{Type: s.Type, ImageID: s.ImageID, Display: s.Display}, nil
	}
	type plain Section
	return plain(s), nil
}

// IsSyncable reports whether a section type can be produced from Markdown.
func IsSyncable(sectionType string) bool {
	return sectionType == SectionText || sectionType == SectionImage
}

// IsManual 表示区块为手工配置：非 text/image 类型，或带 display 的 image。
func (s Section) IsManual() bool {
	if !IsSyncable(s.Type) {
		return true
	}
	return s.Type == SectionImage && s.Display != ""
}

// HasManualSections reports whether any section is manually curated.
func HasManualSections(sections []Section) bool {
	for _, s := range sections {
		if s.IsManual() {
			return true
		}
	}
	return false
}

// SectionsEqual 只按位置比较可同步的区块：text 比较 label/title/content，image 比较 image_id。
func SectionsEqual(a, b []Section) bool {
	sa, sb := syncableOnly(a), syncableOnly(b)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if sa[i].Type != sb[i].Type {
			return false
		}
		switch sa[i].Type {
		case SectionText:
			if sa[i].Label != sb[i].Label || sa[i].Title != sb[i].Title || sa[i].Content != sb[i].Content {
				return false
			}
		case SectionImage:
			if sa[i].ImageID != sb[i].ImageID {
				return false
			}
		}
	}
	return true
}

func syncableOnly(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if IsSyncable(s.Type) {
			out = append(out, s)
		}
	}
	return out
}

// ImageIDFunc 将 Markdown 中的图片路径解析为 image_id。
type ImageIDFunc func(imagePath string) string

var (
	markdownImage = regexp.MustCompile(`!\[.*?\]\(([^)]+)\)`)
	titleLine     = regexp.MustCompile(`^##\s`)
	headingPrefix = regexp.MustCompile(`^#+\s*`)
	titlePrefix   = regexp.MustCompile(`^##\s*`)
)

// ParseMarkdown 将 index.md 按行解析为区块列表。
func ParseMarkdown(markdown string, imageID ImageIDFunc) []Section {
	var (
		sections []Section
		label    string
		title    string
		body     []string
	)

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if title != "" || text != "" {
			sections = append(sections, Section{Type: SectionText, Label: label, Title: title, Content: text})
		}
		label, title, body = "", "", nil
	}

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.Contains(line, "deprecated") {
			continue
		}

		if match := markdownImage.FindStringSubmatch(line); match != nil {
			flush()
			if id := imageID(match[1]); id != "" {
				sections = append(sections, Section{Type: SectionImage, ImageID: id})
			}
			continue
		}

		if strings.HasPrefix(line, "#####") && !strings.HasPrefix(line, "######") {
			if title != "" || len(body) > 0 {
				flush()
			}
			label = strings.TrimSpace(headingPrefix.ReplaceAllString(line, ""))
			continue
		}

		if titleLine.MatchString(line) && !strings.HasPrefix(line, "###") {
			if title != "" {
				flush()
			}
			title = strings.TrimSpace(titlePrefix.ReplaceAllString(line, ""))
			continue
		}

		body = append(body, line)
	}
	flush()

	for len(sections) > 0 && sections[0].Type == SectionText && sections[0].Title == "" && strings.TrimSpace(sections[0].Content) == "" {
		sections = sections[1:]
	}
	return sections
}

var imagePathPrefixes = []string{"./", "assets/", "images/"}

// SidecarImageID 在 <pageDir>/assets/ 下查找图片描述文件并返回其 id。
func SidecarImageID(pageDir, imagePath string) (string, bool) {
	name := stripImagePrefixes(imagePath)
	candidates := []string{
		filepath.Join(pageDir, assetsDirName, name+".yml"),
		filepath.Join(pageDir, assetsDirName, trimExt(name)+".yml"),
	}
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		var meta struct {
			ID string `yaml:"id"`
		}
		if err := yaml.Unmarshal(data, &meta); err != nil || meta.ID == "" {
			continue
		}
		return meta.ID, true
	}
	return FallbackImageID(name), false
}

func stripImagePrefixes(imagePath string) string {
	name := imagePath
	for _, prefix := range imagePathPrefixes {
		name = strings.TrimPrefix(name, prefix)
	}
	return name
}
