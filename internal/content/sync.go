package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ewillweb/internal/logger"
	"gopkg.in/yaml.v3"
)

// SyncStatus 是单个页面的同步结果。
type SyncStatus string

const (
	SyncStatusSynced    SyncStatus = "synced"
	SyncStatusSkipped   SyncStatus = "skipped"
	SyncStatusNeedsSync SyncStatus = "needs_sync"
	SyncStatusError     SyncStatus = "error"
)

// ErrPageNotFound 表示指定的页面目录不存在。
var ErrPageNotFound = errors.New("page not found")

// SyncResult 描述一个页面的处理结果。
type SyncResult struct {
	Page   string
	Status SyncStatus
	Reason string
	Before int
	After  int
}

// SyncSummary 汇总一次同步运行。
type SyncSummary struct {
	Results   []SyncResult
	Synced    int
	Skipped   int
	NeedsSync int
	Errors    int
}

// Failed 在检查模式下有页面需要同步、或写入模式下出现错误时为 true。
func (s SyncSummary) Failed(checkOnly bool) bool {
	if checkOnly {
		return s.NeedsSync > 0 || s.Errors > 0
	}
	return s.Errors > 0
}

// Syncer 把 index.md 单向同步到 index.yml 的 layout.sections。
// 含手工区块的页面整页跳过，不做合并。
type Syncer struct {
	pagesDir  string
	log       *logger.Logger
	checkOnly bool
}

// NewSyncer 创建同步器；checkOnly 为 true 时只比较不写入。
func NewSyncer(root string, log *logger.Logger, checkOnly bool) *Syncer {
	if log == nil {
		log = logger.Nop()
	}
	return &Syncer{pagesDir: filepath.Join(root, pagesDirName), log: log, checkOnly: checkOnly}
}

// Pages 返回需要同步的页面：排除隐藏目录与共享的 header。
func (s *Syncer) Pages() ([]string, error) {
	pages, err := listModules(s.pagesDir, map[string]bool{"header": true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(pages)
	return pages, nil
}

// ResolvePages 在 page 非空时只返回该页面，并确认其目录存在。
func (s *Syncer) ResolvePages(page string) ([]string, error) {
	page = strings.TrimSpace(page)
	if page == "" {
		return s.Pages()
	}
	info, err := os.Stat(filepath.Join(s.pagesDir, page))
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, page)
	}
	return []string{page}, nil
}

// Run 依次同步页面。
func (s *Syncer) Run(ctx context.Context, pages []string) (SyncSummary, error) {
	var summary SyncSummary
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := s.SyncPage(page)
		summary.Results = append(summary.Results, result)
		switch result.Status {
		case SyncStatusSynced:
			summary.Synced++
		case SyncStatusSkipped:
			summary.Skipped++
		case SyncStatusNeedsSync:
			summary.NeedsSync++
		case SyncStatusError:
			summary.Errors++
		}
	}
	s.log.Info("sync finished",
		"check", s.checkOnly,
		"synced", summary.Synced,
		"skipped", summary.Skipped,
		"needs_sync", summary.NeedsSync,
		"errors", summary.Errors,
	)
	return summary, nil
}

// SyncPage 同步单个页面。
func (s *Syncer) SyncPage(page string) SyncResult {
	pageDir := filepath.Join(s.pagesDir, page)
	mdPath := filepath.Join(pageDir, "index.md")
	ymlPath := filepath.Join(pageDir, "index.yml")
	log := s.log.With("page", page)

	skip := func(reason string) SyncResult {
		log.Info("skipped", "reason", reason)
		return SyncResult{Page: page, Status: SyncStatusSkipped, Reason: reason}
	}
	fail := func(err error) SyncResult {
		log.Error("sync failed", "error", err)
		return SyncResult{Page: page, Status: SyncStatusError, Reason: err.Error()}
	}

	mdData, err := os.ReadFile(mdPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return skip("no index.md")
		}
		return fail(err)
	}
	ymlData, err := os.ReadFile(ymlPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return skip("no index.yml")
		}
		return fail(err)
	}

	markdown := string(mdData)
	if strings.TrimSpace(markdown) == deprecatedPlaceholder {
		return skip("deprecated placeholder")
	}

	parsed := ParseMarkdown(markdown, func(imagePath string) string {
		id, found := SidecarImageID(pageDir, imagePath)
		if !found {
			log.Warn("image sidecar not found, using fallback id", "image", imagePath, "image_id", id)
		}
		return id
	})
	if len(parsed) == 0 {
		log.Warn("markdown produced no sections")
		return skip("no sections parsed")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(ymlData, &doc); err != nil {
		return fail(fmt.Errorf("parse index.yml: %w", err))
	}
	existing, err := existingSections(&doc)
	if err != nil {
		return fail(err)
	}

	if HasManualSections(existing) {
		return skip("manual sections: " + strings.Join(manualTypes(existing), ", "))
	}

	if SectionsEqual(parsed, existing) {
		log.Debug("already in sync", "sections", len(parsed))
		return SyncResult{Page: page, Status: SyncStatusSkipped, Reason: "in sync", Before: len(existing), After: len(parsed)}
	}

	if s.checkOnly {
		log.Warn("needs sync", "before", len(existing), "after", len(parsed))
		return SyncResult{Page: page, Status: SyncStatusNeedsSync, Before: len(existing), After: len(parsed)}
	}

	out, err := replaceSections(&doc, parsed)
	if err != nil {
		return fail(err)
	}
	if err := os.WriteFile(ymlPath, out, 0o644); err != nil {
		return fail(err)
	}
	log.Info("index.yml updated", "before", len(existing), "after", len(parsed))
	return SyncResult{Page: page, Status: SyncStatusSynced, Before: len(existing), After: len(parsed)}
}

func manualTypes(sections []Section) []string {
	seen := map[string]bool{}
	var types []string
	for _, s := range sections {
		if !s.IsManual() {
			continue
		}
		name := s.Type
		if s.Type == SectionImage {
			name = "image(display)"
		}
		if !seen[name] {
			seen[name] = true
			types = append(types, name)
		}
	}
	return types
}

// existingSections 读取 layout.sections；缺失时返回空列表。
func existingSections(doc *yaml.Node) ([]Section, error) {
	root := documentMapping(doc)
	if root == nil {
		return nil, nil
	}
	layout := mappingValue(root, "layout")
	if layout == nil || layout.Kind != yaml.MappingNode {
		return nil, nil
	}
	node := mappingValue(layout, "sections")
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil, nil
	}
	sections := make([]Section, 0, len(node.Content))
	for i, item := range node.Content {
		var section Section
		if err := item.Decode(&section); err != nil {
			// 手工区块的字段结构各异，只需要 type 即可判定
			var loose struct {
				Type string `yaml:"type"`
			}
			if looseErr := item.Decode(&loose); looseErr != nil || IsSyncable(loose.Type) {
				return nil, fmt.Errorf("decode layout.sections[%d]: %w", i, err)
			}
			section = Section{Type: loose.Type}
		}
		sections = append(sections, section)
	}
	return sections, nil
}

// replaceSections 整体替换 layout.sections，保留文档中的其他键、顺序与注释。
func replaceSections(doc *yaml.Node, sections []Section) ([]byte, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		*doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("index.yml root is not a mapping")
	}

	layout := mappingValue(root, "layout")
	if layout == nil {
		layout = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		root.Content = append(root.Content, scalarKey("layout"), layout)
	} else if layout.Kind != yaml.MappingNode {
		*layout = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	var encoded yaml.Node
	if err := encoded.Encode(sections); err != nil {
		return nil, fmt.Errorf("encode sections: %w", err)
	}

	if existing := mappingValue(layout, "sections"); existing != nil {
		*existing = encoded
	} else {
		layout.Content = append(layout.Content, scalarKey("sections"), &encoded)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func documentMapping(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil
	}
	return doc.Content[0]
}

func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func scalarKey(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
