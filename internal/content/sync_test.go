package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const manualPageYAML = `seo:
  title: Solutions
layout:
  sections:
    - type: text
      title: Old
      content: old body
    - type: custom
      widget: map
`

func TestSyncPageNeverRewritesManualLayouts(t *testing.T) {
	root := t.TempDir()
	ymlPath := filepath.Join(root, "pages", "solutions", "index.yml")
	writeFile(t, ymlPath, manualPageYAML)
	writeFile(t, filepath.Join(root, "pages", "solutions", "index.md"), "## Brand new\ntotally different\n")

	for _, check := range []bool{false, true} {
		result := NewSyncer(root, nil, check).SyncPage("solutions")
		assert.Equal(t, SyncStatusSkipped, result.Status)
		assert.Contains(t, result.Reason, "custom")
	}

	data, err := os.ReadFile(ymlPath)
	require.NoError(t, err)
	assert.Equal(t, manualPageYAML, string(data))
}

func TestSyncPageSkipsResponsiveImageSections(t *testing.T) {
	root := t.TempDir()
	yml := "layout:\n  sections:\n    - type: image\n      image_id: hero\n      display: desktop\n"
	writeFile(t, filepath.Join(root, "pages", "home", "index.yml"), yml)
	writeFile(t, filepath.Join(root, "pages", "home", "index.md"), "## Hi\nthere\n")

	result := NewSyncer(root, nil, false).SyncPage("home")
	assert.Equal(t, SyncStatusSkipped, result.Status)
}

func TestSyncPageRewritesSectionsAndKeepsOtherKeys(t *testing.T) {
	root := t.TempDir()
	pageDir := filepath.Join(root, "pages", "about_us")
	ymlPath := filepath.Join(pageDir, "index.yml")
	writeFile(t, ymlPath, `# page metadata
seo:
  title: About
  keywords: [company, history]
url_mapping:
  current_url: /about
layout:
  hero:
    image:
      id: about_hero
  sections:
    - type: text
      content: stale
`)
	writeFile(t, filepath.Join(pageDir, "index.md"), "##### COMPANY\n## Our story\nFounded in 1990.\n\nStill going.\n![team](./assets/team.jpg)\n")
	writeFile(t, filepath.Join(pageDir, "assets", "team.jpg.yml"), "id: team_photo\n")

	result := NewSyncer(root, nil, false).SyncPage("about_us")
	require.Equal(t, SyncStatusSynced, result.Status, result.Reason)
	assert.Equal(t, 1, result.Before)
	assert.Equal(t, 2, result.After)

	data, err := os.ReadFile(ymlPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# page metadata"))

	var doc struct {
		SEO struct {
			Title    string   `yaml:"title"`
			Keywords []string `yaml:"keywords"`
		} `yaml:"seo"`
		URLMapping map[string]string `yaml:"url_mapping"`
		Layout     struct {
			Hero     map[string]interface{} `yaml:"hero"`
			Sections []Section              `yaml:"sections"`
		} `yaml:"layout"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "About", doc.SEO.Title)
	assert.Equal(t, []string{"company", "history"}, doc.SEO.Keywords)
	assert.Equal(t, "/about", doc.URLMapping["current_url"])
	assert.NotNil(t, doc.Layout.Hero["image"])
	assert.Equal(t, []Section{
		{Type: SectionText, Label: "COMPANY", Title: "Our story", Content: "Founded in 1990.\n\nStill going."},
		{Type: SectionImage, ImageID: "team_photo"},
	}, doc.Layout.Sections)

	again := NewSyncer(root, nil, true).SyncPage("about_us")
	assert.Equal(t, SyncStatusSkipped, again.Status)
	assert.Equal(t, "in sync", again.Reason)
}

func TestSyncPageCreatesLayoutWhenMissing(t *testing.T) {
	root := t.TempDir()
	ymlPath := filepath.Join(root, "pages", "news", "index.yml")
	writeFile(t, ymlPath, "seo:\n  title: News\n")
	writeFile(t, filepath.Join(root, "pages", "news", "index.md"), "plain text\n")

	result := NewSyncer(root, nil, false).SyncPage("news")
	require.Equal(t, SyncStatusSynced, result.Status)

	var doc struct {
		Layout struct {
			Sections []Section `yaml:"sections"`
		} `yaml:"layout"`
	}
	data, err := os.ReadFile(ymlPath)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, []Section{{Type: SectionText, Content: "plain text"}}, doc.Layout.Sections)
}

func TestSyncCheckModeReportsWithoutWriting(t *testing.T) {
	root := t.TempDir()
	yml := "layout:\n  sections: []\n"
	ymlPath := filepath.Join(root, "pages", "contact", "index.yml")
	writeFile(t, ymlPath, yml)
	writeFile(t, filepath.Join(root, "pages", "contact", "index.md"), "## Contact\nCall us\n")
	writeFile(t, filepath.Join(root, "pages", "header", "index.md"), "## Header\n")
	writeFile(t, filepath.Join(root, "pages", "header", "index.yml"), "logo: x\n")
	writeFile(t, filepath.Join(root, "pages", "empty", "index.yml"), "seo: {}\n")

	syncer := NewSyncer(root, nil, true)
	pages, err := syncer.Pages()
	require.NoError(t, err)
	assert.Equal(t, []string{"contact", "empty"}, pages)

	summary, err := syncer.Run(context.Background(), pages)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NeedsSync)
	assert.Equal(t, 1, summary.Skipped)
	assert.True(t, summary.Failed(true))

	data, err := os.ReadFile(ymlPath)
	require.NoError(t, err)
	assert.Equal(t, yml, string(data))
}

func TestSyncSkipsDeprecatedPlaceholder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "old", "index.yml"), "layout: {}\n")
	writeFile(t, filepath.Join(root, "pages", "old", "index.md"), deprecatedPlaceholder+"\n")

	result := NewSyncer(root, nil, false).SyncPage("old")
	assert.Equal(t, SyncStatusSkipped, result.Status)
	assert.Equal(t, "deprecated placeholder", result.Reason)
}

func TestResolvePagesUnknownPage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "home", "index.yml"), "")

	_, err := NewSyncer(root, nil, false).ResolvePages("missing")
	assert.ErrorIs(t, err, ErrPageNotFound)

	pages, err := NewSyncer(root, nil, false).ResolvePages("home")
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, pages)
}
