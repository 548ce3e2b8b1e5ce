package content

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Logo":            "logo",
		"Café Déjà Vu":    "cafe_deja_vu",
		"產品 Banner 01":    "banner_01",
		"工廠":              "",
		"hero--wide":      "hero_wide",
		"__Hello World__": "hello_world",
		"ÅNGSTRÖM.v2":     "angstrom_v2",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "Slugify(%q)", input)
	}
}

func TestSlugifyOutputIsLowercaseASCII(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9_]*$`)
	for _, input := range []string{"智慧製造-Smart", "ÜBER_Größe", "日本語.JPG", "Ωmega"} {
		assert.Regexp(t, pattern, Slugify(input))
	}
}

func TestShortHash(t *testing.T) {
	hash := ShortHash([]byte("hello"))
	assert.Len(t, hash, 8)
	assert.Equal(t, "2cf24dba", hash)
	assert.NotEqual(t, hash, ShortHash([]byte("hello!")))
}

func TestFallbackImageID(t *testing.T) {
	assert.Equal(t, "x", FallbackImageID("x.jpg"))
	assert.Equal(t, "my_photo", FallbackImageID("My Photo.PNG"))
	assert.Equal(t, "sub_dir_a_b", FallbackImageID("sub/dir/a-b.webp"))
}

func TestSlugifyMatchesFallbackImageID(t *testing.T) {
	for _, name := range []string{"my-file.png", "Team Photo.JPG", "hero_banner-01.webp"} {
		stem := name[:strings.LastIndex(name, ".")]
		assert.Equal(t, FallbackImageID(name), Slugify(stem), "name %q", name)
	}
}
