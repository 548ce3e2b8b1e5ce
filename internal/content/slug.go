package content

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const hashLength = 8

var slugInvalidRun = regexp.MustCompile(`[^a-z0-9_]+`)

// Slugify 将任意文件名转换为只含 [a-z0-9_] 的 ASCII 小写标识，与 FallbackImageID 的结果一致。
// 带附加符号的拉丁字母会去掉符号保留字母，其余非 ASCII 字符被丢弃。
func Slugify(raw string) string {
	stripper := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripper, raw)
	if err != nil {
		folded = raw
	}
	lower := strings.ToLower(folded)
	var b strings.Builder
	for _, r := range lower {
		if r > unicode.MaxASCII {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	slug := slugInvalidRun.ReplaceAllString(b.String(), "_")
	slug = strings.Trim(slug, "_")
	return slug
}

// ShortHash 返回内容 SHA-256 的前 8 位十六进制字符。
func ShortHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:hashLength]
}

var fallbackIDInvalid = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// FallbackImageID 在找不到图片描述文件时由文件名推导 image_id：去扩展名、特殊字符转下划线、转小写。
func FallbackImageID(name string) string {
	return strings.ToLower(fallbackIDInvalid.ReplaceAllString(trimExt(name), "_"))
}

func trimExt(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 && !strings.Contains(name[idx:], "/") {
		return name[:idx]
	}
	return name
}
