package locale

import "testing"

func TestLanguageNegotiationInputs(t *testing.T) {
	normalize := map[string]string{
		"zh":      LanguageChinese,
		"ZH_hant": LanguageChinese,
		"tw":      LanguageChinese,
		"en-US":   LanguageEnglish,
		"fr":      "",
		"  ":      "",
	}
	for in, want := range normalize {
		if got := NormalizeLanguage(in); got != want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}

	header := map[string]string{
		"zh-TW,zh;q=0.9":          LanguageChinese,
		"en-US,en;q=0.9,zh;q=0.8": LanguageEnglish,
		"fr-FR,en;q=0.5":          LanguageEnglish,
		"fr-FR,fr;q=0.9":          "",
	}
	for in, want := range header {
		if got := LanguageFromAcceptLanguage(in); got != want {
			t.Errorf("LanguageFromAcceptLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPreferenceFallsBackToChinese(t *testing.T) {
	if p := PreferenceForLanguage("EN"); p.ContentLang != "en-US" {
		t.Fatalf("english preference = %+v", p)
	}
	for _, lang := range []string{"", "de", "zh"} {
		if p := PreferenceForLanguage(lang); p.Language != LanguageChinese || p.ContentLang != "zh-TW" {
			t.Fatalf("PreferenceForLanguage(%q) = %+v", lang, p)
		}
	}
}

func TestMessages(t *testing.T) {
	if got := T("en", MsgPageNotFound); got != "Page not found" {
		t.Fatalf("T(en) = %q", got)
	}
	if got := T("", MsgPageNotFound); got != "找不到頁面" {
		t.Fatalf("T(default) = %q", got)
	}
	if got := T("en", "no_such_key"); got != "no_such_key" {
		t.Fatalf("unknown key should pass through, got %q", got)
	}
	if got := Pick("en", "", "僅中文"); got != "僅中文" {
		t.Fatalf("Pick should fall back to chinese when english is empty, got %q", got)
	}
}
