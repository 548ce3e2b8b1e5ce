package locale

// Pick returns the text matching the request language, defaulting to Chinese.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return chinese
	}
	if chinese != "" {
		return chinese
	}
	return english
}

// Message 是一条双语文案。
type Message struct {
	Chinese string
	English string
}

// 错误响应与提示使用的固定文案。
const (
	MsgNotFound          = "not_found"
	MsgMethodNotAllowed  = "method_not_allowed"
	MsgInternal          = "internal"
	MsgInvalidJSON       = "invalid_json"
	MsgValidationFailed  = "validation_failed"
	MsgEventNotFound     = "event_not_found"
	MsgPageNotFound      = "page_not_found"
	MsgAssetNotFound     = "asset_not_found"
	MsgInvalidSlug       = "invalid_slug"
	MsgInvalidPageType   = "invalid_page_type"
	MsgUnauthorized      = "unauthorized"
	MsgInvalidLogin      = "invalid_login"
	MsgReadOnly          = "read_only"
	MsgManifestMissing   = "manifest_missing"
	MsgCacheInvalidated  = "cache_invalidated"
	MsgLoggedOut         = "logged_out"
	MsgSessionSaveFailed = "session_save_failed"
)

var catalog = map[string]Message{
	MsgNotFound:          {"找不到資源", "Resource not found"},
	MsgMethodNotAllowed:  {"不允許的請求方法", "Method not allowed"},
	MsgInternal:          {"伺服器錯誤", "Internal server error"},
	MsgInvalidJSON:       {"無效的 JSON 格式", "Invalid JSON body"},
	MsgValidationFailed:  {"輸入驗證失敗", "Validation failed"},
	MsgEventNotFound:     {"找不到活動", "Event not found"},
	MsgPageNotFound:      {"找不到頁面", "Page not found"},
	MsgAssetNotFound:     {"找不到圖片資源", "Asset not found"},
	MsgInvalidSlug:       {"slug 格式無效", "Invalid slug"},
	MsgInvalidPageType:   {"type 格式無效", "Invalid page type"},
	MsgUnauthorized:      {"請先登入", "Login required"},
	MsgInvalidLogin:      {"帳號或密碼錯誤", "Invalid username or password"},
	MsgReadOnly:          {"Mock 模式不支援寫入", "Writes are disabled in mock mode"},
	MsgManifestMissing:   {"清單不存在，請先執行 build", "Manifest not found, run build first"},
	MsgCacheInvalidated:  {"快取已清除", "Cache invalidated"},
	MsgLoggedOut:         {"已登出", "Logged out"},
	MsgSessionSaveFailed: {"會話保存失敗", "Failed to save session"},
}

// T 返回 key 对应语言的文案，未知 key 原样返回。
func T(language, key string) string {
	msg, ok := catalog[key]
	if !ok {
		return key
	}
	return Pick(language, msg.English, msg.Chinese)
}
