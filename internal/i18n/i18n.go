// Package i18n provides localized user-facing messages.
package i18n

import "strings"

// Language represents a message language.
type Language string

const (
	EN Language = "en"
	ZH Language = "zh"
)

// Default is used when a language is unknown or unset.
const Default = EN

// Message keys.
const (
	KeyMissingAPIKey = "missing_api_key"
	KeyNoContent     = "no_content"
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	EN: {
		KeyMissingAPIKey: "Missing Gemini API key, please fill in your key in the plugin configuration",
		KeyNoContent:     "Gemini API returned no valid content",
	},
	ZH: {
		KeyMissingAPIKey: "缺少 Gemini API 密钥，请在插件配置中填写您的密钥",
		KeyNoContent:     "Gemini API 未返回有效内容",
	},
}

// Parse maps a config value such as "zh-CN" or "EN" to a supported Language.
func Parse(s string) Language {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	lang := Language(s)
	if _, ok := translations[lang]; ok {
		return lang
	}
	return Default
}

// T returns the translation for key in lang, falling back to the default language, then to the key itself.
func T(lang Language, key string) string {
	if msgs, ok := translations[lang]; ok {
		if s, ok := msgs[key]; ok {
			return s
		}
	}
	if s, ok := translations[Default][key]; ok {
		return s
	}
	return key
}

// Supported reports whether lang has its own translation table.
func Supported(lang Language) bool {
	_, ok := translations[lang]
	return ok
}
