package domain

// Language describes a practice language: its short code, the BCP-47
// locale handed to recognizers and TTS, and the default neural voice.
type Language struct {
	Code   string `yaml:"code"`
	Locale string `yaml:"locale"`
	Voice  string `yaml:"voice"`
	Name   string `yaml:"name"`
}

// DefaultLanguages is the built-in language table.
var DefaultLanguages = []Language{
	{Code: "fr", Locale: "fr-FR", Voice: "fr-FR-DeniseNeural", Name: "Français"},
	{Code: "zh", Locale: "zh-CN", Voice: "zh-CN-XiaoxiaoNeural", Name: "中文"},
	{Code: "ja", Locale: "ja-JP", Voice: "ja-JP-NanamiNeural", Name: "日本語"},
	{Code: "en", Locale: "en-US", Voice: "en-US-JennyNeural", Name: "English"},
}

// LookupLanguage finds a language by code in the given table.
func LookupLanguage(table []Language, code string) (Language, bool) {
	for _, l := range table {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}
