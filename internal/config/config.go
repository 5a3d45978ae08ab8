// Package config loads vocabecho settings from an optional YAML file and
// the environment.
package config

import (
	"time"

	"github.com/hammamikhairi/vocabecho/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Language      string            `yaml:"language"       env:"VOCABECHO_LANGUAGE"   env-default:"fr"`
	VocabularyDir string            `yaml:"vocabulary_dir" env:"VOCABECHO_VOCAB_DIR"  env-default:"vocabulary"`
	DBPath        string            `yaml:"db_path"        env:"VOCABECHO_DB"         env-default:"vocabecho.db"`
	Languages     []domain.Language `yaml:"languages"`
	Log           LogConfig         `yaml:"log"`
	Practice      PracticeConfig    `yaml:"practice"`
	Speech        SpeechConfig      `yaml:"speech"`
	API           APIConfig         `yaml:"api"`
	AI            AIConfig          `yaml:"ai"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"normal"`
	File  string `yaml:"file"  env:"LOG_FILE"  env-default:"vocabecho.log"`
}

// PracticeConfig holds session pacing.
type PracticeConfig struct {
	MatchDelay time.Duration `yaml:"match_delay" env:"PRACTICE_MATCH_DELAY" env-default:"800ms"`
	PassDelay  time.Duration `yaml:"pass_delay"  env:"PRACTICE_PASS_DELAY"  env-default:"500ms"`
	AutoSay    bool          `yaml:"auto_say"    env:"PRACTICE_AUTO_SAY"    env-default:"false"`
}

// Recognizer backends.
const (
	RecognizerTyped   = "typed"
	RecognizerWhisper = "whisper"
	RecognizerAzure   = "azure"
)

// SpeechConfig holds TTS and speech recognition settings.
type SpeechConfig struct {
	Enabled        bool          `yaml:"enabled"         env:"SPEECH_ENABLED"          env-default:"true"`
	AzureKey       string        `yaml:"azure_key"       env:"AZURE_SPEECH_KEY"`
	AzureRegion    string        `yaml:"azure_region"    env:"AZURE_SPEECH_REGION"`
	Recognizer     string        `yaml:"recognizer"      env:"SPEECH_RECOGNIZER"       env-default:"typed"`
	WhisperBin     string        `yaml:"whisper_bin"     env:"WHISPER_BIN"             env-default:"whisper-cli"`
	WhisperModel   string        `yaml:"whisper_model"   env:"WHISPER_MODEL"           env-default:"models/ggml-base.bin"`
	RecordDuration time.Duration `yaml:"record_duration" env:"WHISPER_RECORD_DURATION" env-default:"2s"`
	WhisperTempDir string        `yaml:"whisper_temp_dir" env:"WHISPER_TEMP_DIR"       env-default:".vocabecho-stt"`
	CacheDir       string        `yaml:"cache_dir"       env:"SPEECH_CACHE_DIR"        env-default:".cache/tts"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"    env:"SPEECH_HTTP_TIMEOUT"     env-default:"15s"`
}

// HasAzure reports whether Azure credentials are configured.
func (s SpeechConfig) HasAzure() bool {
	return s.AzureKey != "" && s.AzureRegion != ""
}

// APIConfig holds the vocabulary list API settings.
type APIConfig struct {
	BaseURL  string        `yaml:"base_url"  env:"FRDIC_BASE_URL"  env-default:"https://api.frdic.com/api/open/v1"`
	Token    string        `yaml:"token"     env:"FRDIC_TOKEN"`
	PageSize int           `yaml:"page_size" env:"FRDIC_PAGE_SIZE" env-default:"100"`
	Timeout  time.Duration `yaml:"timeout"   env:"FRDIC_TIMEOUT"   env-default:"20s"`
}

// AIConfig holds the gloss agent settings.
type AIConfig struct {
	APIKey  string `yaml:"api_key"  env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Model   string `yaml:"model"    env:"OPENAI_MODEL"    env-default:"gpt-4o-mini"`
}

// Enabled reports whether the gloss agent can be used.
func (a AIConfig) Enabled() bool { return a.APIKey != "" }

// LookupLanguage resolves a language code against the configured table.
func (c *Config) LookupLanguage(code string) (domain.Language, bool) {
	return domain.LookupLanguage(c.Languages, code)
}
