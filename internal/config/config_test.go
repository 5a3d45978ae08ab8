package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/vocabecho/internal/domain"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VOCABECHO_CONFIG", "")
	t.Setenv("FRDIC_TOKEN", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, 800*time.Millisecond, cfg.Practice.MatchDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Practice.PassDelay)
	assert.Equal(t, RecognizerTyped, cfg.Speech.Recognizer)
	assert.Equal(t, "https://api.frdic.com/api/open/v1", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, 100, cfg.API.PageSize)
	assert.Equal(t, ".vocabecho-stt", cfg.Speech.WhisperTempDir)

	zh, ok := cfg.LookupLanguage("zh")
	require.True(t, ok)
	assert.Equal(t, "zh-CN", zh.Locale)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabecho.yaml")
	yaml := `language: ja
practice:
  match_delay: 1s
speech:
  whisper_temp_dir: /tmp/stt
languages:
  - code: ja
    locale: ja-JP
    voice: ja-JP-KeitaNeural
    name: Japanese
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ja", cfg.Language)
	assert.Equal(t, time.Second, cfg.Practice.MatchDelay)
	assert.Equal(t, "/tmp/stt", cfg.Speech.WhisperTempDir)
	require.Len(t, cfg.Languages, 1)
	assert.Equal(t, "ja-JP-KeitaNeural", cfg.Languages[0].Voice)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Language:  "fr",
			Languages: append([]domain.Language(nil), domain.DefaultLanguages...),
			Practice:  PracticeConfig{MatchDelay: 800 * time.Millisecond, PassDelay: 500 * time.Millisecond},
			Speech:    SpeechConfig{Recognizer: RecognizerTyped},
			API:       APIConfig{PageSize: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown language", func(c *Config) { c.Language = "xx" }, true},
		{"negative delay", func(c *Config) { c.Practice.PassDelay = -time.Second }, true},
		{"unknown recognizer", func(c *Config) { c.Speech.Recognizer = "vosk" }, true},
		{"azure without key", func(c *Config) { c.Speech.Recognizer = RecognizerAzure }, true},
		{"azure with key", func(c *Config) {
			c.Speech.Recognizer = RecognizerAzure
			c.Speech.AzureKey = "k"
			c.Speech.AzureRegion = "westeurope"
		}, false},
		{"zero page size", func(c *Config) { c.API.PageSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
