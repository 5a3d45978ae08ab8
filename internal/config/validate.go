package config

import (
	"fmt"
	"time"
)

// Validate performs rule checks on the loaded configuration. Load calls
// it automatically.
func (c *Config) Validate() error {
	if _, ok := c.LookupLanguage(c.Language); !ok {
		return fmt.Errorf("language %q is not in the language table", c.Language)
	}
	for i, l := range c.Languages {
		if l.Code == "" || l.Locale == "" {
			return fmt.Errorf("languages[%d]: code and locale are required", i)
		}
	}

	if c.Practice.MatchDelay < 0 || c.Practice.PassDelay < 0 {
		return fmt.Errorf("practice delays must be >= 0")
	}
	if c.Practice.MatchDelay > time.Minute || c.Practice.PassDelay > time.Minute {
		return fmt.Errorf("practice delays must be at most 1m")
	}

	switch c.Speech.Recognizer {
	case RecognizerTyped, RecognizerWhisper:
	case RecognizerAzure:
		if !c.Speech.HasAzure() {
			return fmt.Errorf("speech.recognizer=azure needs AZURE_SPEECH_KEY and AZURE_SPEECH_REGION")
		}
	default:
		return fmt.Errorf("speech.recognizer must be one of typed, whisper, azure (got %q)", c.Speech.Recognizer)
	}

	if c.API.PageSize <= 0 {
		return fmt.Errorf("api.page_size must be > 0 (got %d)", c.API.PageSize)
	}
	return nil
}
