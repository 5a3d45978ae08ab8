package gpt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// ErrNoGloss is returned when the model does not recognise the word.
var ErrNoGloss = errors.New("gpt: no gloss for word")

// Agent wraps the Client with vocabulary-specific prompting.
type Agent struct {
	client *Client
	log    *logger.Logger
}

// NewAgent creates a gloss agent backed by the given Client.
func NewAgent(client *Client, log *logger.Logger) *Agent {
	return &Agent{client: client, log: log}
}

// Gloss returns a one-line meaning for word in lang.
func (a *Agent) Gloss(ctx context.Context, word domain.WordRecord, lang domain.Language) (string, error) {
	if strings.TrimSpace(word.Word) == "" {
		return "", domain.ErrNoWords
	}

	raw, err := a.client.Chat(ctx, PromptGloss, glossQuery(word, lang))
	if err != nil {
		return "", err
	}

	gloss := cleanReply(raw)
	if gloss == "" || gloss == "?" {
		a.log.Debug("gpt: no gloss for %q (%s)", word.Word, lang.Code)
		return "", ErrNoGloss
	}
	a.log.Debug("gpt: gloss %q -> %q", word.Word, gloss)
	return gloss, nil
}

func glossQuery(word domain.WordRecord, lang domain.Language) string {
	name := lang.Name
	if name == "" {
		name = lang.Code
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Language: %s\nWord: %s", name, word.Word)
	if word.HasPhonetic() {
		fmt.Fprintf(&b, "\nReading: %s", word.Phonetic)
	}
	return b.String()
}

// cleanReply keeps the first non-empty line and drops the code fences and
// quotes models like to add.
func cleanReply(s string) string {
	s = stripCodeFence(s)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return strings.Trim(line, "\"'`“”")
		}
	}
	return ""
}

// stripCodeFence removes ``` ... ``` wrappers.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
