// Package conversation turns REPL input into intents and renders practice
// events for the terminal.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// CommandPrefix marks input as a command. Anything else is an answer, so
// a learner practising English can still answer "stop".
const CommandPrefix = "/"

// KeywordParser matches commands to intents using keywords and simple
// patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	// Patterns run against the command without its prefix. The optional
	// second group is the payload.
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(start|begin|go)$`), domain.IntentStart},
		{regexp.MustCompile(`(?i)^(pass|skip|next|n|p)$`), domain.IntentPass},
		{regexp.MustCompile(`(?i)^(say|speak|hear)$`), domain.IntentSay},
		{regexp.MustCompile(`(?i)^(meaning|hint|m)$`), domain.IntentMeaning},
		{regexp.MustCompile(`(?i)^(define|def)(?:\s+(.+))?$`), domain.IntentDefine},
		{regexp.MustCompile(`(?i)^(restart|retry|again|r)$`), domain.IntentRestart},
		{regexp.MustCompile(`(?i)^(stop|release|hold)$`), domain.IntentStop},
		{regexp.MustCompile(`(?i)^(status|where|progress|info)$`), domain.IntentStatus},
		{regexp.MustCompile(`(?i)^(lang|language)(?:\s+(\S+))?$`), domain.IntentLanguage},
		{regexp.MustCompile(`(?i)^(load|open)(?:\s+(.+))?$`), domain.IntentLoadFile},
		{regexp.MustCompile(`(?i)^(files|ls)$`), domain.IntentFiles},
		{regexp.MustCompile(`(?i)^(paste)$`), domain.IntentPaste},
		{regexp.MustCompile(`(?i)^(lists|categories)$`), domain.IntentLists},
		{regexp.MustCompile(`(?i)^(vocab|list)(?:\s+(\S+))?$`), domain.IntentVocab},
		{regexp.MustCompile(`(?i)^(article|url)(?:\s+(\S+))?$`), domain.IntentArticle},
		{regexp.MustCompile(`(?i)^(token)(?:\s+(\S+))?$`), domain.IntentToken},
		{regexp.MustCompile(`(?i)^(history|runs)$`), domain.IntentHistory},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent. Input without the command
// prefix is an answer to the current word.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	if !strings.HasPrefix(trimmed, CommandPrefix) {
		return &domain.Intent{Type: domain.IntentAnswer, Payload: trimmed}, nil
	}

	cmd := strings.TrimSpace(strings.TrimPrefix(trimmed, CommandPrefix))
	p.log.Debug("parsing command: %q", cmd)

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(cmd)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)
		intent := &domain.Intent{Type: rule.intent}
		if len(m) > 2 {
			intent.Payload = strings.TrimSpace(m[2])
		}
		return intent, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}
