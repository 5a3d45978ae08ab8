package conversation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

func capture() (*CLIPresenter, *[]string) {
	var lines []string
	p := NewCLIPresenter(logger.New(logger.LevelOff, nil), func(format string, a ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, a...))
	})
	return p, &lines
}

func TestCLIPresenterRendersEvents(t *testing.T) {
	p, lines := capture()
	word := domain.WordRecord{Word: "chat", Phonetic: "/ʃa/", Meaning: "cat"}

	p.Present(domain.Event{Kind: domain.EventWord, Word: word, Position: 1, Total: 3})
	p.Present(domain.Event{Kind: domain.EventMismatched, Word: word, Transcript: "chien"})
	p.Present(domain.Event{Kind: domain.EventMatched, Word: word})
	p.Present(domain.Event{Kind: domain.EventPassed, Word: word})
	p.Present(domain.Event{Kind: domain.EventFinished, Summary: domain.RunSummary{Total: 3, Matched: 2, Passed: 1}})
	p.Present(domain.Event{Kind: domain.EventNoWords})
	p.Present(domain.Event{Kind: domain.EventRecognizerError, Err: errors.New("mic unplugged")})

	require.Len(t, *lines, 7)
	got := *lines
	assert.Contains(t, got[0], "[2/3]")
	assert.Contains(t, got[0], "chat")
	assert.Contains(t, got[0], "/ʃa/")
	assert.Contains(t, got[1], `Heard "chien", try again.`)
	assert.Contains(t, got[2], "✓ chat")
	assert.Contains(t, got[3], "→ chat  cat")
	assert.Contains(t, got[4], "Done! 2/3 matched, 1 passed.")
	assert.Contains(t, got[5], LineNoWords)
	assert.Contains(t, got[6], "mic unplugged")
}

func TestFormatWordWithoutPhonetic(t *testing.T) {
	line := FormatWord(domain.WordRecord{Word: "猫"}, 0, 1)
	assert.Contains(t, line, "[1/1]")
	assert.Contains(t, line, "猫")
	assert.NotContains(t, line, "  ")
}

func TestFormatRun(t *testing.T) {
	run := domain.RunSummary{
		Language:   "fr",
		Source:     "animals.csv",
		Total:      10,
		Matched:    8,
		Passed:     2,
		FinishedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	line := FormatRun(run)
	assert.Contains(t, line, "2026-03-01 09:30")
	assert.Contains(t, line, "8/10")
	assert.Contains(t, line, "animals.csv")
}
