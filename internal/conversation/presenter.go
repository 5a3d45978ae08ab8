package conversation

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// Compile-time interface check.
var _ domain.Presenter = (*CLIPresenter)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// CLIPresenter renders practice events as terminal lines.
type CLIPresenter struct {
	log     *logger.Logger
	printFn PrintFunc
}

// NewCLIPresenter creates a terminal presenter.
// If printFn is nil, fmt.Printf is used.
func NewCLIPresenter(log *logger.Logger, printFn PrintFunc) *CLIPresenter {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &CLIPresenter{log: log, printFn: printFn}
}

// Present prints one line for ev.
func (p *CLIPresenter) Present(ev domain.Event) {
	p.log.Debug("present: %s (%d/%d)", ev.Kind, ev.Position+1, ev.Total)

	switch ev.Kind {
	case domain.EventWord:
		p.printFn("%s", FormatWord(ev.Word, ev.Position, ev.Total))
	case domain.EventMatched:
		p.printFn("%s%s"+LineMatched+"%s", green, bold, ev.Word.Word, reset)
	case domain.EventMismatched:
		p.printFn("%s"+LineTryAgain+"%s", yellow, ev.Transcript, reset)
	case domain.EventPassed:
		line := fmt.Sprintf(LinePassed, ev.Word.Word)
		if ev.Word.HasMeaning() {
			line += "  " + ev.Word.Meaning
		}
		p.printFn("%s%s%s", dim, line, reset)
	case domain.EventFinished:
		s := ev.Summary
		p.printFn("%s%s"+LineFinished+"%s", cyan, bold, s.Matched, s.Total, s.Passed, reset)
	case domain.EventNoWords:
		p.printFn("%s%s%s", yellow, LineNoWords, reset)
	case domain.EventRecognizerError:
		p.printFn("%s%s"+LineRecognizer+"%s", red, bold, ev.Err, reset)
	}
}

// Info prints a plain message.
func (p *CLIPresenter) Info(format string, a ...interface{}) {
	p.printFn(format, a...)
}

// Warn prints a message in bold red.
func (p *CLIPresenter) Warn(format string, a ...interface{}) {
	p.printFn(red+bold+format+reset, a...)
}

// FormatWord renders a word card line: position, word and phonetic.
func FormatWord(w domain.WordRecord, position, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d/%d]%s %s%s%s%s", dim, position+1, total, reset, cyan, bold, w.Word, reset)
	if w.HasPhonetic() {
		fmt.Fprintf(&b, "  %s%s%s", dim, w.Phonetic, reset)
	}
	return b.String()
}

// FormatRun renders one history line.
func FormatRun(r domain.RunSummary) string {
	source := r.Source
	if source == "" {
		source = "-"
	}
	return fmt.Sprintf("%s  %-3s %3d/%-3d matched  %3d passed  %s",
		r.FinishedAt.Format("2006-01-02 15:04"), r.Language, r.Matched, r.Total, r.Passed, source)
}
