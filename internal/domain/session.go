package domain

import "time"

// Phase is where the practice session currently sits.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaiting
	PhaseMatched
	PhaseMismatched
	PhasePassed
	PhaseFinished
)

// String returns a human-readable phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaiting:
		return "listening"
	case PhaseMatched:
		return "matched"
	case PhaseMismatched:
		return "mismatched"
	case PhasePassed:
		return "passed"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// AttemptToken identifies one listening attempt. Zero means no attempt.
type AttemptToken uint64

// State is a point-in-time snapshot of a practice session.
type State struct {
	RunID    string
	Language string
	Position int
	Total    int
	Phase    Phase
	Token    AttemptToken
	Matched  int
	Passed   int
}

// RunSummary is the persisted record of one practice run.
type RunSummary struct {
	ID         string
	Language   string
	Source     string
	Total      int
	Matched    int
	Passed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecognitionEvent is a transcript (or failure) reported by a recognizer
// for a specific attempt.
type RecognitionEvent struct {
	Token      AttemptToken
	Transcript string
	Final      bool
	Err        error
}

// EventKind classifies what a session event announces.
type EventKind int

const (
	EventWord EventKind = iota
	EventMatched
	EventMismatched
	EventPassed
	EventFinished
	EventNoWords
	EventRecognizerError
)

// String returns a human-readable event kind.
func (k EventKind) String() string {
	switch k {
	case EventWord:
		return "word"
	case EventMatched:
		return "matched"
	case EventMismatched:
		return "mismatched"
	case EventPassed:
		return "passed"
	case EventFinished:
		return "finished"
	case EventNoWords:
		return "no_words"
	case EventRecognizerError:
		return "recognizer_error"
	default:
		return "unknown"
	}
}

// Event is emitted by the practice session to its presenter.
type Event struct {
	Kind       EventKind
	Word       WordRecord
	Position   int
	Total      int
	Language   string
	Locale     string
	Transcript string // raw transcript for EventMismatched
	Err        error  // set for EventRecognizerError
	Summary    RunSummary
}
