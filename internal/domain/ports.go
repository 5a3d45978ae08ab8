package domain

import "context"

// Recognizer turns learner speech (or typing) into transcripts for one
// listening attempt at a time. Events are tagged with the attempt token
// they belong to; consumers drop events for tokens they no longer track.
type Recognizer interface {
	StartAttempt(ctx context.Context, token AttemptToken, target, locale string) error
	// StopAttempt is idempotent and accepts unknown tokens.
	StopAttempt(token AttemptToken)
	Events() <-chan RecognitionEvent
}

// Presenter renders session events. Present must not call back into the
// session synchronously.
type Presenter interface {
	Present(ev Event)
}

// Speaker pronounces a word. The no-op implementation is used when voice
// is disabled.
type Speaker interface {
	Speak(ctx context.Context, text, locale, voice string) error
}

// CredentialStore persists the vocabulary API token.
type CredentialStore interface {
	SaveToken(ctx context.Context, token string) error
	LoadToken(ctx context.Context) (string, error)
}

// RunStore persists practice history. Implementations can be in-memory
// or SQLite.
type RunStore interface {
	SaveRun(ctx context.Context, run RunSummary) error
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}
