package speech

import (
	"context"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// Compile-time interface check.
var _ domain.Presenter = (*FeedbackPresenter)(nil)

// Upcoming returns the word at position, if any. It lets the presenter
// prefetch audio for the next word.
type Upcoming func(position int) (domain.WordRecord, bool)

// FeedbackOption configures the FeedbackPresenter.
type FeedbackOption func(*FeedbackPresenter)

// WithAutoSay pronounces every word as soon as it is shown.
func WithAutoSay(enabled bool) FeedbackOption {
	return func(f *FeedbackPresenter) { f.autoSay = enabled }
}

// WithUpcoming enables prefetching of the next word.
func WithUpcoming(fn Upcoming) FeedbackOption {
	return func(f *FeedbackPresenter) { f.upcoming = fn }
}

// WithVoices maps language codes to TTS voices.
func WithVoices(voices map[string]string) FeedbackOption {
	return func(f *FeedbackPresenter) { f.voices = voices }
}

// FeedbackPresenter wraps a text presenter and adds sound: a chime on
// every match and, optionally, the pronunciation of each new word. Events
// are rendered by the inner presenter first.
type FeedbackPresenter struct {
	inner    domain.Presenter
	mouth    *Mouth
	log      *logger.Logger
	autoSay  bool
	upcoming Upcoming
	voices   map[string]string
	ctx      context.Context
}

// NewFeedbackPresenter creates a presenter that both renders and sounds.
func NewFeedbackPresenter(ctx context.Context, inner domain.Presenter, mouth *Mouth, log *logger.Logger, opts ...FeedbackOption) *FeedbackPresenter {
	f := &FeedbackPresenter{
		inner: inner,
		mouth: mouth,
		log:   log,
		ctx:   ctx,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Present renders ev and plays the matching sound.
func (f *FeedbackPresenter) Present(ev domain.Event) {
	f.inner.Present(ev)

	switch ev.Kind {
	case domain.EventMatched:
		f.mouth.PlayChime()
	case domain.EventWord:
		voice := f.voices[ev.Language]
		if f.autoSay {
			f.mouth.SayWord(ev.Word.Word, ev.Locale, voice)
		}
		if f.upcoming != nil {
			if next, ok := f.upcoming(ev.Position + 1); ok {
				f.mouth.Prefetch(f.ctx, ev.Locale, voice, next.Word)
			}
		}
	case domain.EventFinished, domain.EventNoWords:
		f.mouth.Interrupt()
	}
}
