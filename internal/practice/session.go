// Package practice implements the vocabulary practice session: it walks a
// word list, opens one listening attempt per word, compares transcripts
// with the target and paces the move to the next word.
package practice

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
	"github.com/hammamikhairi/vocabecho/internal/textnorm"
	"github.com/hammamikhairi/vocabecho/internal/timer"
)

const (
	// DefaultMatchDelay is how long the success feedback stays up.
	DefaultMatchDelay = 800 * time.Millisecond
	// DefaultPassDelay is how long the pass feedback stays up.
	DefaultPassDelay = 500 * time.Millisecond
)

// Option configures the session.
type Option func(*Session)

// WithMatchDelay sets the pause between a match and the next word.
func WithMatchDelay(d time.Duration) Option {
	return func(s *Session) {
		s.matchDelay = d
	}
}

// WithPassDelay sets the pause between a pass and the next word.
func WithPassDelay(d time.Duration) Option {
	return func(s *Session) {
		s.passDelay = d
	}
}

// WithClock sets the clock used for pacing.
func WithClock(c timer.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithLanguage sets the initial practice language code.
func WithLanguage(code string) Option {
	return func(s *Session) {
		s.langCode = code
	}
}

// WithLanguages replaces the language table used to resolve locales.
func WithLanguages(table []domain.Language) Option {
	return func(s *Session) {
		s.languages = table
	}
}

// WithRunStore persists a summary every time a run finishes.
func WithRunStore(store domain.RunStore) Option {
	return func(s *Session) {
		s.runs = store
	}
}

// Session is the practice state machine. All methods are safe for
// concurrent use. Presenter events are delivered in order, outside the
// session lock.
type Session struct {
	rec        domain.Recognizer
	pres       domain.Presenter
	log        *logger.Logger
	runs       domain.RunStore
	clock      timer.Clock
	pacer      *timer.Pacer
	languages  []domain.Language
	matchDelay time.Duration
	passDelay  time.Duration

	mu        sync.Mutex
	ctx       context.Context
	langCode  string
	source    string
	words     []domain.WordRecord
	position  int
	phase     domain.Phase
	token     domain.AttemptToken
	lastToken domain.AttemptToken
	runID     string
	matched   int
	passed    int
	startedAt time.Time

	// emitMu is taken before mu is released so events from consecutive
	// operations reach the presenter in the order they happened.
	emitMu sync.Mutex
}

// New creates a practice session around a recognizer and a presenter.
func New(rec domain.Recognizer, pres domain.Presenter, log *logger.Logger, opts ...Option) *Session {
	s := &Session{
		rec:        rec,
		pres:       pres,
		log:        log,
		clock:      timer.RealClock{},
		languages:  domain.DefaultLanguages,
		matchDelay: DefaultMatchDelay,
		passDelay:  DefaultPassDelay,
		ctx:        context.Background(),
		langCode:   "fr",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pres == nil {
		s.pres = discardPresenter{}
	}
	s.pacer = timer.NewPacer(log, timer.WithClock(s.clock))
	return s
}

// Load replaces the word list. Any live attempt is released and the
// position goes back to the first word.
func (s *Session) Load(lang string, words []domain.WordRecord) {
	s.LoadNamed(lang, "", words)
}

// LoadNamed is Load with a label describing where the words came from.
// The label is recorded in run history.
func (s *Session) LoadNamed(lang, source string, words []domain.WordRecord) {
	s.mu.Lock()
	s.releaseLocked()
	if lang != "" {
		s.langCode = lang
	}
	s.source = source
	s.words = domain.CleanWords(words)
	s.position = 0
	s.phase = domain.PhaseIdle
	s.log.Info("practice: loaded %d words (lang=%s source=%q)", len(s.words), s.langCode, source)
	s.unlockAndEmit(nil)
}

// Start begins a new run from the first word.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.releaseLocked()
	s.position = 0
	s.phase = domain.PhaseIdle
	s.runID = uuid.NewString()
	s.matched = 0
	s.passed = 0
	s.startedAt = s.clock.Now()
	s.log.Info("practice: run %s started with %d words", s.runID, len(s.words))
	out := s.advanceLocked()
	s.unlockAndEmit(out)
}

// Restart opens a fresh attempt on the current word. It is the manual
// recovery after a recognizer error.
func (s *Session) Restart(ctx context.Context) error {
	s.mu.Lock()
	if len(s.words) == 0 {
		s.unlockAndEmit(nil)
		return domain.ErrNoWords
	}
	if s.phase == domain.PhaseFinished || s.runID == "" {
		s.unlockAndEmit(nil)
		return domain.ErrNoSession
	}
	s.ctx = ctx
	s.releaseLocked()
	out := s.advanceLocked()
	s.unlockAndEmit(out)
	return nil
}

// OnRecognition applies a recognizer event. Events for stale tokens, for
// phases that are not listening, and transcripts that are empty once
// normalized are dropped.
func (s *Session) OnRecognition(ev domain.RecognitionEvent) {
	s.mu.Lock()
	out := s.recognitionLocked(ev)
	s.unlockAndEmit(out)
}

func (s *Session) recognitionLocked(ev domain.RecognitionEvent) []domain.Event {
	if ev.Token == 0 || ev.Token != s.token {
		s.log.Debug("practice: dropping event for stale token %d (current %d)", ev.Token, s.token)
		return nil
	}
	if s.phase != domain.PhaseAwaiting && s.phase != domain.PhaseMismatched {
		return nil
	}

	word := s.words[s.position]
	if ev.Err != nil {
		s.log.Warn("practice: recognizer failed on %q: %v", word.Word, ev.Err)
		return []domain.Event{s.eventLocked(domain.EventRecognizerError, func(e *domain.Event) { e.Err = ev.Err })}
	}

	transcript := strings.TrimSpace(ev.Transcript)
	heard := textnorm.Normalize(transcript, s.langCode)
	if heard == "" {
		return nil
	}

	if heard == textnorm.Normalize(word.Word, s.langCode) {
		s.phase = domain.PhaseMatched
		s.matched++
		tok := s.token
		s.pacer.Schedule(tok, s.matchDelay, func() { s.afterMatch(tok) })
		s.log.Debug("practice: matched %q (final=%v)", word.Word, ev.Final)
		return []domain.Event{s.eventLocked(domain.EventMatched, func(e *domain.Event) { e.Transcript = transcript })}
	}

	if !ev.Final {
		return nil
	}
	s.phase = domain.PhaseMismatched
	s.log.Debug("practice: heard %q, expected %q", transcript, word.Word)
	return []domain.Event{s.eventLocked(domain.EventMismatched, func(e *domain.Event) { e.Transcript = transcript })}
}

// Pass skips the current word. It returns false when there is nothing to
// pass or a pass or match is already being applied.
func (s *Session) Pass() bool {
	s.mu.Lock()
	if (s.phase != domain.PhaseAwaiting && s.phase != domain.PhaseMismatched) || s.position >= len(s.words) {
		s.unlockAndEmit(nil)
		return false
	}
	s.phase = domain.PhasePassed
	s.passed++
	tok := s.token
	s.pacer.Schedule(tok, s.passDelay, func() { s.afterPass(tok) })
	out := []domain.Event{s.eventLocked(domain.EventPassed, nil)}
	s.unlockAndEmit(out)
	return true
}

// Release cancels pending pacing and stops the live attempt. The position
// is kept so Restart can resume on the same word.
func (s *Session) Release() {
	s.mu.Lock()
	s.releaseLocked()
	if s.phase != domain.PhaseFinished {
		s.phase = domain.PhaseIdle
	}
	s.unlockAndEmit(nil)
}

// EditMeaning replaces the meaning of the current word in place.
func (s *Session) EditMeaning(meaning string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position >= len(s.words) {
		return domain.ErrNoSession
	}
	s.words[s.position].Meaning = strings.TrimSpace(meaning)
	return nil
}

// Current returns the word at the current position.
func (s *Session) Current() (domain.WordRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position >= len(s.words) {
		return domain.WordRecord{}, false
	}
	return s.words[s.position], true
}

// Language returns the language currently being practiced.
func (s *Session) Language() domain.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.languageLocked()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.State{
		RunID:    s.runID,
		Language: s.langCode,
		Position: s.position,
		Total:    len(s.words),
		Phase:    s.phase,
		Token:    s.token,
		Matched:  s.matched,
		Passed:   s.passed,
	}
}

// Words returns a copy of the loaded list.
func (s *Session) Words() []domain.WordRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.WordRecord, len(s.words))
	copy(out, s.words)
	return out
}

// Run feeds recognizer events into the session until ctx is done or the
// recognizer closes its channel.
func (s *Session) Run(ctx context.Context) {
	events := s.rec.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.OnRecognition(ev)
		}
	}
}

func (s *Session) afterMatch(tok domain.AttemptToken) {
	s.mu.Lock()
	if s.token != tok || s.phase != domain.PhaseMatched {
		s.unlockAndEmit(nil)
		return
	}
	s.position++
	out := s.advanceLocked()
	s.unlockAndEmit(out)
}

func (s *Session) afterPass(tok domain.AttemptToken) {
	s.mu.Lock()
	if s.token != tok || s.phase != domain.PhasePassed {
		s.unlockAndEmit(nil)
		return
	}
	s.releaseLocked()
	s.position++
	out := s.advanceLocked()
	s.unlockAndEmit(out)
}

// advanceLocked presents the word at the current position and opens an
// attempt for it. Callers hold mu.
func (s *Session) advanceLocked() []domain.Event {
	if len(s.words) == 0 {
		s.releaseLocked()
		s.phase = domain.PhaseIdle
		return []domain.Event{{Kind: domain.EventNoWords, Language: s.langCode}}
	}

	if s.position >= len(s.words) {
		s.releaseLocked()
		if s.phase == domain.PhaseFinished {
			return nil
		}
		s.phase = domain.PhaseFinished
		summary := s.summaryLocked()
		s.log.Info("practice: run %s finished (%d matched, %d passed)", s.runID, s.matched, s.passed)
		return []domain.Event{s.eventLocked(domain.EventFinished, func(e *domain.Event) { e.Summary = summary })}
	}

	s.releaseLocked()
	s.lastToken++
	s.token = s.lastToken
	s.phase = domain.PhaseAwaiting
	lang := s.languageLocked()
	word := s.words[s.position]

	out := []domain.Event{s.eventLocked(domain.EventWord, nil)}
	if err := s.rec.StartAttempt(s.ctx, s.token, word.Word, lang.Locale); err != nil {
		s.log.Error("practice: starting attempt for %q: %v", word.Word, err)
		out = append(out, s.eventLocked(domain.EventRecognizerError, func(e *domain.Event) { e.Err = err }))
		return out
	}
	return out
}

func (s *Session) releaseLocked() {
	if s.token == 0 {
		return
	}
	s.pacer.Cancel(s.token)
	s.rec.StopAttempt(s.token)
	s.token = 0
}

func (s *Session) languageLocked() domain.Language {
	if l, ok := domain.LookupLanguage(s.languages, s.langCode); ok {
		return l
	}
	return domain.Language{Code: s.langCode, Locale: s.langCode, Name: s.langCode}
}

func (s *Session) summaryLocked() domain.RunSummary {
	return domain.RunSummary{
		ID:         s.runID,
		Language:   s.langCode,
		Source:     s.source,
		Total:      len(s.words),
		Matched:    s.matched,
		Passed:     s.passed,
		StartedAt:  s.startedAt,
		FinishedAt: s.clock.Now(),
	}
}

func (s *Session) eventLocked(kind domain.EventKind, fill func(*domain.Event)) domain.Event {
	lang := s.languageLocked()
	ev := domain.Event{
		Kind:     kind,
		Position: s.position,
		Total:    len(s.words),
		Language: lang.Code,
		Locale:   lang.Locale,
	}
	if s.position < len(s.words) {
		ev.Word = s.words[s.position]
	}
	if fill != nil {
		fill(&ev)
	}
	return ev
}

// unlockAndEmit releases mu and hands the collected events to the
// presenter. Finished runs are persisted here, outside the lock.
func (s *Session) unlockAndEmit(out []domain.Event) {
	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()

	for _, ev := range out {
		s.pres.Present(ev)
		if ev.Kind == domain.EventFinished && s.runs != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.runs.SaveRun(ctx, ev.Summary); err != nil {
				s.log.Warn("practice: saving run %s: %v", ev.Summary.ID, err)
			}
			cancel()
		}
	}
}

type discardPresenter struct{}

func (discardPresenter) Present(domain.Event) {}
