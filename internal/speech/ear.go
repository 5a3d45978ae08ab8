package speech

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)", "[laughter]", "(speaking French)", etc.
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z\s]*[\)\]]`)

// Recorder records audio for d and returns its transcription.
type Recorder func(ctx context.Context, d time.Duration) (string, error)

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithRecordDuration sets how long each recording chunk lasts.
func WithRecordDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.recordDuration = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) { e.tempDir = dir }
}

// WithSilentChunks sets how many empty chunks after speech end an utterance.
func WithSilentChunks(n int) EarOption {
	return func(e *Ear) { e.silentChunks = n }
}

// WithRecorder replaces the whisper recorder.
func WithRecorder(r Recorder) EarOption {
	return func(e *Ear) { e.record = r }
}

// WithMouth lets the ear pause while the mouth is playing so it does not
// transcribe its own output.
func WithMouth(m *Mouth) EarOption {
	return func(e *Ear) { e.mouth = m }
}

// Ear is a Recognizer backed by a local Whisper model. While an attempt
// is live it records short chunks; each non-empty chunk is reported as an
// interim transcript of the utterance so far, and the whole utterance is
// reported as final once the learner goes quiet.
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	log        *logger.Logger
	mouth      *Mouth
	record     Recorder

	recordDuration time.Duration
	silentChunks   int

	mu      sync.Mutex
	muted   bool
	attempt *earAttempt
	events  chan domain.RecognitionEvent
}

type earAttempt struct {
	token  domain.AttemptToken
	cancel context.CancelFunc
}

// Compile-time interface check.
var _ domain.Recognizer = (*Ear)(nil)

// NewEar creates a whisper-backed recognizer.
//
//   - whisperBin: path to the whisper-cli executable
//   - modelPath:  path to the GGML model file
func NewEar(whisperBin, modelPath string, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:     whisperBin,
		modelPath:      modelPath,
		tempDir:        ".vocabecho-stt",
		log:            log,
		recordDuration: 2 * time.Second,
		silentChunks:   1,
		events:         make(chan domain.RecognitionEvent, 16),
	}
	e.record = e.recordChunk
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check verifies the whisper binary is reachable.
func (e *Ear) Check() error {
	if _, err := exec.LookPath(e.whisperBin); err != nil {
		return fmt.Errorf("ear: whisper binary %q not found: %w", e.whisperBin, err)
	}
	return nil
}

// Events returns the channel transcripts are delivered on.
func (e *Ear) Events() <-chan domain.RecognitionEvent {
	return e.events
}

// StartAttempt begins listening for token, stopping any previous attempt.
func (e *Ear) StartAttempt(ctx context.Context, token domain.AttemptToken, target, locale string) error {
	actx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.attempt != nil {
		e.attempt.cancel()
	}
	e.attempt = &earAttempt{token: token, cancel: cancel}
	e.mu.Unlock()

	e.log.Debug("ear: attempt %d for %q (%s)", token, target, locale)
	go e.listen(actx, token)
	return nil
}

// StopAttempt stops listening for token. Unknown tokens are ignored.
func (e *Ear) StopAttempt(token domain.AttemptToken) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempt == nil || e.attempt.token != token {
		return
	}
	e.attempt.cancel()
	e.attempt = nil
	e.log.Debug("ear: attempt %d stopped", token)
}

// Mute temporarily disables listening.
func (e *Ear) Mute() {
	e.mu.Lock()
	e.muted = true
	e.mu.Unlock()
	e.log.Debug("ear: muted")
}

// Unmute re-enables listening.
func (e *Ear) Unmute() {
	e.mu.Lock()
	e.muted = false
	e.mu.Unlock()
	e.log.Debug("ear: unmuted")
}

func (e *Ear) isMuted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// listen records chunks until ctx is cancelled.
func (e *Ear) listen(ctx context.Context, token domain.AttemptToken) {
	var parts []string
	empty := 0

	for ctx.Err() == nil {
		// Echo prevention: don't record while muted or the mouth is playing.
		if e.isMuted() || (e.mouth != nil && e.mouth.Busy()) {
			select {
			case <-time.After(100 * time.Millisecond):
			case <-ctx.Done():
			}
			continue
		}

		raw, err := e.record(ctx, e.recordDuration)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			e.emit(ctx, domain.RecognitionEvent{Token: token, Err: err})
			return
		}
		// The mouth started during the recording, so the chunk heard it.
		if e.mouth != nil && e.mouth.Busy() {
			e.log.Debug("ear: discarding chunk recorded over playback")
			continue
		}

		chunk := cleanTranscription(raw)
		if chunk == "" {
			empty++
			if len(parts) > 0 && empty >= e.silentChunks {
				utterance := strings.Join(parts, " ")
				e.log.Debug("ear: utterance %q", utterance)
				e.emit(ctx, domain.RecognitionEvent{Token: token, Transcript: utterance, Final: true})
				parts, empty = nil, 0
			}
			continue
		}

		empty = 0
		parts = append(parts, chunk)
		e.emit(ctx, domain.RecognitionEvent{Token: token, Transcript: strings.Join(parts, " ")})
	}
}

func (e *Ear) emit(ctx context.Context, ev domain.RecognitionEvent) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}

// recordChunk does one whisper recording cycle of the given duration.
func (e *Ear) recordChunk(ctx context.Context, duration time.Duration) (string, error) {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		e.whisperBin,
		e.modelPath,
		e.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		return "", fmt.Errorf("ear: transcriber init: %w", err)
	}

	if err := t.Start(); err != nil {
		return "", fmt.Errorf("ear: recording start: %w", err)
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}

	t.Stop()
	wg.Wait()
	return result, nil
}

// junkPatterns are whisper artifacts stripped from anywhere in the text.
var junkPatterns = []string{
	"[BLANK_AUDIO]",
	"[BLANK AUDIO]",
	"(silence)",
	"[silence]",
	"(no speech)",
	"[no speech]",
	"[Music]",
	"(music)",
	"(keyboard clicking)",
	"(typing)",
	"(breathing)",
	"(coughing)",
	"(laughing)",
	"(background noise)",
	"(inaudible)",
	"(unintelligible)",
	"(applause)",
}

// hallucinations are whole transcripts whisper invents from silence.
var hallucinations = []string{
	"...",
	"thank you.",
	"thanks for watching!",
	"thank you for watching.",
	"sous-titres réalisés para la communauté d'amara.org",
	"sous-titrage st' 501",
	"merci d'avoir regardé cette vidéo !",
	"字幕由amara.org社区提供",
	"ご視聴ありがとうございました",
}

// cleanTranscription normalizes newlines and removes whisper artifacts
// such as "[BLANK_AUDIO]", "(silence)" and known hallucinations.
func cleanTranscription(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)

	// Strip whisper timestamp prefixes like "[00:00:00.000 --> 00:00:05.000]".
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 && strings.Contains(s[:idx], "-->") {
			s = s[idx+1:]
		}
	}

	for _, j := range junkPatterns {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
		s = strings.ReplaceAll(s, strings.ToUpper(j), "")
	}
	s = envAnnotation.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if h == lower {
			return ""
		}
	}
	return s
}
