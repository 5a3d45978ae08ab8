// Package azurestt is a streaming Recognizer backed by the Azure Speech
// SDK. It listens on the default microphone and reports Azure's
// recognizing results as interim transcripts and recognized results as
// final ones.
package azurestt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// Compile-time interface check.
var _ domain.Recognizer = (*Recognizer)(nil)

// Recognizer runs one continuous Azure recognition per attempt.
type Recognizer struct {
	key    string
	region string
	log    *logger.Logger

	mu      sync.Mutex
	attempt *attempt
	events  chan domain.RecognitionEvent
}

// attempt is a live recognition. Once stopped it forwards nothing.
type attempt struct {
	token  domain.AttemptToken
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
}

// New creates a recognizer for the given subscription.
func New(key, region string, log *logger.Logger) (*Recognizer, error) {
	if key == "" || region == "" {
		return nil, errors.New("azurestt: subscription key and region are required")
	}
	return &Recognizer{
		key:    key,
		region: region,
		log:    log,
		events: make(chan domain.RecognitionEvent, 32),
	}, nil
}

// Events returns the channel transcripts are delivered on.
func (r *Recognizer) Events() <-chan domain.RecognitionEvent {
	return r.events
}

// StartAttempt begins recognition in locale, stopping any previous
// attempt. The SDK is driven from a goroutine so this never blocks.
func (r *Recognizer) StartAttempt(ctx context.Context, token domain.AttemptToken, target, locale string) error {
	actx, cancel := context.WithCancel(ctx)
	a := &attempt{token: token, cancel: cancel}

	r.mu.Lock()
	if r.attempt != nil {
		r.attempt.stop()
	}
	r.attempt = a
	r.mu.Unlock()

	r.log.Debug("azurestt: attempt %d for %q (%s)", token, target, locale)
	go r.run(actx, a, locale)
	return nil
}

// StopAttempt ends recognition for token. Unknown tokens are ignored.
func (r *Recognizer) StopAttempt(token domain.AttemptToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attempt == nil || r.attempt.token != token {
		return
	}
	r.attempt.stop()
	r.attempt = nil
	r.log.Debug("azurestt: attempt %d stopped", token)
}

func (a *attempt) stop() {
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()
	a.cancel()
}

// forward delivers ev unless the attempt has been stopped.
func (r *Recognizer) forward(ctx context.Context, a *attempt, ev domain.RecognitionEvent) {
	a.mu.Lock()
	stopped := a.stopped
	a.mu.Unlock()
	if stopped {
		return
	}
	ev.Token = a.token
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}

func (r *Recognizer) run(ctx context.Context, a *attempt, locale string) {
	if err := r.recognize(ctx, a, locale); err != nil {
		r.log.Error("azurestt: %v", err)
		r.forward(ctx, a, domain.RecognitionEvent{Err: err})
	}
}

// recognize runs continuous recognition until ctx is cancelled.
func (r *Recognizer) recognize(ctx context.Context, a *attempt, locale string) error {
	cfg, err := speech.NewSpeechConfigFromSubscription(r.key, r.region)
	if err != nil {
		return fmt.Errorf("speech config: %w", err)
	}
	defer cfg.Close()
	if err := cfg.SetSpeechRecognitionLanguage(locale); err != nil {
		return fmt.Errorf("recognition language %q: %w", locale, err)
	}

	mic, err := audio.NewAudioConfigFromDefaultMicrophoneInput()
	if err != nil {
		return fmt.Errorf("microphone: %w", err)
	}
	defer mic.Close()

	rec, err := speech.NewSpeechRecognizerFromConfig(cfg, mic)
	if err != nil {
		return fmt.Errorf("recognizer: %w", err)
	}
	defer rec.Close()

	rec.Recognizing(func(e speech.SpeechRecognitionEventArgs) {
		defer e.Close()
		if e.Result.Text != "" {
			r.forward(ctx, a, domain.RecognitionEvent{Transcript: e.Result.Text})
		}
	})
	rec.Recognized(func(e speech.SpeechRecognitionEventArgs) {
		defer e.Close()
		if e.Result.Text != "" {
			r.forward(ctx, a, domain.RecognitionEvent{Transcript: e.Result.Text, Final: true})
		}
	})
	canceled := make(chan error, 1)
	rec.Canceled(func(e speech.SpeechRecognitionCanceledEventArgs) {
		defer e.Close()
		if e.Reason == common.Error {
			// Only the first cancellation ends the attempt.
			select {
			case canceled <- fmt.Errorf("recognition canceled: %s", e.ErrorDetails):
			default:
			}
		}
	})

	if err := <-rec.StartContinuousRecognitionAsync(); err != nil {
		return fmt.Errorf("start recognition: %w", err)
	}

	var failure error
	select {
	case <-ctx.Done():
	case failure = <-canceled:
	}

	if err := <-rec.StopContinuousRecognitionAsync(); err != nil {
		r.log.Warn("azurestt: stop recognition: %v", err)
	}
	return failure
}
