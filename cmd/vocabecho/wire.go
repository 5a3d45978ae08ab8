package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hammamikhairi/vocabecho/internal/config"
	"github.com/hammamikhairi/vocabecho/internal/conversation"
	"github.com/hammamikhairi/vocabecho/internal/display"
	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/gpt"
	"github.com/hammamikhairi/vocabecho/internal/logger"
	"github.com/hammamikhairi/vocabecho/internal/practice"
	"github.com/hammamikhairi/vocabecho/internal/speech"
	"github.com/hammamikhairi/vocabecho/internal/speech/azurestt"
	"github.com/hammamikhairi/vocabecho/internal/storage"
)

// runPractice wires the practice REPL and blocks until the user quits.
func runPractice(parent context.Context, cfg *config.Config, log *logger.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	db, err := storage.OpenSQLite(cfg.DBPath, log.With("component", "storage"))
	if err != nil {
		return err
	}
	defer db.Close()

	// The status bar and the presenter need the session, which needs the
	// presenter, so the session is bound after construction.
	var session *practice.Session
	ui := display.NewUI(func() domain.State { return session.Snapshot() })
	text := conversation.NewCLIPresenter(log, ui.Printf)

	// Speech output.
	var presenter domain.Presenter = text
	var speaker domain.Speaker = speech.NewNoOp(log)
	mouth := newMouth(ctx, cfg, log, func(err error) { ui.PrintUrgent(err.Error()) })
	if mouth != nil {
		speaker = mouth
		presenter = speech.NewFeedbackPresenter(ctx, text, mouth, log,
			speech.WithAutoSay(cfg.Practice.AutoSay),
			speech.WithVoices(voices(cfg.Languages)),
			speech.WithUpcoming(func(pos int) (domain.WordRecord, bool) {
				words := session.Words()
				if pos < 0 || pos >= len(words) {
					return domain.WordRecord{}, false
				}
				return words[pos], true
			}),
		)
	}

	// Speech input.
	rec, keyboard := newRecognizer(cfg, mouth, log)

	session = practice.New(rec, presenter, log.With("component", "practice"),
		practice.WithMatchDelay(cfg.Practice.MatchDelay),
		practice.WithPassDelay(cfg.Practice.PassDelay),
		practice.WithLanguage(cfg.Language),
		practice.WithLanguages(cfg.Languages),
		practice.WithRunStore(db),
	)
	go session.Run(ctx)

	app := &cliApp{
		cfg:      cfg,
		session:  session,
		parser:   conversation.NewKeywordParser(log),
		keyboard: keyboard,
		speaker:  speaker,
		mouth:    mouth,
		agent:    newAgent(cfg, log),
		store:    db,
		out:      ui,
		log:      log,
	}

	lang := session.Language()
	fmt.Println(display.RenderBanner(fmt.Sprintf("%s · answers: %s", lang.Name, answerMode(rec))))
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx, ui.InputChan())
		ui.Quit()
	}()

	// Bubble Tea owns the terminal and blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
		return err
	}
	return nil
}

// newMouth builds the TTS pipeline, or returns nil when speech output is
// off or unavailable. Synthesis and playback failures go to onError.
func newMouth(ctx context.Context, cfg *config.Config, log *logger.Logger, onError func(error)) *speech.Mouth {
	if !cfg.Speech.Enabled {
		return nil
	}
	if !cfg.Speech.HasAzure() {
		log.Info("TTS disabled: set %s and %s to enable", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
		return nil
	}

	tts := speech.NewAzureClient(cfg.Speech.AzureKey, cfg.Speech.AzureRegion, log.With("component", "tts"),
		speech.WithHTTPTimeout(cfg.Speech.HTTPTimeout),
	)
	player, err := speech.NewPlayer(log)
	if err != nil {
		log.Error("audio player init failed, speech disabled: %v", err)
		return nil
	}
	mouth := speech.NewMouth(tts, player, log.With("component", "mouth"),
		speech.WithCacheDir(cfg.Speech.CacheDir),
		speech.WithOnError(onError),
	)
	mouth.Start(ctx)
	log.Info("TTS enabled (region=%s)", cfg.Speech.AzureRegion)
	return mouth
}

// newRecognizer picks the answer input. The keyboard is returned
// separately because typed answers are submitted to it directly.
func newRecognizer(cfg *config.Config, mouth *speech.Mouth, log *logger.Logger) (domain.Recognizer, *speech.Keyboard) {
	switch cfg.Speech.Recognizer {
	case config.RecognizerWhisper:
		if _, err := os.Stat(cfg.Speech.WhisperModel); err != nil {
			log.Error("whisper model not found at %s, using typed answers", cfg.Speech.WhisperModel)
			break
		}
		if err := os.MkdirAll(cfg.Speech.WhisperTempDir, 0o755); err != nil {
			log.Error("creating %s: %v, using typed answers", cfg.Speech.WhisperTempDir, err)
			break
		}
		ear := speech.NewEar(cfg.Speech.WhisperBin, cfg.Speech.WhisperModel, log.With("component", "ear"),
			speech.WithRecordDuration(cfg.Speech.RecordDuration),
			speech.WithTempDir(cfg.Speech.WhisperTempDir),
			speech.WithMouth(mouth),
		)
		if err := ear.Check(); err != nil {
			log.Error("%v, using typed answers", err)
			break
		}
		log.Info("voice input enabled (whisper, model=%s)", cfg.Speech.WhisperModel)
		return ear, nil
	case config.RecognizerAzure:
		rec, err := azurestt.New(cfg.Speech.AzureKey, cfg.Speech.AzureRegion, log.With("component", "azurestt"))
		if err != nil {
			log.Error("%v, using typed answers", err)
			break
		}
		log.Info("voice input enabled (azure, region=%s)", cfg.Speech.AzureRegion)
		return rec, nil
	}
	kb := speech.NewKeyboard(log)
	return kb, kb
}

// answerMode names the recognizer that ended up in use.
func answerMode(rec domain.Recognizer) string {
	switch rec.(type) {
	case *speech.Ear:
		return config.RecognizerWhisper
	case *azurestt.Recognizer:
		return config.RecognizerAzure
	}
	return config.RecognizerTyped
}

// newAgent returns the gloss agent, or nil when no API key is set.
func newAgent(cfg *config.Config, log *logger.Logger) glosser {
	if !cfg.AI.Enabled() {
		log.Info("AI glosses disabled: set OPENAI_API_KEY to enable")
		return nil
	}
	client := gpt.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, log.With("component", "gpt"),
		gpt.WithModel(cfg.AI.Model),
	)
	return gpt.NewAgent(client, log)
}

// voices maps language codes to their TTS voices.
func voices(langs []domain.Language) map[string]string {
	out := make(map[string]string, len(langs))
	for _, l := range langs {
		out[l.Code] = l.Voice
	}
	return out
}
