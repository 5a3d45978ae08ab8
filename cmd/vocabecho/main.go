// vocabecho is a pronunciation drill for vocabulary lists.
//
// Usage:
//
//	vocabecho [--lang fr] [--recognizer typed|whisper|azure] [--verbose]
//	vocabecho manifest <dir>
//	vocabecho lists
//	vocabecho history
package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/vocabecho/internal/config"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// flags are the command-line overrides applied on top of the config.
type flags struct {
	configPath string
	lang       string
	recognizer string
	logFile    string
	verbose    bool
	quiet      bool
	noSpeech   bool
	noAI       bool
	autoSay    bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "vocabecho",
		Short:         "Say the word you see: a pronunciation drill for vocabulary lists",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup(f)
			if err != nil {
				return err
			}
			defer closeLog()
			return runPractice(cmd.Context(), cfg, log)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path to a YAML config file (default vocabecho.yaml if present)")
	pf.StringVar(&f.lang, "lang", "", "practice language code (fr, zh, ja, en)")
	pf.StringVar(&f.logFile, "log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	pf.BoolVar(&f.verbose, "verbose", false, "enable verbose/debug logging")
	pf.BoolVar(&f.quiet, "quiet", false, "disable all logging")

	root.Flags().StringVar(&f.recognizer, "recognizer", "", "answer input: typed, whisper or azure")
	root.Flags().BoolVar(&f.noSpeech, "no-speech", false, "disable text-to-speech even if Azure keys are set")
	root.Flags().BoolVar(&f.noAI, "no-ai", false, "disable AI glosses even if an OpenAI key is set")
	root.Flags().BoolVar(&f.autoSay, "auto-say", false, "pronounce every word when it is shown")

	root.AddCommand(
		newManifestCmd(),
		newListsCmd(f),
		newHistoryCmd(f),
	)
	return root
}

// setup loads the config, applies flag overrides and opens the log.
func setup(f *flags) (*config.Config, *logger.Logger, func(), error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logLevel := logger.ParseLevel(cfg.Log.Level)
	if f.verbose {
		logLevel = logger.LevelVerbose
	}
	if f.quiet {
		logLevel = logger.LevelOff
	}

	// Logs go to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	closeLog := func() {}
	if cfg.Log.File != "" && cfg.Log.File != "stderr" {
		if dir := filepath.Dir(cfg.Log.File); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not create log directory %s: %v\n", dir, err)
			}
		}
		file, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.Log.File, err)
		} else {
			logOut = file
			closeLog = func() { file.Close() }
		}
	}

	// Third-party libraries (the whisper transcriber) log through the
	// standard logger.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	return cfg, logger.New(logLevel, logOut), closeLog, nil
}

func applyFlags(cfg *config.Config, f *flags) {
	if f.lang != "" {
		cfg.Language = f.lang
	}
	if f.recognizer != "" {
		cfg.Speech.Recognizer = f.recognizer
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
	if f.noSpeech {
		cfg.Speech.Enabled = false
	}
	if f.noAI {
		cfg.AI.APIKey = ""
	}
	if f.autoSay {
		cfg.Practice.AutoSay = true
	}
}
