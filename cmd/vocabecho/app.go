package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hammamikhairi/vocabecho/internal/config"
	"github.com/hammamikhairi/vocabecho/internal/conversation"
	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/gpt"
	"github.com/hammamikhairi/vocabecho/internal/logger"
	"github.com/hammamikhairi/vocabecho/internal/practice"
	"github.com/hammamikhairi/vocabecho/internal/speech"
	"github.com/hammamikhairi/vocabecho/internal/wordsource"
)

// articleLimit caps how many words an article yields.
const articleLimit = 50

// historyLimit is how many runs /history shows.
const historyLimit = 10

// printer is the part of display.UI the REPL writes to.
type printer interface {
	Printf(format string, a ...interface{})
	PrintInfo(text string)
	PrintHint(text string)
	PrintUrgent(text string)
}

// glosser writes a meaning for a word that has none.
type glosser interface {
	Gloss(ctx context.Context, word domain.WordRecord, lang domain.Language) (string, error)
}

// store is everything the REPL persists.
type store interface {
	domain.CredentialStore
	domain.RunStore
}

type cliApp struct {
	cfg      *config.Config
	session  *practice.Session
	parser   domain.IntentParser
	keyboard *speech.Keyboard // nil when answers come from a microphone
	speaker  domain.Speaker
	mouth    *speech.Mouth // nil when TTS is disabled
	agent    glosser       // nil when AI is disabled
	store    store
	out      printer
	log      *logger.Logger

	article *wordsource.Article // loaded on first use
	source  string              // where the current list came from
	lists   map[string]wordList // last list loaded per language code
	pasting bool
	pasted  []string
}

// wordList is a loaded list and where it came from.
type wordList struct {
	source string
	words  []domain.WordRecord
}

// run reads input lines until ctx is done, the channel closes or the
// user quits.
func (a *cliApp) run(ctx context.Context, in <-chan string) {
	a.out.PrintInfo(conversation.LineWelcome)
	a.showFiles()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-in:
			if !ok {
				return
			}
			if !a.handleLine(ctx, line) {
				return
			}
		}
	}
}

// handleLine processes one input line. It returns false on quit.
func (a *cliApp) handleLine(ctx context.Context, line string) bool {
	if a.pasting {
		if strings.TrimSpace(line) == "" {
			a.finishPaste()
		} else {
			a.pasted = append(a.pasted, line)
		}
		return true
	}

	if strings.TrimSpace(line) == "" {
		return true
	}

	intent, err := a.parser.Parse(ctx, line)
	if err != nil {
		a.log.Error("parsing input: %v", err)
		return true
	}
	a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
	return a.handleIntent(ctx, intent)
}

func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentAnswer:
		a.answer(intent.Payload)
	case domain.IntentStart:
		a.interrupt()
		a.session.Start(ctx)
	case domain.IntentPass:
		if !a.session.Pass() {
			a.out.PrintHint(conversation.LineNoSession)
		}
	case domain.IntentSay:
		a.say(ctx)
	case domain.IntentMeaning:
		a.meaning(ctx)
	case domain.IntentDefine:
		a.define(intent.Payload)
	case domain.IntentRestart:
		a.restart(ctx)
	case domain.IntentStop:
		a.interrupt()
		a.session.Release()
	case domain.IntentStatus:
		a.status()
	case domain.IntentLanguage:
		a.language(intent.Payload)
	case domain.IntentLoadFile:
		a.loadFile(intent.Payload)
	case domain.IntentFiles:
		a.showFiles()
	case domain.IntentPaste:
		a.pasting = true
		a.pasted = nil
		a.out.PrintHint(conversation.LinePastePrompt)
	case domain.IntentLists:
		a.lists(ctx)
	case domain.IntentVocab:
		a.vocab(ctx, intent.Payload)
	case domain.IntentArticle:
		a.loadArticle(ctx, intent.Payload)
	case domain.IntentToken:
		a.token(ctx, intent.Payload)
	case domain.IntentHistory:
		a.history(ctx)
	case domain.IntentHelp:
		a.out.Printf("%s", conversation.HelpText)
	case domain.IntentQuit:
		a.interrupt()
		a.session.Release()
		a.out.PrintHint(conversation.LineBye)
		return false
	default:
		a.out.PrintHint(fmt.Sprintf(conversation.LineUnknown, intent.Payload))
	}
	return true
}

func (a *cliApp) interrupt() {
	if a.mouth != nil {
		a.mouth.Interrupt()
	}
}

// ── Practice ─────────────────────────────────────────────────────

// answer treats typed text as a final transcript for the live attempt.
func (a *cliApp) answer(text string) {
	if a.keyboard != nil {
		if !a.keyboard.Submit(text) {
			a.out.PrintHint(conversation.LineNoSession)
		}
		return
	}
	// Typing still works alongside a microphone recognizer.
	snap := a.session.Snapshot()
	if snap.Token == 0 || (snap.Phase != domain.PhaseAwaiting && snap.Phase != domain.PhaseMismatched) {
		a.out.PrintHint(conversation.LineNoSession)
		return
	}
	a.session.OnRecognition(domain.RecognitionEvent{Token: snap.Token, Transcript: text, Final: true})
}

func (a *cliApp) say(ctx context.Context) {
	w, ok := a.session.Current()
	if !ok {
		a.out.PrintHint(conversation.LineNoSession)
		return
	}
	if a.mouth == nil {
		a.out.PrintHint(conversation.LineSpeechOff)
	}
	lang := a.session.Language()
	if err := a.speaker.Speak(ctx, w.Word, lang.Locale, lang.Voice); err != nil {
		a.out.PrintUrgent(err.Error())
	}
}

func (a *cliApp) meaning(ctx context.Context) {
	w, ok := a.session.Current()
	if !ok {
		a.out.PrintHint(conversation.LineNoSession)
		return
	}
	if w.HasMeaning() {
		a.out.PrintInfo(w.Meaning)
		return
	}
	if a.agent == nil {
		a.out.PrintHint(fmt.Sprintf(conversation.LineNoMeaning, w.Word))
		return
	}

	a.out.PrintHint(conversation.LineAsking)
	gloss, err := a.agent.Gloss(ctx, w, a.session.Language())
	switch {
	case errors.Is(err, gpt.ErrNoGloss):
		a.out.PrintHint(fmt.Sprintf(conversation.LineNoMeaning, w.Word))
	case err != nil:
		a.log.Error("gloss %q: %v", w.Word, err)
		a.out.PrintUrgent(fmt.Sprintf(conversation.LineAIError, err))
	default:
		if err := a.session.EditMeaning(gloss); err != nil {
			a.log.Warn("storing gloss: %v", err)
		}
		a.out.PrintInfo(gloss)
	}
}

func (a *cliApp) define(meaning string) {
	if strings.TrimSpace(meaning) == "" {
		a.out.PrintHint(conversation.LineDefineUsage)
		return
	}
	if err := a.session.EditMeaning(meaning); err != nil {
		a.out.PrintHint(conversation.LineNoSession)
		return
	}
	a.out.PrintInfo(conversation.LineMeaningSaved)
}

func (a *cliApp) restart(ctx context.Context) {
	err := a.session.Restart(ctx)
	switch {
	case errors.Is(err, domain.ErrNoWords):
		a.out.PrintHint(conversation.LineNoWords)
	case errors.Is(err, domain.ErrNoSession):
		a.out.PrintHint(conversation.LineNoSession)
	}
}

func (a *cliApp) status() {
	s := a.session.Snapshot()
	if s.Total == 0 {
		a.out.PrintHint(conversation.LineNoWords)
		return
	}
	pos := min(s.Position+1, s.Total)
	a.out.PrintInfo(fmt.Sprintf(conversation.LineStatus, s.Language, pos, s.Total, s.Phase, s.Matched, s.Passed))
}

func (a *cliApp) language(code string) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		cur := a.session.Language()
		a.out.PrintInfo(fmt.Sprintf(conversation.LineLanguage, cur.Name, cur.Code))
		codes := make([]string, 0, len(a.cfg.Languages))
		for _, l := range a.cfg.Languages {
			codes = append(codes, l.Code)
		}
		a.out.PrintHint(strings.Join(codes, " "))
		return
	}
	lang, ok := a.cfg.LookupLanguage(code)
	if !ok {
		a.out.PrintUrgent(fmt.Sprintf(conversation.LineUnknownLang, code))
		return
	}
	a.interrupt()

	// Keep the current list, edited meanings included, for when the
	// learner switches back.
	a.remember(a.session.Language().Code, a.source, a.session.Words())
	next := a.lists[lang.Code]
	a.source = next.source
	a.session.LoadNamed(lang.Code, next.source, next.words)
	a.out.PrintInfo(fmt.Sprintf(conversation.LineLanguage, lang.Name, lang.Code))
	if len(next.words) == 0 {
		a.out.PrintHint(conversation.LineNoWords)
	}
}

func (a *cliApp) remember(lang, source string, words []domain.WordRecord) {
	if a.lists == nil {
		a.lists = make(map[string]wordList)
	}
	if len(words) == 0 {
		delete(a.lists, lang)
		return
	}
	a.lists[lang] = wordList{source: source, words: words}
}

// ── Word sources ─────────────────────────────────────────────────

// load hands a provider's list to the session. Providers return nil on
// error, so an empty list here means nothing usable was found.
func (a *cliApp) load(lang, source string, words []domain.WordRecord) {
	words = domain.CleanWords(words)
	if len(words) == 0 {
		a.out.PrintHint(conversation.LineNoWords)
		return
	}
	a.interrupt()
	a.remember(a.session.Language().Code, a.source, a.session.Words())
	a.source = source
	a.remember(lang, source, words)
	a.session.LoadNamed(lang, source, words)
	a.out.PrintInfo(fmt.Sprintf(conversation.LineLoaded, len(words), source))
}

func (a *cliApp) loadFile(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		a.showFiles()
		return
	}
	path := name
	if _, err := os.Stat(path); err != nil && !filepath.IsAbs(name) {
		path = filepath.Join(a.cfg.VocabularyDir, name)
	}
	words, err := wordsource.LoadCSVFile(path)
	if err != nil {
		a.out.PrintUrgent(err.Error())
		return
	}
	a.load(a.session.Language().Code, filepath.Base(path), words)
}

func (a *cliApp) showFiles() {
	m, err := wordsource.ReadManifest(a.cfg.VocabularyDir)
	if err != nil {
		a.log.Debug("no vocabulary dir: %v", err)
		return
	}
	if len(m.Files) == 0 {
		return
	}
	a.out.PrintHint(fmt.Sprintf(conversation.LineFiles, a.cfg.VocabularyDir, strings.Join(m.Files, "  ")))
}

func (a *cliApp) finishPaste() {
	a.pasting = false
	words := wordsource.ParsePasted(strings.Join(a.pasted, "\n"))
	a.pasted = nil
	a.load(a.session.Language().Code, "paste", words)
}

func (a *cliApp) lists(ctx context.Context) {
	client, ok := a.frdic(ctx)
	if !ok {
		return
	}
	lang := a.session.Language()
	cats, err := client.Categories(ctx, lang.Code)
	if err != nil {
		a.reportAPIError(err)
		return
	}
	if len(cats) == 0 {
		a.out.PrintHint(conversation.LineNoLists)
		return
	}
	for _, c := range cats {
		line := fmt.Sprintf("%s  %s", c.ID, c.Name)
		if c.HasWords != nil && !*c.HasWords {
			line += "  (empty)"
		}
		a.out.PrintInfo(line)
	}
}

func (a *cliApp) vocab(ctx context.Context, id string) {
	if id == "" {
		a.out.PrintHint(conversation.LineVocabUsage)
		return
	}
	client, ok := a.frdic(ctx)
	if !ok {
		return
	}
	lang := a.session.Language()
	words, err := client.Words(ctx, lang.Code, wordsource.CategoryID(id))
	if err != nil {
		a.reportAPIError(err)
		return
	}
	a.load(lang.Code, "frdic:"+id, words)
}

func (a *cliApp) frdic(ctx context.Context) (*wordsource.FrDic, bool) {
	client, err := newFrDic(ctx, a.cfg, a.store, a.log)
	if err != nil {
		a.reportAPIError(err)
		return nil, false
	}
	return client, true
}

func (a *cliApp) reportAPIError(err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		a.out.PrintUrgent(conversation.LineNoToken)
		return
	}
	a.out.PrintUrgent(err.Error())
}

func (a *cliApp) loadArticle(ctx context.Context, url string) {
	if url == "" {
		a.out.PrintHint(conversation.LineArticleUsage)
		return
	}
	if a.article == nil {
		art, err := wordsource.NewArticle(a.log.With("component", "article"))
		if err != nil {
			a.out.PrintUrgent(err.Error())
			return
		}
		a.article = art
	}
	a.out.PrintHint(conversation.LineFetching)
	words, err := a.article.Fetch(ctx, url, articleLimit)
	if err != nil {
		a.out.PrintUrgent(err.Error())
		return
	}
	// Articles are always Japanese.
	a.load("ja", url, words)
}

func (a *cliApp) token(ctx context.Context, value string) {
	if value == "" {
		if _, err := a.store.LoadToken(ctx); err == nil || a.cfg.API.Token != "" {
			a.out.PrintInfo(conversation.LineTokenSet)
		} else {
			a.out.PrintHint(conversation.LineNoToken)
		}
		return
	}
	if err := a.store.SaveToken(ctx, value); err != nil {
		a.out.PrintUrgent(err.Error())
		return
	}
	a.out.PrintInfo(conversation.LineTokenSaved)
}

func (a *cliApp) history(ctx context.Context) {
	runs, err := a.store.ListRuns(ctx, historyLimit)
	if err != nil {
		a.out.PrintUrgent(err.Error())
		return
	}
	if len(runs) == 0 {
		a.out.PrintHint(conversation.LineNoRuns)
		return
	}
	for _, r := range runs {
		a.out.PrintInfo(conversation.FormatRun(r))
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
