package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// Synthesizer turns text into WAV audio. AzureClient is the production
// implementation.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, locale, voice string) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ Synthesizer    = (*AzureClient)(nil)
	_ domain.Speaker = (*Mouth)(nil)
)

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithQueueSize sets the internal notification channel capacity.
func WithQueueSize(n int) MouthOption {
	return func(m *Mouth) {
		m.notify = make(chan struct{}, n)
	}
}

// WithChunkSize sets the approximate max character count per TTS chunk.
// Longer text (meanings, mostly) is split at sentence boundaries and
// synthesized in parallel.
func WithChunkSize(n int) MouthOption {
	return func(m *Mouth) {
		m.chunkSize = n
	}
}

// WithCacheDir sets the filesystem directory used for persistent audio
// caching. If empty, the disk layer is disabled (pure in-memory).
func WithCacheDir(dir string) MouthOption {
	return func(m *Mouth) {
		m.cacheDir = dir
	}
}

// WithDiskWrite controls whether new cache entries are written to disk.
// Even when false, existing on-disk entries are still read.
func WithDiskWrite(enabled bool) MouthOption {
	return func(m *Mouth) {
		m.diskWrite = enabled
	}
}

// WithPrefetchLimit caps concurrent prefetch synthesis requests.
func WithPrefetchLimit(n int) MouthOption {
	return func(m *Mouth) {
		m.prefetchLimit = n
	}
}

// WithOnError reports synthesis and playback failures to fn, which runs on
// the playback goroutine. Failures are logged either way.
func WithOnError(fn func(error)) MouthOption {
	return func(m *Mouth) {
		m.onError = fn
	}
}

// Mouth is the central audio dispatcher. Everything audible goes through
// one pipeline: queue -> synthesize (cached) -> play. Only one thing plays
// at a time and higher priority items play first.
type Mouth struct {
	tts   Synthesizer
	out   AudioOutput
	log   *logger.Logger
	cache *AudioCache

	mu            sync.Mutex
	queue         []SpeechRequest
	notify        chan struct{}
	speaking      bool
	interrupted   bool   // set by Interrupt(), checked between chunks
	chunkSize     int    // chars per TTS request, 0 = no chunking
	cacheDir      string // filesystem cache directory
	diskWrite     bool   // persist new cache entries to disk
	prefetchLimit int
	chime         []byte
	onError       func(error)
}

// NewMouth creates an audio dispatcher with the given TTS and output.
func NewMouth(tts Synthesizer, out AudioOutput, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		tts:           tts,
		out:           out,
		log:           log,
		notify:        make(chan struct{}, 32),
		chunkSize:     200,
		diskWrite:     true,
		prefetchLimit: 3,
		chime:         Chime(SampleRate),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cache = NewAudioCache(m.cacheDir, m.diskWrite, log)
	return m
}

// Say queues text to be spoken at the given priority. Non-blocking.
func (m *Mouth) Say(text, locale, voice string, priority Priority) {
	m.enqueue(SpeechRequest{
		Text:     text,
		Locale:   locale,
		Voice:    voice,
		Priority: priority,
		QueuedAt: time.Now(),
	})
}

// SayWord pronounces a target word. Words still waiting in the queue are
// stale once a new word is shown, so they are dropped first.
func (m *Mouth) SayWord(word, locale, voice string) {
	m.mu.Lock()
	m.flushLocked(PriorityNormal)
	m.mu.Unlock()
	m.Say(word, locale, voice, PriorityNormal)
}

// Speak implements domain.Speaker by queueing the word. It only fails
// when there is nothing to say.
func (m *Mouth) Speak(ctx context.Context, text, locale, voice string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrNoWords
	}
	m.SayWord(text, locale, voice)
	return nil
}

// PlayChime queues the success chime ahead of any pending speech.
func (m *Mouth) PlayChime() {
	m.enqueue(SpeechRequest{PCM: m.chime, Priority: PriorityHigh, QueuedAt: time.Now()})
}

func (m *Mouth) enqueue(req SpeechRequest) {
	m.mu.Lock()
	m.queue = append(m.queue, req)
	qLen := len(m.queue)
	m.mu.Unlock()

	m.log.Debug("mouth: queued (priority=%d, queue_len=%d): %s", req.Priority, qLen, truncate(req.Text, 60))

	select {
	case m.notify <- struct{}{}:
	default: // already signaled
	}
}

// flushLocked removes queued items at or below the given priority.
// Must be called with m.mu held.
func (m *Mouth) flushLocked(upTo Priority) {
	n := 0
	for _, item := range m.queue {
		if item.Priority > upTo {
			m.queue[n] = item
			n++
		}
	}
	dropped := len(m.queue) - n
	m.queue = m.queue[:n]
	if dropped > 0 {
		m.log.Debug("mouth: flushed %d stale items", dropped)
	}
}

// QueueLen returns the number of pending requests.
func (m *Mouth) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Busy reports whether anything is playing or waiting to play. The ear
// uses it to avoid recording its own output.
func (m *Mouth) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking || len(m.queue) > 0
}

// Interrupt stops the currently playing audio, clears the queue, and
// aborts any in-progress multi-chunk playback.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.queue = m.queue[:0]
	m.interrupted = true
	m.mu.Unlock()

	m.out.Stop()
	m.log.Debug("mouth: interrupted, queue cleared")
}

// Start begins the processing goroutine. Non-blocking.
func (m *Mouth) Start(ctx context.Context) {
	go m.processLoop(ctx)
	m.log.Info("mouth started")
}

func (m *Mouth) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.log.Info("mouth stopped")
			return
		case <-m.notify:
			m.drain(ctx)
		}
	}
}

// drain processes all queued items, highest priority first.
func (m *Mouth) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.mu.Lock()
		m.interrupted = false
		m.mu.Unlock()

		item, ok := m.dequeue()
		if !ok {
			return
		}

		m.mu.Lock()
		m.speaking = true
		m.mu.Unlock()

		m.process(ctx, item)

		m.mu.Lock()
		m.speaking = false
		m.mu.Unlock()
	}
}

// dequeue removes and returns the highest priority item, oldest first
// among equals.
func (m *Mouth) dequeue() (SpeechRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return SpeechRequest{}, false
	}

	bestIdx := 0
	for i, item := range m.queue {
		if item.Priority > m.queue[bestIdx].Priority {
			bestIdx = i
		}
	}

	item := m.queue[bestIdx]
	m.queue = append(m.queue[:bestIdx], m.queue[bestIdx+1:]...)
	return item, true
}

func (m *Mouth) process(ctx context.Context, req SpeechRequest) {
	if req.PCM != nil {
		if err := m.out.PlayPCM(req.PCM); err != nil {
			m.fail(fmt.Errorf("mouth: pcm playback: %w", err))
		}
		return
	}

	waitTime := time.Since(req.QueuedAt).Round(time.Millisecond)
	m.log.Debug("mouth: speaking (priority=%d, waited=%s): %s", req.Priority, waitTime, truncate(req.Text, 60))

	chunks := m.splitChunks(req.Text)
	if len(chunks) <= 1 {
		m.synthAndPlay(ctx, req.Text, req.Locale, req.Voice)
		return
	}

	m.log.Debug("mouth: split into %d chunks for parallel synthesis", len(chunks))

	type result struct {
		idx   int
		audio []byte
		err   error
	}
	results := make(chan result, len(chunks))
	for i, chunk := range chunks {
		go func(idx int, text string) {
			audio, err := m.synthesizeWithCache(ctx, text, req.Locale, req.Voice)
			results <- result{idx: idx, audio: audio, err: err}
		}(i, chunk)
	}

	audioSlots := make([][]byte, len(chunks))
	for range chunks {
		r := <-results
		if r.err != nil {
			m.fail(fmt.Errorf("mouth: chunk %d synthesis: %w", r.idx, r.err))
		} else {
			audioSlots[r.idx] = r.audio
		}
	}

	for i, audio := range audioSlots {
		if audio == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		m.mu.Lock()
		abort := m.interrupted
		m.mu.Unlock()
		if abort {
			m.log.Debug("mouth: aborting chunk playback (interrupted)")
			return
		}
		if err := m.out.Play(audio); err != nil {
			m.fail(fmt.Errorf("mouth: chunk %d playback: %w", i, err))
		}
	}
}

func (m *Mouth) synthAndPlay(ctx context.Context, text, locale, voice string) {
	audioData, err := m.synthesizeWithCache(ctx, text, locale, voice)
	if err != nil {
		m.fail(fmt.Errorf("mouth: synthesis: %w", err))
		return
	}
	if err := m.out.Play(audioData); err != nil {
		m.fail(fmt.Errorf("mouth: playback: %w", err))
	}
}

func (m *Mouth) fail(err error) {
	m.log.Error("%v", err)
	if m.onError != nil {
		m.onError(err)
	}
}

// synthesizeWithCache checks the cache first, otherwise synthesizes and
// stores the result. Thread-safe.
func (m *Mouth) synthesizeWithCache(ctx context.Context, text, locale, voice string) ([]byte, error) {
	if audio, ok := m.cache.Get(voice, text); ok {
		return audio, nil
	}
	audio, err := m.tts.Synthesize(ctx, text, locale, voice)
	if err != nil {
		return nil, err
	}
	m.cache.Put(voice, text, audio)
	return audio, nil
}

// splitChunks breaks text into sentence-boundary chunks of approximately
// m.chunkSize characters.
func (m *Mouth) splitChunks(text string) []string {
	if m.chunkSize <= 0 || len(text) <= m.chunkSize {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, s := range splitSentences(text) {
		if current.Len() > 0 && current.Len()+len(s) > m.chunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(s)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	var out []string
	for _, c := range chunks {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// splitSentences splits text at sentence boundaries keeping the
// punctuation attached to the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) {
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
				current.WriteRune(runes[i])
			}
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// Prefetch synthesizes words in the background so they play instantly
// when shown. Cached words are skipped. Non-blocking.
func (m *Mouth) Prefetch(ctx context.Context, locale, voice string, texts ...string) {
	var todo []string
	for _, text := range texts {
		if text == "" || m.cache.Has(voice, text) {
			continue
		}
		todo = append(todo, text)
	}
	if len(todo) == 0 {
		return
	}

	go func() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.prefetchLimit)
		for _, t := range todo {
			g.Go(func() error {
				audio, err := m.tts.Synthesize(gctx, t, locale, voice)
				if err != nil {
					m.log.Warn("prefetch: synthesis of %q failed: %v", truncate(t, 30), err)
					return nil
				}
				m.cache.Put(voice, t, audio)
				return nil
			})
		}
		_ = g.Wait()
		m.log.Debug("prefetch: warmed %d items", len(todo))
	}()
}

// Cache returns the audio cache used by this Mouth.
func (m *Mouth) Cache() *AudioCache { return m.cache }
