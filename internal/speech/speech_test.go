package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

func quietLog() *logger.Logger { return logger.New(logger.LevelOff, nil) }

// fakeWAV builds a minimal RIFF file around pcm.
func fakeWAV(pcm []byte) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(pcm)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	b.Write(make([]byte, 16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func TestAzureSynthesize(t *testing.T) {
	var gotBody, gotKey, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotFormat = r.Header.Get("X-Microsoft-OutputFormat")
		w.Write(fakeWAV([]byte{1, 2, 3, 4}))
	}))
	defer srv.Close()

	c := NewAzureClient("key", "westeurope", quietLog(), WithEndpoint(srv.URL))
	audio, err := c.Synthesize(context.Background(), "l'été & R<D>", "fr-FR", "fr-FR-DeniseNeural")
	require.NoError(t, err)

	assert.Equal(t, fakeWAV([]byte{1, 2, 3, 4}), audio)
	assert.Equal(t, "key", gotKey)
	assert.Equal(t, DefaultAudioFormat, gotFormat)
	assert.Contains(t, gotBody, "xml:lang='fr-FR'")
	assert.Contains(t, gotBody, "name='fr-FR-DeniseNeural'")
	assert.Contains(t, gotBody, "<prosody rate='-10%'>")
	assert.Contains(t, gotBody, "l&#39;été &amp; R&lt;D&gt;")
}

func TestAzureSynthesizeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewAzureClient("key", "westeurope", quietLog(), WithEndpoint(srv.URL))
	_, err := c.Synthesize(context.Background(), "chat", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestExtractPCM(t *testing.T) {
	pcm, err := extractPCM(fakeWAV([]byte{9, 8, 7, 6}))
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7, 6}, pcm)

	_, err = extractPCM([]byte("short"))
	assert.Error(t, err)

	bad := fakeWAV(make([]byte, 8))
	copy(bad[8:12], "AVI ")
	_, err = extractPCM(bad)
	assert.ErrorIs(t, err, errNotWAV)
}

func TestExtractPCMSkipsPaddedChunks(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("RIFFxxxxWAVE")
	b.WriteString("LIST")
	binary.Write(&b, binary.LittleEndian, uint32(3))
	b.Write([]byte{1, 2, 3, 0}) // odd chunk plus pad byte
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(100))
	b.Write([]byte{5, 6})

	pcm, err := extractPCM(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6}, pcm, "oversized data chunk is truncated")

	_, err = extractPCM([]byte("RIFFxxxxWAVEfmt \x02\x00\x00\x00ab"))
	assert.ErrorIs(t, err, errNoPCMData)
}

func TestChime(t *testing.T) {
	pcm := Chime(SampleRate)
	require.Len(t, pcm, int(0.4*SampleRate)*2)

	var peak int16
	for i := 0; i < len(pcm); i += 2 {
		v := int16(binary.LittleEndian.Uint16(pcm[i:]))
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	assert.Greater(t, peak, int16(1000), "chime is audible")
	assert.LessOrEqual(t, float64(peak), 0.61*32767, "two notes at gain 0.3 never clip")
}

func TestAudioCacheKeysByVoice(t *testing.T) {
	dir := t.TempDir()
	c := NewAudioCache(dir, true, quietLog())

	c.Put("voice-a", "chat", []byte("A"))
	got, ok := c.Get("voice-a", "chat")
	require.True(t, ok)
	assert.Equal(t, []byte("A"), got)

	_, ok = c.Get("voice-b", "chat")
	assert.False(t, ok)

	// A fresh cache over the same directory warms from disk.
	warm := NewAudioCache(dir, false, quietLog())
	assert.True(t, warm.Has("voice-a", "chat"))
	got, ok = warm.Get("voice-a", "chat")
	require.True(t, ok)
	assert.Equal(t, []byte("A"), got)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCleanTranscription(t *testing.T) {
	tests := map[string]string{
		" Bonjour. ":                           "Bonjour.",
		"[BLANK_AUDIO]":                        "",
		"(keyboard clicking) chat":             "chat",
		"[00:00:00.000 --> 00:00:02.000] chien": "chien",
		"Thank you.":                           "",
		"pomme\nde terre":                      "pomme de terre",
		"[laughter] merci (speaking French)":   "merci",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanTranscription(in), "input %q", in)
	}
}

// fakeSynth returns a WAV carrying the text as PCM.
type fakeSynth struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (f *fakeSynth) Synthesize(_ context.Context, text, locale, voice string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, voice+"|"+text)
	if f.fail {
		return nil, errors.New("tts down")
	}
	return fakeWAV([]byte(text)), nil
}

func (f *fakeSynth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeOutput records what was played.
type fakeOutput struct {
	mu     sync.Mutex
	played []string
	stops  int
}

func (f *fakeOutput) Play(wav []byte) error {
	pcm, err := extractPCM(wav)
	if err != nil {
		return err
	}
	return f.PlayPCM(pcm)
}

func (f *fakeOutput) PlayPCM(pcm []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(pcm) > 1000 {
		f.played = append(f.played, "<chime>")
	} else {
		f.played = append(f.played, string(pcm))
	}
	return nil
}

func (f *fakeOutput) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeOutput) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func TestMouthPlaysQueuedWordsAndUsesCache(t *testing.T) {
	synth := &fakeSynth{}
	out := &fakeOutput{}
	m := NewMouth(synth, out, quietLog())

	// Queue before starting so ordering is deterministic.
	m.SayWord("chat", "fr-FR", "v")
	m.PlayChime()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	require.Eventually(t, func() bool { return len(out.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"<chime>", "chat"}, out.snapshot(), "chime outranks words")

	m.SayWord("chat", "fr-FR", "v")
	require.Eventually(t, func() bool { return len(out.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, synth.callCount(), "second play comes from cache")
	require.Eventually(t, func() bool { return !m.Busy() }, time.Second, 5*time.Millisecond)
}

func TestMouthReportsSynthesisFailure(t *testing.T) {
	var mu sync.Mutex
	var reported []error
	m := NewMouth(&fakeSynth{fail: true}, &fakeOutput{}, quietLog(),
		WithOnError(func(err error) {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, err)
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	m.SayWord("chat", "fr-FR", "v")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reported) == 1
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, reported[0].Error(), "synthesis")
	assert.Contains(t, reported[0].Error(), "tts down")
}

func TestMouthSayWordDropsStaleWords(t *testing.T) {
	m := NewMouth(&fakeSynth{}, &fakeOutput{}, quietLog())
	m.SayWord("un", "fr-FR", "v")
	m.SayWord("deux", "fr-FR", "v")
	m.PlayChime()
	m.SayWord("trois", "fr-FR", "v")

	assert.Equal(t, 2, m.QueueLen())
	item, ok := m.dequeue()
	require.True(t, ok)
	assert.NotNil(t, item.PCM)
	item, _ = m.dequeue()
	assert.Equal(t, "trois", item.Text)
}

func TestMouthSpeakAndInterrupt(t *testing.T) {
	out := &fakeOutput{}
	m := NewMouth(&fakeSynth{}, out, quietLog())

	assert.ErrorIs(t, m.Speak(context.Background(), "  ", "fr-FR", "v"), domain.ErrNoWords)
	require.NoError(t, m.Speak(context.Background(), "chat", "fr-FR", "v"))
	assert.Equal(t, 1, m.QueueLen())

	m.Interrupt()
	assert.Equal(t, 0, m.QueueLen())
	assert.Equal(t, 1, out.stops)
}

func TestMouthPrefetch(t *testing.T) {
	synth := &fakeSynth{}
	m := NewMouth(synth, &fakeOutput{}, quietLog())

	m.Prefetch(context.Background(), "fr-FR", "v", "chat", "chien", "")
	require.Eventually(t, func() bool {
		return m.Cache().Has("v", "chat") && m.Cache().Has("v", "chien")
	}, time.Second, 5*time.Millisecond)

	m.Prefetch(context.Background(), "fr-FR", "v", "chat")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, synth.callCount())
}

func TestSplitChunks(t *testing.T) {
	m := NewMouth(&fakeSynth{}, &fakeOutput{}, quietLog(), WithChunkSize(20))
	chunks := m.splitChunks("Un chat noir. Un chien blanc! Deux oiseaux?")
	assert.Equal(t, []string{"Un chat noir.", "Un chien blanc!", "Deux oiseaux?"}, chunks)

	assert.Equal(t, []string{"猫です。犬です。"}, NewMouth(&fakeSynth{}, &fakeOutput{}, quietLog()).splitChunks("猫です。犬です。"))
}

func TestKeyboardSubmit(t *testing.T) {
	k := NewKeyboard(quietLog())
	assert.False(t, k.Submit("chat"), "no live attempt")

	require.NoError(t, k.StartAttempt(context.Background(), 4, "chat", "fr-FR"))
	assert.True(t, k.Submit("chat"))

	ev := <-k.Events()
	assert.Equal(t, domain.RecognitionEvent{Token: 4, Transcript: "chat", Final: true}, ev)

	k.StopAttempt(3)
	assert.True(t, k.Submit("still live"))
	<-k.Events()

	k.StopAttempt(4)
	k.StopAttempt(4)
	assert.False(t, k.Submit("chat"))
}

// scriptedRecorder replays chunks, then blocks until cancelled.
func scriptedRecorder(chunks ...string) Recorder {
	var mu sync.Mutex
	return func(ctx context.Context, d time.Duration) (string, error) {
		mu.Lock()
		if len(chunks) > 0 {
			c := chunks[0]
			chunks = chunks[1:]
			mu.Unlock()
			return c, nil
		}
		mu.Unlock()
		<-ctx.Done()
		return "", nil
	}
}

func TestEarEmitsInterimThenFinal(t *testing.T) {
	ear := NewEar("whisper-cli", "model.bin", quietLog(),
		WithRecorder(scriptedRecorder("[BLANK_AUDIO]", "pomme", "de terre", "", "")))

	require.NoError(t, ear.StartAttempt(context.Background(), 7, "pomme de terre", "fr-FR"))
	defer ear.StopAttempt(7)

	var got []domain.RecognitionEvent
	for len(got) < 3 {
		select {
		case ev := <-ear.Events():
			got = append(got, ev)
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}

	assert.Equal(t, []domain.RecognitionEvent{
		{Token: 7, Transcript: "pomme"},
		{Token: 7, Transcript: "pomme de terre"},
		{Token: 7, Transcript: "pomme de terre", Final: true},
	}, got)
}

func TestEarReportsRecorderError(t *testing.T) {
	ear := NewEar("whisper-cli", "model.bin", quietLog(),
		WithRecorder(func(ctx context.Context, d time.Duration) (string, error) {
			return "", errors.New("no microphone")
		}))

	require.NoError(t, ear.StartAttempt(context.Background(), 2, "chat", "fr-FR"))
	select {
	case ev := <-ear.Events():
		assert.Equal(t, domain.AttemptToken(2), ev.Token)
		assert.EqualError(t, ev.Err, "no microphone")
	case <-time.After(time.Second):
		t.Fatal("no error event")
	}
}

func TestEarStopSilencesAttempt(t *testing.T) {
	started := make(chan struct{}, 1)
	ear := NewEar("whisper-cli", "model.bin", quietLog(),
		WithRecorder(func(ctx context.Context, d time.Duration) (string, error) {
			select {
			case started <- struct{}{}:
			default:
			}
			<-ctx.Done()
			return "chat", nil
		}))

	require.NoError(t, ear.StartAttempt(context.Background(), 1, "chat", "fr-FR"))
	<-started
	ear.StopAttempt(99) // unknown token
	ear.StopAttempt(1)
	ear.StopAttempt(1)

	select {
	case ev := <-ear.Events():
		t.Fatalf("unexpected event after stop: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

// textPresenter records rendered kinds.
type textPresenter struct {
	mu    sync.Mutex
	kinds []domain.EventKind
}

func (p *textPresenter) Present(ev domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, ev.Kind)
}

func TestFeedbackPresenter(t *testing.T) {
	synth := &fakeSynth{}
	m := NewMouth(synth, &fakeOutput{}, quietLog())
	inner := &textPresenter{}
	next := domain.WordRecord{Word: "chien"}
	fp := NewFeedbackPresenter(context.Background(), inner, m, quietLog(),
		WithAutoSay(true),
		WithVoices(map[string]string{"fr": "fr-FR-DeniseNeural"}),
		WithUpcoming(func(pos int) (domain.WordRecord, bool) { return next, pos == 1 }),
	)

	fp.Present(domain.Event{Kind: domain.EventWord, Word: domain.WordRecord{Word: "chat"}, Position: 0, Language: "fr", Locale: "fr-FR"})
	require.Equal(t, 1, m.QueueLen())
	item, _ := m.dequeue()
	assert.Equal(t, "chat", item.Text)
	assert.Equal(t, "fr-FR-DeniseNeural", item.Voice)
	require.Eventually(t, func() bool { return m.Cache().Has("fr-FR-DeniseNeural", "chien") }, time.Second, 5*time.Millisecond)

	fp.Present(domain.Event{Kind: domain.EventMatched})
	item, _ = m.dequeue()
	assert.NotNil(t, item.PCM)

	fp.Present(domain.Event{Kind: domain.EventFinished})
	assert.Equal(t, []domain.EventKind{domain.EventWord, domain.EventMatched, domain.EventFinished}, inner.kinds)
}

func TestNoOpSpeak(t *testing.T) {
	assert.NoError(t, NewNoOp(quietLog()).Speak(context.Background(), "chat", "fr-FR", ""))
}
