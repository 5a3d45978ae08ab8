package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/vocabecho/internal/logger"
)

var (
	errNotWAV    = errors.New("player: not a RIFF/WAVE stream")
	errNoPCMData = errors.New("player: no data chunk")
)

// AudioOutput plays audio. Player is the oto-backed implementation.
type AudioOutput interface {
	Play(wav []byte) error
	PlayPCM(pcm []byte) error
	Stop()
}

var _ AudioOutput = (*Player)(nil)

// Player plays mono 16-bit PCM through the system audio device. One
// sound plays at a time; Stop cuts the current one short.
type Player struct {
	ctx *oto.Context
	log *logger.Logger

	mu      sync.Mutex
	playing *oto.Player
}

// NewPlayer opens the audio device at SampleRate.
func NewPlayer(log *logger.Logger) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return &Player{ctx: ctx, log: log}, nil
}

// Play decodes a WAV clip and plays its samples.
func (p *Player) Play(wav []byte) error {
	pcm, err := extractPCM(wav)
	if err != nil {
		return err
	}
	return p.PlayPCM(pcm)
}

// PlayPCM blocks until pcm has played or Stop is called.
func (p *Player) PlayPCM(pcm []byte) error {
	sound := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.swap(sound)
	defer p.swap(nil)

	sound.Play()
	for sound.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return sound.Close()
}

// Stop pauses whatever is playing. It is a no-op when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	sound := p.playing
	p.mu.Unlock()
	if sound != nil {
		sound.Pause()
		p.log.Debug("player: stopped")
	}
}

func (p *Player) swap(sound *oto.Player) {
	p.mu.Lock()
	p.playing = sound
	p.mu.Unlock()
}

// extractPCM returns the samples of the first data chunk in a WAV clip.
// A data chunk whose declared size runs past the end is truncated.
func extractPCM(wav []byte) ([]byte, error) {
	const riffHeader = 12
	if len(wav) < riffHeader || string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errNotWAV
	}
	rest := wav[riffHeader:]
	for len(rest) >= 8 {
		id, size := string(rest[:4]), int(binary.LittleEndian.Uint32(rest[4:8]))
		body := rest[8:]
		if id == "data" {
			return body[:min(size, len(body))], nil
		}
		size += size & 1
		if size >= len(body) {
			break
		}
		rest = body[size:]
	}
	return nil, errNoPCMData
}
