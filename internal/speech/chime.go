package speech

import (
	"encoding/binary"
	"math"
	"time"
)

// Success chime: C5 then E5 a beat later, each fading out.
const (
	chimeLow      = 523.25 // C5
	chimeHigh     = 659.25 // E5
	chimeOffset   = 100 * time.Millisecond
	chimeNote     = 300 * time.Millisecond
	chimeGain     = 0.3
	chimeGainTail = 0.01
)

// Chime renders the success chime as signed 16-bit little-endian mono PCM
// at the given sample rate.
func Chime(sampleRate int) []byte {
	total := chimeOffset + chimeNote
	n := int(total.Seconds() * float64(sampleRate))
	pcm := make([]byte, n*2)

	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		v := note(chimeLow, t) + note(chimeHigh, t-chimeOffset.Seconds())
		v = math.Max(-1, math.Min(1, v))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(v*math.MaxInt16)))
	}
	return pcm
}

// note is a sine tone starting at t=0 whose gain falls exponentially from
// chimeGain to chimeGainTail over chimeNote.
func note(freq, t float64) float64 {
	d := chimeNote.Seconds()
	if t < 0 || t >= d {
		return 0
	}
	gain := chimeGain * math.Pow(chimeGainTail/chimeGain, t/d)
	return gain * math.Sin(2*math.Pi*freq*t)
}
