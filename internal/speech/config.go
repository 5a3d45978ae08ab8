package speech

import "time"

// DefaultVoice is used when a language has no voice configured.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "fr-FR-DeniseNeural"

// DefaultLocale is used when a request carries no locale.
const DefaultLocale = "fr-FR"

// Audio format returned by Azure and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// SpeakingRate slows pronunciation down slightly for learners.
const SpeakingRate = "-10%"

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Priority levels for speech requests. Higher value = plays first.
type Priority int

const (
	PriorityLow    Priority = iota // meanings, read on request
	PriorityNormal                 // target words
	PriorityHigh                   // feedback sounds
)

// SpeechRequest is a queued item waiting to be played. Either Text is
// synthesized with Locale and Voice, or PCM is played as is.
type SpeechRequest struct {
	Text     string
	Locale   string
	Voice    string
	PCM      []byte
	Priority Priority
	QueuedAt time.Time
}
