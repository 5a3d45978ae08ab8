package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// AudioCache keeps synthesized words in memory and, when dir is set, as
// WAV files on disk. Entries are keyed by voice and text, so the same
// word in two voices is two entries. Files already on disk are read even
// when persist is off, which gives a warm start from earlier runs.
type AudioCache struct {
	dir     string
	persist bool
	log     *logger.Logger

	mu  sync.RWMutex
	mem map[string][]byte

	hits, misses atomic.Int64
}

// NewAudioCache creates a cache over dir. An empty dir keeps everything
// in memory; persist controls whether new entries are written to dir.
func NewAudioCache(dir string, persist bool, log *logger.Logger) *AudioCache {
	if dir != "" && persist {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("cache: creating %s: %v", dir, err)
		}
	}
	return &AudioCache{dir: dir, persist: persist, log: log, mem: make(map[string][]byte)}
}

// Get returns the audio for voice and text from memory or disk. Disk hits
// are kept in memory afterwards.
func (c *AudioCache) Get(voice, text string) ([]byte, bool) {
	key := cacheKey(voice, text)
	if audio, ok := c.memory(key); ok {
		c.hits.Add(1)
		return audio, true
	}
	if c.dir != "" {
		if audio, err := os.ReadFile(c.path(key)); err == nil {
			c.mu.Lock()
			c.mem[key] = audio
			c.mu.Unlock()
			c.hits.Add(1)
			c.log.Debug("cache: disk hit for %q", truncate(text, 40))
			return audio, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Put stores audio for voice and text.
func (c *AudioCache) Put(voice, text string, audio []byte) {
	key := cacheKey(voice, text)
	c.mu.Lock()
	c.mem[key] = audio
	c.mu.Unlock()

	if c.dir == "" || !c.persist {
		return
	}
	if err := os.WriteFile(c.path(key), audio, 0o644); err != nil {
		c.log.Warn("cache: writing %q: %v", truncate(text, 40), err)
	}
}

// Has reports whether audio for voice and text is cached. It does not
// count as a hit or a miss.
func (c *AudioCache) Has(voice, text string) bool {
	key := cacheKey(voice, text)
	if _, ok := c.memory(key); ok {
		return true
	}
	if c.dir == "" {
		return false
	}
	_, err := os.Stat(c.path(key))
	return err == nil
}

// Stats returns hit and miss counts of Get.
func (c *AudioCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *AudioCache) memory(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	audio, ok := c.mem[key]
	return audio, ok
}

func (c *AudioCache) path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}

func cacheKey(voice, text string) string {
	sum := sha256.Sum256([]byte(voice + ":" + text))
	return hex.EncodeToString(sum[:])
}
