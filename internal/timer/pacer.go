// Package timer schedules the delayed steps of a practice session: the
// pause after a correct answer and after a pass before the next word is
// shown. Tasks are keyed by attempt token so releasing an attempt cancels
// whatever was pending for it.
package timer

import (
	"sync"
	"time"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// Option configures the pacer.
type Option func(*Pacer)

// WithClock replaces the wall clock, typically with a ManualClock in tests.
func WithClock(c Clock) Option {
	return func(p *Pacer) {
		p.clock = c
	}
}

// Pacer runs at most one delayed task per attempt token.
type Pacer struct {
	clock Clock
	log   *logger.Logger

	mu      sync.Mutex
	seq     uint64
	pending map[domain.AttemptToken]pacedTask
}

type pacedTask struct {
	seq  uint64
	stop Stopper
}

// NewPacer creates a pacer.
func NewPacer(log *logger.Logger, opts ...Option) *Pacer {
	p := &Pacer{
		clock:   RealClock{},
		log:     log,
		pending: make(map[domain.AttemptToken]pacedTask),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Clock returns the clock the pacer schedules on.
func (p *Pacer) Clock() Clock { return p.clock }

// Schedule runs fn after d. A task already pending for the same token is
// cancelled first.
func (p *Pacer) Schedule(token domain.AttemptToken, d time.Duration, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.pending[token]; ok {
		prev.stop.Stop()
	}
	p.seq++
	seq := p.seq
	stop := p.clock.AfterFunc(d, func() {
		p.mu.Lock()
		cur, ok := p.pending[token]
		if !ok || cur.seq != seq {
			p.mu.Unlock()
			return
		}
		delete(p.pending, token)
		p.mu.Unlock()

		fn()
	})
	p.pending[token] = pacedTask{seq: seq, stop: stop}
	p.log.Debug("pacer: scheduled token=%d in %s", token, d)
}

// Cancel drops the task pending for token, if any.
func (p *Pacer) Cancel(token domain.AttemptToken) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	task, ok := p.pending[token]
	if !ok {
		return false
	}
	delete(p.pending, token)
	task.stop.Stop()
	p.log.Debug("pacer: cancelled token=%d", token)
	return true
}

// CancelAll drops every pending task.
func (p *Pacer) CancelAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for token, task := range p.pending {
		task.stop.Stop()
		delete(p.pending, token)
	}
}

// Pending returns the number of tasks that have not run yet.
func (p *Pacer) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
