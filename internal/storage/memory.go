// Package storage persists the vocabulary API token and practice history.
package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.CredentialStore = (*MemoryStore)(nil)
	_ domain.RunStore        = (*MemoryStore)(nil)
)

// MemoryStore keeps everything in process memory. Safe for concurrent access.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	runs  map[string]domain.RunSummary
	log   *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]domain.RunSummary),
		log:  log,
	}
}

// SaveToken stores the API token. A blank token clears it.
func (s *MemoryStore) SaveToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
	s.log.Debug("token saved (set=%v)", s.token != "")
	return nil
}

// LoadToken returns the stored token or domain.ErrNotFound.
func (s *MemoryStore) LoadToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", domain.ErrNotFound
	}
	return s.token, nil
}

// SaveRun persists a run summary. Overwrites if it already exists.
func (s *MemoryStore) SaveRun(ctx context.Context, run domain.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Debug("saving run %s (lang=%s, %d/%d matched)", run.ID, run.Language, run.Matched, run.Total)
	s.runs[run.ID] = run
	return nil
}

// ListRuns returns the most recently finished runs first.
func (s *MemoryStore) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
