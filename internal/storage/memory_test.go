package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

type store interface {
	domain.CredentialStore
	domain.RunStore
}

func stores(t *testing.T) map[string]store {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	sqlite, err := OpenSQLite(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]store{
		"memory": NewMemoryStore(log),
		"sqlite": sqlite,
	}
}

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadToken(ctx)
			assert.ErrorIs(t, err, domain.ErrNotFound)

			require.NoError(t, s.SaveToken(ctx, " NIS abc "))
			tok, err := s.LoadToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, "NIS abc", tok)

			require.NoError(t, s.SaveToken(ctx, "def"))
			tok, err = s.LoadToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, "def", tok)

			require.NoError(t, s.SaveToken(ctx, "  "))
			_, err = s.LoadToken(ctx)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestRunHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i, id := range []string{"a", "b", "c"} {
				run := domain.RunSummary{
					ID:         id,
					Language:   "fr",
					Source:     "list.csv",
					Total:      10,
					Matched:    i,
					Passed:     10 - i,
					StartedAt:  base.Add(time.Duration(i) * time.Hour),
					FinishedAt: base.Add(time.Duration(i)*time.Hour + 5*time.Minute),
				}
				require.NoError(t, s.SaveRun(ctx, run))
			}

			runs, err := s.ListRuns(ctx, 2)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "c", runs[0].ID)
			assert.Equal(t, "b", runs[1].ID)
			assert.Equal(t, 2, runs[0].Matched)
			assert.True(t, runs[0].FinishedAt.Equal(base.Add(2*time.Hour+5*time.Minute)))

			all, err := s.ListRuns(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}
