package wordsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/vocabecho/internal/logger"
)

func newTestArticle(t *testing.T) *Article {
	t.Helper()
	a, err := NewArticle(logger.New(logger.LevelOff, nil))
	require.NoError(t, err)
	return a
}

func TestArticleExtractContentWords(t *testing.T) {
	a := newTestArticle(t)

	words := a.Extract("猫が走った。猫は速い。", 0)

	var got []string
	for _, w := range words {
		got = append(got, w.Word)
	}
	assert.Equal(t, []string{"猫", "走る", "速い"}, got)
	assert.Equal(t, "ネコ", words[0].Phonetic)
}

func TestArticleExtractLimit(t *testing.T) {
	a := newTestArticle(t)
	words := a.Extract("猫が走った。犬は速い。", 2)
	assert.Len(t, words, 2)
}

func TestArticleFetchErrors(t *testing.T) {
	a := newTestArticle(t)

	_, err := a.Fetch(context.Background(), "not a url", 10)
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	words, err := a.Fetch(context.Background(), srv.URL, 10)
	assert.Error(t, err)
	assert.Nil(t, words)
}
