package wordsource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

func newTestFrDic(t *testing.T, token string, h http.HandlerFunc) *FrDic {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewFrDic(token, logger.New(logger.LevelOff, nil), WithBaseURL(srv.URL+"/"), WithPageSize(2))
}

func TestFrDicWordsPaginates(t *testing.T) {
	var calls atomic.Int32
	client := newTestFrDic(t, "abc", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/studylist/words", r.URL.Path)
		assert.Equal(t, "NIS abc", r.Header.Get("Authorization"))
		assert.Equal(t, "fr", r.URL.Query().Get("language"))
		assert.Equal(t, "42", r.URL.Query().Get("category_id"))
		assert.Equal(t, "2", r.URL.Query().Get("page_size"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			fmt.Fprint(w, `{"data":[{"word":"chat","phon":"ʃa","exp":"cat"},{"word":"chien","exp":"dog"}]}`)
		case 2:
			fmt.Fprint(w, `{"data":[{"word":"","exp":"skipped"},{"word":"oiseau"}]}`)
		default:
			fmt.Fprint(w, `{"data":null}`)
		}
	})

	words, err := client.Words(context.Background(), "fr", "42")
	require.NoError(t, err)
	assert.Equal(t, []domain.WordRecord{
		{Word: "chat", Phonetic: "ʃa", Meaning: "cat"},
		{Word: "chien", Meaning: "dog"},
		{Word: "oiseau"},
	}, words)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFrDicWordsStripMarkup(t *testing.T) {
	client := newTestFrDic(t, "abc", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"word":"chat","exp":"n.<br>cat"},{"word":"pomme","exp":"<b>n.f.</b> apple &amp; pear"}]}`)
	})

	words, err := client.Words(context.Background(), "fr", "1")
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "n. cat", words[0].Meaning)
	assert.Equal(t, "n.f. apple & pear", words[1].Meaning)
}

func TestFrDicCategoriesCheckWords(t *testing.T) {
	client := newTestFrDic(t, "NIS already", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NIS already", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/studylist/category":
			fmt.Fprint(w, `{"data":[{"id":1,"language":"fr","name":"full"},{"id":"0","language":"fr","name":"empty"},{"id":7,"name":"broken"}]}`)
		case "/studylist/words":
			assert.Equal(t, "1", r.URL.Query().Get("page_size"))
			switch r.URL.Query().Get("category_id") {
			case "1":
				fmt.Fprint(w, `{"data":[{"word":"chat"}]}`)
			case "0":
				fmt.Fprint(w, `{"data":[]}`)
			default:
				http.Error(w, "boom", http.StatusInternalServerError)
			}
		}
	})

	cats, err := client.Categories(context.Background(), "fr")
	require.NoError(t, err)
	require.Len(t, cats, 3)

	assert.Equal(t, CategoryID("1"), cats[0].ID)
	require.NotNil(t, cats[0].HasWords)
	assert.True(t, *cats[0].HasWords)

	assert.Equal(t, CategoryID("0"), cats[1].ID)
	require.NotNil(t, cats[1].HasWords)
	assert.False(t, *cats[1].HasWords)

	assert.Nil(t, cats[2].HasWords)
}

func TestFrDicErrors(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		client := NewFrDic("  ", logger.New(logger.LevelOff, nil))
		words, err := client.Words(context.Background(), "fr", "1")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Nil(t, words)
	})

	t.Run("rejected token", func(t *testing.T) {
		client := newTestFrDic(t, "bad", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := client.Categories(context.Background(), "fr")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("no lists", func(t *testing.T) {
		client := newTestFrDic(t, "ok", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":null,"message":"no lists for language"}`)
		})
		_, err := client.Categories(context.Background(), "fr")
		assert.EqualError(t, err, "frdic: no lists for language")
	})

	t.Run("server error mid pagination", func(t *testing.T) {
		client := newTestFrDic(t, "ok", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, `{"data":[{"word":"a"},{"word":"b"}]}`)
				return
			}
			http.Error(w, "down", http.StatusBadGateway)
		})
		words, err := client.Words(context.Background(), "fr", "1")
		assert.Error(t, err)
		assert.Nil(t, words, "no partial list")
	})
}

func TestAuthHeader(t *testing.T) {
	assert.Equal(t, "NIS abc", authHeader("abc"))
	assert.Equal(t, "NIS abc", authHeader("NIS abc"))
}
