package gpt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// chatServer answers every completion with reply and records the request.
func chatServer(t *testing.T, status int, reply string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		if got != nil {
			assert.NoError(t, json.Unmarshal(body, got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAgent(srv *httptest.Server) *Agent {
	log := logger.New(logger.LevelOff, nil)
	client := NewClient("test-key", srv.URL+"/", log, WithMaxRetries(0))
	return NewAgent(client, log)
}

func TestGloss(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, http.StatusOK, "\"cat; tomcat\"\n", &got)
	agent := newTestAgent(srv)

	lang := domain.Language{Code: "ja", Name: "Japanese"}
	gloss, err := agent.Gloss(context.Background(), domain.WordRecord{Word: "猫", Phonetic: "ねこ"}, lang)
	require.NoError(t, err)
	assert.Equal(t, "cat; tomcat", gloss)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, PromptGloss, got.Messages[0].Content)
	assert.Equal(t, "Language: Japanese\nWord: 猫\nReading: ねこ", got.Messages[1].Content)
}

func TestGlossUnknownWord(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "?", nil)
	_, err := newTestAgent(srv).Gloss(context.Background(), domain.WordRecord{Word: "xqzt"}, domain.Language{Code: "fr"})
	assert.ErrorIs(t, err, ErrNoGloss)
}

func TestGlossServerError(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", nil)
	_, err := newTestAgent(srv).Gloss(context.Background(), domain.WordRecord{Word: "chat"}, domain.Language{Code: "fr"})
	assert.Error(t, err)
}

func TestGlossRejectsBlankWord(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "x", nil)
	_, err := newTestAgent(srv).Gloss(context.Background(), domain.WordRecord{Word: " "}, domain.Language{Code: "fr"})
	assert.ErrorIs(t, err, domain.ErrNoWords)
}

func TestCleanReply(t *testing.T) {
	tests := map[string]string{
		"to eat":                 "to eat",
		"```\nto run\n```":       "to run",
		"\n\n  “apple”  \nextra": "apple",
		"":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanReply(in), "input %q", in)
	}
}
