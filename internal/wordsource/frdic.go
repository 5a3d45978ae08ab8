package wordsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

const (
	// DefaultBaseURL is the FrDic open API root.
	DefaultBaseURL = "https://api.frdic.com/api/open/v1"
	// DefaultPageSize is the number of words requested per page.
	DefaultPageSize = 100

	countConcurrency = 4
	maxPages         = 500
)

// FrDicOption configures the API client.
type FrDicOption func(*FrDic)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) FrDicOption {
	return func(c *FrDic) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithPageSize sets the words page size.
func WithPageSize(n int) FrDicOption {
	return func(c *FrDic) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) FrDicOption {
	return func(c *FrDic) {
		c.http = hc
	}
}

// FrDic is a client for the FrDic study-list API.
type FrDic struct {
	baseURL  string
	token    string
	pageSize int
	http     *http.Client
	log      *logger.Logger
}

// NewFrDic creates an API client authenticating with token.
func NewFrDic(token string, log *logger.Logger, opts ...FrDicOption) *FrDic {
	c := &FrDic{
		baseURL:  DefaultBaseURL,
		token:    strings.TrimSpace(token),
		pageSize: DefaultPageSize,
		http:     &http.Client{Timeout: 20 * time.Second},
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Category is one study list.
type Category struct {
	ID       CategoryID `json:"id"`
	Language string     `json:"language"`
	Name     string     `json:"name"`
	// HasWords is nil when the word count request failed.
	HasWords *bool `json:"-"`
}

// CategoryID accepts both numeric and string ids from the API.
type CategoryID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *CategoryID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = CategoryID(s)
		return nil
	}
	if string(b) == "null" {
		*id = ""
		return nil
	}
	*id = CategoryID(b)
	return nil
}

type envelope[T any] struct {
	Data    []T    `json:"data"`
	Message string `json:"message"`
}

type apiWord struct {
	Word string `json:"word"`
	Phon string `json:"phon"`
	Exp  string `json:"exp"`
}

// Categories lists the study lists for a language and checks each one,
// concurrently, for whether it holds any words.
func (c *FrDic) Categories(ctx context.Context, lang string) ([]Category, error) {
	q := url.Values{"language": {lang}}
	var env envelope[Category]
	if err := c.get(ctx, "/studylist/category", q, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		if env.Message != "" {
			return nil, fmt.Errorf("frdic: %s", env.Message)
		}
		return nil, fmt.Errorf("frdic: no vocabulary lists found: %w", domain.ErrNotFound)
	}

	cats := env.Data
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countConcurrency)
	for i := range cats {
		g.Go(func() error {
			page, err := c.wordsPage(gctx, lang, cats[i].ID, 1, 1)
			if err != nil {
				// Unknown rather than fatal: the list itself is still usable.
				c.log.Warn("frdic: probing %q: %v", cats[i].Name, err)
				return nil
			}
			has := len(page) > 0
			cats[i].HasWords = &has
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.log.Info("frdic: %d lists for %s", len(cats), lang)
	return cats, nil
}

// Words fetches every word of a study list, following pages until a
// short page is returned.
func (c *FrDic) Words(ctx context.Context, lang string, category CategoryID) ([]domain.WordRecord, error) {
	var words []domain.WordRecord
	for page := 1; page <= maxPages; page++ {
		items, err := c.wordsPage(ctx, lang, category, page, c.pageSize)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			words = append(words, domain.WordRecord{Word: it.Word, Phonetic: it.Phon, Meaning: PlainText(it.Exp)})
		}
		if len(items) < c.pageSize {
			break
		}
	}
	words = domain.CleanWords(words)
	c.log.Info("frdic: loaded %d words from list %s", len(words), category)
	return words, nil
}

func (c *FrDic) wordsPage(ctx context.Context, lang string, category CategoryID, page, size int) ([]apiWord, error) {
	q := url.Values{
		"language":    {lang},
		"category_id": {string(category)},
		"page":        {strconv.Itoa(page)},
		"page_size":   {strconv.Itoa(size)},
	}
	var env envelope[apiWord]
	if err := c.get(ctx, "/studylist/words", q, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *FrDic) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.token == "" {
		return domain.ErrUnauthorized
	}
	u := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("frdic: creating request: %w", err)
	}
	req.Header.Set("Authorization", authHeader(c.token))
	req.Header.Set("Accept", "application/json")

	c.log.Debug("frdic: GET %s", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("frdic: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("frdic: reading response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("frdic: %s: %w", resp.Status, domain.ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("frdic: %s (status %d): %s", path, resp.StatusCode, truncate(string(body), 200))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("frdic: empty response from %s", path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("frdic: decoding %s: %w", path, err)
	}
	return nil
}

// authHeader prefixes the token with the NIS scheme unless it already is.
func authHeader(token string) string {
	if strings.HasPrefix(token, "NIS ") {
		return token
	}
	return "NIS " + token
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
