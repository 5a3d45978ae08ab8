package wordsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

const maxArticleSize = 10 << 20

// contentPOS are the IPA parts of speech worth practicing.
var contentPOS = map[string]bool{
	"名詞":  true,
	"動詞":  true,
	"形容詞": true,
}

var rubyText = regexp.MustCompile(`(?s)<rt[^>]*>.*?</rt>|<rp[^>]*>.*?</rp>`)

// Article extracts practice words from Japanese web pages.
type Article struct {
	http *http.Client
	tok  *tokenizer.Tokenizer
	log  *logger.Logger
}

// NewArticle loads the IPA dictionary and prepares the tokenizer.
func NewArticle(log *logger.Logger) (*Article, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("wordsource: tokenizer: %w", err)
	}
	return &Article{
		http: &http.Client{Timeout: 30 * time.Second},
		tok:  t,
		log:  log,
	}, nil
}

// Fetch downloads rawURL, extracts its main text and returns up to limit
// content words.
func (a *Article) Fetch(ctx context.Context, rawURL string, limit int) ([]domain.WordRecord, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("wordsource: invalid article url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("wordsource: creating request: %w", err)
	}
	// Some sites block clients that do not look like a browser.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.8,en;q=0.6")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordsource: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wordsource: fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > maxArticleSize {
		return nil, fmt.Errorf("wordsource: article is %d bytes, limit %d", resp.ContentLength, maxArticleSize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleSize))
	if err != nil {
		return nil, fmt.Errorf("wordsource: reading article: %w", err)
	}
	if len(body) >= maxArticleSize {
		return nil, fmt.Errorf("wordsource: article exceeds %d bytes", maxArticleSize)
	}

	body = rubyText.ReplaceAll(body, nil)
	doc, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return nil, fmt.Errorf("wordsource: extracting article: %w", err)
	}
	a.log.Info("article: %q (%d chars)", doc.Title, len(doc.TextContent))
	return a.Extract(doc.TextContent, limit), nil
}

// Extract tokenizes text and returns its content words by dictionary
// form, in first-seen order, with the katakana reading as phonetic.
// A limit <= 0 means no limit.
func (a *Article) Extract(text string, limit int) []domain.WordRecord {
	seen := make(map[string]bool)
	var words []domain.WordRecord

	for _, token := range a.tok.Tokenize(text) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}
		features := token.Features()
		if len(features) == 0 || !contentPOS[features[0]] {
			continue
		}
		// Skip numerals and suffix-only nouns.
		if len(features) > 1 && (features[1] == "数" || features[1] == "接尾" || features[1] == "非自立") {
			continue
		}

		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		if seen[base] {
			continue
		}
		seen[base] = true

		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}
		words = append(words, domain.WordRecord{Word: base, Phonetic: reading})
		if limit > 0 && len(words) >= limit {
			break
		}
	}
	return domain.CleanWords(words)
}
