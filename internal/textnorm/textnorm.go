// Package textnorm canonicalizes transcripts and target words so that a
// recognizer's output can be compared with the word the learner is asked
// to repeat.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Script classifies how a language separates words.
type Script int

const (
	// Spaced scripts separate words with whitespace (Latin, Cyrillic, ...).
	Spaced Script = iota
	// Unspaced scripts do not use whitespace between words (Chinese, Japanese, Thai, ...).
	Unspaced
)

var unspaced = map[string]bool{
	"zh": true,
	"ja": true,
	"th": true,
	"lo": true,
	"km": true,
	"my": true,
}

// punctuation is the fixed set stripped before comparison. Recognizers
// append sentence punctuation that the learner never "said".
var punctuation = map[rune]bool{
	'.': true, ',': true, '!': true, '?': true, ';': true, ':': true,
	'¡': true, '¿': true, '…': true,
	'，': true, '。': true, '！': true, '？': true, '；': true, '：': true, '、': true,
}

// ScriptOf returns the script class of a language code such as "fr",
// "zh" or "zh-CN". Unknown languages are treated as spaced.
func ScriptOf(lang string) Script {
	base := strings.ToLower(lang)
	if i := strings.IndexAny(base, "-_"); i >= 0 {
		base = base[:i]
	}
	if unspaced[base] {
		return Unspaced
	}
	return Spaced
}

// Normalize lower-cases text, strips punctuation, folds whitespace
// according to the script of lang and composes the result to NFC.
// Composition runs last; Normalize is idempotent.
func Normalize(text, lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	s := cases.Lower(tag).String(text)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if punctuation[r] {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	if ScriptOf(lang) == Unspaced {
		s = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	} else {
		s = strings.Join(strings.Fields(s), " ")
	}
	return norm.NFC.String(s)
}

// Equal reports whether two strings are the same word once normalized.
func Equal(a, b, lang string) bool {
	return Normalize(a, lang) == Normalize(b, lang)
}
