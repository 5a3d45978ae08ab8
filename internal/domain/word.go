package domain

import "strings"

// WordRecord is one vocabulary item. Empty strings mean the field is absent.
type WordRecord struct {
	Word     string `json:"word"`
	Phonetic string `json:"phonetic,omitempty"`
	Meaning  string `json:"meaning,omitempty"`
}

// HasPhonetic reports whether a phonetic transcription is present.
func (w WordRecord) HasPhonetic() bool { return strings.TrimSpace(w.Phonetic) != "" }

// HasMeaning reports whether a meaning is present.
func (w WordRecord) HasMeaning() bool { return strings.TrimSpace(w.Meaning) != "" }

// CleanWords trims every field and drops records whose word is blank.
// The returned slice is always a fresh copy.
func CleanWords(in []WordRecord) []WordRecord {
	out := make([]WordRecord, 0, len(in))
	for _, w := range in {
		w.Word = strings.TrimSpace(w.Word)
		if w.Word == "" {
			continue
		}
		w.Phonetic = strings.TrimSpace(w.Phonetic)
		w.Meaning = strings.TrimSpace(w.Meaning)
		out = append(out, w)
	}
	return out
}
