package wordsource

import (
	"strings"

	"github.com/hammamikhairi/vocabecho/internal/domain"
)

// pasteHeaders are the column titles exported by the FrDic desktop app.
var pasteHeaders = map[string]bool{"单词": true, "音标": true, "解释": true}

// ParsePasted reads words pasted from a spreadsheet or typed by hand.
// Tab-separated lines are "word, phonetic, meaning"; any other line is a
// comma-separated list of bare words.
func ParsePasted(text string) []domain.WordRecord {
	var words []domain.WordRecord
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.Contains(line, "\t") {
			cols := strings.Split(line, "\t")
			if pasteHeaders[strings.ToLower(strings.TrimSpace(cols[0]))] {
				continue
			}
			w := domain.WordRecord{Word: cols[0]}
			if len(cols) > 1 {
				w.Phonetic = cols[1]
			}
			if len(cols) > 2 {
				w.Meaning = PlainText(strings.Join(cols[2:], " "))
			}
			words = append(words, w)
			continue
		}

		for _, part := range strings.Split(line, ",") {
			words = append(words, domain.WordRecord{Word: part})
		}
	}
	return domain.CleanWords(words)
}
