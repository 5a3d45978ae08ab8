// Package wordsource turns external vocabulary (CSV files, pasted text,
// the FrDic study-list API, web articles) into word lists. Every provider
// returns a nil list on error so callers never practice a partial list.
package wordsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hammamikhairi/vocabecho/internal/domain"
)

// ParseCSV reads the vocabulary layout "index, word, phonetic, meaning,
// notes". Columns two to four are used. Rows with fewer than four fields
// are skipped, and so is a first row starting with '#'.
func ParseCSV(r io.Reader) ([]domain.WordRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var words []domain.WordRecord
	for row := 0; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("wordsource: csv row %d: %w", row+1, err)
		}
		if row == 0 && len(fields) > 0 && strings.HasPrefix(strings.TrimSpace(fields[0]), "#") {
			continue
		}
		if len(fields) < 4 {
			continue
		}
		words = append(words, domain.WordRecord{
			Word:     fields[1],
			Phonetic: fields[2],
			Meaning:  PlainText(fields[3]),
		})
	}
	return domain.CleanWords(words), nil
}

// LoadCSVFile parses the CSV file at path.
func LoadCSVFile(path string) ([]domain.WordRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordsource: open %s: %w", path, err)
	}
	defer f.Close()

	words, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}
