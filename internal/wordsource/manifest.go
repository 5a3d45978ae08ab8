package wordsource

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// ManifestName is the file listing the CSV vocabularies of a directory.
const ManifestName = "manifest.json"

// Manifest is the on-disk index of a vocabulary directory.
type Manifest struct {
	Files []string `json:"files"`
}

// ScanDir returns the sorted names of the CSV files in dir.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("wordsource: scan %s: %w", dir, err)
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

// WriteManifest scans dir and writes its manifest. The written manifest
// is returned.
func WriteManifest(dir string) (*Manifest, error) {
	files, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}
	m := &Manifest{Files: files}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("wordsource: encode manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("wordsource: write %s: %w", path, err)
	}
	return m, nil
}

// ReadManifest loads dir's manifest. When there is none the directory is
// scanned instead.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if os.IsNotExist(err) {
		files, err := ScanDir(dir)
		if err != nil {
			return nil, err
		}
		return &Manifest{Files: files}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wordsource: read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("wordsource: decode manifest: %w", err)
	}
	return &m, nil
}
