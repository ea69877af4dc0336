package pairing

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Passage is a chunk of corpus text before it is embedded.
type Passage struct {
	Source   string
	Position int
	Content  string
}

// SplitText cuts text into windows of at most size runes, each starting
// size-overlap runes after the previous one. Blank windows are skipped.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

var corpusExtensions = map[string]bool{".txt": true, ".md": true}

// LoadCorpus reads every text file under dir and splits it into passages.
// Files are visited in lexical order so rebuilds are reproducible.
func LoadCorpus(dir string, size, overlap int) ([]Passage, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && corpusExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %q: %w", dir, err)
	}
	sort.Strings(files)

	var passages []Passage
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read corpus file %q: %w", f, err)
		}
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			rel = f
		}
		for i, c := range SplitText(string(b), size, overlap) {
			passages = append(passages, Passage{Source: rel, Position: i, Content: c})
		}
	}
	return passages, nil
}
