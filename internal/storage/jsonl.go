// Package storage keeps published articles in a git-friendly JSONL file and
// serves lookups from an ephemeral SQLite cache rebuilt from it.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openjournaltheme/scholarfix/internal/citation"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// Article is one line of articles.jsonl: a published submission, the issue it
// appears in and its keywords by locale.
type Article struct {
	Submission citation.Submission `json:"submission"`
	Issue      *citation.Issue     `json:"issue,omitempty"`
	Keywords   map[string][]string `json:"keywords,omitempty"`
}

// ReadAll reads all articles from a JSONL file.
func ReadAll(path string) ([]Article, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Empty file returns empty slice
		}
		return nil, fmt.Errorf("opening articles file: %w", err)
	}
	defer f.Close()

	var articles []Article
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var a Article
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if a.Submission.BestID == "" {
			return nil, fmt.Errorf("line %d: submission has no best_id", lineNum)
		}
		articles = append(articles, a)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading articles file: %w", err)
	}

	return articles, nil
}

// Append adds an article to the end of a JSONL file.
func Append(path string, a Article) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening articles file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding article: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing article: %w", err)
	}
	return nil
}

// WriteAll writes all articles to a JSONL file, replacing existing content.
func WriteAll(path string, articles []Article) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating articles file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, a := range articles {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encoding article %d: %w", i, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing article %d: %w", i, err)
		}
	}
	return w.Flush()
}

// FindByID searches for an article by submission best id.
func FindByID(articles []Article, bestID string) (int, bool) {
	if bestID == "" {
		return -1, false
	}
	for i, a := range articles {
		if a.Submission.BestID == bestID {
			return i, true
		}
	}
	return -1, false
}
