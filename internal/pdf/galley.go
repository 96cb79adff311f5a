package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openjournaltheme/scholarfix/internal/citation"
)

// Resolver locates galley files under a root directory.
type Resolver struct {
	root string
}

// NewResolver returns a Resolver for galley paths relative to root.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// ResolvePath turns a galley path into an existing absolute file path.
func (r *Resolver) ResolvePath(relativePath string) (string, error) {
	if r.root == "" {
		return "", fmt.Errorf("pdf_root not configured")
	}
	if relativePath == "" {
		return "", fmt.Errorf("no galley path specified")
	}

	fullPath := filepath.Join(r.root, relativePath)
	rel, err := filepath.Rel(r.root, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("galley path outside pdf_root: %s", relativePath)
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("galley not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking galley: %w", err)
	}
	return fullPath, nil
}

// PrimaryPDF returns the first non-supplementary PDF galley with a file path.
func PrimaryPDF(galleys []citation.Galley) (citation.Galley, bool) {
	for _, g := range galleys {
		if g.Supplementary || g.FileType != citation.FileTypePDF || g.Path == "" {
			continue
		}
		return g, true
	}
	return citation.Galley{}, false
}

// DetectDOI extracts a DOI from the primary PDF galley of a submission.
// It returns "" without error when the submission has no primary PDF.
func (r *Resolver) DetectDOI(sub *citation.Submission) (string, error) {
	g, ok := PrimaryPDF(sub.Galleys)
	if !ok {
		return "", nil
	}
	path, err := r.ResolvePath(g.Path)
	if err != nil {
		return "", err
	}
	doi, err := ExtractDOI(path)
	if err != nil {
		return "", fmt.Errorf("reading galley %s: %w", g.ID, err)
	}
	return doi, nil
}
