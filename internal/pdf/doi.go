// Package pdf reads identifiers out of galley PDF files.
package pdf

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// doiBody matches 10.XXXX/... where XXXX is 4-9 digits.
const doiBody = `10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`

var (
	doiPattern = regexp.MustCompile(doiBody)

	// labelledDOIPattern matches the article's own DOI as journals print it
	// in the page header or footer: "DOI: 10..." or a doi.org link.
	labelledDOIPattern = regexp.MustCompile(`(?i)(?:doi\.org/|\bdoi\s*:?\s*)(` + doiBody + `)`)
)

// searchPages is how many leading pages are scanned; DOIs sit on the first page
// or the running header.
const searchPages = 3

// ExtractDOI extracts the article DOI from a galley PDF. It returns "" without
// error when the file has none.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	maxPages := min(searchPages, r.NumPage())
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteByte('\n')
	}

	return findDOI(text.String()), nil
}

// findDOI returns the first labelled DOI in text. Unlabelled DOIs usually
// belong to cited works, so they are used only when no label is found.
func findDOI(text string) string {
	for _, m := range labelledDOIPattern.FindAllStringSubmatch(text, -1) {
		if doi := cleanDOI(m[1]); doi != "" {
			return doi
		}
	}
	for _, m := range doiPattern.FindAllString(text, -1) {
		if doi := cleanDOI(m); doi != "" {
			return doi
		}
	}
	return ""
}

// cleanDOI strips trailing punctuation and returns "" for implausible DOIs.
func cleanDOI(match string) string {
	doi := strings.TrimRight(match, ".,;:)")
	if !isValidDOI(doi) {
		return ""
	}
	return doi
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}
