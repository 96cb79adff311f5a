// Package citation derives discovery-engine citation tags from a published
// submission. Everything here is a pure function of its inputs.
package citation

import (
	"regexp"
	"strings"
	"time"
)

// LocalizedText maps locale codes (e.g. "en_US") to text.
type LocalizedText map[string]string

// Get returns the text for locale, or "" when it has none.
func (l LocalizedText) Get(locale string) string {
	return l[locale]
}

// Journal is the publishing context.
type Journal struct {
	Name          LocalizedText `json:"name"`
	PrimaryLocale string        `json:"primary_locale"`
	OnlineISSN    string        `json:"online_issn,omitempty"`
	PrintISSN     string        `json:"print_issn,omitempty"`
	ISSN          string        `json:"issn,omitempty"`
}

// Author is a submission contributor. Affiliation is already resolved to the
// request locale.
type Author struct {
	GivenName           string `json:"given_name"`
	FamilyName          string `json:"family_name"`
	PreferredPublicName string `json:"preferred_public_name,omitempty"`
	Affiliation         string `json:"affiliation,omitempty"`
}

// FullName formats the author's name. With preferred set, a non-empty
// PreferredPublicName wins. Otherwise the name is "Given Family", or
// "Family, Given" when familyFirst is set.
func (a Author) FullName(preferred, familyFirst bool) string {
	if preferred {
		if name := strings.TrimSpace(a.PreferredPublicName); name != "" {
			return name
		}
	}
	given := strings.TrimSpace(a.GivenName)
	family := strings.TrimSpace(a.FamilyName)
	if familyFirst {
		if given == "" {
			return family
		}
		if family == "" {
			return given
		}
		return family + ", " + given
	}
	return strings.TrimSpace(given + " " + family)
}

// Galley is a published rendition of a submission.
type Galley struct {
	ID            string `json:"id"`
	FileType      string `json:"file_type"`
	Supplementary bool   `json:"supplementary,omitempty"`
	// Path locates the galley file relative to the configured PDF root.
	Path string `json:"path,omitempty"`
}

// Galley file types that produce links.
const (
	FileTypePDF  = "application/pdf"
	FileTypeHTML = "text/html"
)

// Submission is the published article.
type Submission struct {
	BestID               string            `json:"best_id"`
	CurrentPublicationID int64             `json:"current_publication_id"`
	Locale               string            `json:"locale"`
	Title                LocalizedText     `json:"title"`
	Subtitle             LocalizedText     `json:"subtitle,omitempty"`
	Authors              []Author          `json:"authors"`
	DatePublished        string            `json:"date_published,omitempty"`
	Pages                string            `json:"pages,omitempty"`
	Galleys              []Galley          `json:"galleys,omitempty"`
	StoredIDs            map[string]string `json:"stored_ids,omitempty"`
}

// FullTitle returns the title in locale, with ": subtitle" appended when a
// subtitle exists.
func (s *Submission) FullTitle(locale string) string {
	title := strings.TrimSpace(s.Title.Get(locale))
	if sub := strings.TrimSpace(s.Subtitle.Get(locale)); sub != "" {
		return title + ": " + sub
	}
	return title
}

// StoredID returns the stored external identifier for an identifier type.
func (s *Submission) StoredID(idType string) string {
	return s.StoredIDs[idType]
}

// leadingWord matches a label such as "pp." before the page numbers.
var leadingWord = regexp.MustCompile(`^[[:alpha:]]+\W`)

// PageRanges splits Pages into groups. Each group holds one page or a
// start/end pair.
func (s *Submission) PageRanges() [][]string {
	pages := leadingWord.ReplaceAllString(s.Pages, "")
	pages = strings.TrimSpace(pages)
	if pages == "" {
		return nil
	}

	var ranges [][]string
	for _, group := range strings.Split(pages, ",") {
		start, end, isRange := strings.Cut(group, "-")
		if !isRange {
			ranges = append(ranges, []string{strings.TrimSpace(group)})
			continue
		}
		ranges = append(ranges, []string{strings.TrimSpace(start), strings.TrimSpace(end)})
	}
	return ranges
}

// StartingPage returns the first page of the first range.
func (s *Submission) StartingPage() string {
	ranges := s.PageRanges()
	if len(ranges) == 0 {
		return ""
	}
	return ranges[0][0]
}

// EndingPage returns the last page of the last range.
func (s *Submission) EndingPage() string {
	ranges := s.PageRanges()
	if len(ranges) == 0 {
		return ""
	}
	last := ranges[len(ranges)-1]
	return last[len(last)-1]
}

// Issue is the issue a submission is published in.
type Issue struct {
	Year          int    `json:"year,omitempty"`
	Volume        string `json:"volume,omitempty"`
	ShowVolume    bool   `json:"show_volume,omitempty"`
	Number        string `json:"number,omitempty"`
	ShowNumber    bool   `json:"show_number,omitempty"`
	DatePublished string `json:"date_published,omitempty"`
}

// IdentifierProvider is a registered source of external identifiers.
type IdentifierProvider interface {
	// IDType is the key under which submissions store the identifier.
	IDType() string
	// DisplayType names the identifier in tag names, e.g. "DOI".
	DisplayType() string
}

// Provider is a static IdentifierProvider.
type Provider struct {
	Type    string `json:"type" yaml:"type"`
	Display string `json:"display" yaml:"display"`
}

func (p Provider) IDType() string      { return p.Type }
func (p Provider) DisplayType() string { return p.Display }

// URLBuilder builds a site URL for an article page action.
type URLBuilder func(action string, ids ...string) string

// dateLayouts are the accepted publication date formats.
var dateLayouts = []string{
	time.DateTime,
	time.DateOnly,
	time.RFC3339,
	"2006/01/02",
}

// parseDate reads a publication date. Unparsable values are reported as absent.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
