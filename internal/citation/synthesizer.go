package citation

import (
	"strconv"
	"strings"

	"github.com/openjournaltheme/scholarfix/internal/metatag"
)

// Prefix starts every tag name.
const Prefix = "bepress_citation_"

// Tag names.
const (
	TagJournalTitle      = Prefix + "journal_title"
	TagISSN              = Prefix + "issn"
	TagAuthor            = Prefix + "author"
	TagAuthorInstitution = Prefix + "author_institution"
	TagTitle             = Prefix + "title"
	TagDate              = Prefix + "date"
	TagVolume            = Prefix + "volume"
	TagIssue             = Prefix + "issue"
	TagFirstPage         = Prefix + "firstpage"
	TagLastPage          = Prefix + "lastpage"
	TagAbstractHTMLURL   = Prefix + "abstract_html_url"
	TagKeywords          = Prefix + "keywords"
	TagPDFURL            = Prefix + "pdf_url"
)

// IdentifierKeyPrefix starts the keys of external identifier tags. Their
// names follow the provider's display type, so keys live apart from the
// fixed fields.
const IdentifierKeyPrefix = Prefix + "pubid_"

// Page actions passed to the URLBuilder.
const (
	ActionView     = "view"
	ActionDownload = "download"
)

// dateFormat is the citation date layout (YYYY/MM/DD).
const dateFormat = "2006/01/02"

// Input bundles everything resolved for one article page view.
type Input struct {
	Journal    *Journal
	Submission *Submission
	Issue      *Issue // nil when the submission is not in an issue
	// Keywords maps locale codes to keywords in source order.
	Keywords  map[string][]string
	Providers []IdentifierProvider
	// Locale is the request's UI locale; only its keywords are tagged.
	Locale string
	URL    URLBuilder
}

// Options tune name formatting.
type Options struct {
	// FamilyNameFirst formats authors as "Family, Given".
	FamilyNameFirst bool
	// PreferPublicName uses an author's preferred public name when set.
	PreferPublicName bool
}

// Synthesizer turns an Input into citation tags.
type Synthesizer struct {
	opts Options
}

// NewSynthesizer returns a Synthesizer using opts.
func NewSynthesizer(opts Options) *Synthesizer {
	return &Synthesizer{opts: opts}
}

// Build returns the citation tags for in, in emission order. Keys are unique
// within the result. Missing optional data drops the affected tags; Build
// never fails. A nil Submission yields no tags.
func (s *Synthesizer) Build(in Input) []metatag.Tag {
	sub := in.Submission
	if sub == nil {
		return nil
	}
	urlFor := in.URL
	if urlFor == nil {
		urlFor = func(string, ...string) string { return "" }
	}

	var tags []metatag.Tag
	emit := func(name, content string) {
		tags = append(tags, metatag.New(name, content, ""))
	}

	// Journal
	var journal Journal
	if in.Journal != nil {
		journal = *in.Journal
	}
	emit(TagJournalTitle, journal.Name.Get(journal.PrimaryLocale))
	if issn := firstNonEmpty(journal.OnlineISSN, journal.PrintISSN, journal.ISSN); issn != "" {
		emit(TagISSN, issn)
	}

	// Contributors
	for i, author := range sub.Authors {
		name := author.FullName(s.opts.PreferPublicName, s.opts.FamilyNameFirst)
		tags = append(tags, metatag.New(TagAuthor, name, "").Indexed(i))
		if affiliation := strings.TrimSpace(author.Affiliation); affiliation != "" {
			tags = append(tags, metatag.New(TagAuthorInstitution, affiliation, "").Indexed(i))
		}
	}

	emit(TagTitle, sub.FullTitle(sub.Locale))

	if date, ok := citationDate(sub, in.Issue); ok {
		emit(TagDate, date)
	}

	if issue := in.Issue; issue != nil {
		if issue.ShowVolume {
			emit(TagVolume, issue.Volume)
		}
		if issue.ShowNumber {
			emit(TagIssue, issue.Number)
		}
	}

	if sub.Pages != "" {
		if start := sub.StartingPage(); start != "" {
			emit(TagFirstPage, start)
		}
		if end := sub.EndingPage(); end != "" {
			emit(TagLastPage, end)
		}
	}

	// External identifiers
	idIndex := 0
	for _, p := range in.Providers {
		if p == nil {
			continue
		}
		id := sub.StoredID(p.IDType())
		if id == "" {
			continue
		}
		display := strings.ToLower(p.DisplayType())
		key := IdentifierKeyPrefix + display + strconv.Itoa(idIndex)
		tags = append(tags, metatag.New(Prefix+display, id, "").Keyed(key))
		idIndex++
	}

	emit(TagAbstractHTMLURL, urlFor(ActionView, sub.BestID))

	for i, keyword := range in.Keywords[in.Locale] {
		tags = append(tags, metatag.New(TagKeywords, keyword, in.Locale).Indexed(i))
	}

	// Galley links share one counter.
	linkIndex := 0
	for _, g := range sub.Galleys {
		if g.Supplementary {
			continue
		}
		var tag metatag.Tag
		switch g.FileType {
		case FileTypePDF:
			tag = metatag.New(TagPDFURL, urlFor(ActionDownload, sub.BestID, g.ID), "")
		case FileTypeHTML:
			tag = metatag.New(TagAbstractHTMLURL, urlFor(ActionView, sub.BestID, g.ID), "")
		default:
			continue
		}
		tags = append(tags, tag.Indexed(linkIndex))
		linkIndex++
	}

	return tags
}

// citationDate picks the date to cite. The submission's own date wins unless
// the issue carries a different year, in which case the issue year is used
// alone. The issue's publication date is the last resort.
func citationDate(sub *Submission, issue *Issue) (string, bool) {
	published, hasPublished := parseDate(sub.DatePublished)
	if hasPublished && (issue == nil || issue.Year == 0 || issue.Year == published.Year()) {
		return published.Format(dateFormat), true
	}
	if issue == nil {
		return "", false
	}
	if issue.Year != 0 {
		return strconv.Itoa(issue.Year), true
	}
	if issued, ok := parseDate(issue.DatePublished); ok {
		return issued.Format(dateFormat), true
	}
	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
