package citation

import (
	"strings"
	"testing"

	"github.com/openjournaltheme/scholarfix/internal/metatag"
)

// testURL builds predictable article URLs.
func testURL(action string, ids ...string) string {
	return "https://journal.example/article/" + action + "/" + strings.Join(ids, "/")
}

func testJournal() *Journal {
	return &Journal{
		Name:          LocalizedText{"en_US": "Journal of Examples", "id_ID": "Jurnal Contoh"},
		PrimaryLocale: "en_US",
		OnlineISSN:    "2222-2222",
		PrintISSN:     "1111-1111",
	}
}

func testSubmission() *Submission {
	return &Submission{
		BestID:               "42",
		CurrentPublicationID: 7,
		Locale:               "en_US",
		Title:                LocalizedText{"en_US": "On Examples"},
		Authors: []Author{
			{GivenName: "Jane", FamilyName: "Doe", Affiliation: "University of Tests"},
			{GivenName: "John", FamilyName: "Smith"},
		},
	}
}

func build(t *testing.T, in Input) []metatag.Tag {
	t.Helper()
	if in.URL == nil {
		in.URL = testURL
	}
	return NewSynthesizer(Options{}).Build(in)
}

// values returns the unescaped contents of all tags named name.
func values(tags []metatag.Tag, name string) []string {
	var out []string
	for _, tag := range tags {
		if tag.Name == name {
			out = append(out, tag.Value())
		}
	}
	return out
}

func TestBuild_ISSNPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		journal Journal
		want    []string
	}{
		{"online wins", Journal{OnlineISSN: "2222-2222", PrintISSN: "1111-1111", ISSN: "3333-3333"}, []string{"2222-2222"}},
		{"print next", Journal{PrintISSN: "1111-1111", ISSN: "3333-3333"}, []string{"1111-1111"}},
		{"generic last", Journal{ISSN: "3333-3333"}, []string{"3333-3333"}},
		{"none", Journal{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := tt.journal
			tags := build(t, Input{Journal: &j, Submission: testSubmission()})
			got := values(tags, TagISSN)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ISSN tags = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_JournalTitleUsesPrimaryLocale(t *testing.T) {
	tags := build(t, Input{Journal: testJournal(), Submission: testSubmission(), Locale: "id_ID"})
	got := values(tags, TagJournalTitle)
	if len(got) != 1 || got[0] != "Journal of Examples" {
		t.Errorf("journal title = %q, want [Journal of Examples]", got)
	}
}

func TestBuild_Date(t *testing.T) {
	tests := []struct {
		name      string
		published string
		issue     *Issue
		want      []string
	}{
		{"no issue", "2023-05-01", nil, []string{"2023/05/01"}},
		{"issue year matches", "2023-05-01", &Issue{Year: 2023}, []string{"2023/05/01"}},
		{"issue year differs", "2023-05-01", &Issue{Year: 2022}, []string{"2022"}},
		{"issue without year", "2023-05-01 08:00:00", &Issue{DatePublished: "2020-01-01"}, []string{"2023/05/01"}},
		{"no submission date uses issue year", "", &Issue{Year: 2021, DatePublished: "2021-03-04"}, []string{"2021"}},
		{"issue date last", "", &Issue{DatePublished: "2021-03-04"}, []string{"2021/03/04"}},
		{"malformed submission date", "yesterday", &Issue{DatePublished: "2021-03-04"}, []string{"2021/03/04"}},
		{"malformed everything", "yesterday", &Issue{DatePublished: "soon"}, nil},
		{"nothing", "", nil, nil},
		{"empty issue", "", &Issue{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := testSubmission()
			sub.DatePublished = tt.published
			tags := build(t, Input{Journal: testJournal(), Submission: sub, Issue: tt.issue})
			got := values(tags, TagDate)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("date tags = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_VolumeAndNumber(t *testing.T) {
	tests := []struct {
		name       string
		issue      *Issue
		wantVolume []string
		wantNumber []string
	}{
		{"both", &Issue{Volume: "12", ShowVolume: true, Number: "3", ShowNumber: true}, []string{"12"}, []string{"3"}},
		{"volume only", &Issue{Volume: "12", ShowVolume: true, Number: "3"}, []string{"12"}, nil},
		{"number only", &Issue{Volume: "12", Number: "3", ShowNumber: true}, nil, []string{"3"}},
		{"neither", &Issue{Volume: "12", Number: "3"}, nil, nil},
		{"no issue", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := build(t, Input{Journal: testJournal(), Submission: testSubmission(), Issue: tt.issue})
			if got := values(tags, TagVolume); strings.Join(got, ",") != strings.Join(tt.wantVolume, ",") {
				t.Errorf("volume = %q, want %q", got, tt.wantVolume)
			}
			if got := values(tags, TagIssue); strings.Join(got, ",") != strings.Join(tt.wantNumber, ",") {
				t.Errorf("number = %q, want %q", got, tt.wantNumber)
			}
		})
	}
}

func TestBuild_Pages(t *testing.T) {
	sub := testSubmission()
	sub.Pages = "pp. 101-117"
	tags := build(t, Input{Journal: testJournal(), Submission: sub})

	if got := values(tags, TagFirstPage); len(got) != 1 || got[0] != "101" {
		t.Errorf("firstpage = %q, want [101]", got)
	}
	if got := values(tags, TagLastPage); len(got) != 1 || got[0] != "117" {
		t.Errorf("lastpage = %q, want [117]", got)
	}

	sub.Pages = ""
	tags = build(t, Input{Journal: testJournal(), Submission: sub})
	if got := values(tags, TagFirstPage); len(got) != 0 {
		t.Errorf("firstpage without pagination = %q", got)
	}
}

func TestBuild_Authors(t *testing.T) {
	sub := testSubmission()
	sub.Authors = append(sub.Authors, Author{GivenName: "Ana", FamilyName: "Lopez", Affiliation: "  Lab & Co "})
	tags := build(t, Input{Journal: testJournal(), Submission: sub})

	var keys []string
	for _, tag := range tags {
		if tag.Name == TagAuthor || tag.Name == TagAuthorInstitution {
			keys = append(keys, tag.Key)
		}
	}
	want := []string{
		TagAuthor + "0", TagAuthorInstitution + "0",
		TagAuthor + "1",
		TagAuthor + "2", TagAuthorInstitution + "2",
	}
	if strings.Join(keys, " ") != strings.Join(want, " ") {
		t.Errorf("author keys = %q, want %q", keys, want)
	}

	affiliations := values(tags, TagAuthorInstitution)
	if affiliations[1] != "Lab & Co" {
		t.Errorf("affiliation = %q, want trimmed %q", affiliations[1], "Lab & Co")
	}
}

func TestBuild_FamilyNameFirst(t *testing.T) {
	tags := NewSynthesizer(Options{FamilyNameFirst: true}).Build(Input{
		Journal:    testJournal(),
		Submission: testSubmission(),
		URL:        testURL,
	})
	got := values(tags, TagAuthor)
	if got[0] != "Doe, Jane" || got[1] != "Smith, John" {
		t.Errorf("authors = %q, want family name first", got)
	}
}

func TestBuild_Identifiers(t *testing.T) {
	sub := testSubmission()
	sub.StoredIDs = map[string]string{
		"doi":        "10.1234/example.42",
		"other::urn": "urn:nbn:de:0000-42",
	}
	providers := []IdentifierProvider{
		Provider{Type: "doi", Display: "DOI"},
		Provider{Type: "other::ark", Display: "ARK"},
		Provider{Type: "other::urn", Display: "URN"},
	}
	tags := build(t, Input{Journal: testJournal(), Submission: sub, Providers: providers})

	doi := findTag(tags, IdentifierKeyPrefix+"doi0")
	if doi == nil || doi.Value() != "10.1234/example.42" || doi.Name != Prefix+"doi" {
		t.Errorf("doi tag = %+v", doi)
	}
	urn := findTag(tags, IdentifierKeyPrefix+"urn1")
	if urn == nil || urn.Value() != "urn:nbn:de:0000-42" {
		t.Errorf("urn tag = %+v", urn)
	}
	if len(values(tags, Prefix+"ark")) != 0 {
		t.Error("ark emitted without a stored identifier")
	}
}

func TestBuild_Keywords(t *testing.T) {
	keywords := map[string][]string{
		"en_US": {"genomics", "R&D"},
		"id_ID": {"genomik"},
	}
	tags := build(t, Input{Journal: testJournal(), Submission: testSubmission(), Keywords: keywords, Locale: "en_US"})

	var got []metatag.Tag
	for _, tag := range tags {
		if tag.Name == TagKeywords {
			got = append(got, tag)
		}
	}
	if len(got) != 2 {
		t.Fatalf("keyword tags = %d, want 2", len(got))
	}
	for i, tag := range got {
		if tag.Lang != "en" {
			t.Errorf("keyword %d lang = %q, want en", i, tag.Lang)
		}
		if tag.Key != TagKeywords+string(rune('0'+i)) {
			t.Errorf("keyword %d key = %q", i, tag.Key)
		}
	}
	if got[1].Content != "R&amp;D" {
		t.Errorf("keyword content = %q, want escaped", got[1].Content)
	}
}

func TestBuild_GalleyLinks(t *testing.T) {
	sub := testSubmission()
	sub.Galleys = []Galley{
		{ID: "10", FileType: FileTypePDF, Supplementary: true},
		{ID: "11", FileType: FileTypeHTML},
		{ID: "12", FileType: "application/epub+zip"},
		{ID: "13", FileType: FileTypePDF},
	}
	tags := build(t, Input{Journal: testJournal(), Submission: sub})

	html := findTag(tags, TagAbstractHTMLURL+"0")
	if html == nil || html.Value() != "https://journal.example/article/view/42/11" {
		t.Errorf("html galley tag = %+v", html)
	}
	pdf := findTag(tags, TagPDFURL+"1")
	if pdf == nil || pdf.Value() != "https://journal.example/article/download/42/13" {
		t.Errorf("pdf galley tag = %+v", pdf)
	}
	for _, v := range values(tags, TagPDFURL) {
		if strings.HasSuffix(v, "/10") {
			t.Errorf("supplementary galley linked: %s", v)
		}
	}
	if n := len(values(tags, TagPDFURL)); n != 1 {
		t.Errorf("pdf tags = %d, want 1", n)
	}
}

func TestBuild_Order(t *testing.T) {
	sub := testSubmission()
	sub.DatePublished = "2023-05-01"
	sub.Pages = "1-9"
	sub.StoredIDs = map[string]string{"doi": "10.1/x"}
	sub.Galleys = []Galley{{ID: "5", FileType: FileTypePDF}}
	issue := &Issue{Year: 2023, Volume: "4", ShowVolume: true, Number: "2", ShowNumber: true}

	tags := build(t, Input{
		Journal:    testJournal(),
		Submission: sub,
		Issue:      issue,
		Keywords:   map[string][]string{"en_US": {"k"}},
		Providers:  []IdentifierProvider{Provider{Type: "doi", Display: "DOI"}},
		Locale:     "en_US",
	})

	var keys []string
	for _, tag := range tags {
		keys = append(keys, strings.TrimPrefix(tag.Key, Prefix))
	}
	want := []string{
		"journal_title", "issn",
		"author0", "author_institution0", "author1",
		"title", "date", "volume", "issue", "firstpage", "lastpage",
		"pubid_doi0", "abstract_html_url", "keywords0", "pdf_url0",
	}
	if strings.Join(keys, " ") != strings.Join(want, " ") {
		t.Errorf("order =\n%q\nwant\n%q", keys, want)
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	sub := testSubmission()
	sub.StoredIDs = map[string]string{"doi": "10.5555/e2e"}
	sub.Galleys = []Galley{
		{ID: "1", FileType: FileTypePDF},
		{ID: "2", FileType: FileTypePDF, Supplementary: true},
	}
	tags := build(t, Input{
		Journal:    testJournal(),
		Submission: sub,
		Keywords:   map[string][]string{"en_US": {"alpha", "beta"}},
		Providers:  []IdentifierProvider{Provider{Type: "doi", Display: "DOI"}},
		Locale:     "en_US",
	})

	counts := make(map[string]int)
	for _, tag := range tags {
		counts[tag.Name]++
	}
	want := map[string]int{
		TagJournalTitle:      1,
		TagISSN:              1,
		TagAuthor:            2,
		TagAuthorInstitution: 1,
		TagTitle:             1,
		Prefix + "doi":       1,
		TagAbstractHTMLURL:   1,
		TagKeywords:          2,
		TagPDFURL:            1,
	}
	for name, n := range want {
		if counts[name] != n {
			t.Errorf("%s count = %d, want %d", name, counts[name], n)
		}
	}
	if counts[TagDate] != 0 {
		t.Errorf("date count = %d, want 0", counts[TagDate])
	}
	if len(tags) != 11 {
		t.Errorf("total tags = %d, want 11", len(tags))
	}
}

func TestBuild_UniqueKeysAndDeterminism(t *testing.T) {
	sub := testSubmission()
	sub.StoredIDs = map[string]string{"doi": "10.1/a", "other::urn": "urn:a"}
	sub.Galleys = []Galley{
		{ID: "1", FileType: FileTypeHTML},
		{ID: "2", FileType: FileTypePDF},
		{ID: "3", FileType: FileTypeHTML},
	}
	in := Input{
		Journal:    testJournal(),
		Submission: sub,
		Keywords:   map[string][]string{"en_US": {"a", "b", "c"}},
		Providers: []IdentifierProvider{
			Provider{Type: "doi", Display: "DOI"},
			Provider{Type: "other::urn", Display: "URN"},
		},
		Locale: "en_US",
	}

	first := build(t, in)
	seen := make(map[string]bool)
	for _, tag := range first {
		if seen[tag.Key] {
			t.Errorf("duplicate key %q", tag.Key)
		}
		seen[tag.Key] = true
	}

	second := build(t, in)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("tag %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBuild_IdentifierKeysDoNotClash(t *testing.T) {
	sub := testSubmission()
	sub.StoredIDs = map[string]string{"ark": "ark:/13030/tf5p30086k", "other::x": "x-1", "other::y": "y-1"}
	sub.Galleys = []Galley{{ID: "1", FileType: FileTypePDF}}
	in := Input{
		Journal:    testJournal(),
		Submission: sub,
		Keywords:   map[string][]string{"en_US": {"kinetics"}},
		Providers: []IdentifierProvider{
			Provider{Type: "ark", Display: "Keywords"},
			Provider{Type: "other::x", Display: "PDF_URL"},
			Provider{Type: "other::y", Display: "Author"},
		},
		Locale: "en_US",
	}

	tags := build(t, in)
	seen := make(map[string]int)
	for _, tag := range tags {
		seen[tag.Key]++
	}
	for key, n := range seen {
		if n > 1 {
			t.Errorf("duplicate key %q x%d", key, n)
		}
	}

	if got := values(tags, TagKeywords); len(got) != 2 {
		t.Errorf("keywords tags = %q, want keyword and identifier", got)
	}
	if got := values(tags, TagPDFURL); len(got) != 2 {
		t.Errorf("pdf_url tags = %q, want galley link and identifier", got)
	}

	head := metatag.NewHead()
	head.AddAll(tags)
	if head.Len() != len(tags) {
		t.Errorf("head holds %d tags, want %d", head.Len(), len(tags))
	}
}

func TestBuild_NilInputs(t *testing.T) {
	if tags := build(t, Input{}); tags != nil {
		t.Errorf("nil submission produced %d tags", len(tags))
	}

	tags := NewSynthesizer(Options{}).Build(Input{Submission: testSubmission()})
	if got := values(tags, TagJournalTitle); len(got) != 1 || got[0] != "" {
		t.Errorf("journal title without journal = %q", got)
	}
	if got := values(tags, TagAbstractHTMLURL); len(got) != 1 {
		t.Errorf("abstract url without builder = %q", got)
	}
}

func findTag(tags []metatag.Tag, key string) *metatag.Tag {
	for i := range tags {
		if tags[i].Key == key {
			return &tags[i]
		}
	}
	return nil
}
