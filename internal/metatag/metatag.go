// Package metatag builds escaped <meta> records for a page head.
package metatag

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// Tag is one <meta> element. Key identifies it in a Head; Content is already
// escaped for use inside a double-quoted attribute value.
type Tag struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Lang    string `json:"lang,omitempty"`
}

// New builds a tag keyed by its name. A non-empty locale such as "en_US"
// attaches its two-letter language prefix.
func New(name, content, locale string) Tag {
	return Tag{
		Key:     name,
		Name:    name,
		Content: html.EscapeString(content),
		Lang:    LanguageOf(locale),
	}
}

// Indexed returns a copy of t whose key carries the numeric suffix i.
func (t Tag) Indexed(i int) Tag {
	t.Key = t.Name + strconv.Itoa(i)
	return t
}

// Keyed returns a copy of t stored under key.
func (t Tag) Keyed(key string) Tag {
	t.Key = key
	return t
}

// Value returns the unescaped content.
func (t Tag) Value() string {
	return html.UnescapeString(t.Content)
}

// HTML renders the tag as a self-closing element.
func (t Tag) HTML() string {
	if t.Lang != "" {
		return fmt.Sprintf(`<meta name="%s" xml:lang="%s" content="%s"/>`,
			html.EscapeString(t.Name), html.EscapeString(t.Lang), t.Content)
	}
	return fmt.Sprintf(`<meta name="%s" content="%s"/>`, html.EscapeString(t.Name), t.Content)
}

// LanguageOf returns the two-letter language prefix of a locale code.
func LanguageOf(locale string) string {
	locale = strings.TrimSpace(locale)
	if len(locale) > 2 {
		return locale[:2]
	}
	return locale
}
