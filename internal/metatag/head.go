package metatag

import "strings"

// Head accumulates tags for one page render. Adding a tag under a key that is
// already present replaces the earlier tag in place. A Head is not safe for
// concurrent use.
type Head struct {
	order []string
	tags  map[string]Tag
}

// NewHead returns an empty Head.
func NewHead() *Head {
	return &Head{tags: make(map[string]Tag)}
}

// Add registers t under t.Key.
func (h *Head) Add(t Tag) {
	if _, ok := h.tags[t.Key]; !ok {
		h.order = append(h.order, t.Key)
	}
	h.tags[t.Key] = t
}

// AddAll registers every tag in order.
func (h *Head) AddAll(tags []Tag) {
	for _, t := range tags {
		h.Add(t)
	}
}

// Get returns the tag registered under key.
func (h *Head) Get(key string) (Tag, bool) {
	t, ok := h.tags[key]
	return t, ok
}

// Len returns the number of registered tags.
func (h *Head) Len() int {
	return len(h.order)
}

// Tags returns the registered tags in first-registration order.
func (h *Head) Tags() []Tag {
	out := make([]Tag, 0, len(h.order))
	for _, k := range h.order {
		out = append(out, h.tags[k])
	}
	return out
}

// HTML renders every tag, one element per line.
func (h *Head) HTML() string {
	var b strings.Builder
	for _, k := range h.order {
		b.WriteString(h.tags[k].HTML())
		b.WriteString("\n")
	}
	return b.String()
}
