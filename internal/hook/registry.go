// Package hook connects the citation synthesizer to page rendering: a small
// registry of named hooks and the plugin that fills a page head with
// citation tags when an article is viewed.
package hook

import (
	"context"
	"fmt"
	"sync"

	"github.com/openjournaltheme/scholarfix/internal/citation"
	"github.com/openjournaltheme/scholarfix/internal/metatag"
)

// ArticleView fires when an article landing page renders.
const ArticleView = "ArticleHandler::view"

// ViewEvent carries one article page render to its handlers.
type ViewEvent struct {
	// Args are the request path segments after the page and operation,
	// e.g. ["42", "version", "3"].
	Args       []string
	Locale     string
	Journal    *citation.Journal
	Issue      *citation.Issue
	Submission *citation.Submission
	// Head collects tags for the page. Handlers may overwrite by key.
	Head *metatag.Head
}

// Handler reacts to a hook.
type Handler func(ctx context.Context, ev *ViewEvent) error

// Registry dispatches named hooks to handlers in registration order.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string][]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string][]Handler)}
}

// Register adds h to the handlers of the named hook.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = append(r.hooks[name], h)
}

// Handlers returns the number of handlers registered for name.
func (r *Registry) Handlers(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[name])
}

// Call runs every handler of the named hook, stopping at the first error.
func (r *Registry) Call(ctx context.Context, name string, ev *ViewEvent) error {
	r.mu.RLock()
	handlers := append([]Handler(nil), r.hooks[name]...)
	r.mu.RUnlock()

	for i, h := range handlers {
		if err := h(ctx, ev); err != nil {
			return fmt.Errorf("hook %s handler %d: %w", name, i, err)
		}
	}
	return nil
}
