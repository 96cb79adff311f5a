package hook

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/openjournaltheme/scholarfix/internal/citation"
)

// KeywordRepository looks up a publication's keywords grouped by locale.
type KeywordRepository interface {
	Keywords(ctx context.Context, publicationID int64, locales []string) (map[string][]string, error)
}

// Plugin adds citation tags to article pages.
type Plugin struct {
	synth     *citation.Synthesizer
	keywords  KeywordRepository
	providers []citation.IdentifierProvider
	urls      citation.URLBuilder
	logger    *zap.Logger
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithKeywords sets the keyword source. Without one no keyword tags are emitted.
func WithKeywords(repo KeywordRepository) Option {
	return func(p *Plugin) {
		p.keywords = repo
	}
}

// WithProviders sets the registered identifier providers.
func WithProviders(providers ...citation.IdentifierProvider) Option {
	return func(p *Plugin) {
		p.providers = providers
	}
}

// WithSynthesizerOptions sets author name formatting.
func WithSynthesizerOptions(opts citation.Options) Option {
	return func(p *Plugin) {
		p.synth = citation.NewSynthesizer(opts)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// NewPlugin returns a Plugin building links with urls.
func NewPlugin(urls citation.URLBuilder, opts ...Option) *Plugin {
	p := &Plugin{
		synth:  citation.NewSynthesizer(citation.Options{}),
		urls:   urls,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register attaches the plugin to the article view hook.
func (p *Plugin) Register(r *Registry) {
	r.Register(ArticleView, p.SubmissionView)
}

// SubmissionView adds the citation tags for ev's submission to ev.Head.
// Versioned article URLs are left untouched. A failed keyword lookup drops
// the keyword tags and the rest are still emitted.
func (p *Plugin) SubmissionView(ctx context.Context, ev *ViewEvent) error {
	if ev.Submission == nil || ev.Head == nil {
		return nil
	}
	if !citation.ShouldEmit(ev.Args) {
		p.logger.Debug("skipping versioned article",
			zap.String("submission", ev.Submission.BestID),
			zap.Strings("args", ev.Args))
		return nil
	}

	var keywords map[string][]string
	if p.keywords != nil {
		var err error
		keywords, err = p.keywords.Keywords(ctx, ev.Submission.CurrentPublicationID, []string{ev.Locale})
		if err != nil {
			p.logger.Warn("keyword lookup failed",
				zap.String("submission", ev.Submission.BestID),
				zap.Error(err))
			keywords = nil
		}
	}

	tags := p.synth.Build(citation.Input{
		Journal:    ev.Journal,
		Submission: ev.Submission,
		Issue:      ev.Issue,
		Keywords:   keywords,
		Providers:  p.providers,
		Locale:     ev.Locale,
		URL:        p.urls,
	})
	ev.Head.AddAll(tags)

	p.logger.Debug("citation tags added",
		zap.String("submission", ev.Submission.BestID),
		zap.Int("tags", len(tags)))
	return nil
}

// ArticleURLs builds article page URLs of the form
// <base>/article/<action>/<id>[/<id>...].
func ArticleURLs(baseURL string) citation.URLBuilder {
	base := strings.TrimRight(baseURL, "/")
	return func(action string, ids ...string) string {
		parts := make([]string, 0, len(ids)+3)
		parts = append(parts, base, "article", url.PathEscape(action))
		for _, id := range ids {
			parts = append(parts, url.PathEscape(id))
		}
		return strings.Join(parts, "/")
	}
}
