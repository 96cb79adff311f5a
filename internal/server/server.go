// Package server serves previews of article page heads so the citation tags
// a crawler would see can be inspected over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/openjournaltheme/scholarfix/internal/citation"
	"github.com/openjournaltheme/scholarfix/internal/hook"
	"github.com/openjournaltheme/scholarfix/internal/metatag"
	"github.com/openjournaltheme/scholarfix/internal/storage"
)

// ArticleSource looks up articles by best id. A missing article is (nil, nil).
type ArticleSource interface {
	GetArticle(ctx context.Context, bestID string) (*storage.Article, error)
}

// Server renders article heads through the hook registry.
type Server struct {
	source   ArticleSource
	journal  *citation.Journal
	registry *hook.Registry
	locale   string
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit allows r requests per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(s *Server) {
		s.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New returns a Server rendering pages for journal in locale.
func New(source ArticleSource, journal *citation.Journal, registry *hook.Registry, locale string, opts ...Option) *Server {
	s := &Server{
		source:   source,
		journal:  journal,
		registry: registry,
		locale:   locale,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with request id, rate limiting and
// logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /article/view/{args...}", s.handleArticleView)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return requestID(s.rateLimit(s.logRequests(mux)))
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
{{.Head}}</head>
<body>
<h1>{{.Title}}</h1>
</body>
</html>
`))

func (s *Server) handleArticleView(w http.ResponseWriter, r *http.Request) {
	args := splitArgs(r.PathValue("args"))
	if len(args) == 0 {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	article, err := s.source.GetArticle(ctx, args[0])
	if err != nil {
		s.logger.Error("loading article",
			zap.String("request_id", requestIDFrom(ctx)),
			zap.String("submission", args[0]),
			zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if article == nil {
		http.NotFound(w, r)
		return
	}

	ev := &hook.ViewEvent{
		Args:       args,
		Locale:     s.locale,
		Journal:    s.journal,
		Issue:      article.Issue,
		Submission: &article.Submission,
		Head:       metatag.NewHead(),
	}
	if err := s.registry.Call(ctx, hook.ArticleView, ev); err != nil {
		s.logger.Error("article view hook",
			zap.String("request_id", requestIDFrom(ctx)),
			zap.String("submission", args[0]),
			zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Title string
		Head  template.HTML
	}{
		Title: article.Submission.FullTitle(article.Submission.Locale),
		// Tag contents are escaped when the tags are built.
		Head: template.HTML(ev.Head.HTML()),
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Warn("writing page", zap.Error(err))
	}
}

// splitArgs splits the path after /article/view/ into segments.
func splitArgs(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
