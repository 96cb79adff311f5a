package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openjournaltheme/scholarfix/internal/config"
	"github.com/openjournaltheme/scholarfix/internal/hook"
	"github.com/openjournaltheme/scholarfix/internal/metatag"
	"github.com/openjournaltheme/scholarfix/internal/storage"
)

var tagsLocale string

func init() {
	tagsCmd.Flags().StringVar(&tagsLocale, "locale", "", "UI locale for keyword tags (default: config locale)")
	rootCmd.AddCommand(tagsCmd)
}

var tagsCmd = &cobra.Command{
	Use:   "tags <best-id> [path-segment...]",
	Short: "Show the citation tags of an article page",
	Long: `Show the citation tags an article landing page carries.

Extra arguments are the path segments that follow the id in the page URL,
so versioned pages can be checked too.

Examples:
  sfx tags 42
  sfx tags 42 --human
  sfx tags 42 version 3      # versioned page: no tags`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTags,
}

// TagsResponse is the response for the tags command.
type TagsResponse struct {
	ID   string        `json:"id"`
	Tags []metatag.Tag `json:"tags"`
}

func runTags(cmd *cobra.Command, args []string) error {
	repoRoot, cfg := mustFindRepo()
	db := mustOpenDB(repoRoot)
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	article, err := db.GetArticle(ctx, args[0])
	if err != nil {
		exitWithError(ExitError, "getting article %s: %v", args[0], err)
	}
	if article == nil {
		exitWithError(ExitNotFound, "unknown article: %s (run 'sfx rebuild' after editing %s)", args[0], config.ArticlesFile)
	}

	locale := cfg.Locale
	if tagsLocale != "" {
		locale = tagsLocale
	}

	registry := hook.NewRegistry()
	newPlugin(cfg, db).Register(registry)

	ev := &hook.ViewEvent{
		Args:       args,
		Locale:     locale,
		Journal:    cfg.Journal.Citation(),
		Issue:      article.Issue,
		Submission: &article.Submission,
		Head:       metatag.NewHead(),
	}
	if err := registry.Call(ctx, hook.ArticleView, ev); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("%s", ev.Head.HTML())
		return nil
	}
	tags := ev.Head.Tags()
	outputJSON(TagsResponse{ID: args[0], Tags: tags})
	return nil
}

// newPlugin builds the citation plugin from repository config.
func newPlugin(cfg *config.Config, db *storage.DB, opts ...hook.Option) *hook.Plugin {
	opts = append([]hook.Option{
		hook.WithKeywords(db),
		hook.WithProviders(cfg.Providers()...),
		hook.WithSynthesizerOptions(cfg.SynthesizerOptions()),
	}, opts...)
	return hook.NewPlugin(hook.ArticleURLs(cfg.BaseURL), opts...)
}
