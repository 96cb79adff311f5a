package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openjournaltheme/scholarfix/internal/config"
	"github.com/openjournaltheme/scholarfix/internal/pdf"
	"github.com/openjournaltheme/scholarfix/internal/storage"
)

var rebuildDetectDOI bool

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildDetectDOI, "detect-doi", false, "Read DOIs from primary PDF galleys of articles without one")
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from source data",
	Long: `Rebuild the SQLite query cache from the articles JSONL file.

Use this after editing articles.jsonl or pulling changes from git.
With --detect-doi, articles without a stored DOI get one read from their
primary PDF galley (paths relative to pdf_root). Detected DOIs live only
in the cache.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status       string   `json:"status"`
	Articles     int      `json:"articles"`
	DetectedDOIs int      `json:"detected_dois,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot, cfg := mustFindRepo()
	db := mustOpenDB(repoRoot)
	defer db.Close()

	count, err := db.RebuildFromJSONL(config.ArticlesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}
	result := RebuildResult{Status: "rebuilt", Articles: count}

	if rebuildDetectDOI {
		if cfg.PDFRoot == "" {
			exitWithError(ExitConfigError, "--detect-doi requires pdf_root in %s", config.ConfigFile)
		}
		detected, warnings, err := detectDOIs(cmd.Context(), db, pdf.NewResolver(cfg.PDFRoot), doiType(cfg))
		if err != nil {
			exitWithError(ExitError, "detecting DOIs: %v", err)
		}
		result.DetectedDOIs = detected
		result.Warnings = warnings
	}

	if humanOutput {
		outputHuman("Rebuilt query cache with %d articles\n", result.Articles)
		if rebuildDetectDOI {
			outputHuman("Detected %d DOIs\n", result.DetectedDOIs)
		}
		for _, w := range result.Warnings {
			outputHuman("warning: %s\n", w)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

// doiType returns the identifier type the DOI provider stores under.
func doiType(cfg *config.Config) string {
	for _, p := range cfg.Identifiers {
		if strings.EqualFold(p.Display, "DOI") {
			return p.Type
		}
	}
	return "doi"
}

// detectDOIs records DOIs found in galleys of cached articles that lack one.
// Unreadable galleys become warnings.
func detectDOIs(ctx context.Context, db *storage.DB, resolver *pdf.Resolver, idType string) (int, []string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ids, err := db.ListIDs(ctx)
	if err != nil {
		return 0, nil, err
	}

	detected := 0
	var warnings []string
	for _, id := range ids {
		article, err := db.GetArticle(ctx, id)
		if err != nil {
			return detected, warnings, err
		}
		if article == nil || article.Submission.StoredID(idType) != "" {
			continue
		}

		doi, err := resolver.DetectDOI(&article.Submission)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		if doi == "" {
			continue
		}
		if err := db.SetDetectedID(ctx, id, idType, doi); err != nil {
			return detected, warnings, err
		}
		detected++
	}
	return detected, warnings, nil
}
