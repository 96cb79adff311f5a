// Package main provides the sfx CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/openjournaltheme/scholarfix/internal/config"
	"github.com/openjournaltheme/scholarfix/internal/hook"
	"github.com/openjournaltheme/scholarfix/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// The SQLite cache is the keyword source for the article hook.
var _ hook.KeywordRepository = (*storage.DB)(nil)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sfx",
	Short: "Citation meta tags for scholarly article pages",
	Long: `sfx derives discovery-engine citation tags (bepress_citation_*) for
published journal articles.

Articles live in a git-versionable JSONL file with an ephemeral SQLite
cache for lookups. All commands output JSON by default; use --human for
human-readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for SFX_* overrides)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getRepoRoot returns the directory to start repository discovery from.
func getRepoRoot() string {
	if root := os.Getenv(config.EnvRoot); root != "" {
		return root
	}
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	return cwd
}

// mustFindRepo locates the repository and loads its config, exiting on failure.
func mustFindRepo() (string, *config.Config) {
	repoRoot, err := config.FindRepository(getRepoRoot())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return repoRoot, cfg
}

// mustOpenDB opens the repository cache, exiting on failure.
func mustOpenDB(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
