package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/openjournaltheme/scholarfix/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new scholarfix repository",
	Long: `Initialize a new scholarfix repository in the current directory.

Creates:
  .scholarfix/
  ├── articles.jsonl  # Empty file
  ├── config.yml      # Default config
  └── cache/          # Empty directory (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := getRepoRoot()

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a scholarfix repository")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating %s directory: %v", config.RepoDir, err)
	}

	f, err := os.Create(config.ArticlesPath(root))
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ArticlesFile, err)
	}
	f.Close()

	if err := config.Default().Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}

	if humanOutput {
		outputHuman("Initialized scholarfix repository in %s\n", root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}
