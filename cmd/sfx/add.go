package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openjournaltheme/scholarfix/internal/config"
	"github.com/openjournaltheme/scholarfix/internal/storage"
)

var addUpdate bool

func init() {
	addCmd.Flags().BoolVarP(&addUpdate, "update", "u", false, "Replace the article if its best id already exists")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a published article",
	Long: `Add a published article to articles.jsonl and refresh the query cache.

Reads one article JSON object (the articles.jsonl line format) from the
file, or stdin when no file is given.

Examples:
  sfx add article.json
  sfx add --update < article.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

// AddResult is the response for the add command.
type AddResult struct {
	Action   string `json:"action"` // added, updated
	BestID   string `json:"best_id"`
	Articles int    `json:"articles"`
}

// errDuplicateArticle is returned when the best id exists and updates are off.
var errDuplicateArticle = errors.New("article already exists")

func runAdd(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitWithError(ExitError, "opening article: %v", err)
		}
		defer f.Close()
		r = f
	}

	a, err := decodeArticle(r)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	repoRoot, _ := mustFindRepo()
	action, err := addArticle(config.ArticlesPath(repoRoot), a, addUpdate)
	if errors.Is(err, errDuplicateArticle) {
		exitWithError(ExitDuplicate, "article %s already exists (use --update to replace it)", a.Submission.BestID)
	}
	if err != nil {
		exitWithError(ExitError, "saving article: %v", err)
	}

	db := mustOpenDB(repoRoot)
	defer db.Close()
	count, err := db.RebuildFromJSONL(config.ArticlesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		outputHuman("%s article %s (%d articles)\n", capitalizeFirst(action), a.Submission.BestID, count)
	} else {
		outputJSON(AddResult{Action: action, BestID: a.Submission.BestID, Articles: count})
	}
	return nil
}

// decodeArticle reads a single article and checks it can be stored.
func decodeArticle(r io.Reader) (storage.Article, error) {
	var a storage.Article
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return a, fmt.Errorf("parsing article: %w", err)
	}
	if a.Submission.BestID == "" {
		return a, fmt.Errorf("article has no best_id")
	}
	return a, nil
}

// addArticle appends a to the articles file, or replaces the article with the
// same best id when update is set. It returns "added" or "updated".
func addArticle(path string, a storage.Article, update bool) (string, error) {
	articles, err := storage.ReadAll(path)
	if err != nil {
		return "", err
	}

	idx, found := storage.FindByID(articles, a.Submission.BestID)
	if !found {
		if err := storage.Append(path, a); err != nil {
			return "", err
		}
		return "added", nil
	}
	if !update {
		return "", errDuplicateArticle
	}

	articles[idx] = a
	if err := storage.WriteAll(path, articles); err != nil {
		return "", err
	}
	return "updated", nil
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
