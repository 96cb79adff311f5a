package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openjournaltheme/scholarfix/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  sfx config                                   # Show all config
  sfx config base-url                          # Get specific value
  sfx config base-url https://journal.example  # Set value

Keys:
  base-url            Site URL article links are built from
  locale              UI locale whose keywords are tagged (e.g. en_US)
  family-name-first   Format authors as "Family, Given" (true/false)
  prefer-public-name  Use authors' preferred public names (true/false)
  pdf-root            Folder holding galley files
  listen              Preview server listen address`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot, cfg := mustFindRepo()

	if len(args) == 0 {
		if humanOutput {
			for _, key := range configKeys {
				outputHuman("%-19s %s\n", key+":", getConfigValue(cfg, key))
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])
	if !isConfigKey(key) {
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if len(args) == 1 {
		value := getConfigValue(cfg, key)
		if humanOutput {
			outputHuman("%s\n", value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	value := args[1]
	if err := saveConfigValue(repoRoot, key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		outputHuman("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// saveConfigValue sets key in the repository's config file. Environment
// overrides are not written back.
func saveConfigValue(repoRoot, key, value string) error {
	cfg, err := config.LoadFile(repoRoot)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(repoRoot); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

var configKeys = []string{"base-url", "locale", "family-name-first", "prefer-public-name", "pdf-root", "listen"}

func isConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

func getConfigValue(cfg *config.Config, key string) string {
	switch key {
	case "base-url":
		return cfg.BaseURL
	case "locale":
		return cfg.Locale
	case "family-name-first":
		return strconv.FormatBool(cfg.FamilyNameFirst)
	case "prefer-public-name":
		return strconv.FormatBool(cfg.PreferPublicName)
	case "pdf-root":
		return cfg.PDFRoot
	case "listen":
		return cfg.Listen
	}
	return ""
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "base-url":
		cfg.BaseURL = value
	case "locale":
		cfg.Locale = value
	case "family-name-first", "prefer-public-name":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		if key == "family-name-first" {
			cfg.FamilyNameFirst = b
		} else {
			cfg.PreferPublicName = b
		}
	case "pdf-root":
		expanded := config.ExpandPath(value)
		info, err := os.Stat(expanded)
		if err != nil || !info.IsDir() {
			return &os.PathError{Op: "pdf-root", Path: expanded, Err: os.ErrNotExist}
		}
		cfg.PDFRoot = expanded
	case "listen":
		cfg.Listen = value
	}
	return nil
}

// normalizeKey converts key formats (base-url, base_url, BASE_URL) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "_", "-")
}
