package main

import (
	"github.com/spf13/cobra"

	"github.com/openjournaltheme/scholarfix/internal/pdf"
)

func init() {
	rootCmd.AddCommand(doiCmd)
}

var doiCmd = &cobra.Command{
	Use:   "doi <file.pdf>",
	Short: "Extract a DOI from a PDF galley",
	Args:  cobra.ExactArgs(1),
	RunE:  runDOI,
}

// DOIResponse is the response for the doi command.
type DOIResponse struct {
	Path string `json:"path"`
	DOI  string `json:"doi"`
}

func runDOI(cmd *cobra.Command, args []string) error {
	doi, err := pdf.ExtractDOI(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}
	if doi == "" {
		exitWithError(ExitNotFound, "no DOI found in %s", args[0])
	}

	if humanOutput {
		outputHuman("%s\n", doi)
	} else {
		outputJSON(DOIResponse{Path: args[0], DOI: doi})
	}
	return nil
}
