package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openjournaltheme/scholarfix/internal/textclean"
)

func init() {
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean [text...]",
	Short: "Strip markup and collapse whitespace",
	Long: `Strip markup and collapse whitespace into a single plain line.

Reads the arguments, or stdin when there are none.

Examples:
  sfx clean '<p>An&nbsp;abstract</p>'
  sfx clean < abstract.html`,
	RunE: runClean,
}

// CleanResponse is the response for the clean command.
type CleanResponse struct {
	Text string `json:"text"`
}

func runClean(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitWithError(ExitError, "reading stdin: %v", err)
		}
		input = string(data)
	}

	text := textclean.Normalize(input)
	if humanOutput {
		outputHuman("%s\n", text)
	} else {
		outputJSON(CleanResponse{Text: text})
	}
	return nil
}
