package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tome/internal/diagfmt"
	"tome/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.rb",
	Short: "Tokenize a Ruby source file",
	Long:  `Tokenize breaks down a Ruby source file into its tokens; "-" reads standard input`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	var result *driver.TokenizeResult
	if args[0] == "-" {
		text, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return readErr
		}
		result = driver.TokenizeSource("(stdin)", text, s.maxDiagnostics)
	} else if result, err = driver.Tokenize(args[0], s.maxDiagnostics); err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// диагностика уходит в stderr
	if result.Bag.Len() > 0 {
		result.Bag.Sort()
		diagfmt.Pretty(cmd.ErrOrStderr(), result.Bag, result.FileSet, diagfmt.PrettyOpts{Color: s.color, Context: 2})
	}

	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(out, result.Tokens, result.FileSet)
	case "json":
		return diagfmt.FormatTokensJSON(out, result.Tokens, result.FileSet)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

