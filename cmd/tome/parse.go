package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tome/internal/diag"
	"tome/internal/diagfmt"
	"tome/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] [paths...]",
	Short: "Parse Ruby sources into the registry",
	Long: `Parse reads Ruby files, directories and globs (or the [source].files of
.tome.toml), reports diagnostics and refreshes the registry cache`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "summary", "output format (summary|pretty|json)")
	parseCmd.Flags().String("progress", "auto", "show progress UI (auto|on|off)")
	parseCmd.Flags().Bool("no-cache", false, "ignore and do not update the registry cache")
	parseCmd.Flags().Bool("with-notes", true, "include diagnostic notes")
}

func runParse(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "summary", "pretty", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	progressFlag, _ := cmd.Flags().GetString("progress")
	mode, err := readUIMode(progressFlag)
	if err != nil {
		return err
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")
	withNotes, _ := cmd.Flags().GetBool("with-notes")

	paths, err := s.inputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no Ruby sources found")
	}

	opts := loadOptions{noCache: noCache}
	var res *driver.Result
	if format != "json" && shouldUseTUI(mode) {
		res, err = s.loadWithUI(cmd.Context(), "parsing", paths, opts)
	} else {
		res, err = s.loadRegistry(cmd.Context(), paths, opts)
	}
	if err != nil {
		return err
	}

	res.Bag.Sort()
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if err := diagfmt.JSON(out, res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			IncludeNotes:     withNotes,
		}); err != nil {
			return err
		}
	case "pretty":
		diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     s.color,
			Context:   2,
			PathMode:  diagfmt.PathModeRelative,
			ShowNotes: withNotes,
		})
		printSummary(cmd, res)
	default:
		if res.Bag.Len() > 0 {
			diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, res.FileSet, diagfmt.PrettyOpts{
				Color:     s.color,
				PathMode:  diagfmt.PathModeRelative,
				ShowNotes: withNotes,
			})
		}
		printSummary(cmd, res)
	}

	if s.timings {
		_ = res.Timings.Write(cmd.ErrOrStderr())
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("%d error(s) found", res.Bag.Count(diag.SevError))
	}
	return nil
}

func printSummary(cmd *cobra.Command, res *driver.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) parsed, %d unchanged, %d objects, %d error(s), %d warning(s)\n",
		len(res.Parsed()), len(res.Skipped()), res.Store.Len(),
		res.Bag.Count(diag.SevError), res.Bag.Count(diag.SevWarning))
}
