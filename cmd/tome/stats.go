package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tome/internal/code"
	"tome/internal/query"
)

var statsCmd = &cobra.Command{
	Use:   "stats [flags] [paths...]",
	Short: "Show object counts and documentation coverage",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("list-undoc", false, "list undocumented objects")
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	listUndoc, _ := cmd.Flags().GetBool("list-undoc")
	res, err := s.load(cmd, args)
	if err != nil {
		return err
	}
	q := res.Engine()
	out := cmd.OutOrStdout()
	writeStats(out, q.Stats(), len(res.Files))
	if listUndoc {
		undoc := q.Undocumented()
		if len(undoc) > 0 {
			fmt.Fprintln(out, "\nUndocumented objects:")
			return writeList(out, undoc)
		}
	}
	return nil
}

var statsOrder = []struct {
	kind  code.Kind
	label string
}{
	{code.KindModule, "Modules"},
	{code.KindClass, "Classes"},
	{code.KindConstant, "Constants"},
	{code.KindAttribute, "Attributes"},
	{code.KindMethod, "Methods"},
	{code.KindClassVariable, "Class variables"},
}

func writeStats(out io.Writer, st query.Stats, files int) {
	fmt.Fprintf(out, "%-17s %6d\n", "Files:", files)
	for _, row := range statsOrder {
		fmt.Fprintf(out, "%-17s %6d\n", row.label+":", st.ByKind[row.kind])
	}
	fmt.Fprintf(out, "%-17s %6d\n", "Undocumented:", st.Undocumented)
	fmt.Fprintf(out, "%.2f%% documented\n", st.Coverage()*100)
}
