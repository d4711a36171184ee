package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tome/internal/code"
)

var listCmd = &cobra.Command{
	Use:   "list [flags] [paths...]",
	Short: "List registry objects",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringSlice("kind", nil, "only objects of these kinds (module|class|method|constant|attribute|classvariable)")
	listCmd.Flags().Bool("undocumented", false, "only public objects without documentation")
	listCmd.Flags().Bool("private", true, "include private and protected objects")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	kindNames, _ := cmd.Flags().GetStringSlice("kind")
	kinds := make([]code.Kind, 0, len(kindNames))
	for _, name := range kindNames {
		k, kindErr := code.ParseKind(name)
		if kindErr != nil {
			return kindErr
		}
		kinds = append(kinds, k)
	}
	undocumented, _ := cmd.Flags().GetBool("undocumented")
	withPrivate, _ := cmd.Flags().GetBool("private")

	res, err := s.load(cmd, args)
	if err != nil {
		return err
	}
	q := res.Engine()

	var decls []*code.Declaration
	if undocumented {
		for _, d := range q.Undocumented() {
			if len(kinds) == 0 || slices.Contains(kinds, d.Kind) {
				decls = append(decls, d)
			}
		}
	} else {
		decls = q.ByKind(kinds...)
	}

	filtered := decls[:0]
	for _, d := range decls {
		if d.Kind == code.KindRoot || (!withPrivate && d.Visibility != code.Public) {
			continue
		}
		filtered = append(filtered, d)
	}
	return writeList(cmd.OutOrStdout(), filtered)
}

var kindColor = color.New(color.FgCyan)

func writeList(out io.Writer, decls []*code.Declaration) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, d := range decls {
		loc := ""
		if d.File != "" {
			loc = fmt.Sprintf("%s:%d", d.File, d.Line)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", kindColor.Sprint(d.Kind), code.Display(d.Path), loc)
	}
	return tw.Flush()
}
