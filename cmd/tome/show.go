package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tome/internal/code"
	"tome/internal/query"
	"tome/internal/tags"
)

var showCmd = &cobra.Command{
	Use:   "show [flags] OBJECT [paths...]",
	Short: "Show one object with its documentation",
	Long:  `Show prints an object (Foo::Bar, Foo#baz, Foo.qux) with its location, signature, docstring and tags`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	res, err := s.load(cmd, args[1:])
	if err != nil {
		return err
	}
	d, err := res.Engine().Object(args[0])
	if errors.Is(err, query.ErrObjectNotFound) {
		return fmt.Errorf("%s: no such object", args[0])
	}
	if err != nil {
		return err
	}
	renderObject(cmd.OutOrStdout(), d)
	return nil
}

var (
	headingColor = color.New(color.Bold)
	tagColor     = color.New(color.FgYellow)
)

func renderObject(out io.Writer, d *code.Declaration) {
	headingColor.Fprintf(out, "%s %s\n", d.Kind, code.Display(d.Path))
	if d.File != "" {
		fmt.Fprintf(out, "  defined in %s:%d", d.File, d.Line)
		if extra := len(d.Files) - 1; extra > 0 {
			fmt.Fprintf(out, " (+%d more)", extra)
		}
		fmt.Fprintln(out)
	}
	switch d.Kind {
	case code.KindMethod, code.KindAttribute:
		fmt.Fprintf(out, "  %s %s method\n", d.Visibility, d.Scope)
	case code.KindClass:
		if d.Superclass != "" {
			fmt.Fprintf(out, "  inherits %s\n", d.Superclass)
		}
	}
	for _, m := range d.Mixins {
		fmt.Fprintf(out, "  %s %s\n", m.Kind, m.Path)
	}
	if d.Signature != "" {
		fmt.Fprintf(out, "  %s\n", d.Signature)
	}
	if d.AliasOf != "" {
		fmt.Fprintf(out, "  alias of %s\n", code.Display(d.AliasOf))
	}
	if d.Value != "" {
		fmt.Fprintf(out, "  = %s\n", d.Value)
	}
	if d.Group != "" {
		fmt.Fprintf(out, "  group: %s\n", d.Group)
	}

	if text := strings.TrimSpace(d.Docstring.Text); text != "" {
		fmt.Fprintln(out)
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	if len(d.Docstring.Tags) > 0 {
		fmt.Fprintln(out)
		for _, t := range d.Docstring.Tags {
			fmt.Fprintf(out, "  %s\n", formatTag(t))
		}
	}
}

func formatTag(t tags.Tag) string {
	var b strings.Builder
	b.WriteString(tagColor.Sprint("@" + t.Name))
	if t.Overload != nil {
		b.WriteString(" " + t.Overload.Signature)
	}
	if t.Subject != "" {
		b.WriteString(" " + t.Subject)
	}
	if len(t.Types) > 0 {
		b.WriteString(" [" + strings.Join(t.Types, ", ") + "]")
	}
	if t.Option != nil {
		b.WriteString(" :" + strings.TrimPrefix(t.Option.Key, ":"))
		if len(t.Option.Types) > 0 {
			b.WriteString(" [" + strings.Join(t.Option.Types, ", ") + "]")
		}
		if t.Option.Text != "" {
			b.WriteString(" " + t.Option.Text)
		}
	}
	if t.Title != "" {
		b.WriteString(" " + t.Title)
	}
	if t.Text != "" {
		b.WriteString(" " + strings.Join(strings.Fields(t.Text), " "))
	}
	return b.String()
}
