package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tome/internal/export"
	"tome/internal/registry"
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] [paths...]",
	Short: "Export the registry to SQLite or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("format", "sqlite", "export format (sqlite|json)")
	exportCmd.Flags().StringP("output", "o", "", "output file (sqlite: --db, json: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	switch format {
	case "sqlite", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	res, err := s.load(cmd, args)
	if err != nil {
		return err
	}

	if format == "json" {
		return exportJSON(cmd.OutOrStdout(), output, res.Store)
	}
	if output == "" {
		output = s.dbPath
	}
	if err := exportSQLite(cmd.Context(), output, res.Store); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d objects to %s\n", res.Store.Len(), output)
	return nil
}

func exportJSON(stdout io.Writer, output string, store *registry.Store) (err error) {
	if output == "" || output == "-" {
		return export.JSON(stdout, store)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return export.JSON(f, store)
}

func exportSQLite(ctx context.Context, path string, store *registry.Store) error {
	db, err := export.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()
	return db.Write(ctx, store)
}
