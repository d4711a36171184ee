package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tome/internal/cache"
	"tome/internal/export"
	"tome/internal/tags"
	"tome/internal/version"
)

// buildInfo is what `tome version` knows about this binary: the release,
// optional git metadata and the on-disk formats it reads and writes.
type buildInfo struct {
	Version      string `json:"version"`
	GitCommit    string `json:"git_commit,omitempty"`
	GitMessage   string `json:"git_message,omitempty"`
	BuildDate    string `json:"build_date,omitempty"`
	CacheSchema  string `json:"cache_schema,omitempty"`
	ExportSchema string `json:"export_schema,omitempty"`
	BuiltinTags  int    `json:"builtin_tags,omitempty"`
}

type versionFlags struct {
	format  string
	hash    bool
	message bool
	date    bool
	schemas bool
}

func (f versionFlags) any() bool { return f.hash || f.message || f.date || f.schemas }

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show tome version, build metadata and data formats",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("message", false, "include git commit message")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("schemas", false, "include cache and export schema versions")
	versionCmd.Flags().Bool("full", false, "everything above")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	var f versionFlags
	flags := cmd.Flags()
	f.format, _ = flags.GetString("format")
	f.hash, _ = flags.GetBool("hash")
	f.message, _ = flags.GetBool("message")
	f.date, _ = flags.GetBool("date")
	f.schemas, _ = flags.GetBool("schemas")
	if full, _ := flags.GetBool("full"); full {
		f.hash, f.message, f.date, f.schemas = true, true, true, true
	}

	info := collectBuildInfo(f)
	switch strings.ToLower(f.format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "pretty":
		colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
		mode, err := readColorMode(colorFlag)
		if err != nil {
			return err
		}
		renderBuildInfo(cmd.OutOrStdout(), info, f, shouldColor(mode, stdoutFile(cmd)))
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", f.format)
	}
}

// collectBuildInfo fills only the fields selected by f; unknown git
// metadata reads "unknown".
func collectBuildInfo(f versionFlags) buildInfo {
	info := buildInfo{Version: strings.TrimSpace(version.Number)}
	if info.Version == "" {
		info.Version = "dev"
	}
	if f.hash {
		info.GitCommit = orUnknown(version.GitCommit)
	}
	if f.message {
		info.GitMessage = orUnknown(version.GitMessage)
	}
	if f.date {
		info.BuildDate = orUnknown(version.BuildDate)
	}
	if f.schemas {
		info.CacheSchema = cache.SchemaVersion
		info.ExportSchema = export.CurrentSchemaVersion
		info.BuiltinTags = len(tags.DefaultLibrary().Definitions())
	}
	return info
}

func renderBuildInfo(out io.Writer, info buildInfo, f versionFlags, colored bool) {
	v := info.Version
	if colored && v == version.Number {
		v = version.Colored()
	}
	fmt.Fprintf(out, "tome %s\n", v)
	if f.hash {
		fmt.Fprintf(out, "  commit:  %s\n", info.GitCommit)
	}
	if f.message {
		fmt.Fprintf(out, "  message: %s\n", info.GitMessage)
	}
	if f.date {
		fmt.Fprintf(out, "  built:   %s\n", info.BuildDate)
	}
	if f.schemas {
		fmt.Fprintf(out, "  cache:   schema %s\n", info.CacheSchema)
		fmt.Fprintf(out, "  export:  schema %s\n", info.ExportSchema)
		fmt.Fprintf(out, "  tags:    %d built in\n", info.BuiltinTags)
	}
	if !f.any() {
		fmt.Fprintln(out, "use --hash, --message, --date, --schemas or --full for details")
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
