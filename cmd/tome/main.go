package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tome/internal/prof"
	"tome/internal/version"
)

var rootCmd = &cobra.Command{
	Use:               "tome",
	Short:             "Ruby documentation engine",
	Long:              `Tome parses Ruby sources, extracts documentation tags and keeps a queryable registry of documented objects`,
	SilenceUsage:      true,
	SilenceErrors:     false,
	PersistentPreRunE: startProfiling,
}

func init() {
	rootCmd.Version = version.Number

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	addGlobalFlags(rootCmd)
}

func addGlobalFlags(root *cobra.Command) {
	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "log errors only (same as --log-level quiet)")
	root.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error|fatal|quiet); overrides [parse].log_level")
	root.PersistentFlags().String("log-format", "text", "log format (text|json)")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics kept per file (0 = config value)")
	root.PersistentFlags().String("config", "", "path to .tome.toml (default: searched upwards from the working directory)")
	root.PersistentFlags().String("db", "tome.db", "SQLite database used by export and watch --export")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

var profiling *prof.Session

func startProfiling(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	opts.CPU, _ = flags.GetString("cpu-profile")
	opts.Mem, _ = flags.GetString("mem-profile")
	opts.Trace, _ = flags.GetString("runtime-trace")
	if !opts.Enabled() {
		return nil
	}
	s, err := prof.Start(opts)
	if err != nil {
		return err
	}
	profiling = s
	return nil
}

func stopProfiling() {
	if profiling == nil {
		return
	}
	if err := profiling.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "profiling: %v\n", err)
	}
	profiling = nil
}

// main executes the root command. Any command error exits with status 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stopProfiling()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// stdoutFile returns the command's output as a file when it is one; tests
// swap in buffers.
func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}
