package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tome/internal/cache"
	"tome/internal/driver"
	"tome/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [dirs...]",
	Short: "Keep the registry current while sources change",
	Long: `Watch parses the project once, then re-parses Ruby files as they are
written and drops objects of deleted files until interrupted`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultWindow, "quiet period before a batch of changes is parsed")
	watchCmd.Flags().Bool("export", false, "rewrite the --db export after every batch")
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	window, _ := cmd.Flags().GetDuration("debounce")
	withExport, _ := cmd.Flags().GetBool("export")

	roots := args
	if len(roots) == 0 {
		roots = []string{s.cfg.Root}
		if s.cfg.Root == "" {
			roots = []string{"."}
		}
	}
	res, err := s.load(cmd, roots)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d objects from %d file(s); watching %v\n", res.Store.Len(), len(res.Files), roots)

	var c *cache.Cache
	if s.cfg.Parse.UseCache {
		if c, err = cache.Open(s.cfg.CacheDir()); err != nil {
			log.Warn("cache disabled", "error", err)
			c = nil
		}
	}
	if withExport {
		if err := exportSQLite(ctx, s.dbPath, res.Store); err != nil {
			return err
		}
	}

	excludes := make([]string, 0, len(s.cfg.Source.Exclude))
	for _, ex := range s.cfg.Source.Exclude {
		excludes = append(excludes, filepath.ToSlash(ex))
	}

	w, err := watch.New(res.Store, watch.Options{
		Roots:   roots,
		Exclude: excludes,
		Window:  window,
		Request: driver.Request{
			SearchPaths:    s.cfg.Source.SearchPaths,
			Library:        s.cfg.Library(),
			Jobs:           s.cfg.Parse.Jobs,
			MaxDiagnostics: s.maxDiagnostics,
		},
		Checksums: res.Checksums,
		OnUpdate: func(up watch.Update) {
			if up.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s  re-parse failed: %v\n", time.Now().Format(time.TimeOnly), up.Err)
				return
			}
			errs := 0
			if up.Result != nil {
				errs = up.Result.Bag.Len()
			}
			fmt.Fprintf(out, "%s  %d parsed, %d removed, %d objects, %d diagnostic(s)\n",
				time.Now().Format(time.TimeOnly), len(up.Parsed), len(up.Removed), res.Store.Len(), errs)
			if c != nil {
				if err := c.Save(res.Store, up.Checksums); err != nil {
					log.Warn("failed to save cache", "error", err)
				}
			}
			if withExport {
				if err := exportSQLite(ctx, s.dbPath, res.Store); err != nil {
					log.Warn("export failed", "db", s.dbPath, "error", err)
				}
			}
		},
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
