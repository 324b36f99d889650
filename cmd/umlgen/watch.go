package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/umlgen/compiler/gen"
)

func newWatchCmd(c *cli) *cobra.Command {
	var (
		f        = &genFlags{}
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [target...]",
		Short: "Regenerate the targets whenever a template override changes",
		Long: `watch generates the targets once, then watches the template override
directory and regenerates them after every change until interrupted.
Generation errors are logged and do not stop the watch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, f, args)
			if err != nil {
				return err
			}
			if cfg.Templates == "" {
				return gen.NewConfigError("Templates", nil, "watch requires a template directory")
			}
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer w.Close()
			if err := watchTree(w, cfg.Templates); err != nil {
				return err
			}
			return c.watch(cmd.Context(), w, cfg, debounce)
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before regenerating")
	return cmd
}

// watch regenerates cfg after each burst of events of w until ctx is done.
func (c *cli) watch(ctx context.Context, w *fsnotify.Watcher, cfg *Config, debounce time.Duration) error {
	run := func() {
		// Template files may have been replaced: rebuild the options.
		b, err := c.batch(cfg)
		if err == nil {
			var results []*gen.Result
			results, err = b.Run(ctx)
			c.report(cfg, results)
		}
		if err != nil && ctx.Err() == nil {
			c.logger.Error("generation failed", "error", err)
		}
	}
	run()
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			c.logger.Debug("template change", "path", ev.Name, "op", ev.Op.String())
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := watchTree(w, ev.Name); err != nil {
						c.logger.Warn("watch directory", "path", ev.Name, "error", err)
					}
				}
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("watch error", "error", err)
		case <-timer.C:
			run()
		}
	}
}

// watchTree adds root and its subdirectories to w.
func watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
