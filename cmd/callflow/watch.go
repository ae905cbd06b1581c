package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/viant/callflow/inspector/repository"
)

const defaultDebounce = 500 * time.Millisecond

func newWatchCommand() *cobra.Command {
	options := &analyzeOptions{}
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-analyze whenever Rust sources or manifests change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := options.config(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			dir := targetDir(args)
			analyze := func() {
				if _, err := runAnalyze(ctx, out, dir, config, options); err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
			}
			analyze()
			w, err := newSourceWatcher(dir, debounce, options.logger())
			if err != nil {
				return err
			}
			defer w.Close()
			fmt.Fprintf(out, "Watching %v for changes\n", dir)
			return w.Run(ctx, func(paths []string) {
				fmt.Fprintf(out, "Changed: %v\n", strings.Join(paths, ", "))
				analyze()
			})
		},
	}
	options.bind(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before re-analysis")
	return cmd
}

// sourceWatcher batches changes to .rs files and Cargo manifests under a root directory
type sourceWatcher struct {
	root     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

func newSourceWatcher(root string, debounce time.Duration, logger *slog.Logger) (*sourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	ret := &sourceWatcher{root: root, debounce: debounce, watcher: watcher, logger: logger}
	if err = ret.addRecursive(root); err != nil {
		watcher.Close()
		return nil, err
	}
	return ret, nil
}

// addRecursive watches dir and its subdirectories, build output and hidden directories excluded
func (w *sourceWatcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %v: %w", path, err)
		}
		return nil
	})
}

// Run delivers batches of changed paths to handler until ctx is done
func (w *sourceWatcher) Run(ctx context.Context, handler func(paths []string)) error {
	var pending []string
	seen := map[string]bool{}
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					if err = w.addRecursive(event.Name); err != nil {
						w.logger.Warn("failed to watch directory", "path", event.Name, "error", err)
					}
				}
			}
			if !relevant(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			if !seen[event.Name] {
				seen[event.Name] = true
				pending = append(pending, event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-timerC:
			batch := pending
			pending = nil
			seen = map[string]bool{}
			timer = nil
			timerC = nil
			handler(batch)
		}
	}
}

// Close stops watching
func (w *sourceWatcher) Close() error {
	return w.watcher.Close()
}

func relevant(path string) bool {
	return filepath.Ext(path) == ".rs" || filepath.Base(path) == repository.ManifestFilename
}

func skipDir(name string) bool {
	return name == "target" || strings.HasPrefix(name, ".")
}
