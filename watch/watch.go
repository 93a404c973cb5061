// Package watch re-runs the scanner when template files change, either
// through filesystem notifications with debouncing or through a
// cooperative poll loop over the change tracker.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/viewcheck/viewcheck/scanner"
)

// debounce delays the rescan after a burst of filesystem events.
const debounce = 300 * time.Millisecond

// Watcher re-scans a template tree on change.
type Watcher struct {
	// Root is the template root directory.
	Root string
	// Scanner runs the scans.
	Scanner *scanner.Scanner
	// OnScan receives each scan result.
	OnScan func(*scanner.Result)
	// Logger receives watch diagnostics.
	Logger *slog.Logger
}

// Run watches Root with filesystem notifications until ctx is done.
// Events inside dotted directories (state, VCS) are ignored.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := addRecursive(fsw, w.Root); err != nil {
		return err
	}

	var timer *time.Timer
	trigger := func() {
		res, err := w.Scanner.ScanDir(w.Root, true)
		if err != nil {
			w.Logger.Error("scan failed", "error", err)
			return
		}
		if w.OnScan != nil {
			w.OnScan(res)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-fsw.Events:
			if hiddenPath(ev.Name) {
				continue
			}
			// New directories need their own watch.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					addRecursive(fsw, ev.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, trigger)
		case err := <-fsw.Errors:
			w.Logger.Error("watch error", "error", err)
		}
	}
}

// Poll runs the cooperative poll loop: sleep the interval, ask the
// change tracker for changed files, scan them, repeat until ctx is done.
// There is no per-file timeout; a pathological template stalls the loop.
func (w *Watcher) Poll(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			changed := w.Scanner.Tracker().Changed(w.Scanner.ListTemplates(w.Root))
			if len(changed) == 0 {
				continue
			}
			res := w.Scanner.ScanFiles(w.Root, changed)
			if err := w.Scanner.Tracker().Update(changed); err != nil {
				w.Logger.Error("persisting scan state failed", "error", err)
			}
			if w.OnScan != nil {
				w.OnScan(res)
			}
		}
	}
}

// addRecursive watches root and every directory below it.
func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if hiddenPath(path) && path != root {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}

// hiddenPath reports whether any path element starts with a dot.
func hiddenPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
