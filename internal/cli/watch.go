package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce batches the bursts of events editors emit on save.
const watchDebounce = 250 * time.Millisecond

// watch calls fn with the inputs that changed until ctx is done. Parent
// directories are watched rather than the files themselves so that
// editors which save by rename keep being tracked.
func (c *CLI) watch(ctx context.Context, inputs []string, fn func(context.Context, []string) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	tracked := make(map[string]string, len(inputs)) // abs path -> argument
	dirs := make(map[string]bool)
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		tracked[abs] = in
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	printInfo("Watching %d file(s) for changes (Ctrl+C to stop)", len(inputs))

	changed := make(map[string]bool)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			in, ok := tracked[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			c.Logger.Debug("input changed", "path", in, "op", ev.Op.String())
			changed[in] = true
			timer.Reset(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)

		case <-timer.C:
			batch := changedInputs(changed)
			changed = make(map[string]bool)
			if err := fn(ctx, batch); err != nil {
				c.Logger.Error("render failed", "err", err)
			}
		}
	}
}

func changedInputs(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for in := range m {
		out = append(out, in)
	}
	sort.Strings(out)
	return out
}
