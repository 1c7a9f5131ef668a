package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
)

// Invalidator discards the stored records of a changed path so the next
// vectorisation run re-embeds it.
type Invalidator interface {
	InvalidatePath(ctx context.Context, root, path string) error
}

// Watcher follows a file tree with fsnotify and invalidates stored
// vectors as paths change. It never re-embeds on its own; stale paths
// wait for the next vectorisation run.
type Watcher struct {
	invalidator Invalidator
	exclusions  domain.ExclusionList
	log         driven.Logger
}

// NewWatcher creates a watcher that reports changes to the invalidator.
func NewWatcher(invalidator Invalidator, exclusions domain.ExclusionList, log driven.Logger) *Watcher {
	return &Watcher{
		invalidator: invalidator,
		exclusions:  exclusions,
		log:         log,
	}
}

// Watch blocks, following the tree rooted at root until the context is
// cancelled. Create, write, remove and rename events on non-excluded
// paths invalidate the path's records; chmod-only events are ignored.
// Newly created directories are added to the watch as they appear.
func (w *Watcher) Watch(ctx context.Context, root string) error {
	root = domain.NormalisePath(root)

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTree(watcher, root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	w.log.Info("Watching %s", root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, watcher, root, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error: %v", err)
		}
	}
}

// handleEvent filters one fsnotify event and invalidates the affected
// path.
func (w *Watcher) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, root string, event fsnotify.Event) {
	const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	if event.Op&relevant == 0 {
		return
	}

	path := domain.NormalisePath(event.Name)
	if w.exclusions.Match(path) {
		return
	}

	// A created directory needs watches of its own. Its contents may
	// predate the watch, so the whole subtree is registered.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(watcher, path); err != nil {
				w.log.Warn("Watch new directory %s: %v", path, err)
			}
		}
	}

	if err := w.invalidator.InvalidatePath(ctx, root, path); err != nil {
		w.log.Warn("Invalidate %s: %v", path, err)
		return
	}
	w.log.Debug("Invalidated %s after %s", path, event.Op)
}

// addTree registers root and every non-excluded directory beneath it.
// fsnotify watches are not recursive, so each level is added explicitly.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		path := domain.NormalisePath(p)
		if w.exclusions.Match(path) {
			return fs.SkipDir
		}
		return watcher.Add(p)
	})
}
