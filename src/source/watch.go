package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Watcher observes the workspace root for changes to **/*.lc and
// **/*.lucent files (spec.md §6 "watched files") and re-reads them into the
// Cache, triggering InvalidateFunc. It is the LSP server's file-system half;
// the protocol half lives in src/server.
type Watcher struct {
	fs    *fsnotify.Watcher
	cache *Cache
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewWatcher starts watching root (recursively, one fsnotify watch per
// directory since fsnotify does not support recursive watches natively).
func NewWatcher(cache *Cache, root string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == root {
			return fs.Add(path)
		}
		return nil
	})
	if err != nil {
		fs.Close()
		return nil, err
	}
	w := &Watcher{fs: fs, cache: cache}
	go w.run()
	return w, nil
}

// run processes fsnotify events until the watcher is closed.
func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !watched(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if _, err := w.cache.Read(event.Name); err == nil && w.cache.InvalidateFunc != nil {
					w.cache.InvalidateFunc(event.Name)
				}
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}

// watched reports whether path matches one of the glob patterns spec.md §6
// names: **/*.lc, **/*.lucent.
func watched(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lc", ".lucent":
		return true
	default:
		return false
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
