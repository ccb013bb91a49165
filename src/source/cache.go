// Package source is the file-and-span source cache: the external
// collaborator named in spec.md §1/§2 that maps paths to file ids, stores
// file text, and answers line-index queries. It is also where file-watch
// driven invalidation (spec.md §6 "watched files") enters the query engine.
package source

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"lucent/src/span"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// File holds the text and precomputed line offsets for one source file.
type File struct {
	Path  string
	Text  string
	lines []int // byte offset of the start of each line.
}

// Cache maps paths to File entries issued monotonically increasing FileIDs.
// It is the "only externally mutable state" named in spec.md §5; edits
// invalidate the query keys threaded through InvalidateFunc.
type Cache struct {
	mu    sync.RWMutex
	ids   map[string]span.FileID
	files map[span.FileID]*File

	// InvalidateFunc, if set, is called by the watcher in watch.go with the
	// path of every watched file it re-reads; Update itself never calls it.
	// The query engine wires this to Context.Invalidate.
	InvalidateFunc func(path string)
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewCache returns an empty source cache.
func NewCache() *Cache {
	return &Cache{
		ids:   make(map[string]span.FileID),
		files: make(map[span.FileID]*File),
	}
}

// Read loads path from disk (or returns the cached copy) and returns its
// FileID. This is the query-engine-visible "Read" input key from spec.md
// §4.1; a fresh read always replaces the cached text, matching the
// teacher's ReadSource in src/util/io.go in spirit (read whole file, report
// I/O failures as plain errors).
func (c *Cache) Read(path string) (span.FileID, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("could not read source code: %w", err)
	}
	return c.Update(path, string(b)), nil
}

// Update installs text for path (used by the LSP server on didChange) and
// returns its FileID, allocating a new one on first sight.
func (c *Cache) Update(path, text string) span.FileID {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[path]
	if !ok {
		id = span.FileID(len(c.ids) + 1)
		c.ids[path] = id
	}
	c.files[id] = &File{Path: path, Text: text, lines: lineStarts(text)}
	return id
}

// ID returns the FileID previously assigned to path, if any.
func (c *Cache) ID(path string) (span.FileID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[path]
	return id, ok
}

// File returns the cached file for id.
func (c *Cache) File(id span.FileID) (*File, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.files[id]
	return f, ok
}

// Line returns the 1-based line number and 0-based column of byte offset
// in this file's text.
func (f *File) Line(offset int) (line, column int) {
	// Binary search over line start offsets.
	lo, hi := 0, len(f.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lines[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - f.lines[lo]
}

// lineStarts computes the byte offset of the first character of every line
// in text, always including offset 0 for the first line.
func lineStarts(text string) []int {
	starts := []int{0}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	offset := 0
	for scanner.Scan() {
		offset += len(scanner.Text()) + 1
		if offset <= len(text) {
			starts = append(starts, offset)
		}
	}
	return starts
}
