// Package server is the LSP collaborator named in spec.md §6: text
// document sync, semantic tokens, goto-definition and targets.lucent/
// watched-file handling over github.com/tliron/glsp, sitting beside
// src/binary as a second external consumer of the same query.Context-based
// pipeline cmd/lucent's "build" subcommand drives.
package server

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"lucent/src/binary"
	"lucent/src/generate/x86"
	"lucent/src/inclusion"
	"lucent/src/inference"
	"lucent/src/lower"
	"lucent/src/parse"
	"lucent/src/query"
	"lucent/src/source"
	"lucent/src/util"
)

// workspace holds one LSP session's state: the shared source cache every
// open document is read through, the query tables memoizing every build
// stage, and the current set of targets.lucent entry points. Unlike
// cmd/lucent's one-shot pipeline (which starts fresh per invocation), the
// workspace's Context lives for the whole session so edits only
// re-validate what InvalidateFunc actually marks dirty.
type workspace struct {
	mu sync.Mutex

	root  string
	cache *source.Cache
	ctx   *query.Context

	parse  *parse.Tables
	infer  *inference.Tables
	lower  *lower.Tables
	gen    *x86.Tables
	binary *binary.Tables

	watcher *source.Watcher
	targets []string      // from targets.lucent, when present.
	openDocs map[string]bool // paths with an editor buffer open, used as ad hoc targets otherwise.
}

// newWorkspace wires a fresh query.Context the same way cmd/lucent's
// pipeline does, except InvalidateFunc is actually connected here: the
// server, unlike a one-shot build, lives long enough for invalidation to
// matter.
func newWorkspace(root string) *workspace {
	cache := source.NewCache()
	ctx := query.NewContext()

	w := &workspace{
		root:     root,
		cache:    cache,
		ctx:      ctx,
		parse:    parse.NewTables(ctx),
		infer:    inference.NewTables(ctx),
		lower:    lower.NewTables(ctx),
		gen:      x86.NewTables(ctx),
		binary:   binary.NewTables(ctx),
		openDocs: make(map[string]bool),
	}
	cache.InvalidateFunc = w.invalidate
	return w
}

// invalidate maps a changed file path to every query key that might be
// memoizing stale data over it. The query engine only tracks keys, not
// file paths, so the mapping is necessarily approximate: a parse.ParsedKey
// for the changed path itself always gets invalidated, which cascades
// through Context.Invalidate's dependency walk into every inference/lower/
// generate/binary key that demanded it.
func (w *workspace) invalidate(path string) {
	w.ctx.Invalidate(parse.ParsedKey{Path: path})
}

// open registers text for path (overlay content from the editor takes
// precedence over whatever's on disk), marks it open (so it becomes an ad
// hoc analysis root when no targets.lucent lists one explicitly), and
// returns the diagnostics for every current target.
func (w *workspace) open(path, text string) map[string][]query.Diagnostic {
	w.mu.Lock()
	w.cache.Update(path, text)
	w.openDocs[path] = true
	w.mu.Unlock()
	w.ctx.Invalidate(parse.ParsedKey{Path: path})
	return w.analyzeAll()
}

// closeDoc unmarks path as open, so it stops being an ad hoc root once
// targets.lucent doesn't mention it either.
func (w *workspace) closeDoc(path string) {
	w.mu.Lock()
	delete(w.openDocs, path)
	w.mu.Unlock()
}

// roots returns the current set of analysis entry points: targets.lucent's
// list when one exists, otherwise every currently open document.
func (w *workspace) roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.targets) > 0 {
		return append([]string(nil), w.targets...)
	}
	roots := make([]string, 0, len(w.openDocs))
	for path := range w.openDocs {
		roots = append(roots, path)
	}
	return roots
}

// analyzeAll links every current root and returns a diagnostics map keyed
// by root path. Diagnostics don't carry a per-owner absolute file+position
// in this port (no Presented-lifting pass exists, see DESIGN.md), so every
// diagnostic from a root's build is attributed to that root's own file
// rather than the file it actually originated in.
func (w *workspace) analyzeAll() map[string][]query.Diagnostic {
	targets := w.roots()
	out := make(map[string][]query.Diagnostic, len(targets))
	for _, root := range targets {
		out[root] = w.analyze(root)
	}
	return out
}

// analyze links one root under its own Scope and returns the diagnostics
// collected across its demand chain.
func (w *workspace) analyze(root string) []query.Diagnostic {
	resolver := inclusion.NewResolver(w.parse, w.cache, root)
	scope := query.RootScope(w.ctx, query.NewScopeHandle())

	_, err := w.binary.Link(scope, resolver, w.parse, w.infer, w.lower, w.gen, w.cache, root, util.X86_64)
	diags := w.ctx.CollectErrors(scope)
	if err != nil && len(diags) == 0 {
		diags = append(diags, query.NewDiagnostic(query.Error, err.Error()))
	}
	return diags
}

// refreshTargets re-reads targets.lucent from the workspace root directory,
// if present, and (once, on first call) starts the file watcher so edits
// to any watched file re-trigger analysis.
func (w *workspace) refreshTargets() error {
	targets, err := readTargetsFile(w.root)
	if err != nil {
		return fmt.Errorf("reading %s: %w", util.TargetsFile, err)
	}

	w.mu.Lock()
	w.targets = targets
	watcher := w.watcher
	w.mu.Unlock()

	if watcher != nil {
		return nil
	}
	nw, err := source.NewWatcher(w.cache, w.root)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	w.mu.Lock()
	w.watcher = nw
	w.mu.Unlock()
	return nil
}

// readTargetsFile reads dir/targets.lucent, returning nil (not an error)
// when the file doesn't exist: the workspace then falls back to whatever
// documents are open, via workspace.roots.
func readTargetsFile(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, util.TargetsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		targets = append(targets, line)
	}
	return targets, scanner.Err()
}

// close stops the workspace's file watcher, if one was started.
func (w *workspace) close() {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher != nil {
		watcher.Close()
	}
}
