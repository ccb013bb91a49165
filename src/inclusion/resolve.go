// Package inclusion resolves a bare dotted path against the Inclusions
// stack a parse left behind, turning it into the one fully-qualified
// node.Path it names (spec.md §4.2 "Inclusions"). It sits above src/parse
// precisely because resolution needs the query engine (to fetch another
// file's SymbolTable on demand) while src/parse itself must not.
package inclusion

import (
	"lucent/src/node"
	"lucent/src/parse"
	"lucent/src/query"
	"lucent/src/source"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Resolver answers Structure/Statics/Function lookups against one build's
// source tree (original_source/src/parse/resolve.rs `impl Inclusions`
// `structure`/`statics`/`function`/`resolve`). RootFile anchors the whole
// program's Root path: every module path this Resolver is asked about is
// assumed reachable by descending ModuleEntry links from RootFile's own
// SymbolTable, recursing into another file's SymbolTable wherever a
// ModuleExternal is crossed.
type Resolver struct {
	Tables   *parse.Tables
	Cache    *source.Cache
	RootFile string
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewResolver builds a Resolver backed by tables/cache, anchored at
// rootFile.
func NewResolver(tables *parse.Tables, cache *source.Cache, rootFile string) *Resolver {
	return &Resolver{Tables: tables, Cache: cache, RootFile: rootFile}
}

// Structure resolves path to the fully-qualified path of a structure
// declaration visible from inclusions, if any.
func (r *Resolver) Structure(scope *query.Scope, inclusions *node.Inclusions, path node.Path) (node.Path, bool, error) {
	return r.resolve(scope, inclusions, path, func(t *node.SymbolTable, name node.Identifier) bool {
		_, ok := t.Structures[name]
		return ok
	})
}

// Statics resolves path to the fully-qualified path of a static
// declaration visible from inclusions, if any.
func (r *Resolver) Statics(scope *query.Scope, inclusions *node.Inclusions, path node.Path) (node.Path, bool, error) {
	return r.resolve(scope, inclusions, path, func(t *node.SymbolTable, name node.Identifier) bool {
		_, ok := t.Statics[name]
		return ok
	})
}

// Function resolves path to the fully-qualified path of a function
// declaration (of any overload arity) visible from inclusions, if any.
func (r *Resolver) Function(scope *query.Scope, inclusions *node.Inclusions, path node.Path) (node.Path, bool, error) {
	return r.resolve(scope, inclusions, path, func(t *node.SymbolTable, name node.Identifier) bool {
		return len(t.Functions[name]) > 0
	})
}

// resolve walks inclusions innermost-frame-first, trying each frame's
// specific imports before its wildcard bases, exactly as
// original_source/src/parse/resolve.rs `resolve` does. predicate decides
// whether a candidate module's SymbolTable actually declares the name
// being searched for.
func (r *Resolver) resolve(scope *query.Scope, inclusions *node.Inclusions, path node.Path, predicate func(*node.SymbolTable, node.Identifier) bool) (node.Path, bool, error) {
	segments := path.Segments()
	if len(segments) == 0 {
		return node.Path{}, false, nil
	}
	head := node.Identifier(segments[0])
	tail := segments[1:]

	for i := len(inclusions.Frames) - 1; i >= 0; i-- {
		frame := inclusions.Frames[i]

		if imp, ok := frame.Specific[head]; ok {
			return appendSegments(imp.Target, tail), true, nil
		}

		for _, base := range frame.Wildcard {
			candidate := appendSegments(base, segments)
			parent, name, ok := splitLast(candidate)
			if !ok {
				continue
			}
			table, found, err := r.tableAt(scope, parent)
			if err != nil {
				return node.Path{}, false, err
			}
			if found && predicate(table, name) {
				return candidate, true, nil
			}
		}
	}
	return node.Path{}, false, nil
}

// tableAt returns the SymbolTable declared at path, descending from
// RootFile's own root table through each segment's ModuleEntry, crossing
// into another file's SymbolTable wherever the entry is a ModuleExternal
// (original_source/src/parse/resolve.rs's `try_symbols`, which is itself a
// query.Run over the owning file's parse).
func (r *Resolver) tableAt(scope *query.Scope, path node.Path) (*node.SymbolTable, bool, error) {
	table, err := r.Tables.Symbols(scope, r.Cache, r.RootFile)
	if err != nil {
		return nil, false, err
	}
	for _, seg := range path.Segments() {
		entry, ok := table.Modules[node.Identifier(seg)]
		if !ok {
			return nil, false, nil
		}
		switch loc := entry.Location.(type) {
		case node.ModuleInline:
			table = loc.Table
		case node.ModuleExternal:
			next, err := r.Tables.Symbols(scope, r.Cache, loc.File)
			if err != nil {
				return nil, false, err
			}
			table = next
		}
	}
	return table, true, nil
}

// appendSegments returns base with extra appended, one segment at a time.
func appendSegments(base node.Path, extra []string) node.Path {
	for _, s := range extra {
		base = base.Child(s)
	}
	return base
}

// splitLast splits path into its parent path and its final segment. ok is
// false for the root path, which has no final segment.
func splitLast(path node.Path) (parent node.Path, name node.Identifier, ok bool) {
	segments := path.Segments()
	if len(segments) == 0 {
		return node.Path{}, "", false
	}
	return node.NewPath(segments[:len(segments)-1]...), node.Identifier(segments[len(segments)-1]), true
}
