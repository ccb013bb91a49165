package query

import "sync"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// anyTable is the type-erased half of Table[V] that Context needs to
// cascade invalidation and collect diagnostics across heterogeneous query
// kinds (spec.md §4.1 "Invalidation").
type anyTable interface {
	invalidate(key Key) []Key
	diagnosticsAndDeps(key Key) ([]Diagnostic, []Key, bool)
}

// Context is the cache of memoized values for a single compilation target
// (spec.md §3 "Lifetimes": "Context and file cache persist for a
// compilation target"). It does not own the Tables themselves (those are
// declared as typed fields on the concrete query packages, e.g.
// parse.Tables, inference.Tables) but provides the shared invalidation and
// error-collection machinery every Table needs, keyed by Key.Kind().
type Context struct {
	mu       sync.Mutex
	registry map[string]anyTable
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{registry: make(map[string]anyTable)}
}

// Register associates every Key with the given kind string with t, so that
// Invalidate/CollectErrors know how to route it. Each concrete Table[V]
// calls this once, immediately after construction.
func Register[V any](ctx *Context, kind string, t *Table[V]) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.registry[kind] = t
}

// Invalidate removes key's memoized entry and recursively invalidates
// every key recorded as depending on it (spec.md §4.1 "Invalidation":
// "editing a file produces a top-level invalidation that cascades").
func (c *Context) Invalidate(key Key) {
	c.mu.Lock()
	t, ok := c.registry[key.Kind()]
	c.mu.Unlock()
	if !ok {
		return
	}
	for _, dependent := range t.invalidate(key) {
		c.Invalidate(dependent)
	}
}

// CollectErrors gathers every diagnostic reachable from root: the
// diagnostics emitted directly in the root Scope, plus those owned by
// every key root (transitively) depended on, each visited once (spec.md
// §4.1 Diagnostics: "subsequent readers see those errors by traversing the
// dependency graph up to the originating key").
func (c *Context) CollectErrors(root *Scope) []Diagnostic {
	visited := make(map[Key]bool)
	errs := append([]Diagnostic(nil), root.diagnostics...)

	var walk func(Key)
	walk = func(key Key) {
		if visited[key] {
			return
		}
		visited[key] = true

		c.mu.Lock()
		t, ok := c.registry[key.Kind()]
		c.mu.Unlock()
		if !ok {
			return
		}
		diags, deps, ok := t.diagnosticsAndDeps(key)
		if !ok {
			return
		}
		errs = append(errs, diags...)
		for _, dep := range deps {
			walk(dep)
		}
	}

	for _, key := range root.dependencies {
		walk(key)
	}
	return errs
}
