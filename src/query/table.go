package query

import (
	"errors"
	"fmt"
	"sync"

	"lucent/src/span"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ErrFailure is returned by a query that failed after emitting at least one
// diagnostic; dependents treat it as a cacheable absence (spec.md §4.1
// step 2, §7 "Propagation").
var ErrFailure = errors.New("query: failure")

// CycleError is returned when a provider transitively demands its own key
// (spec.md §4.1 step 1, §8 property 6). Chain lists every key in the cycle
// in demand order, each paired with the span at which the next key was
// demanded.
type CycleError struct {
	Chain []CycleLink
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("query: cycle of length %d", len(e.Chain))
}

// Diagnostic renders the cycle as a user-visible Diagnostic (spec.md §8
// scenario 5: "a single diagnostic chain that names each key and its
// demand span").
func (e *CycleError) Diagnostic() Diagnostic {
	return CycleDiagnostic(e.Chain)
}

// state is the lifecycle of a single Table entry.
type state int

const (
	pending state = iota
	ready
	failed
)

// entry is one memoized Table slot: a value (or failure marker), the
// diagnostics emitted while computing it, the forward dependencies it
// itself queried, and the backward dependents that must be invalidated if
// this entry is invalidated.
type entry[V any] struct {
	state        state
	value        V
	diagnostics  []Diagnostic
	dependencies []Key
	dependents   []Key
}

// Table is one memoization table for a single query kind (spec.md §4.1
// "the engine holds one Table<K> per query kind"). V is the query's result
// type; K is encoded in the Key values used to index it.
type Table[V any] struct {
	mu      sync.Mutex
	entries map[Key]*entry[V]
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewTable returns an empty Table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{entries: make(map[Key]*entry[V])}
}

// Run executes the four-way state machine from spec.md §4.1 "Execution":
// pending entries signal a cycle, failed entries short-circuit, ready
// entries are returned directly (recording caller as a dependent), and a
// missing entry is computed by running provider inside a fresh child
// Scope.
//
// caller is the Scope of the query that is demanding this one (nil for a
// root request); item, if non-nil, is the span at which the demand was
// made, used only to annotate a cycle diagnostic.
func Run[V any](t *Table[V], caller *Scope, key Key, item *span.Item, provider func(*Scope) (V, error)) (V, error) {
	var zero V

	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok {
		e = &entry[V]{state: pending}
		t.entries[key] = e
		t.mu.Unlock()

		child := &Scope{ctx: callerContext(caller), handle: callerHandle(caller), self: key}
		value, err := provider(child)

		t.mu.Lock()
		switch {
		case err == nil:
			e.state = ready
			e.value = value
			e.diagnostics = child.diagnostics
			e.dependencies = child.dependencies
		case isCycle(err):
			cyc := err.(*CycleError)
			cyc.Chain = append(cyc.Chain, CycleLink{Key: key, Owner: key, Span: item})
			e.state = failed
			t.mu.Unlock()
			noteDependency(caller, key)
			return zero, cyc
		default:
			e.state = failed
			e.diagnostics = child.diagnostics
			e.dependencies = child.dependencies
		}
		t.mu.Unlock()
	} else {
		switch e.state {
		case pending:
			t.mu.Unlock()
			return zero, &CycleError{Chain: []CycleLink{{Key: key, Owner: key, Span: item}}}
		case failed:
			t.mu.Unlock()
			noteDependency(caller, key)
			return zero, ErrFailure
		}
	}

	t.mu.Lock()
	if caller != nil {
		e.dependents = append(e.dependents, caller.self)
	}
	value := e.value
	failedNow := e.state == failed
	t.mu.Unlock()

	noteDependency(caller, key)
	if failedNow {
		return zero, ErrFailure
	}
	return value, nil
}

func isCycle(err error) bool {
	_, ok := err.(*CycleError)
	return ok
}

func noteDependency(caller *Scope, key Key) {
	if caller != nil {
		caller.recordDependency(key)
	}
}

func callerContext(caller *Scope) *Context {
	if caller == nil {
		return nil
	}
	return caller.ctx
}

func callerHandle(caller *Scope) *ScopeHandle {
	if caller == nil {
		return nil
	}
	return caller.handle
}

// invalidate drops key's entry and returns its recorded dependents so the
// owning Context can cascade (spec.md §4.1 "Invalidation").
func (t *Table[V]) invalidate(key Key) []Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		return nil
	}
	delete(t.entries, key)
	return e.dependents
}

// diagnosticsAndDeps returns the diagnostics emitted directly while
// computing key, and the forward dependencies it queried, used by
// Context.CollectErrors to traverse the dependency graph (spec.md §4.1
// Diagnostics "lifted... by consulting the parse tables").
func (t *Table[V]) diagnosticsAndDeps(key Key) ([]Diagnostic, []Key, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		return nil, nil, false
	}
	return e.diagnostics, e.dependencies, true
}

// Peek returns the cached value for key without recording any dependency
// edge, for read-only inspection (e.g. the LSP server rendering
// already-computed diagnostics). ok is false if the entry is absent,
// pending, or failed.
func (t *Table[V]) Peek(key Key) (V, bool) {
	var zero V
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok || e.state != ready {
		return zero, false
	}
	return e.value, true
}
