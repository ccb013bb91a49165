package query

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ScopeHandle carries the cooperative cancellation flag for one
// compilation request (spec.md §4.1 "Cancellation", §5). Id is purely for
// logging/tracing so concurrent builds (cmd/lucent's errgroup fan-out over
// targets.lucent) can be told apart, grounded on the same need
// funvibe-funxy and sentra-language-sentra use github.com/google/uuid for.
type ScopeHandle struct {
	Id     uuid.UUID
	cancel atomic.Bool
}

// NewScopeHandle returns a fresh, uncancelled handle.
func NewScopeHandle() *ScopeHandle {
	return &ScopeHandle{Id: uuid.New()}
}

// Cancel requests that every provider sharing this handle abort at its
// next query boundary.
func (h *ScopeHandle) Cancel() {
	if h != nil {
		h.cancel.Store(true)
	}
}

// Cancelled reports whether Cancel has been called.
func (h *ScopeHandle) Cancelled() bool {
	return h != nil && h.cancel.Load()
}

// Scope is the per-top-level-request diagnostic/dependency accumulator
// (spec.md Glossary "Scope"). A new Scope is created by Table.Run for every
// key not already memoized; providers receive it and may recurse into
// further queries, each recursive call recording a forward dependency edge
// on this Scope.
type Scope struct {
	ctx          *Context
	handle       *ScopeHandle
	self         Key // the key this Scope is computing; nil for a root request.
	dependencies []Key
	diagnostics  []Diagnostic
}

// RootScope starts a fresh top-level Scope, e.g. one per CLI "build"
// invocation or one per LSP request.
func RootScope(ctx *Context, handle *ScopeHandle) *Scope {
	return &Scope{ctx: ctx, handle: handle}
}

// Context returns the Scope's owning Context, so query providers can reach
// sibling tables.
func (s *Scope) Context() *Context {
	return s.ctx
}

// Cancelled reports whether this Scope's handle has been cancelled.
// Providers should check this at query boundaries and return ErrFailure if
// true (spec.md §4.1 "Cancellation").
func (s *Scope) Cancelled() bool {
	return s.handle.Cancelled()
}

// Emit records a diagnostic against the key currently being computed by
// this Scope. Errors emitted here are "owned by the scope that first
// computed the value" (spec.md §4.1 contract).
func (s *Scope) Emit(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// Self returns the Key this Scope is computing (nil at the root).
func (s *Scope) Self() Key {
	return s.self
}

// recordDependency notes that this Scope's computation queried key.
func (s *Scope) recordDependency(key Key) {
	s.dependencies = append(s.dependencies, key)
}

// Diagnostics returns the diagnostics emitted directly in this Scope (not
// including those of its dependencies).
func (s *Scope) Diagnostics() []Diagnostic {
	return s.diagnostics
}
