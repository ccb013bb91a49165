package parse

import (
	"lucent/src/node"
	"lucent/src/query"
	"lucent/src/source"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ParsedModule bundles the three outputs of one parse pass over a file: the
// unresolved-name SymbolTable, the resolved-payload ItemTable, and the
// Inclusions stack seeded while walking it. spec.md §4.2 describes
// SymbolTable and ItemTable as separate queries; they are memoized here
// under one key because both come out of a single grammar parse + tree
// walk (original_source/src/parse/parse.rs's top-level entry builds them
// together too) — splitting them into two Table[V] entries would only
// duplicate that walk on every cache miss.
type ParsedModule struct {
	Symbols    *node.SymbolTable
	Items      *node.ItemTable
	Inclusions *node.Inclusions
}

// ParsedKey identifies the parse of one root file (spec.md §4.1 "typed
// key"). Path is the source path as given to source.Cache.
type ParsedKey struct{ Path string }

func (k ParsedKey) String() string { return "parsed(" + k.Path + ")" }
func (k ParsedKey) Kind() string   { return "parse.Parsed" }

// Tables holds the query.Table backing every query this package answers.
type Tables struct {
	Parsed *query.Table[*ParsedModule]
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewTables builds the parse package's tables and registers them with ctx
// so Context.Invalidate/CollectErrors can route keys of kind "parse.Parsed"
// (spec.md §4.1 "one Table per query kind").
func NewTables(ctx *query.Context) *Tables {
	t := &Tables{Parsed: query.NewTable[*ParsedModule]()}
	query.Register(ctx, ParsedKey{}.Kind(), t.Parsed)
	return t
}

// Parse runs (or returns the memoized result of) parsing path as a root
// module, reading its text through cache.
func (t *Tables) Parse(caller *query.Scope, cache *source.Cache, path string) (*ParsedModule, error) {
	key := ParsedKey{Path: path}
	return query.Run(t.Parsed, caller, key, nil, func(scope *query.Scope) (*ParsedModule, error) {
		id, err := cache.Read(path)
		if err != nil {
			d := query.NewDiagnostic(query.Error, err.Error())
			scope.Emit(d)
			return nil, query.ErrFailure
		}
		f, ok := cache.File(id)
		if !ok {
			return nil, errf("source cache missing %q after read", path)
		}

		sym, it, inclusions, err := ParseModule(node.Root, f.Text)
		if err != nil {
			d := query.NewDiagnostic(query.Error, err.Error())
			scope.Emit(d)
			return nil, query.ErrFailure
		}
		return &ParsedModule{Symbols: sym, Items: it, Inclusions: inclusions}, nil
	})
}

// Symbols returns just the SymbolTable half of Parse's result, for callers
// (src/inclusion) that only need name/arity information.
func (t *Tables) Symbols(caller *query.Scope, cache *source.Cache, path string) (*node.SymbolTable, error) {
	m, err := t.Parse(caller, cache, path)
	if err != nil {
		return nil, err
	}
	return m.Symbols, nil
}

// ItemTable returns just the ItemTable half of Parse's result.
func (t *Tables) ItemTable(caller *query.Scope, cache *source.Cache, path string) (*node.ItemTable, error) {
	m, err := t.Parse(caller, cache, path)
	if err != nil {
		return nil, err
	}
	return m.Items, nil
}
