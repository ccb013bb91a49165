package lower

import (
	"lucent/src/inclusion"
	"lucent/src/inference"
	"lucent/src/node"
	"lucent/src/parse"
	"lucent/src/query"
	"lucent/src/source"
	"lucent/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Function is the lowered form of one function overload's body, ready
// for src/generate/x86 to emit (spec.md §4.5's input).
type Function struct {
	Body       node.LUnit
	Parameters []node.LTarget
	Locals     []node.LTarget // every synthetic/source local Lower allocated; the order is not defined.
}

// LoweredKey memoizes one function overload's lowered body, keyed the
// same way inference.TypesKey is.
type LoweredKey struct{ Path node.FPath }

func (k LoweredKey) String() string { return "lowered(" + k.Path.String() + ")" }
func (k LoweredKey) Kind() string   { return "lower.Function" }

// ---------------------
// ----- Functions -----
// ---------------------

// Lower runs H-IR -> L-IR lowering over one function overload's
// already-checked body, memoized by path#overload (spec.md §4.4,
// grounded on original_source/src/lower/node.rs|unit.rs entry points).
// A loaded (`load`-declared) function has no body and lowers to an empty
// Function immediately.
func (t *Tables) Lower(caller *query.Scope, resolver *inclusion.Resolver, tables *parse.Tables,
	infer *inference.Tables, cache *source.Cache, rootFile string, target util.Target,
	path node.FPath) (*Function, error) {
	key := LoweredKey{Path: path}
	return query.Run(t.functionsOnce(caller.Context()), caller, key, nil, func(scope *query.Scope) (*Function, error) {
		types, err := infer.Check(scope, resolver, tables, cache, rootFile, target, path)
		if err != nil {
			return nil, err
		}

		parent, name, ok := splitLast(path.Path)
		if !ok {
			return nil, errf("empty function path")
		}
		root, err := tables.ItemTable(scope, cache, rootFile)
		if err != nil {
			return nil, err
		}
		table := root
		for _, seg := range parent.Segments() {
			next, ok := table.Modules[node.Identifier(seg)]
			if !ok {
				return nil, errf("unknown module in path %q", path.String())
			}
			table = next
		}
		overloads, ok := table.Functions[name]
		if !ok || path.Overload >= len(overloads) {
			return nil, errf("unknown function %q", path.String())
		}
		local, isLocal := overloads[path.Overload].(node.PFunctionLocal)
		if !isLocal {
			return &Function{}, nil
		}
		fn := local.Function

		scene := NewScene(scope, resolver, tables, t, cache, rootFile, table.Inclusions,
			parent, target, fn.Values, types)

		params := make([]node.LTarget, 0, len(fn.Parameters))
		for _, p := range fn.Parameters {
			params = append(params, scene.target(node.Variable{Name: p, Generation: 0}))
		}

		body, ok := Unit(scene, fn.Body, false)
		if !ok {
			return nil, query.ErrFailure
		}

		locals := make([]node.LTarget, 0, len(scene.targets))
		for _, lt := range scene.targets {
			locals = append(locals, lt)
		}
		return &Function{Body: body, Parameters: params, Locals: locals}, nil
	})
}

// functionsOnce lazily creates (and remembers) the Function table the
// first time Lower is called against ctx, so callers that only ever use
// the Offsets query through NewTables never pay for a second
// registration.
func (t *Tables) functionsOnce(ctx *query.Context) *query.Table[*Function] {
	if t.functions == nil {
		t.functions = query.NewTable[*Function]()
		query.Register(ctx, LoweredKey{}.Kind(), t.functions)
	}
	return t.functions
}
