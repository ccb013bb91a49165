package inference

import (
	"lucent/src/inclusion"
	"lucent/src/node"
	"lucent/src/parse"
	"lucent/src/query"
	"lucent/src/source"
	"lucent/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// TypesKey memoizes one function overload's checked Types (spec.md §4.3,
// §4.2 "query kinds"), keyed by the FPath the overload resolver in
// synthesize.go/check.go already produces for every call site.
type TypesKey struct{ Path node.FPath }

func (k TypesKey) String() string { return "types(" + k.Path.String() + ")" }
func (k TypesKey) Kind() string   { return "inference.Types" }

// Tables owns the Types query table.
type Tables struct {
	Checked *query.Table[*Types]
}

// NewTables registers a fresh Types table against ctx.
func NewTables(ctx *query.Context) *Tables {
	t := &Tables{Checked: query.NewTable[*Types]()}
	query.Register(ctx, TypesKey{}.Kind(), t.Checked)
	return t
}

// ---------------------
// ----- Functions -----
// ---------------------

// Check runs the bidirectional type checker over one function overload's
// body, memoized by path#overload. A loaded (`load`-declared) function has
// no body and checks to an empty Types immediately.
func (t *Tables) Check(caller *query.Scope, resolver *inclusion.Resolver, tables *parse.Tables,
	cache *source.Cache, rootFile string, target util.Target, path node.FPath) (*Types, error) {
	key := TypesKey{Path: path}
	return query.Run(t.Checked, caller, key, nil, func(scope *query.Scope) (*Types, error) {
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
				return nil, errf("unknown module in path %q", path.Path.String())
			}
			table = next
		}
		overloads, ok := table.Functions[name]
		if !ok || path.Overload >= len(overloads) {
			return nil, errf("unknown function %q", path.String())
		}
		local, isLocal := overloads[path.Overload].(node.PFunctionLocal)
		if !isLocal {
			return NewTypes(), nil
		}
		fn := local.Function

		scene := NewScene(scope, resolver, tables, cache, rootFile, table.Inclusions,
			parent, target, fn.Values, nil)
		ret, ok := scene.lift(fn.Signature.Return)
		if !ok {
			return scene.Types, query.ErrFailure
		}
		scene.ReturnType = ret

		for i, param := range fn.Parameters {
			if i >= len(fn.Signature.Parameters) {
				break
			}
			kind, ok := scene.lift(fn.Signature.Parameters[i])
			if !ok {
				return scene.Types, query.ErrFailure
			}
			scene.Types.Variables[node.Variable{Name: param, Generation: 0}] = kind
		}

		rewritePaths(scene)
		Check(scene, fn.Body, node.Raise(ret))
		return scene.Types, nil
	})
}
