package x86

import (
	"lucent/src/inclusion"
	"lucent/src/inference"
	"lucent/src/lower"
	"lucent/src/node"
	"lucent/src/parse"
	"lucent/src/query"
	"lucent/src/source"
	"lucent/src/util"
)

// Tables owns the codegen query table, wired the same way src/lower and
// src/inference wire theirs.
type Tables struct {
	sections *query.Table[*Section]
}

// NewTables creates an empty Tables, registering its table against ctx.
func NewTables(ctx *query.Context) *Tables {
	t := &Tables{sections: query.NewTable[*Section]()}
	query.Register(ctx, SectionKey{}.Kind(), t.sections)
	return t
}

// SectionKey memoizes one function overload's encoded machine code.
type SectionKey struct{ Path node.FPath }

func (k SectionKey) String() string { return "section(" + k.Path.String() + ")" }
func (k SectionKey) Kind() string   { return "x86.Section" }

// Generate runs L-IR -> x86-64 codegen over one function overload,
// memoized by path#overload (spec.md §4.5, grounded on original_source/
// src/generate/x86/lower.rs `lower`). A loaded (body-less) function
// produces an empty Section.
func (t *Tables) Generate(caller *query.Scope, resolver *inclusion.Resolver, tables *parse.Tables,
	infer *inference.Tables, lowered *lower.Tables, cache *source.Cache, rootFile string,
	target util.Target, path node.FPath) (*Section, error) {
	key := SectionKey{Path: path}
	return query.Run(t.sections, caller, key, nil, func(scope *query.Scope) (*Section, error) {
		types, err := infer.Check(scope, resolver, tables, cache, rootFile, target, path)
		if err != nil {
			return nil, err
		}
		fn, err := lowered.Lower(scope, resolver, tables, infer, cache, rootFile, target, path)
		if err != nil {
			return nil, err
		}
		if fn.Body == nil {
			return &Section{}, nil
		}

		scene, ok := NewScene(target, types, fn)
		if !ok {
			scope.Emit(query.NewDiagnostic(query.Error,
				"unable to allocate registers for function "+path.String()+": two free registers required"))
			return nil, query.ErrFailure
		}

		section, ok := Translate(scene, fn, path)
		if !ok {
			return nil, query.ErrFailure
		}
		return section, nil
	})
}
