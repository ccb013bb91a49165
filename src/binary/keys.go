package binary

import (
	"lucent/src/generate/x86"
	"lucent/src/inclusion"
	"lucent/src/inference"
	"lucent/src/lower"
	"lucent/src/node"
	"lucent/src/parse"
	"lucent/src/query"
	"lucent/src/source"
	"lucent/src/util"
)

// Tables owns the linked-binary query table, wired the same way
// src/generate/x86 wires its Section table.
type Tables struct {
	binaries *query.Table[[]byte]
}

// NewTables creates an empty Tables, registering its table against ctx.
func NewTables(ctx *query.Context) *Tables {
	t := &Tables{binaries: query.NewTable[[]byte]()}
	query.Register(ctx, LinkKey{}.Kind(), t.binaries)
	return t
}

// LinkKey memoizes the whole-program linked executable rooted at Root
// (spec.md §4.6, grounded on original_source/src/binary/mod.rs's single
// whole-unit `compile`/`entry`/`patch` pipeline).
type LinkKey struct{ Root string }

func (k LinkKey) String() string { return "link(" + k.Root + ")" }
func (k LinkKey) Kind() string   { return "binary.Binary" }

// Link runs the full address/reachability/codegen/patch/emit pipeline
// for the program rooted at rootFile and returns the finished Mach-O 64
// executable (spec.md §4.6 steps 1-5).
func (t *Tables) Link(caller *query.Scope, resolver *inclusion.Resolver, tables *parse.Tables,
	infer *inference.Tables, lowered *lower.Tables, gen *x86.Tables, cache *source.Cache,
	rootFile string, target util.Target) ([]byte, error) {
	key := LinkKey{Root: rootFile}
	return query.Run(t.binaries, caller, key, nil, func(scope *query.Scope) ([]byte, error) {
		root, err := tables.ItemTable(scope, cache, rootFile)
		if err != nil {
			return nil, err
		}
		order, funcs := collectFunctions(root, node.Root)

		typesOf := func(path node.FPath) (*inference.Types, error) {
			return infer.Check(scope, resolver, tables, cache, rootFile, target, path)
		}
		present, err := presentAll(order, funcs, typesOf)
		if err != nil {
			return nil, err
		}

		var live []node.FPath
		for _, path := range order {
			if present[path] {
				live = append(live, path)
			}
		}
		if len(live) == 0 {
			scope.Emit(query.NewDiagnostic(query.Error, "no `is_root` function is reachable; nothing to link"))
			return nil, query.ErrFailure
		}

		sections := make(map[node.FPath]*x86.Section, len(live))
		sizes := make(map[node.FPath]SymbolSize, len(live))
		annotated := make(map[node.FPath]Address)
		for _, path := range live {
			section, err := gen.Generate(scope, resolver, tables, infer, lowered, cache, rootFile, target, path)
			if err != nil {
				return nil, err
			}
			sections[path] = section
			sizes[path] = SymbolSize(len(section.Bytes))
			if load, ok := funcs[path].fn.Annotations["load"]; ok {
				annotated[path] = Address(load)
			}
		}

		addresses := addressing(live, sizes, annotated)
		entries := buildEntries(live, addresses, sections)
		if err := patchRelative(entries, addresses); err != nil {
			scope.Emit(query.NewDiagnostic(query.Error, err.Error()))
			return nil, query.ErrFailure
		}

		entryPath := live[0]
		for _, path := range live {
			if funcs[path].fn.IsRoot {
				entryPath = path
				break
			}
		}

		return compileMachO(segments(entries), addresses[entryPath]), nil
	})
}
