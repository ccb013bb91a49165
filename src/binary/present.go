package binary

import (
	"sort"

	"lucent/src/inference"
	"lucent/src/node"
)

// declared pairs a locally defined function with its resolved path, for
// reachability and addressing to walk without re-resolving overloads.
type declared struct {
	fn *node.HFunction
}

// collectFunctions walks table's module tree and returns every locally
// defined function's path alongside a deterministic visitation order.
// original_source/src/node/address.rs orders symbols by a predecessor
// table built while items are first registered, which this port's
// ItemTable (a set of Go maps) has no equivalent of; sorting identifiers
// lexicographically at each level gives a stable, reproducible order
// instead — see DESIGN.md.
func collectFunctions(table *node.ItemTable, parent node.Path) ([]node.FPath, map[node.FPath]declared) {
	funcs := make(map[node.FPath]declared)
	var order []node.FPath
	walkFunctions(table, parent, &order, funcs)
	return order, funcs
}

func walkFunctions(table *node.ItemTable, parent node.Path, order *[]node.FPath, funcs map[node.FPath]declared) {
	names := make([]string, 0, len(table.Functions))
	for name := range table.Functions {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		overloads := table.Functions[node.Identifier(name)]
		for i, p := range overloads {
			local, ok := p.(node.PFunctionLocal)
			if !ok {
				continue
			}
			path := node.FPath{Path: parent.Child(name), Overload: i}
			funcs[path] = declared{fn: local.Function}
			*order = append(*order, path)
		}
	}

	children := make([]string, 0, len(table.Modules))
	for name := range table.Modules {
		children = append(children, string(name))
	}
	sort.Strings(children)
	for _, name := range children {
		walkFunctions(table.Modules[node.Identifier(name)], parent.Child(name), order, funcs)
	}
}

// presentAll computes the transitive closure of every `is_root` function
// over static call edges (original_source/src/node/present.rs
// `present_all`/`function`, spec.md §4.6 "reachability"). Only HCall
// sites whose overload the type checker recorded are followed: an
// HMethod's receiver is always resolved to an indirect function pointer
// by src/lower (lower/helpers.go `method`), so it can never name a
// statically known callee the way the original's own scope assumes every
// reachable call site does (its `function` panics if a call site resolves
// to anything but a Call node). This port skips every other node instead
// of panicking; only an error from typesOf fails the walk.
func presentAll(order []node.FPath, funcs map[node.FPath]declared, typesOf func(node.FPath) (*inference.Types, error)) (map[node.FPath]bool, error) {
	present := make(map[node.FPath]bool, len(order))
	var visit func(path node.FPath) error
	visit = func(path node.FPath) error {
		if present[path] {
			return nil
		}
		d, ok := funcs[path]
		if !ok {
			return nil
		}
		present[path] = true
		if d.fn.Values == nil {
			return nil
		}
		t, err := typesOf(path)
		if err != nil {
			return err
		}
		for i, n := range d.fn.Values.Nodes {
			call, ok := n.Node.(node.HCall)
			if !ok {
				continue
			}
			overload, ok := t.Functions[node.HIndex(i)]
			if !ok {
				continue
			}
			if err := visit(node.FPath{Path: call.Path.Path(), Overload: overload}); err != nil {
				return err
			}
		}
		return nil
	}
	for _, path := range order {
		if funcs[path].fn != nil && funcs[path].fn.IsRoot {
			if err := visit(path); err != nil {
				return nil, err
			}
		}
	}
	return present, nil
}
