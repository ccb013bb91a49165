package inference

import "lucent/src/node"

// ----------------------------
// ----- Functions -----
// ----------------------------

// itemTableAt descends from the program's root ItemTable to the one
// declared at path, the ItemTable analogue of inclusion.Resolver's
// unexported tableAt — modules are already fully nested as *ItemTable
// values (unlike SymbolTable's ModuleInline/ModuleExternal split), so no
// query re-entry is needed past the initial Parse.
func (s *Scene) itemTableAt(path node.Path) (*node.ItemTable, bool, error) {
	table, err := s.Tables.ItemTable(s.Scope, s.Cache, s.RootFile)
	if err != nil {
		return nil, false, err
	}
	for _, seg := range path.Segments() {
		next, ok := table.Modules[node.Identifier(seg)]
		if !ok {
			return nil, false, nil
		}
		table = next
	}
	return table, true, nil
}

// splitLast splits path into its parent path and final segment.
func splitLast(path node.Path) (node.Path, node.Identifier, bool) {
	segments := path.Segments()
	if len(segments) == 0 {
		return node.Path{}, "", false
	}
	return node.NewPath(segments[:len(segments)-1]...), node.Identifier(segments[len(segments)-1]), true
}

// signatures returns every overload declared for the function at path, in
// declaration order, lifted to resolved Signatures (original_source/src/
// inference/synthesize.rs `HNode::Call`/`HNode::Function`, which both fetch
// "all signatures with matching name").
func (s *Scene) signatures(path node.Path) ([]*node.Signature, bool) {
	parent, name, ok := splitLast(path)
	if !ok {
		return nil, false
	}
	table, found, err := s.itemTableAt(parent)
	if err != nil || !found {
		return nil, false
	}
	overloads, ok := table.Functions[name]
	if !ok {
		return nil, false
	}
	out := make([]*node.Signature, 0, len(overloads))
	for _, p := range overloads {
		sig, ok := s.liftSignature(p.Signature())
		if !ok {
			return nil, false
		}
		out = append(out, sig)
	}
	return out, true
}

// staticType returns the resolved type of the static declared at path.
// Only explicitly-annotated statics are supported; one with only an
// initializer (no `: Type`) would need recursing into another item's own
// Scene to synthesize it, which a future pass over cross-item static
// inference should add.
func (s *Scene) staticType(path node.Path) (node.RType, bool) {
	parent, name, ok := splitLast(path)
	if !ok {
		return nil, false
	}
	table, found, err := s.itemTableAt(parent)
	if err != nil || !found {
		return nil, false
	}
	entry, ok := table.Statics[name]
	if !ok {
		return nil, false
	}
	switch st := entry.(type) {
	case node.PStaticLocal:
		if st.Static.Type == nil {
			return s.unknown()
		}
		return s.lift(st.Static.Type)
	case node.PStaticLoad:
		return s.lift(st.Static.Type)
	default:
		return nil, false
	}
}

// structure returns the structure declaration at path.
func (s *Scene) structure(path node.Path) (*node.HData, bool) {
	parent, name, ok := splitLast(path)
	if !ok {
		return nil, false
	}
	table, found, err := s.itemTableAt(parent)
	if err != nil || !found {
		return nil, false
	}
	data, ok := table.Structures[name]
	return data, ok
}
