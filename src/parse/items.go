package parse

import (
	"lucent/src/node"
	"lucent/src/span"
)

// noItemSpan is a placeholder item-relative span for symbol table entries,
// until the grammar is wired to position-capturing lexer tokens.
var noItemSpan = span.Item{}

// BuildModule converts one module's parsed items into a SymbolTable/
// ItemTable pair in a single combined pass (original_source/src/parse/
// symbol.rs builds the SymbolTable ahead of resolving bodies so overload
// arity is known before any call site needs it; a single straight-line Go
// walk gets the same property for free since SymbolTable entries and
// ItemTable entries are appended together, in source order, before any
// later item's body is built). `@name`/`@name(value)` annotations preceding
// an item are scanned once per item (original_source/src/parse/other.rs):
// `is_root` as a presence flag (node.HFunction.IsRoot) and any
// `@name(literal)` annotation as a raw int constant (node.Annotations),
// consumed by src/binary's addressing step (`@load`/`@virtual`) and
// reachability pass (`is_root`).
func BuildModule(path node.Path, items []*Item, inclusions *node.Inclusions) (*node.SymbolTable, *node.ItemTable, error) {
	sym := node.NewSymbolTable()
	it := node.NewItemTable(&node.HModule{Path: path}, inclusions)

	for _, item := range items {
		switch {
		case item.Global != nil:
			// Recorded by the file-root pass (other.rs `global_annotations`);
			// not a per-module symbol.
		case item.Module != nil:
			if err := buildModuleItem(sym, it, path, inclusions, item.Annotations, item.Module); err != nil {
				return nil, nil, err
			}
		case item.Function != nil:
			if err := buildFunctionItem(sym, it, item.Annotations, item.Function); err != nil {
				return nil, nil, err
			}
		case item.Data != nil:
			if err := buildDataItem(sym, it, path, item.Data); err != nil {
				return nil, nil, err
			}
		case item.Static != nil:
			if err := buildStaticItem(sym, it, item.Annotations, item.Static); err != nil {
				return nil, nil, err
			}
		case item.Load != nil:
			if err := buildLoadItem(sym, it, item.Load); err != nil {
				return nil, nil, err
			}
		case item.Use != nil:
			buildUseItem(inclusions, item.Use)
		}
	}
	return sym, it, nil
}

func hasAnnotation(annotations []*Annotation, name string) bool {
	for _, a := range annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

// annotationValues collects every `@name(value)` annotation whose value is
// a bare integer literal into a node.Annotations map (original_source/src/
// node/address.rs `annotation` reads `@load`/`@virtual` back the same way:
// as a single constant, never a general expression). Annotations with no
// parenthesized value, or whose value isn't a literal int, are skipped —
// `@is_root` and similar presence-only flags are checked via
// hasAnnotation instead.
func annotationValues(annotations []*Annotation) node.Annotations {
	var values node.Annotations
	for _, a := range annotations {
		if a.Value == nil {
			continue
		}
		n, ok := literalInt(a.Value)
		if !ok {
			continue
		}
		if values == nil {
			values = make(node.Annotations)
		}
		values[a.Name] = n
	}
	return values
}

// literalInt extracts a bare integer literal from expr if that is all it
// is: no operators, no parens, just a primary `Int`.
func literalInt(expr *Expr) (int64, bool) {
	or := expr.Or
	if or == nil || len(or.Right) != 0 {
		return 0, false
	}
	and := or.Left
	if and == nil || len(and.Right) != 0 {
		return 0, false
	}
	eq := and.Left
	if eq == nil || len(eq.Right) != 0 {
		return 0, false
	}
	rel := eq.Left
	if rel == nil || len(rel.Right) != 0 {
		return 0, false
	}
	add := rel.Left
	if add == nil || len(add.Right) != 0 {
		return 0, false
	}
	mul := add.Left
	if mul == nil || len(mul.Right) != 0 {
		return 0, false
	}
	unary := mul.Left
	if unary == nil || unary.Op != "" || unary.Postfix == nil {
		return 0, false
	}
	postfix := unary.Postfix
	if len(postfix.Suffix) != 0 || postfix.Primary == nil || postfix.Primary.Int == nil {
		return 0, false
	}
	return *postfix.Primary.Int, true
}

func buildModuleItem(sym *node.SymbolTable, it *node.ItemTable, parent node.Path, inclusions *node.Inclusions, annotations []*Annotation, m *ModuleDecl) error {
	name := node.Identifier(m.Name)
	child := parent.Child(m.Name)

	inclusions.Push(name)
	childSym, childIt, err := BuildModule(child, m.Items, inclusions)
	inclusions.Pop()
	if err != nil {
		return err
	}
	childIt.Module.Annotations = annotationValues(annotations)

	sym.Symbols = append(sym.Symbols, node.SymModuleKey{Name: name})
	sym.Modules[name] = node.ModuleEntry{Location: node.ModuleInline{Table: childSym}}
	it.Modules[name] = childIt
	return nil
}

func buildFunctionItem(sym *node.SymbolTable, it *node.ItemTable, annotations []*Annotation, f *FunctionDecl) error {
	name := node.Identifier(f.Name)
	overload := len(sym.Functions[name])

	params := make([]node.Identifier, len(f.Signature.Params))
	for i, p := range f.Signature.Params {
		params[i] = node.Identifier(p.Name)
	}
	b := newBuilderWithParameters(params)
	sig, err := buildSignature(b, f.Signature)
	if err != nil {
		return err
	}
	body, err := b.expr(f.Value)
	if err != nil {
		return err
	}
	b.value.Root = body

	sym.Symbols = append(sym.Symbols, node.SymFunctionKey{Name: name, Index: overload})
	sym.Functions[name] = append(sym.Functions[name], noItemSpan)

	fn := &node.HFunction{
		Signature:   sig,
		Parameters:  params,
		Body:        body,
		Values:      b.value,
		IsRoot:      hasAnnotation(annotations, "is_root"),
		Annotations: annotationValues(annotations),
	}
	it.Functions[name] = append(it.Functions[name], node.PFunctionLocal{Function: fn})
	return nil
}

func buildDataItem(sym *node.SymbolTable, it *node.ItemTable, parent node.Path, d *DataDecl) error {
	name := node.Identifier(d.Name)
	b := newBuilder()
	fields := make([]node.HStructureField, len(d.Fields))
	for i, f := range d.Fields {
		t, err := buildType(b, f.Type)
		if err != nil {
			return err
		}
		fields[i] = node.HStructureField{Name: node.Identifier(f.Name), Type: t}
	}
	sym.Symbols = append(sym.Symbols, node.SymStructureKey{Name: name})
	sym.Structures[name] = noItemSpan
	it.Structures[name] = &node.HData{Path: parent.Child(d.Name), Fields: fields, Values: b.value}
	return nil
}

func buildStaticItem(sym *node.SymbolTable, it *node.ItemTable, annotations []*Annotation, s *StaticDecl) error {
	name := node.Identifier(s.Name)
	b := newBuilder()
	var t node.HType
	if s.Type != nil {
		var err error
		t, err = buildType(b, s.Type)
		if err != nil {
			return err
		}
	}
	var init *node.HIndex
	if s.Value != nil {
		idx, err := b.expr(s.Value)
		if err != nil {
			return err
		}
		init = &idx
	}
	sym.Symbols = append(sym.Symbols, node.SymStaticKey{Name: name})
	sym.Statics[name] = noItemSpan
	it.Statics[name] = node.PStaticLocal{Static: &node.HStatic{
		Type: t, Init: init, Values: b.value, Annotations: annotationValues(annotations),
	}}
	return nil
}

func buildLoadItem(sym *node.SymbolTable, it *node.ItemTable, l *LoadDecl) error {
	name := node.Identifier(l.Name)
	target := l.Target

	if target.Library != nil && target.Path == nil {
		sym.Symbols = append(sym.Symbols, node.SymLibraryKey{Name: name})
		sym.Libraries[name] = noItemSpan
		it.Libraries[name] = &node.HLibrary{Name: *target.Library}
		return nil
	}

	libPath := buildPath(target.Path).Path()
	b := newBuilder()
	switch {
	case target.AsSig != nil:
		sig, err := buildSignature(b, target.AsSig)
		if err != nil {
			return err
		}
		overload := len(sym.Functions[name])
		sym.Symbols = append(sym.Symbols, node.SymFunctionKey{Name: name, Index: overload})
		sym.Functions[name] = append(sym.Functions[name], noItemSpan)
		it.Functions[name] = append(it.Functions[name], node.PFunctionLoad{
			Function: &node.HLoadFunction{Signature: sig, Library: &libPath},
		})
		return nil
	case target.AsStatic != nil:
		t, err := buildType(b, target.AsStatic)
		if err != nil {
			return err
		}
		sym.Symbols = append(sym.Symbols, node.SymStaticKey{Name: name})
		sym.Statics[name] = noItemSpan
		it.Statics[name] = node.PStaticLoad{Static: &node.HLoadStatic{Type: t, Library: &libPath}}
		return nil
	default:
		return errf("load %q: neither a function nor static form", l.Name)
	}
}

// buildUseItem records one `use` item against the innermost inclusion
// frame (original_source/src/parse/resolve.rs); a conflicting specific
// import is silently dropped here since this pass has no query Scope to
// emit a Diagnostic against. The first import under that name stays in
// effect and the conflict is not reported anywhere.
func buildUseItem(inclusions *node.Inclusions, u *UseDecl) {
	target := buildPath(u.Path).Path()
	if u.Wildcard {
		inclusions.Wildcard(target)
		return
	}
	name := node.Identifier(u.Path.Segments[len(u.Path.Segments)-1])
	if u.As != nil {
		name = node.Identifier(*u.As)
	}
	_ = inclusions.Specific(name, noItemSpan, target)
}
