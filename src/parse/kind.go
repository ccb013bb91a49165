package parse

import "lucent/src/node"

// scalarKinds maps the bare, root-relative type names the grammar accepts
// onto HType, mirroring original_source/src/parse/kind.rs `path_kind`'s
// match arm (`"void"`, `"rune"`, `"truth"`, `"never"`, `"i8".."u64"`) plus
// `isize`/`usize` named in spec.md §3 "IntegralSize(target, Sign)".
var scalarKinds = map[string]node.HType{
	"void":  node.HTVoid{},
	"rune":  node.HTRune{},
	"truth": node.HTTruth{},
	"never": node.HTNever{},
	"i8":    node.HTIntegral{Sign: node.Signed, Width: node.B},
	"i16":   node.HTIntegral{Sign: node.Signed, Width: node.W},
	"i32":   node.HTIntegral{Sign: node.Signed, Width: node.D},
	"i64":   node.HTIntegral{Sign: node.Signed, Width: node.Q},
	"u8":    node.HTIntegral{Sign: node.Unsigned, Width: node.B},
	"u16":   node.HTIntegral{Sign: node.Unsigned, Width: node.W},
	"u32":   node.HTIntegral{Sign: node.Unsigned, Width: node.D},
	"u64":   node.HTIntegral{Sign: node.Unsigned, Width: node.Q},
	"isize": node.HTIntegralSize{Sign: node.Signed},
	"usize": node.HTIntegralSize{Sign: node.Unsigned},
}

// buildType converts a parsed TypeExpr into an HType. Scalar names are
// recognized only as single-segment, root-relative paths (`i32`, not
// `a.i32`); everything else is an unresolved structure reference, resolved
// later against inclusions (original_source/src/parse/kind.rs `path_kind`).
//
// b is the enclosing item's builder: an array type's size expression is an
// HIndex into that same per-item Value arena (spec.md §3 "Array(HType,
// VIndex)"), exactly like HData/HFunction's Values field, so type-building
// can never allocate an arena of its own.
func buildType(b *builder, t *TypeExpr) (node.HType, error) {
	switch {
	case t.Pointer != nil:
		elem, err := buildType(b, t.Pointer)
		if err != nil {
			return nil, err
		}
		return node.HTPointer{Element: elem}, nil
	case t.SliceOf != nil:
		elem, err := buildType(b, t.SliceOf)
		if err != nil {
			return nil, err
		}
		return node.HTSlice{Element: elem}, nil
	case t.ArrayOf != nil:
		elem, err := buildType(b, t.ArrayOf.Element)
		if err != nil {
			return nil, err
		}
		size, err := b.expr(t.ArrayOf.Size)
		if err != nil {
			return nil, err
		}
		return node.HTArray{Element: elem, Size: size}, nil
	case t.Signature != nil:
		sig, err := buildSignature(b, t.Signature)
		if err != nil {
			return nil, err
		}
		return node.HTFunction{Signature: sig}, nil
	case t.Path != nil:
		if len(t.Path.Segments) == 1 {
			if k, ok := scalarKinds[t.Path.Segments[0]]; ok {
				return k, nil
			}
		}
		return node.HTStructure{Path: buildPath(t.Path)}, nil
	default:
		return nil, errf("empty type expression")
	}
}

// buildPath converts a parsed dotted path into an HPath with empty spans;
// item-level spans are attached once the grammar is wired to
// position-capturing lexer tokens.
func buildPath(p *PathExpr) node.HPath {
	segments := make([]node.HSegment, len(p.Segments))
	for i, s := range p.Segments {
		segments[i] = node.HSegment{Name: node.Identifier(s)}
	}
	return node.HPath{Segments: segments}
}

// buildSignature converts a parsed Signature into an HSignature.
func buildSignature(b *builder, s *Signature) (node.HSignature, error) {
	params := make([]node.HType, len(s.Params))
	for i, p := range s.Params {
		t, err := buildType(b, p.Type)
		if err != nil {
			return node.HSignature{}, err
		}
		params[i] = t
	}
	ret := node.HType(node.HTVoid{})
	if s.Return != nil {
		t, err := buildType(b, s.Return)
		if err != nil {
			return node.HSignature{}, err
		}
		ret = t
	}
	return node.HSignature{Parameters: params, Return: ret}, nil
}
