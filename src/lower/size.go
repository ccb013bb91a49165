package lower

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

// Offsets is the layout of one structure path (spec.md §4.4 "Layout"),
// grounded on original_source/src/lower/size.rs `Offsets`: every field's
// byte offset plus the structure's total size, fields laid out
// sequentially with no padding (spec.md explicit non-goal).
type Offsets struct {
	Fields map[node.Identifier]int
	Size   int
}

// OffsetsKey memoizes one structure path's Offsets through the query
// engine (spec.md §4.4 "offsets(path) is memoized the same way every
// other query is").
type OffsetsKey struct{ Path node.Path }

func (k OffsetsKey) String() string { return "offsets(" + k.Path.String() + ")" }
func (k OffsetsKey) Kind() string   { return "lower.Offsets" }

// Tables owns the Offsets and lowered-function query tables.
type Tables struct {
	Offsets   *query.Table[*Offsets]
	functions *query.Table[*Function]
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewTables registers a fresh Offsets table against ctx.
func NewTables(ctx *query.Context) *Tables {
	t := &Tables{Offsets: query.NewTable[*Offsets]()}
	query.Register(ctx, OffsetsKey{}.Kind(), t.Offsets)
	return t
}

// OffsetsOf returns the memoized layout of the structure declared at
// path, computing it on first demand (original_source/src/lower/size.rs
// `offsets`).
func (t *Tables) OffsetsOf(caller *query.Scope, resolver *inclusion.Resolver, tables *parse.Tables,
	cache *source.Cache, rootFile string, target util.Target, path node.Path) (*Offsets, error) {
	key := OffsetsKey{Path: path}
	return query.Run(t.Offsets, caller, key, nil, func(scope *query.Scope) (*Offsets, error) {
		parent, name, ok := splitLast(path)
		if !ok {
			return nil, errf("empty structure path")
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
		data, ok := table.Structures[name]
		if !ok {
			return nil, errf("unknown structure %q", path.String())
		}

		fields := make(map[node.Identifier]int, len(data.Fields))
		total := 0
		for _, f := range data.Fields {
			kind, ok := liftType(scope, resolver, table.Inclusions, target, data.Values, f.Type)
			if !ok {
				return nil, query.ErrFailure
			}
			size, err := Size(scope, t, resolver, tables, cache, rootFile, target, kind)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = total
			total += size
		}
		return &Offsets{Fields: fields, Size: total}, nil
	})
}

// Size computes the layout size in bytes of a resolved type (spec.md
// §4.4 "Layout": size(RType) rules), grounded on original_source/src/
// lower/size.rs `size`. A Structure recurses into OffsetsOf; every other
// case is a direct width computation.
func Size(scope *query.Scope, t *Tables, resolver *inclusion.Resolver, tables *parse.Tables,
	cache *source.Cache, rootFile string, target util.Target, kind node.RType) (int, error) {
	switch k := kind.(type) {
	case node.RVoid:
		return 0, nil
	case node.RNever:
		return 0, nil
	case node.RRune:
		return node.D.Bytes(), nil
	case node.RTruth:
		return node.B.Bytes(), nil
	case node.RIntegral:
		return k.Width.Bytes(), nil
	case node.RIntegralSize:
		return pointerWidth(k.Target).Bytes(), nil
	case node.RPointer:
		return pointerWidth(k.Target).Bytes(), nil
	case node.RSlice:
		return 2 * pointerWidth(k.Target).Bytes(), nil
	case node.RArray:
		elem, err := Size(scope, t, resolver, tables, cache, rootFile, target, k.Element)
		if err != nil {
			return 0, err
		}
		return elem * k.Size, nil
	case node.RStructure:
		offsets, err := t.OffsetsOf(scope, resolver, tables, cache, rootFile, target, k.Path)
		if err != nil {
			return 0, err
		}
		return offsets.Size, nil
	case node.RFunction:
		tgt := target
		if k.Signature != nil && k.Signature.Target != nil {
			tgt = *k.Signature.Target
		}
		return pointerWidth(tgt).Bytes(), nil
	default:
		return 0, errf("size: unrecognized type %T", kind)
	}
}

// pointerWidth returns the pointer-width Width for target (spec.md §3
// "Target" pointer widths: 16/32/64-bit modes give a 2/4/8-byte pointer).
func pointerWidth(target util.Target) node.Width {
	switch target.Bits() {
	case 16:
		return node.W
	case 32:
		return node.D
	default:
		return node.Q
	}
}

// liftType is a trimmed standalone analogue of inference.Scene.lift, used
// only by OffsetsOf to resolve a structure field's HType without needing
// a full inference.Scene (lowering runs after inference has already
// finished, so it has no per-node IType-expectation machinery to thread
// through). values supplies the structure's own Value arena, needed to
// evaluate an HTArray's literal size expression.
func liftType(scope *query.Scope, resolver *inclusion.Resolver, inclusions *node.Inclusions,
	target util.Target, values *node.Value, t node.HType) (node.RType, bool) {
	switch t := t.(type) {
	case node.HTVoid:
		return node.RVoid{}, true
	case node.HTNever:
		return node.RNever{}, true
	case node.HTRune:
		return node.RRune{}, true
	case node.HTTruth:
		return node.RTruth{}, true
	case node.HTIntegral:
		return node.RIntegral{Sign: t.Sign, Width: t.Width}, true
	case node.HTIntegralSize:
		return node.RIntegralSize{Target: target, Sign: t.Sign}, true
	case node.HTPointer:
		elem, ok := liftType(scope, resolver, inclusions, target, values, t.Element)
		if !ok {
			return nil, false
		}
		return node.RPointer{Target: target, Element: elem}, true
	case node.HTSlice:
		elem, ok := liftType(scope, resolver, inclusions, target, values, t.Element)
		if !ok {
			return nil, false
		}
		return node.RSlice{Target: target, Element: elem}, true
	case node.HTArray:
		elem, ok := liftType(scope, resolver, inclusions, target, values, t.Element)
		if !ok || values == nil {
			return nil, false
		}
		lit, ok := values.At(t.Size).(node.HIntegral)
		if !ok {
			return nil, false
		}
		return node.RArray{Element: elem, Size: int(lit.Value)}, true
	case node.HTStructure:
		p, ok, err := resolver.Structure(scope, inclusions, t.Path.Path())
		if err != nil || !ok {
			return nil, false
		}
		return node.RStructure{Path: p}, true
	case node.HTFunction:
		params := make([]node.RType, len(t.Signature.Parameters))
		for i, p := range t.Signature.Parameters {
			kind, ok := liftType(scope, resolver, inclusions, target, values, p)
			if !ok {
				return nil, false
			}
			params[i] = kind
		}
		ret, ok := liftType(scope, resolver, inclusions, target, values, t.Signature.Return)
		if !ok {
			return nil, false
		}
		sigTarget := target
		return node.RFunction{Signature: &node.Signature{
			Target: &sigTarget, Convention: t.Signature.Convention, Parameters: params, Return: ret,
		}}, true
	default:
		return nil, false
	}
}

// splitLast splits path into its parent path and its final segment.
func splitLast(path node.Path) (parent node.Path, name node.Identifier, ok bool) {
	segments := path.Segments()
	if len(segments) == 0 {
		return node.Path{}, "", false
	}
	return node.NewPath(segments[:len(segments)-1]...), node.Identifier(segments[len(segments)-1]), true
}
