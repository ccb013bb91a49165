package lower

import (
	"lucent/src/node"
	"lucent/src/query"
	"lucent/src/span"
)

// lowerNew lowers a structure literal into a block that stores each
// field into a freshly allocated local, yielding a dereference of that
// local's address (spec.md §3 "structure literal (New)"), grounded on
// original_source/src/lower/node.rs `HNode::New`.
func lowerNew(s *Scene, index node.HIndex, n node.HNew, kind node.RType, sp span.Item, looped bool) (node.LNode, bool) {
	st, ok := kind.(node.RStructure)
	if !ok {
		s.emit(query.NewDiagnostic(query.Error, "new: not a structure type"))
		return nil, false
	}
	offsets, err := s.Offsets.OffsetsOf(s.Scope, s.Resolver, s.Tables, s.Cache, s.RootFile, s.Target, st.Path)
	if err != nil {
		return nil, false
	}
	local := s.local()
	place := node.LPlace{Node: node.LTargetNode{Target: local}}

	units := make([]node.LUnit, 0, len(n.Fields))
	for name, offset := range offsets.Fields {
		field, ok := findField(n.Fields, name)
		if !ok {
			s.emit(query.NewDiagnostic(query.Error, "missing field: "+string(name)))
			return nil, false
		}
		fieldKind, ok := s.kindOf(field)
		if !ok {
			return nil, false
		}
		size, err := Size(s.Scope, s.Offsets, s.Resolver, s.Tables, s.Cache, s.RootFile, s.Target, fieldKind)
		if err != nil {
			return nil, false
		}
		if size == 0 {
			u, ok := Unit(s, field, looped)
			if !ok {
				return nil, false
			}
			units = append(units, u)
			continue
		}
		target := offsetPlace(s, place, offset, sp)
		value, ok := Lower(s, field, looped)
		if !ok {
			return nil, false
		}
		units = append(units, node.LUSet{Place: target, Value: value})
	}
	return node.LBlock{Units: units, Value: node.LDereference{Place: place}}, true
}

// findField returns the value index of the field named name in fields.
func findField(fields []node.HFieldInit, name node.Identifier) (node.HIndex, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// lowerSliceNew lowers a slice literal built from explicit address/size
// fields (spec.md §3 "slice literal (SliceNew)"), grounded on
// original_source/src/lower/node.rs `HNode::SliceNew`.
func lowerSliceNew(s *Scene, index node.HIndex, n node.HSliceNew, kind node.RType, sp span.Item, looped bool) (node.LNode, bool) {
	sl, ok := kind.(node.RSlice)
	if !ok {
		s.emit(query.NewDiagnostic(query.Error, "slice literal: not a slice type"))
		return nil, false
	}
	local := s.local()
	place := node.LPlace{Node: node.LTargetNode{Target: local}}

	address, ok := Lower(s, n.Address, looped)
	if !ok {
		return nil, false
	}
	units := []node.LUnit{node.LUSet{Place: place, Value: address}}

	width := pointerWidth(sl.Target)
	sizeValue, ok := Lower(s, n.Size, looped)
	if !ok {
		return nil, false
	}
	sizePlace := offsetPlace(s, place, width.Bytes(), sp)
	units = append(units, node.LUSet{Place: sizePlace, Value: sizeValue})

	return node.LBlock{Units: units, Value: node.LDereference{Place: place}}, true
}

// lowerSlice lowers a `base[start?:end?]` sub-slice expression (spec.md
// §4.4 "Slice(base, start?, end?)"), grounded on original_source/src/
// lower/node.rs `HNode::Slice`.
func lowerSlice(s *Scene, index node.HIndex, n node.HSlice, kind node.RType, sp span.Item, looped bool) (node.LNode, bool) {
	width := pointerWidth(s.Target)
	baseKind, ok := s.kindOf(n.Base)
	if !ok {
		return nil, false
	}
	basePlace, ok := place(s, n.Base, looped)
	if !ok {
		return nil, false
	}

	var address node.LNode
	var elem node.RType
	var length node.LNode
	switch bk := baseKind.(type) {
	case node.RSlice:
		if !checkTarget(s, bk.Target, sp, "reference slice") {
			return nil, false
		}
		address = node.LDereference{Place: basePlace}
		elem = bk.Element
		if n.End != nil {
			v, ok := Lower(s, *n.End, looped)
			if !ok {
				return nil, false
			}
			length = v
		} else {
			sizePlace := offsetPlace(s, basePlace, width.Bytes(), sp)
			length = node.LDereference{Place: sizePlace}
		}
	case node.RArray:
		address = basePlace.Node
		elem = bk.Element
		if n.End != nil {
			v, ok := Lower(s, *n.End, looped)
			if !ok {
				return nil, false
			}
			length = v
		} else {
			length = node.LIntegral{Value: int64(bk.Size), Width: width}
		}
	default:
		s.emit(query.NewDiagnostic(query.Error, "slice of non-sequenced type"))
		return nil, false
	}

	if n.Start != nil {
		startValue, ok := Lower(s, *n.Start, looped)
		if !ok {
			return nil, false
		}
		elemSize, err := Size(s.Scope, s.Offsets, s.Resolver, s.Tables, s.Cache, s.RootFile, s.Target, elem)
		if err != nil {
			return nil, false
		}
		step := node.LBinary{
			Op: node.OpMul, Sign: node.Unsigned, Width: width,
			Left: node.LIntegral{Value: int64(elemSize), Width: width}, Right: startValue,
		}
		address = node.LBinary{Op: node.OpAdd, Sign: node.Unsigned, Width: width, Left: address, Right: step}
		length = node.LBinary{Op: node.OpMinus, Sign: node.Unsigned, Width: width, Left: length, Right: startValue}
	}

	local := s.local()
	slicePlace := node.LPlace{Node: node.LTargetNode{Target: local}}
	units := []node.LUnit{
		node.LUSet{Place: slicePlace, Value: address},
		node.LUSet{Place: offsetPlace(s, slicePlace, width.Bytes(), sp), Value: length},
	}
	return node.LBlock{Units: units, Value: node.LDereference{Place: slicePlace}}, true
}

// lowerArray lowers an array literal into a block that stores each
// element into a freshly allocated local (spec.md §3, grounded on
// original_source/src/lower/node.rs `HNode::Array`).
func lowerArray(s *Scene, n node.HArray, kind node.RType, sp span.Item, looped bool) (node.LNode, bool) {
	arr, ok := kind.(node.RArray)
	if !ok {
		s.emit(query.NewDiagnostic(query.Error, "array literal: not an array type"))
		return nil, false
	}
	elemSize, err := Size(s.Scope, s.Offsets, s.Resolver, s.Tables, s.Cache, s.RootFile, s.Target, arr.Element)
	if err != nil {
		return nil, false
	}
	local := s.local()
	place := node.LPlace{Node: node.LTargetNode{Target: local}}

	units := make([]node.LUnit, 0, len(n.Elements))
	for i, elem := range n.Elements {
		target := offsetPlace(s, place, elemSize*i, sp)
		value, ok := Lower(s, elem, looped)
		if !ok {
			return nil, false
		}
		units = append(units, node.LUSet{Place: target, Value: value})
	}
	return node.LBlock{Units: units, Value: node.LDereference{Place: place}}, true
}
