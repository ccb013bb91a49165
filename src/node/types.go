package node

import "lucent/src/util"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Sign distinguishes signed/unsigned integral types.
type Sign int

// Sign values.
const (
	Signed Sign = iota
	Unsigned
)

func (s Sign) String() string {
	if s == Signed {
		return "signed"
	}
	return "unsigned"
}

// Width is the byte width of a fixed-size integral (spec.md §3 "Width ∈
// {B,W,D,Q}").
type Width int

// Width values and their byte sizes.
const (
	B Width = 1
	W Width = 2
	D Width = 4
	Q Width = 8
)

// Bytes returns the width in bytes.
func (w Width) Bytes() int { return int(w) }

// HType is the parsed, not-yet-resolved type language (spec.md §3
// "Types (H and R)"). Structure/Array carry unresolved paths/value
// indices; resolution turns an HType into an RType.
type HType interface {
	isHType()
}

// HTVoid is the parsed `void` type.
type HTVoid struct{}

// HTNever is the parsed `never` type (spec.md §3 "Types (H and R)").
type HTNever struct{}

// HTRune is the parsed `rune` type.
type HTRune struct{}

// HTTruth is the parsed `truth` (boolean) type.
type HTTruth struct{}

// HTIntegral is a parsed fixed-width integral type, e.g. `i32`/`u8`.
type HTIntegral struct {
	Sign  Sign
	Width Width
}

// HTIntegralSize is a parsed pointer-width integral, e.g. `isize`/`usize`.
type HTIntegralSize struct {
	Sign Sign
}

// HTPointer is a parsed `*T` pointer type.
type HTPointer struct{ Element HType }

// HTSlice is a parsed `[]T` slice type.
type HTSlice struct{ Element HType }

// HTArray is a parsed `[T; n]` array type; Size is the HIndex of the
// compile-time-evaluated size expression within the enclosing Value
// (spec.md §3 "Array(HType, VIndex)").
type HTArray struct {
	Element HType
	Size    HIndex
}

// HTStructure is a parsed, not-yet-resolved structure reference.
type HTStructure struct{ Path HPath }

// HTFunction is a parsed function-pointer type.
type HTFunction struct{ Signature HSignature }

func (HTVoid) isHType()         {}
func (HTNever) isHType()        {}
func (HTRune) isHType()         {}
func (HTTruth) isHType()        {}
func (HTIntegral) isHType()     {}
func (HTIntegralSize) isHType() {}
func (HTPointer) isHType()      {}
func (HTSlice) isHType()        {}
func (HTArray) isHType()        {}
func (HTStructure) isHType()    {}
func (HTFunction) isHType()     {}

// HSignature is the parsed form of Signature: a function's parameter/
// return types plus optional target/convention annotations, before the
// target architecture has been nailed down.
type HSignature struct {
	Convention *Identifier
	Parameters []HType
	Return     HType
}

// RType is the resolved type language (spec.md §3 "Types (H and R)").
// `Never` unifies with every RType (spec.md §4.3 "Unification").
type RType interface {
	isRType()
	String() string
}

// RVoid is the resolved `void` type; has zero layout size.
type RVoid struct{}

// RNever is the resolved type of a node that never returns (e.g. the
// value of a `return` expression). Propagates: unifies with anything.
type RNever struct{}

// RRune is the resolved `rune` type (stored as an unsigned 32-bit value).
type RRune struct{}

// RTruth is the resolved boolean type.
type RTruth struct{}

// RIntegral is a resolved fixed-width integral.
type RIntegral struct {
	Sign  Sign
	Width Width
}

// RIntegralSize is a resolved pointer-width integral; Target determines
// its concrete width (spec.md §3 "IntegralSize(target, Sign)").
type RIntegralSize struct {
	Target util.Target
	Sign   Sign
}

// RPointer is a resolved pointer type; its own size is Target's pointer
// width (spec.md §4.4 "Layout").
type RPointer struct {
	Target  util.Target
	Element RType
}

// RSlice is a resolved slice type: an (address, size) pair, each
// pointer-width (spec.md §4.4 "Layout": "size for ... Slice is
// 2 * pointer_width").
type RSlice struct {
	Target  util.Target
	Element RType
}

// RArray is a resolved fixed-length array type.
type RArray struct {
	Element RType
	Size    int
}

// RStructure is a resolved reference to a declared structure.
type RStructure struct{ Path Path }

// RFunction is a resolved function-pointer type.
type RFunction struct{ Signature *Signature }

func (RVoid) isRType()         {}
func (RNever) isRType()        {}
func (RRune) isRType()         {}
func (RTruth) isRType()        {}
func (RIntegral) isRType()     {}
func (RIntegralSize) isRType() {}
func (RPointer) isRType()      {}
func (RSlice) isRType()        {}
func (RArray) isRType()        {}
func (RStructure) isRType()    {}
func (RFunction) isRType()     {}

func (RVoid) String() string  { return "void" }
func (RNever) String() string { return "never" }
func (RRune) String() string  { return "rune" }
func (RTruth) String() string { return "truth" }
func (t RIntegral) String() string {
	prefix := "i"
	if t.Sign == Unsigned {
		prefix = "u"
	}
	return prefix + itoa(t.Width.Bytes()*8)
}
func (t RIntegralSize) String() string {
	if t.Sign == Unsigned {
		return "usize"
	}
	return "isize"
}
func (t RPointer) String() string { return "*" + t.Element.String() }
func (t RSlice) String() string   { return "[]" + t.Element.String() }
func (t RArray) String() string   { return "[" + t.Element.String() + "; " + itoa(t.Size) + "]" }
func (t RStructure) String() string {
	return t.Path.String()
}
func (t RFunction) String() string {
	if t.Signature == nil {
		return "fn(?)"
	}
	return t.Signature.String()
}

// Signature is a resolved function type (spec.md §3 "Signature").
type Signature struct {
	Target     *util.Target
	Convention *Identifier
	Parameters []RType
	Return     RType
}

// String renders "fn(p0, p1) -> r".
func (s Signature) String() string {
	out := "fn("
	for i, p := range s.Parameters {
		if i > 0 {
			out += ", "
		}
		out += p.String()
	}
	return out + ") -> " + s.Return.String()
}

// ---------------------
// ----- Functions -----
// ---------------------

// Unify implements spec.md §4.3 "Unification": structural on
// constructors, with Never unifying with anything and IntegralSize
// requiring an identical target and sign.
func Unify(a, b RType) bool {
	if _, ok := a.(RNever); ok {
		return true
	}
	if _, ok := b.(RNever); ok {
		return true
	}
	switch a := a.(type) {
	case RVoid:
		_, ok := b.(RVoid)
		return ok
	case RRune:
		_, ok := b.(RRune)
		return ok
	case RTruth:
		_, ok := b.(RTruth)
		return ok
	case RIntegral:
		o, ok := b.(RIntegral)
		return ok && a.Sign == o.Sign && a.Width == o.Width
	case RIntegralSize:
		o, ok := b.(RIntegralSize)
		return ok && a.Target == o.Target && a.Sign == o.Sign
	case RPointer:
		o, ok := b.(RPointer)
		return ok && a.Target == o.Target && Unify(a.Element, o.Element)
	case RSlice:
		o, ok := b.(RSlice)
		return ok && a.Target == o.Target && Unify(a.Element, o.Element)
	case RArray:
		o, ok := b.(RArray)
		return ok && a.Size == o.Size && Unify(a.Element, o.Element)
	case RStructure:
		o, ok := b.(RStructure)
		return ok && a.Path == o.Path
	case RFunction:
		o, ok := b.(RFunction)
		return ok && unifySignature(a.Signature, o.Signature)
	default:
		return false
	}
}

// unifySignature requires identical convention, identical return type,
// identical arity, and pairwise parameter unification (spec.md §4.3).
func unifySignature(a, b *Signature) bool {
	if a == nil || b == nil {
		return a == b
	}
	if (a.Convention == nil) != (b.Convention == nil) {
		return false
	}
	if a.Convention != nil && *a.Convention != *b.Convention {
		return false
	}
	if len(a.Parameters) != len(b.Parameters) {
		return false
	}
	if !Unify(a.Return, b.Return) {
		return false
	}
	for i := range a.Parameters {
		if !Unify(a.Parameters[i], b.Parameters[i]) {
			return false
		}
	}
	return true
}

// IType is the expected-type language used by the bidirectional checker
// (spec.md §4.3 "IType"): a concrete resolved type, a sequence shape that
// matches both arrays and slices, or "any pointer-sized integer".
type IType interface {
	isIType()
}

// ITypeOf is a concrete expected RType.
type ITypeOf struct{ Type RType }

// ISequence matches an array or a slice of Element.
type ISequence struct {
	Target  util.Target
	Element RType
}

// IIntegralSize matches any pointer-sized integer, independent of sign.
type IIntegralSize struct{}

func (ITypeOf) isIType()       {}
func (ISequence) isIType()     {}
func (IIntegralSize) isIType() {}

// Raise lifts a concrete RType into the expected-type language.
func Raise(t RType) IType { return ITypeOf{Type: t} }
