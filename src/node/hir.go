package node

import "lucent/src/span"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// HIndex is an append-only index into a Value's node arena (spec.md §3
// "Value graph (H-IR)", §9 "Arena + index"). It is never invalidated: the
// arena is immutable after parse.
type HIndex int

// Value is a per-item arena of spanned H-IR nodes (spec.md §3): `{ root:
// HIndex, nodes: Vec<S<HNode>> }`.
type Value struct {
	Root  HIndex
	Nodes []span.S[HNode]
}

// At returns the node at index; callers may rely on the arena invariant
// (spec.md §8 property 1) that every HIndex produced by the parser is
// defined.
func (v *Value) At(index HIndex) HNode {
	return v.Nodes[index].Node
}

// Span returns the item-relative span of the node at index.
func (v *Value) Span(index HIndex) span.Item {
	return v.Nodes[index].Span
}

// Push appends a new node to the arena and returns its index.
func (v *Value) Push(n HNode, s span.Item) HIndex {
	v.Nodes = append(v.Nodes, span.New(n, s))
	return HIndex(len(v.Nodes) - 1)
}

// Replace overwrites the node at index in place, keeping its original
// span. Used by inference's path-rewrite pass to turn a resolved
// HPathRef into the HFunctionRef/HStaticRef/HUnresolved it named, without
// disturbing any other index that already points at it.
func (v *Value) Replace(index HIndex, n HNode) {
	v.Nodes[index].Node = n
}

// HNode is one H-IR node kind (spec.md §3 "Value graph (H-IR)"). Concrete
// cases are listed below; every node that can fail to resolve during
// parsing carries an Unresolved/Error escape (HUnresolved/HError) so type
// checking can proceed partially (spec.md §3 invariants).
type HNode interface {
	isHNode()
}

// HBlock is a (possibly empty) sequence of nodes; the last is the block's
// value.
type HBlock struct{ Nodes []HIndex }

// HLet declares a variable, optionally with an initializer and/or an
// explicit type annotation.
type HLet struct {
	Variable Variable
	Type     HType // nil if omitted
	Init     *HIndex
}

// HSet assigns Value to the place evaluated by Place.
type HSet struct {
	Place HIndex
	Value HIndex
}

// HWhile is a condition-guarded loop.
type HWhile struct {
	Condition HIndex
	Body      HIndex
}

// HWhenBranch is one arm of an n-ary conditional.
type HWhenBranch struct {
	Condition HIndex
	Body      HIndex
}

// HWhen is an n-ary conditional (spec.md §3 "when (n-ary conditional)").
type HWhen struct{ Branches []HWhenBranch }

// HCast casts Node to Target; Target may be nil, meaning the cast target
// is supplied entirely by the surrounding expected type.
type HCast struct {
	Node   HIndex
	Target HType
}

// HReturn returns Value (nil for a bare `return;`) from the enclosing
// function.
type HReturn struct{ Value *HIndex }

// HCompile evaluates a nested Value at compile time (spec.md §3
// "compile (compile-time-evaluated nested value)"). Value indexes into the
// item's table of nested compile-time values.
type HCompile struct{ Value int }

// HInline evaluates a nested Value inline at its call site.
type HInline struct{ Value int }

// HCall invokes the function at Path with Args (spec.md §3
// "call (by path)").
type HCall struct {
	Path HPath
	Args []HIndex
}

// HMethod invokes a receiver-bearing call (spec.md §3
// "method (receiver-bearing call)").
type HMethod struct {
	Receiver HIndex
	Name     Identifier
	Args     []HIndex
}

// HField accesses a named field of Base.
type HField struct {
	Base HIndex
	Name Identifier
}

// HFieldInit is one field initializer inside an HNew.
type HFieldInit struct {
	Name  Identifier
	Value HIndex
}

// HNew is a structure literal (spec.md §3 "structure literal (New)").
type HNew struct {
	Path   HPath
	Fields []HFieldInit
}

// HSliceNew is a slice literal built from an explicit address and size
// (spec.md §3 "slice literal (SliceNew)").
type HSliceNew struct {
	Element HType
	Address HIndex
	Size    HIndex
}

// HSlice takes a sub-slice of Base between optional Start/End bounds
// (spec.md §4.4 "Slice(base, start?, end?)").
type HSlice struct {
	Base  HIndex
	Start *HIndex
	End   *HIndex
}

// HIndexOf indexes Base at Index.
type HIndexOf struct {
	Base  HIndex
	Index HIndex
}

// CompoundOp is the operator of a compound assignment (`+=` etc).
type CompoundOp int

// CompoundOp values.
const (
	CompoundAdd CompoundOp = iota
	CompoundMinus
	CompoundMul
	CompoundDiv
	CompoundMod
	CompoundOr
	CompoundAnd
	CompoundXor
	CompoundShl
	CompoundShr
)

// HCompound is a compound assignment, e.g. `place += value`.
type HCompound struct {
	Op    CompoundOp
	Place HIndex
	Value HIndex
}

// BinaryOp is the operator of an HBinary node.
type BinaryOp int

// BinaryOp values (spec.md §4.3 "Binary").
const (
	OpAnd BinaryOp = iota
	OpOr
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAdd
	OpMinus
	OpMul
	OpDiv
	OpMod
	OpBitOr
	OpBitAnd
	OpBitXor
	OpShl
	OpShr
)

// IsRelational reports whether op is one of the ordering comparisons.
func (op BinaryOp) IsRelational() bool {
	switch op {
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	default:
		return false
	}
}

// HBinary is a binary expression.
type HBinary struct {
	Op    BinaryOp
	Left  HIndex
	Right HIndex
}

// UnaryOp is the operator of an HUnary node (spec.md §4.3 "Unary").
type UnaryOp int

// UnaryOp values.
const (
	OpReference UnaryOp = iota
	OpDereference
	OpNot
	OpNegate
)

// HUnary is a unary expression.
type HUnary struct {
	Op   UnaryOp
	Node HIndex
}

// HVariable reads a local variable.
type HVariable struct{ Variable Variable }

// HFunctionRef references a function by path, to be resolved to an
// overload by the type checker (spec.md §4.3 "Function node").
type HFunctionRef struct{ Path HPath }

// HStaticRef references a static by path.
type HStaticRef struct{ Path HPath }

// HPathRef is a bare dotted path the parser could not resolve against the
// local variable frames in scope (original_source/src/parse/value.rs
// `paths`' non-variable branch resolves this immediately against
// Inclusions; src/parse defers that to keep the package free of a
// dependency on the query engine). src/inference rewrites every HPathRef
// it encounters into HFunctionRef, HStaticRef, or HUnresolved once
// Inclusions are available.
type HPathRef struct{ Path HPath }

// HString is a string literal.
type HString struct{ Value string }

// HArray is an array literal.
type HArray struct{ Elements []HIndex }

// HRegister names an explicit physical register, pinning a parameter or
// local to it (spec.md §4.5 "Registers").
type HRegister struct{ Name Identifier }

// HIntegral is an integer literal, kept as an int64 until typing gives it
// a target integral width (spec.md §3 "Integral").
type HIntegral struct{ Value int64 }

// HTruth is a boolean literal.
type HTruth struct{ Value bool }

// HRune is a rune literal.
type HRune struct{ Value rune }

// HBreak exits the nearest enclosing loop.
type HBreak struct{}

// HContinue restarts the nearest enclosing loop.
type HContinue struct{}

// HUnresolved marks a node whose name/path failed to resolve; type
// checking treats it as an escape so the rest of the item can still be
// checked (spec.md §3 invariants).
type HUnresolved struct{}

// HError marks a node that already carries a diagnostic from parsing.
type HError struct{}

func (HBlock) isHNode()       {}
func (HLet) isHNode()         {}
func (HSet) isHNode()         {}
func (HWhile) isHNode()       {}
func (HWhen) isHNode()        {}
func (HCast) isHNode()        {}
func (HReturn) isHNode()      {}
func (HCompile) isHNode()     {}
func (HInline) isHNode()      {}
func (HCall) isHNode()        {}
func (HMethod) isHNode()      {}
func (HField) isHNode()       {}
func (HNew) isHNode()         {}
func (HSliceNew) isHNode()    {}
func (HSlice) isHNode()       {}
func (HIndexOf) isHNode()     {}
func (HCompound) isHNode()    {}
func (HBinary) isHNode()      {}
func (HUnary) isHNode()       {}
func (HVariable) isHNode()    {}
func (HFunctionRef) isHNode() {}
func (HStaticRef) isHNode()   {}
func (HPathRef) isHNode()     {}
func (HString) isHNode()      {}
func (HArray) isHNode()       {}
func (HRegister) isHNode()    {}
func (HIntegral) isHNode()    {}
func (HTruth) isHNode()       {}
func (HRune) isHNode()        {}
func (HBreak) isHNode()       {}
func (HContinue) isHNode()    {}
func (HUnresolved) isHNode()  {}
func (HError) isHNode()       {}
