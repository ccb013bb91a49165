package node

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// LNode is a lowered expression: something that computes a value
// (spec.md §3 "L-IR"). Lowering only ever produces an LNode for an H-IR
// node whose type has nonzero layout size, or whose type is Never
// (spec.md §3 invariants, §8 property 3).
type LNode interface {
	isLNode()
}

// LUnit is a lowered statement: something executed for effect only.
type LUnit interface {
	isLUnit()
}

// LPlace wraps an LNode that must evaluate to a pointer (spec.md
// Glossary "Place").
type LPlace struct{ Node LNode }

// LTarget identifies a stack local by its frame-relative variable slot.
type LTarget struct{ Variable Variable }

// LReceiver is the callee of an LCall: either a direct function path or a
// method-style call through a calling convention and receiver expression.
type LReceiver interface {
	isLReceiver()
}

// LReceiverPath calls a function directly.
type LReceiverPath struct{ Path FPath }

// LReceiverMethod calls through a named calling convention with an
// explicit receiver expression (e.g. a function pointer value).
type LReceiverMethod struct {
	Convention Identifier
	Node       LNode
}

func (LReceiverPath) isLReceiver()   {}
func (LReceiverMethod) isLReceiver() {}

// LBlock is a sequence of statements followed by a value expression.
type LBlock struct {
	Units []LUnit
	Value LNode
}

// LIf is a conditional expression; Else is nil for a one-armed `if`.
type LIf struct {
	Condition LNode
	Then      LNode
	Else      LNode
}

// LCall is a call expression (used when the callee's return type has
// nonzero size).
type LCall struct {
	Receiver LReceiver
	Args     []LNode
}

// LCast performs a sign/width-aware reinterpretation (spec.md §4.4
// "Cast").
type LCast struct {
	Node        LNode
	OriginSign  Sign
	OriginWidth Width
	TargetWidth Width
}

// LBinary is a width- and (for integer ops) sign-parameterized binary
// operation.
type LBinary struct {
	Op    BinaryOp
	Sign  Sign
	Width Width
	Left  LNode
	Right LNode
}

// LUnary is a width-parameterized unary operation.
type LUnary struct {
	Op    UnaryOp
	Width Width
	Node  LNode
}

// LDereference reads the pointer-width value the wrapped place evaluates
// to (spec.md §8 property 4).
type LDereference struct{ Place LPlace }

// LTargetNode reads the address of a stack local as a value (used inside
// an LPlace to form `&local`).
type LTargetNode struct{ Target LTarget }

// LFunctionRef is a resolved function-pointer value.
type LFunctionRef struct{ Path FPath }

// LStaticRef is a resolved static reference.
type LStaticRef struct{ Path Path }

// LIntegral is an integer literal of a known width.
type LIntegral struct {
	Value int64
	Width Width
}

// LRegister reads an explicit physical register by name.
type LRegister struct{ Name Identifier }

// LString is a string literal, laid out by the linker as read-only data.
type LString struct{ Value string }

// LCompile evaluates a nested compile-time Value, identified by index into
// the item's table of nested values (mirrors HCompile after lowering).
type LCompile struct{ Value int }

// LNever wraps a statement that never completes normally (spec.md §3
// "Never propagates").
type LNever struct{ Unit LUnit }

func (LBlock) isLNode()        {}
func (LIf) isLNode()           {}
func (LCall) isLNode()         {}
func (LCast) isLNode()         {}
func (LBinary) isLNode()       {}
func (LUnary) isLNode()        {}
func (LDereference) isLNode()  {}
func (LTargetNode) isLNode()   {}
func (LFunctionRef) isLNode()  {}
func (LStaticRef) isLNode()    {}
func (LIntegral) isLNode()     {}
func (LRegister) isLNode()     {}
func (LString) isLNode()       {}
func (LCompile) isLNode()      {}
func (LNever) isLNode()        {}

// LUBlock is a statement-position block.
type LUBlock struct{ Units []LUnit }

// LUIf is a statement-position conditional.
type LUIf struct {
	Condition LNode
	Then      LUnit
	Else      LUnit
}

// LUCall is a statement-position call (its result, if any, is discarded).
type LUCall struct {
	Receiver LReceiver
	Args     []LNode
}

// LUReturn returns Value (nil for a bare `return;`) from the enclosing
// function.
type LUReturn struct{ Value LNode }

// LUSet assigns Value to Place.
type LUSet struct {
	Place LPlace
	Value LNode
}

// LUZero zero-initializes a stack local without a source value (spec.md
// §4.4 "Let without initializer becomes Zero(target)").
type LUZero struct{ Target LTarget }

// LULoop repeats Body forever; `While` lowers to `Loop(If(cond, body,
// break))` (spec.md §4.4 "Statement lowering").
type LULoop struct{ Body LUnit }

// LUCompile evaluates a nested compile-time Value for effect.
type LUCompile struct{ Value int }

// LUInline evaluates a nested Value inline for effect.
type LUInline struct{ Value int }

// LUNode wraps an expression evaluated for its side effects, with its
// value discarded.
type LUNode struct{ Node LNode }

// LUBreak exits the nearest enclosing loop. Valid only when lowering
// within a `looped` context (spec.md §4.4).
type LUBreak struct{}

// LUContinue restarts the nearest enclosing loop.
type LUContinue struct{}

func (LUBlock) isLUnit()    {}
func (LUIf) isLUnit()       {}
func (LUCall) isLUnit()     {}
func (LUReturn) isLUnit()   {}
func (LUSet) isLUnit()      {}
func (LUZero) isLUnit()     {}
func (LULoop) isLUnit()     {}
func (LUCompile) isLUnit()  {}
func (LUInline) isLUnit()   {}
func (LUNode) isLUnit()     {}
func (LUBreak) isLUnit()    {}
func (LUContinue) isLUnit() {}
