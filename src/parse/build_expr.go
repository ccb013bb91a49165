package parse

import (
	"lucent/src/node"
	"lucent/src/span"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// builder accumulates one item's H-IR arena and tracks the lexical
// shadowing generations of local variables (original_source/src/parse/
// value.rs `Scene`: "frames: Vec<HashMap<Identifier, usize>>"). Unlike the
// Rust original, name resolution against Inclusions does not happen here:
// a bare path that isn't a local variable is left as an HPathRef and
// disambiguated into Function/Static/Unresolved later by src/inference,
// once Inclusions are available — keeping src/parse free of a dependency
// on the query engine.
type builder struct {
	value  *node.Value
	frames []map[node.Identifier]int
}

// ---------------------
// ----- Functions -----
// ---------------------

// newBuilder starts a builder with one empty root frame.
func newBuilder() *builder {
	return &builder{
		value:  &node.Value{},
		frames: []map[node.Identifier]int{{}},
	}
}

// newBuilderWithParameters starts a builder whose root frame already
// contains a function's parameters at generation 0.
func newBuilderWithParameters(params []node.Identifier) *builder {
	b := newBuilder()
	for _, p := range params {
		b.frames[0][p] = 0
	}
	return b
}

// push opens a new lexical frame (entering a block).
func (b *builder) push() { b.frames = append(b.frames, map[node.Identifier]int{}) }

// pop closes the innermost lexical frame (leaving a block).
func (b *builder) pop() { b.frames = b.frames[:len(b.frames)-1] }

// generation returns the most recently declared generation of name visible
// from the innermost frame outward, and whether it was found at all.
func (b *builder) generation(name node.Identifier) (int, bool) {
	for i := len(b.frames) - 1; i >= 0; i-- {
		if g, ok := b.frames[i][name]; ok {
			return g, true
		}
	}
	return 0, false
}

// declare introduces a new binding for name in the innermost frame,
// allocating the next shadowing generation (spec.md §3 "Variable":
// "let x = 1; let x = 2;" produces generation 0 then 1).
func (b *builder) declare(name node.Identifier) node.Variable {
	generation := 0
	if g, ok := b.generation(name); ok {
		generation = g + 1
	}
	b.frames[len(b.frames)-1][name] = generation
	return node.Variable{Name: name, Generation: generation}
}

// expr converts one parsed Expr into an HIndex, descending the precedence
// chain Or > And > Equality > Relational > Additive > Multiplicative >
// Unary > Postfix > Primary.
func (b *builder) expr(e *Expr) (node.HIndex, error) {
	return b.or(e.Or)
}

func (b *builder) or(e *OrExpr) (node.HIndex, error) {
	left, err := b.and(e.Left)
	if err != nil {
		return 0, err
	}
	for _, r := range e.Right {
		right, err := b.and(r)
		if err != nil {
			return 0, err
		}
		left = b.value.Push(node.HBinary{Op: node.OpOr, Left: left, Right: right}, noSpan)
	}
	return left, nil
}

func (b *builder) and(e *AndExpr) (node.HIndex, error) {
	left, err := b.equality(e.Left)
	if err != nil {
		return 0, err
	}
	for _, r := range e.Right {
		right, err := b.equality(r)
		if err != nil {
			return 0, err
		}
		left = b.value.Push(node.HBinary{Op: node.OpAnd, Left: left, Right: right}, noSpan)
	}
	return left, nil
}

var equalityOps = map[string]node.BinaryOp{"==": node.OpEqual, "!=": node.OpNotEqual}

func (b *builder) equality(e *EqualityExpr) (node.HIndex, error) {
	left, err := b.relational(e.Left)
	if err != nil {
		return 0, err
	}
	for i, r := range e.Right {
		right, err := b.relational(r)
		if err != nil {
			return 0, err
		}
		left = b.value.Push(node.HBinary{Op: equalityOps[e.Ops[i]], Left: left, Right: right}, noSpan)
	}
	return left, nil
}

var relationalOps = map[string]node.BinaryOp{
	"<": node.OpLess, "<=": node.OpLessEqual, ">": node.OpGreater, ">=": node.OpGreaterEqual,
}

func (b *builder) relational(e *RelationalExpr) (node.HIndex, error) {
	left, err := b.additive(e.Left)
	if err != nil {
		return 0, err
	}
	for i, r := range e.Right {
		right, err := b.additive(r)
		if err != nil {
			return 0, err
		}
		left = b.value.Push(node.HBinary{Op: relationalOps[e.Ops[i]], Left: left, Right: right}, noSpan)
	}
	return left, nil
}

var additiveOps = map[string]node.BinaryOp{
	"+": node.OpAdd, "-": node.OpMinus, "|": node.OpBitOr, "^": node.OpBitXor,
}

func (b *builder) additive(e *AdditiveExpr) (node.HIndex, error) {
	left, err := b.multiplicative(e.Left)
	if err != nil {
		return 0, err
	}
	for i, r := range e.Right {
		right, err := b.multiplicative(r)
		if err != nil {
			return 0, err
		}
		left = b.value.Push(node.HBinary{Op: additiveOps[e.Ops[i]], Left: left, Right: right}, noSpan)
	}
	return left, nil
}

var multiplicativeOps = map[string]node.BinaryOp{
	"*": node.OpMul, "/": node.OpDiv, "%": node.OpMod,
	"&": node.OpBitAnd, "<<": node.OpShl, ">>": node.OpShr,
}

func (b *builder) multiplicative(e *MultiplicativeExpr) (node.HIndex, error) {
	left, err := b.unary(e.Left)
	if err != nil {
		return 0, err
	}
	for i, r := range e.Right {
		right, err := b.unary(r)
		if err != nil {
			return 0, err
		}
		left = b.value.Push(node.HBinary{Op: multiplicativeOps[e.Ops[i]], Left: left, Right: right}, noSpan)
	}
	return left, nil
}

var unaryOps = map[string]node.UnaryOp{
	"&": node.OpReference, "*": node.OpDereference, "!": node.OpNot, "-": node.OpNegate,
}

func (b *builder) unary(e *UnaryExpr) (node.HIndex, error) {
	if e.Op != "" {
		operand, err := b.unary(e.Operand)
		if err != nil {
			return 0, err
		}
		return b.value.Push(node.HUnary{Op: unaryOps[e.Op], Node: operand}, noSpan), nil
	}
	return b.postfix(e.Postfix)
}

func (b *builder) postfix(e *Postfix) (node.HIndex, error) {
	base, isPath, path, err := b.primary(e.Primary)
	if err != nil {
		return 0, err
	}
	for _, s := range e.Suffix {
		switch {
		case s.Call != nil:
			args, err := b.exprs(s.Call.Args)
			if err != nil {
				return 0, err
			}
			if isPath {
				base = b.value.Push(node.HCall{Path: path, Args: args}, noSpan)
			} else {
				base = b.value.Push(node.HMethod{Receiver: base, Args: args}, noSpan)
			}
			isPath = false
		case s.Method != nil:
			args, err := b.exprs(s.Method.Args)
			if err != nil {
				return 0, err
			}
			base = b.value.Push(node.HMethod{Receiver: base, Name: node.Identifier(s.Method.Name), Args: args}, noSpan)
			isPath = false
		case s.Field != nil:
			base = b.value.Push(node.HField{Base: base, Name: node.Identifier(*s.Field)}, noSpan)
			isPath = false
		case s.Index != nil:
			idx, err := b.indexSuffix(base, s.Index)
			if err != nil {
				return 0, err
			}
			base = idx
			isPath = false
		case s.Compound != nil:
			value, err := b.expr(s.Compound.Value)
			if err != nil {
				return 0, err
			}
			base = b.value.Push(node.HCompound{Op: compoundOps[s.Compound.Op], Place: base, Value: value}, noSpan)
			isPath = false
		case s.As != nil:
			target, err := buildType(b, s.As)
			if err != nil {
				return 0, err
			}
			base = b.value.Push(node.HCast{Node: base, Target: target}, noSpan)
			isPath = false
		case s.Assign != nil:
			value, err := b.expr(s.Assign)
			if err != nil {
				return 0, err
			}
			base = b.value.Push(node.HSet{Place: base, Value: value}, noSpan)
			isPath = false
		}
	}
	return base, nil
}

var compoundOps = map[string]node.CompoundOp{
	"+=": node.CompoundAdd, "-=": node.CompoundMinus, "*=": node.CompoundMul,
	"/=": node.CompoundDiv, "%=": node.CompoundMod, "|=": node.CompoundOr,
	"&=": node.CompoundAnd, "^=": node.CompoundXor, "<<=": node.CompoundShl, ">>=": node.CompoundShr,
}

func (b *builder) indexSuffix(base node.HIndex, s *IndexSuffix) (node.HIndex, error) {
	if !s.Colon {
		index, err := b.expr(s.Start)
		if err != nil {
			return 0, err
		}
		return b.value.Push(node.HIndexOf{Base: base, Index: index}, noSpan), nil
	}
	var start, end *node.HIndex
	if s.Start != nil {
		idx, err := b.expr(s.Start)
		if err != nil {
			return 0, err
		}
		start = &idx
	}
	if s.End != nil {
		idx, err := b.expr(s.End)
		if err != nil {
			return 0, err
		}
		end = &idx
	}
	return b.value.Push(node.HSlice{Base: base, Start: start, End: end}, noSpan), nil
}

// exprs converts a slice of parsed Exprs in order.
func (b *builder) exprs(es []*Expr) ([]node.HIndex, error) {
	out := make([]node.HIndex, len(es))
	for i, e := range es {
		idx, err := b.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// primary converts a Primary alternative. isPath/path are only meaningful
// when the primary was a bare dotted path, so postfix() can tell a
// by-path call (`f(x)`) apart from an indirect call through a value.
func (b *builder) primary(p *Primary) (idx node.HIndex, isPath bool, path node.HPath, err error) {
	switch {
	case p.Block != nil:
		idx, err = b.block(p.Block)
	case p.Let != nil:
		idx, err = b.let_(p.Let)
	case p.While != nil:
		idx, err = b.while_(p.While)
	case p.When != nil:
		idx, err = b.when(p.When)
	case p.Return != nil:
		idx, err = b.return_(p.Return)
	case p.Break:
		idx = b.value.Push(node.HBreak{}, noSpan)
	case p.Continue:
		idx = b.value.Push(node.HContinue{}, noSpan)
	case p.New != nil:
		idx, err = b.new_(p.New)
	case p.SliceNew != nil:
		idx, err = b.sliceNew(p.SliceNew)
	case p.Array != nil:
		var elements []node.HIndex
		elements, err = b.exprs(p.Array.Elements)
		if err == nil {
			idx = b.value.Push(node.HArray{Elements: elements}, noSpan)
		}
	case p.String != nil:
		idx = b.value.Push(node.HString{Value: *p.String}, noSpan)
	case p.Rune != nil:
		r := []rune(*p.Rune)
		if len(r) != 1 {
			err = errf("empty rune literal")
		} else {
			idx = b.value.Push(node.HRune{Value: r[0]}, noSpan)
		}
	case p.Int != nil:
		idx = b.value.Push(node.HIntegral{Value: *p.Int}, noSpan)
	case p.True:
		idx = b.value.Push(node.HTruth{Value: true}, noSpan)
	case p.False:
		idx = b.value.Push(node.HTruth{Value: false}, noSpan)
	case p.Register != nil:
		idx = b.value.Push(node.HRegister{Name: node.Identifier(*p.Register)}, noSpan)
	case p.Path != nil:
		return b.path(p.Path)
	case p.Paren != nil:
		idx, err = b.expr(p.Paren)
	default:
		err = errf("empty primary expression")
	}
	return idx, false, node.HPath{}, err
}

// path resolves a bare dotted path against the active local-variable
// frames (original_source/src/parse/value.rs `paths`' variable branch);
// anything else is left as an HPathRef for src/inference to disambiguate.
func (b *builder) path(p *PathExpr) (node.HIndex, bool, node.HPath, error) {
	if len(p.Segments) == 1 {
		name := node.Identifier(p.Segments[0])
		if g, ok := b.generation(name); ok {
			idx := b.value.Push(node.HVariable{Variable: node.Variable{Name: name, Generation: g}}, noSpan)
			return idx, false, node.HPath{}, nil
		}
	}
	hpath := buildPath(p)
	idx := b.value.Push(node.HPathRef{Path: hpath}, noSpan)
	return idx, true, hpath, nil
}

func (b *builder) block(e *BlockExpr) (node.HIndex, error) {
	b.push()
	defer b.pop()
	nodes, err := b.exprs(e.Exprs)
	if err != nil {
		return 0, err
	}
	return b.value.Push(node.HBlock{Nodes: nodes}, noSpan), nil
}

func (b *builder) let_(e *LetExpr) (node.HIndex, error) {
	var t node.HType
	if e.Type != nil {
		var err error
		t, err = buildType(b, e.Type)
		if err != nil {
			return 0, err
		}
	}
	var init *node.HIndex
	if e.Value != nil {
		idx, err := b.expr(e.Value)
		if err != nil {
			return 0, err
		}
		init = &idx
	}
	// The variable is declared after its initializer is built, so
	// `let x = x;` refers to an outer x, matching the original's sequential
	// frame insertion (value.rs "let").
	v := b.declare(node.Identifier(e.Name))
	return b.value.Push(node.HLet{Variable: v, Type: t, Init: init}, noSpan), nil
}

func (b *builder) while_(e *WhileExpr) (node.HIndex, error) {
	cond, err := b.expr(e.Condition)
	if err != nil {
		return 0, err
	}
	body, err := b.block(e.Body)
	if err != nil {
		return 0, err
	}
	return b.value.Push(node.HWhile{Condition: cond, Body: body}, noSpan), nil
}

func (b *builder) when(e *WhenExpr) (node.HIndex, error) {
	branches := make([]node.HWhenBranch, len(e.Arms))
	for i, arm := range e.Arms {
		cond, err := b.expr(arm.Condition)
		if err != nil {
			return 0, err
		}
		body, err := b.expr(arm.Body)
		if err != nil {
			return 0, err
		}
		branches[i] = node.HWhenBranch{Condition: cond, Body: body}
	}
	return b.value.Push(node.HWhen{Branches: branches}, noSpan), nil
}

func (b *builder) return_(e *ReturnExpr) (node.HIndex, error) {
	var value *node.HIndex
	if e.Value != nil {
		idx, err := b.expr(e.Value)
		if err != nil {
			return 0, err
		}
		value = &idx
	}
	return b.value.Push(node.HReturn{Value: value}, noSpan), nil
}

func (b *builder) new_(e *NewExpr) (node.HIndex, error) {
	fields := make([]node.HFieldInit, len(e.Fields))
	for i, f := range e.Fields {
		v, err := b.expr(f.Value)
		if err != nil {
			return 0, err
		}
		fields[i] = node.HFieldInit{Name: node.Identifier(f.Name), Value: v}
	}
	return b.value.Push(node.HNew{Path: buildPath(e.Path), Fields: fields}, noSpan), nil
}

func (b *builder) sliceNew(e *SliceNewExpr) (node.HIndex, error) {
	elem, err := buildType(b, e.Element)
	if err != nil {
		return 0, err
	}
	address, err := b.expr(e.Address)
	if err != nil {
		return 0, err
	}
	size, err := b.expr(e.Size)
	if err != nil {
		return 0, err
	}
	return b.value.Push(node.HSliceNew{Element: elem, Address: address, Size: size}, noSpan), nil
}

// noSpan is a placeholder item-relative span until the grammar is wired to
// participle's position-capturing lexer tokens; every builder call site
// passes it today, so callers should not rely on sub-item span precision
// until that wiring lands.
var noSpan = span.Item{}
