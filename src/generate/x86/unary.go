package x86

import "lucent/src/node"

// notOp/negOp select the opcode-extension digit for a one-operand
// arithmetic/bitwise instruction (F7 /n): negate = /3, not = /2.
const (
	notOp byte = 2
	negOp byte = 3
)

// evalUnary lowers Not/Negate (Reference/Dereference are place-forming
// and never reach here, same as original_source/src/lower's unary
// lowering already resolves them before the x86 stage).
func evalUnary(scene *Scene, t *Translation, v node.LUnary, dst Register) bool {
	if !eval(scene, t, v.Node, dst) {
		return false
	}
	n := notOp
	if v.Op == node.OpNegate {
		n = negOp
	}
	out := prefixFor16(v.Width)
	out = maybeRex(out, v.Width == node.Q, 0, dst)
	op := byte(0xF7)
	if v.Width == node.B {
		op = 0xF6
	}
	out = append(out, op, 0xC0|n<<3|byte(dst.Id()&7))
	t.emit(out...)
	return true
}
