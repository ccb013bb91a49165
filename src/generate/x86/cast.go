package x86

import "lucent/src/node"

// evalCast lowers an LCast: evaluate the source, then zero- or sign-
// extend it to the target width (original_source/src/generate/x86/
// cast.rs `cast`/`zero_extend`/`sign_extend`). A cast to the same or a
// smaller width is a plain register move; the upper bits are simply
// never read at the narrower width, the same truncate-by-ignoring the
// original relies on movzx/movsx only being needed when widening.
func evalCast(scene *Scene, t *Translation, v node.LCast, dst Register) bool {
	if !eval(scene, t, v.Node, dst) {
		return false
	}
	if v.TargetWidth <= v.OriginWidth {
		return true
	}
	if v.OriginSign == node.Signed {
		t.movsx(dst, dst, v.OriginWidth, v.TargetWidth)
	} else {
		t.movzx(dst, dst, v.OriginWidth, v.TargetWidth)
	}
	return true
}
