package binary

import (
	"fmt"

	"lucent/src/node"
)

// patchRelative resolves every function's unresolved call-site fixups
// against the final addresses assigned to their targets
// (original_source/src/binary/patch.rs `patch`/`entity`). A fixup whose
// target never made it into addresses means present_all pruned the
// target as unreachable while a caller that is itself present still
// references it statically; that can only happen if reachability and
// codegen disagree about a call site, so it is reported rather than
// silently left zeroed.
func patchRelative(entries []Entry, addresses map[node.FPath]Address) error {
	for _, e := range entries {
		for _, rel := range e.Section.Relative {
			other, ok := addresses[rel.Target]
			if !ok {
				return fmt.Errorf("unresolved call target %s from %s", rel.Target.String(), e.Path.String())
			}
			// rel32 is relative to the address immediately following the
			// 4-byte operand, not the operand's own start
			// (original_source/src/generate/x86/scene.rs Relative.Offset is
			// the operand's start, confirmed via src/generate/x86/scene.go's
			// recordCall, hence the `+4` here).
			displacement := int64(other) - int64(e.Address+uint64(rel.Offset)+4)
			if err := patchRel32(e.Section.Bytes, rel.Offset, int32(displacement)); err != nil {
				return fmt.Errorf("patching call to %s from %s: %w", rel.Target.String(), e.Path.String(), err)
			}
		}
	}
	return nil
}

// patchRel32 writes value as a little-endian 4-byte signed displacement
// at bytes[offset:offset+4] (original_source/src/binary/patch.rs's
// little-endian write of a sized signed value, specialized to the only
// size src/generate/x86 ever emits a call fixup at).
func patchRel32(bytes []byte, offset int, value int32) error {
	if offset < 0 || offset+4 > len(bytes) {
		return fmt.Errorf("rel32 offset %d out of range (len %d)", offset, len(bytes))
	}
	u := uint32(value)
	bytes[offset+0] = byte(u)
	bytes[offset+1] = byte(u >> 8)
	bytes[offset+2] = byte(u >> 16)
	bytes[offset+3] = byte(u >> 24)
	return nil
}
