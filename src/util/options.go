// Package util provides cross-cutting helpers shared by the compiler pipeline:
// compile-time options, target triples and a thread-safe diagnostic collector
// for the parallel, multi-target CLI driver.
package util

import "go.uber.org/zap"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options carries the resolved command-line configuration for a single
// compilation invocation. It is populated by cmd/lucent's cobra flags and
// threaded through the pipeline the same way the teacher threads its own
// Options structure from parsing through code generation.
type Options struct {
	Root    string      // Path to the root .lc file.
	Out     string      // Path to the output Mach-O executable.
	Threads int         // Number of targets to build in parallel when using targets.lucent.
	Verbose bool        // Emit debug-level logging for each pipeline stage.
	Target  Target      // Output target architecture/mode.
	OS      OS          // Output target operating system.
	Log     *zap.SugaredLogger
}

// Target selects the pointer width and default integer size used by
// inference and code generation (spec.md §3 "Target").
type Target int

// Target values. X86 is the only architecture family the x86 code
// generator accepts; X86_16/X86_32/X86_64 select the addressing mode
// within it.
const (
	UnknownTarget Target = iota
	X86_16
	X86_32
	X86_64
)

// Bits returns the pointer width in bits for the target.
func (t Target) Bits() int {
	switch t {
	case X86_16:
		return 16
	case X86_32:
		return 32
	case X86_64:
		return 64
	default:
		return 64
	}
}

// OS names the target operating system. It is recorded only: every build
// emits a Mach-O 64 executable, whichever value is chosen.
type OS int

// OS values.
const (
	UnknownOS OS = iota
	Mac
	Linux
	Windows
)

// DefaultOptions returns an Options value with the conservative defaults the
// CLI falls back to when a flag is omitted.
func DefaultOptions() Options {
	return Options{
		Threads: 1,
		Target:  X86_64,
		OS:      Mac,
	}
}
