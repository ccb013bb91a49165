package inference

import (
	"lucent/src/node"
	"lucent/src/span"
)

// ----------------------------
// ----- Functions -----
// ----------------------------

// rewritePaths replaces every HPathRef left in s.Value by src/parse with
// the HFunctionRef/HStaticRef it actually names, resolved against
// s.Inclusions (original_source/src/parse/value.rs's path-construction
// rule resolves this immediately against Inclusions; src/parse defers the
// lookup since it must not depend on the query engine — see HPathRef's own
// doc comment). A path naming neither becomes HUnresolved with a
// diagnostic. Runs once, ahead of Synthesize/Check, over every node in the
// arena rather than only ones reachable from the root: a path only used
// from an unreachable branch still deserves a diagnostic if it is bogus.
func rewritePaths(s *Scene) {
	for i := range s.Value.Nodes {
		idx := node.HIndex(i)
		ref, ok := s.node(idx).(node.HPathRef)
		if !ok {
			continue
		}
		path := ref.Path.Path()
		at := s.Value.Span(idx)

		if target, found, err := s.Resolver.Function(s.Scope, s.Inclusions, path); err == nil && found {
			s.Value.Replace(idx, node.HFunctionRef{Path: syntheticHPath(target, at)})
			continue
		}
		if target, found, err := s.Resolver.Statics(s.Scope, s.Inclusions, path); err == nil && found {
			s.Value.Replace(idx, node.HStaticRef{Path: syntheticHPath(target, at)})
			continue
		}

		s.emit(diag("unresolved path: " + path.String()))
		s.Value.Replace(idx, node.HUnresolved{})
	}
}

// syntheticHPath lifts a fully-qualified Path back into the spanned HPath
// language, stamping every segment with at — the rewritten node no longer
// has per-segment source positions of its own, but diagnostics raised
// against it still point somewhere useful.
func syntheticHPath(target node.Path, at span.Item) node.HPath {
	segments := target.Segments()
	out := make([]node.HSegment, len(segments))
	for i, seg := range segments {
		out[i] = node.HSegment{Name: node.Identifier(seg), Span: at}
	}
	return node.HPath{Segments: out}
}
