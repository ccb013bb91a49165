package main

import (
	"fmt"
	"os"

	"lucent/src/binary"
	"lucent/src/generate/x86"
	"lucent/src/inclusion"
	"lucent/src/inference"
	"lucent/src/lower"
	"lucent/src/parse"
	"lucent/src/query"
	"lucent/src/source"
	"lucent/src/util"
)

// pipeline bundles one build session's query tables and the source cache
// they share, wired the same way the teacher's run(opt) bundles its
// read/parse/validate/generate stages behind a single function (src/main.go).
// Every stage here is instead a memoized Table[V], so compiling the same
// root twice within one process reuses the first run's work.
type pipeline struct {
	cache   *source.Cache
	ctx     *query.Context
	parse   *parse.Tables
	infer   *inference.Tables
	lower   *lower.Tables
	gen     *x86.Tables
	binary  *binary.Tables
}

// newPipeline wires a fresh query.Context and registers every stage's
// table against it, matching the registration order src/lower, src/generate/x86
// and src/binary's own keys.go files already assume their dependencies use.
func newPipeline() *pipeline {
	cache := source.NewCache()
	ctx := query.NewContext()

	p := &pipeline{
		cache:  cache,
		ctx:    ctx,
		parse:  parse.NewTables(ctx),
		infer:  inference.NewTables(ctx),
		lower:  lower.NewTables(ctx),
		gen:    x86.NewTables(ctx),
		binary: binary.NewTables(ctx),
	}
	return p
}

// run links rootFile for the given target, returning the diagnostics
// collected across the whole demand chain (spec.md §4.1's
// Context.CollectErrors transitive walk) alongside the compiled bytes, if
// any. A nil byte slice with no error-severity diagnostic cannot happen:
// Link always either returns bytes or emits at least one error.
func (p *pipeline) run(rootFile string, target util.Target) ([]byte, []query.Diagnostic) {
	resolver := inclusion.NewResolver(p.parse, p.cache, rootFile)
	handle := query.NewScopeHandle()
	root := query.RootScope(p.ctx, handle)

	out, err := p.binary.Link(root, resolver, p.parse, p.infer, p.lower, p.gen, p.cache, rootFile, target)
	diags := p.ctx.CollectErrors(root)
	if err != nil && len(diags) == 0 {
		diags = append(diags, query.NewDiagnostic(query.Error, err.Error()))
	}
	return out, diags
}

// writeBinary writes out to path, creating or truncating it and marking it
// executable (spec.md §6 "build <root>" produces a runnable Mach-O file).
func writeBinary(path string, out []byte) error {
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0755)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(out); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}
