package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lucent/src/query"
	"lucent/src/util"
)

func newBuildCommand() *cobra.Command {
	var out string
	var targetName string
	var osName string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "build <root>",
		Short: "compile a Lucent project to a Mach-O 64 executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			opt := util.DefaultOptions()
			opt.Root = root
			opt.Out = out
			opt.Verbose = verbose
			opt.Log = newLogger(verbose)
			defer opt.Log.Sync()

			target, err := parseTarget(targetName)
			if err != nil {
				return err
			}
			opt.Target = target

			osKind, err := parseOS(osName)
			if err != nil {
				return err
			}
			opt.OS = osKind

			roots, err := util.ReadTargets(root)
			if err != nil {
				return err
			}

			ok, err := buildAll(cmd.OutOrStdout(), opt, roots)
			if err != nil {
				return err
			}
			if !ok {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "a.out", "path to the output Mach-O executable")
	cmd.Flags().StringVarP(&targetName, "target", "t", "x86_64", "target architecture (x86_16, x86_32, x86_64)")
	cmd.Flags().StringVar(&osName, "os", "mac", "target operating system (recorded only; every build emits a Mach-O executable)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit debug-level logging for every pipeline stage")
	return cmd
}

// buildAll compiles every root independently and in parallel, each on its
// own pipeline/Context/ScopeHandle (SPEC_FULL.md's targets.lucent section:
// cross-target parallelism via errgroup is the one form of concurrency the
// query engine itself stays single-threaded about). It returns false if any
// root produced an error-severity diagnostic or failed outright; every
// root's diagnostics print regardless of the others' outcome.
func buildAll(w io.Writer, opt util.Options, roots []string) (bool, error) {
	type result struct {
		root  string
		out   string
		bytes []byte
		diags []query.Diagnostic
	}

	g := new(errgroup.Group)
	results := make([]result, len(roots))
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			p := newPipeline()
			outPath := opt.Out
			if len(roots) > 1 {
				outPath = outputFor(opt.Out, root, i)
			}
			bytes, diags := p.run(root, opt.Target)
			results[i] = result{root: root, out: outPath, bytes: bytes, diags: diags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	// write failures from parallel roots land here rather than aborting the
	// other builds, the same one-collector-for-the-whole-fan-out shape
	// util.Collector was written for.
	writeErrs := util.NewCollector(len(roots))
	for _, r := range results {
		opt.Log.Infow("build finished", "root", r.root, "diagnostics", len(r.diags))
		errCount := printDiagnostics(w, r.diags)
		if errCount > 0 {
			continue
		}
		if err := writeBinary(r.out, r.bytes); err != nil {
			writeErrs.Append(fmt.Errorf("%s: %w", r.root, err))
		}
	}
	for _, err := range writeErrs.Errors() {
		fmt.Fprintf(w, "error: %s\n", err)
	}

	ok := writeErrs.Len() == 0
	for _, r := range results {
		if !diagnosticsOK(r.diags) {
			ok = false
		}
	}
	return ok, nil
}

// diagnosticsOK reports whether diags contains no error-severity entry.
func diagnosticsOK(diags []query.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == query.Error {
			return false
		}
	}
	return true
}

// outputFor derives a distinct output path per root when targets.lucent
// names more than one entry point, so a multi-root build doesn't clobber
// one shared -o path.
func outputFor(out, root string, index int) string {
	ext := filepath.Ext(out)
	base := out[:len(out)-len(ext)]
	name := filepath.Base(root)
	name = name[:len(name)-len(filepath.Ext(name))]
	return fmt.Sprintf("%s.%s%s", base, name, ext)
}

func parseTarget(name string) (util.Target, error) {
	switch name {
	case "x86_16":
		return util.X86_16, nil
	case "x86_32":
		return util.X86_32, nil
	case "x86_64", "":
		return util.X86_64, nil
	default:
		return util.UnknownTarget, fmt.Errorf("unknown target %q", name)
	}
}

func parseOS(name string) (util.OS, error) {
	switch name {
	case "mac", "":
		return util.Mac, nil
	case "linux":
		return util.Linux, nil
	case "windows":
		return util.Windows, nil
	default:
		return util.UnknownOS, fmt.Errorf("unknown os %q", name)
	}
}
