package util

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// TargetsFile is the workspace-root file name spec.md §6 names: "a
// workspace-root file targets.lucent listing build entry points (one path
// per line)". Both cmd/lucent's "build" subcommand and src/server's
// workspace scan for it next to the file or directory they were pointed at.
const TargetsFile = "targets.lucent"

// ReadTargets looks for TargetsFile next to root (root may itself be a
// directory or a file; its directory is used either way) and returns every
// entry-point path it lists, resolved relative to that directory. If no
// targets.lucent exists, it returns just root unchanged — a single-root
// project has no need for the file.
func ReadTargets(root string) ([]string, error) {
	dir := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		dir = filepath.Dir(root)
	}

	f, err := os.Open(filepath.Join(dir, TargetsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{root}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", TargetsFile, err)
	}
	defer f.Close()

	var roots []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		roots = append(roots, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", TargetsFile, err)
	}
	if len(roots) == 0 {
		return []string{root}, nil
	}
	return roots, nil
}
