package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"lucent/src/query"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	noteColor    = color.New(color.FgCyan)
	helpColor    = color.New(color.FgGreen)
)

func severityColor(s query.Severity) *color.Color {
	switch s {
	case query.Error:
		return errorColor
	case query.Warning:
		return warningColor
	case query.Help:
		return helpColor
	default:
		return noteColor
	}
}

// printDiagnostics renders diags to w, one per line, severity first and
// colored, followed by any notes. Labels carry an Owner key rather than an
// absolute span (no Presented-lifting pass exists in this port yet, see
// DESIGN.md), so a label prints as "in <owner>: <message>" instead of a
// file:line:col location.
func printDiagnostics(w io.Writer, diags []query.Diagnostic) (errs int) {
	sorted := make([]query.Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Severity < sorted[j].Severity })

	for _, d := range sorted {
		c := severityColor(d.Severity)
		fmt.Fprintf(w, "%s: %s\n", c.Sprint(d.Severity.String()), d.Message)
		if d.Severity == query.Error {
			errs++
		}
		for _, label := range d.Labels {
			fmt.Fprintf(w, "  in %s: %s\n", label.Owner.String(), label.Message)
		}
		for _, note := range d.Notes {
			fmt.Fprintf(w, "  %s %s\n", noteColor.Sprint("note:"), note)
		}
	}
	return errs
}
