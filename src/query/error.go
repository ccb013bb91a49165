package query

import "lucent/src/span"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Severity classifies a Diagnostic, mirroring spec.md §7 "severity
// (error/warning/note/help)".
type Severity int

// Severity values.
const (
	Error Severity = iota
	Warning
	Note
	Help
)

// String renders the severity the way the terminal diagnostic writer
// prefixes a message.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	case Help:
		return "help"
	default:
		return "diagnostic"
	}
}

// LabelStyle distinguishes the primary label (the span that caused the
// diagnostic) from secondary context labels.
type LabelStyle int

// LabelStyle values.
const (
	Primary LabelStyle = iota
	Secondary
)

// Label anchors part of a Diagnostic to an item-relative span. Owner
// identifies which item the span is relative to so it can be lifted to an
// absolute span.Span at presentation time (spec.md §4.1 "spans are lifted
// to absolute file ranges at presentation time").
type Label struct {
	Style   LabelStyle
	Message string
	Owner   Key
	Span    span.Item
}

// NewLabel builds a Label anchored at span within the item identified by
// owner.
func NewLabel(style LabelStyle, owner Key, item span.Item) Label {
	return Label{Style: style, Owner: owner, Span: item}
}

// WithMessage sets the label's message and returns the label for chaining.
func (l Label) WithMessage(message string) Label {
	l.Message = message
	return l
}

// Diagnostic is a single user-visible error/warning/note/help message with
// a primary label, optional secondary labels, and optional notes
// (spec.md §7).
type Diagnostic struct {
	Severity Severity
	Message  string
	Labels   []Label
	Notes    []string
}

// NewDiagnostic starts a Diagnostic of the given severity.
func NewDiagnostic(severity Severity, message string) Diagnostic {
	return Diagnostic{Severity: severity, Message: message}
}

// Label appends a label and returns the diagnostic for chaining.
func (d Diagnostic) Label(label Label) Diagnostic {
	d.Labels = append(d.Labels, label)
	return d
}

// Note appends a note and returns the diagnostic for chaining.
func (d Diagnostic) Note(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// Presented is a Diagnostic whose labels have been lifted to absolute
// spans, ready for a terminal writer or LSP protocol translation.
type Presented struct {
	Severity Severity
	Message  string
	Notes    []string
	Primary  *PresentedLabel
	Extra    []PresentedLabel
}

// PresentedLabel is a Label after lifting.
type PresentedLabel struct {
	Message string
	Span    span.Span
}

// CycleDiagnostic builds the "cycle" diagnostic for spec.md §4.1 rule 1 and
// §8 testable property 6: it names each key in the demand chain along with
// the span at which it was demanded.
func CycleDiagnostic(chain []CycleLink) Diagnostic {
	d := NewDiagnostic(Error, "cyclic dependency")
	for _, link := range chain {
		d = d.Note(link.Key.String())
		if link.Span != nil {
			d = d.Label(NewLabel(Secondary, link.Owner, *link.Span))
		}
	}
	return d
}

// CycleLink records one hop of a cycle: the key being demanded, the item
// the demand span is relative to, and the demand span itself (absent for
// the root demand).
type CycleLink struct {
	Key   Key
	Owner Key
	Span  *span.Item
}
