package diag

import (
	"fmt"
	"strings"
)

// Location points at a position in a source unit. The zero value means "no
// location".
type Location struct {
	File   string
	Line   int
	Column int
}

// IsZero reports whether the location is empty
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}

func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	var b strings.Builder
	b.WriteString(l.File)
	if l.Line > 0 {
		fmt.Fprintf(&b, ":%d", l.Line)
		if l.Column > 0 {
			fmt.Fprintf(&b, ":%d", l.Column)
		}
	}
	return b.String()
}

// Well-known property keys.
const (
	PropPhase  = "phase"
	PropEditor = "editor"
)

// Diagnostic is a single finding. Treat it as a value: the With* methods
// return modified copies.
type Diagnostic struct {
	Severity   Severity
	Descriptor Descriptor
	Location   Location
	Message    string
	Properties map[string]string
}

// New formats a diagnostic from its descriptor, using the descriptor's
// default severity.
func New(d Descriptor, loc Location, args ...any) Diagnostic {
	msg := d.Format
	if len(args) > 0 {
		msg = fmt.Sprintf(d.Format, args...)
	}
	return Diagnostic{
		Severity:   d.Severity,
		Descriptor: d,
		Location:   loc,
		Message:    msg,
	}
}

// ID returns the descriptor ID
func (d Diagnostic) ID() string {
	return d.Descriptor.ID
}

// WithSeverity returns a copy with the severity replaced
func (d Diagnostic) WithSeverity(sev Severity) Diagnostic {
	d.Severity = sev
	return d
}

// WithProperty returns a copy carrying key=value.
func (d Diagnostic) WithProperty(key, value string) Diagnostic {
	props := make(map[string]string, len(d.Properties)+1)
	for k, v := range d.Properties {
		props[k] = v
	}
	props[key] = value
	d.Properties = props
	return d
}

// Property returns the property stored under key
func (d Diagnostic) Property(key string) string {
	return d.Properties[key]
}

// String renders "<location>: <severity> <id>: <message>".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.Descriptor.ID, d.Message)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(ds []Diagnostic) bool {
	for i := range ds {
		if ds[i].Severity >= SevError {
			return true
		}
	}
	return false
}
