package diag

import "sort"

// Reporter receives diagnostics from producers.
type Reporter interface {
	Report(d Diagnostic)
}

// Sink is the host-supplied destination the processor pushes to and polls.
type Sink interface {
	Reporter
	Diagnostics() []Diagnostic
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// SinkFuncs adapts a pair of host callbacks to Sink.
type SinkFuncs struct {
	ReportFunc func(Diagnostic)
	QueryFunc  func() []Diagnostic
}

func (s SinkFuncs) Report(d Diagnostic) {
	if s.ReportFunc != nil {
		s.ReportFunc(d)
	}
}

func (s SinkFuncs) Diagnostics() []Diagnostic {
	if s.QueryFunc == nil {
		return nil
	}
	return s.QueryFunc()
}

// Bag collects diagnostics in memory up to a limit.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag creates a bag. max <= 0 means unlimited.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add appends d unless the limit is reached. Error diagnostics are always
// kept so that HasErrors stays truthful.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max && d.Severity < SevError {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Report implements Reporter
func (b *Bag) Report(d Diagnostic) {
	b.Add(d)
}

// Diagnostics returns the collected diagnostics in report order.
// The returned slice must not be modified.
func (b *Bag) Diagnostics() []Diagnostic {
	return b.items
}

// HasErrors returns true if any diagnostic has error severity
func (b *Bag) HasErrors() bool {
	return HasErrors(b.items)
}

// Len returns the number of kept diagnostics
func (b *Bag) Len() int {
	return len(b.items)
}

// Dropped returns how many diagnostics were discarded by the limit
func (b *Bag) Dropped() int {
	return b.dropped
}

// Count returns how many kept diagnostics have the given severity
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

// Sorted returns a copy ordered by file, line, column, severity (desc), ID.
func (b *Bag) Sorted() []Diagnostic {
	out := append([]Diagnostic(nil), b.items...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i], out[j]
		if di.Location.File != dj.Location.File {
			return di.Location.File < dj.Location.File
		}
		if di.Location.Line != dj.Location.Line {
			return di.Location.Line < dj.Location.Line
		}
		if di.Location.Column != dj.Location.Column {
			return di.Location.Column < dj.Location.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Descriptor.ID < dj.Descriptor.ID
	})
	return out
}
