package diag

import (
	"fmt"
	"sort"
	"sync"
)

// Descriptor identifies a kind of diagnostic.
type Descriptor struct {
	ID       string
	Title    string
	Format   string // fmt format applied to report arguments
	Category string
	Severity Severity // default severity
}

// Well-known descriptor IDs reported by the processor.
const (
	ConstructionErrorID = "WV0001"
	RegistrationErrorID = "WV0002"
	ProcessingErrorID   = "WV0003"
)

// Table is an immutable set of descriptors indexed by ID.
type Table struct {
	byID map[string]Descriptor
}

// NewTable builds a table. IDs must be unique and non-empty.
func NewTable(descriptors ...Descriptor) (*Table, error) {
	t := &Table{byID: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if d.ID == "" {
			return nil, fmt.Errorf("descriptor %q has empty ID", d.Title)
		}
		if _, exists := t.byID[d.ID]; exists {
			return nil, fmt.Errorf("duplicate descriptor ID: %s", d.ID)
		}
		t.byID[d.ID] = d
	}
	return t, nil
}

// Extend returns a new table holding t's descriptors plus the given ones.
func (t *Table) Extend(descriptors ...Descriptor) (*Table, error) {
	all := make([]Descriptor, 0, len(t.byID)+len(descriptors))
	all = append(all, t.All()...)
	all = append(all, descriptors...)
	return NewTable(all...)
}

// Lookup returns the descriptor registered under id
func (t *Table) Lookup(id string) (Descriptor, bool) {
	d, ok := t.byID[id]
	return d, ok
}

// MustLookup is Lookup for IDs known to be present; it panics otherwise.
func (t *Table) MustLookup(id string) Descriptor {
	d, ok := t.byID[id]
	if !ok {
		panic(fmt.Sprintf("diag: unknown descriptor %s", id))
	}
	return d
}

// All returns the descriptors sorted by ID
func (t *Table) All() []Descriptor {
	out := make([]Descriptor, 0, len(t.byID))
	for _, d := range t.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// DefaultTable returns the descriptors the processor reports. It is built
// once per process and never mutated.
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		t, err := NewTable(
			Descriptor{
				ID:       ConstructionErrorID,
				Title:    "Annotation construction failed",
				Format:   "annotation %s could not be constructed: %s",
				Category: "weaver",
				Severity: SevError,
			},
			Descriptor{
				ID:       RegistrationErrorID,
				Title:    "Editor registration failed",
				Format:   "editor %s failed to register: %s",
				Category: "weaver",
				Severity: SevError,
			},
			Descriptor{
				ID:       ProcessingErrorID,
				Title:    "Processing failed",
				Format:   "error during %s: %s",
				Category: "weaver",
				Severity: SevError,
			},
		)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}
