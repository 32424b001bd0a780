package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDescriptor = Descriptor{
	ID:       "T0001",
	Title:    "Test",
	Format:   "value %s is %d",
	Category: "test",
	Severity: SevWarning,
}

func TestNew_FormatsMessage(t *testing.T) {
	d := New(testDescriptor, Location{File: "a.proto", Line: 3, Column: 5}, "x", 7)

	assert.Equal(t, "value x is 7", d.Message)
	assert.Equal(t, SevWarning, d.Severity)
	assert.Equal(t, "T0001", d.ID())
	assert.Equal(t, "a.proto:3:5: warning T0001: value x is 7", d.String())
}

func TestNew_NoArgsKeepsFormat(t *testing.T) {
	d := New(Descriptor{ID: "T2", Format: "100% literal"}, Location{})
	assert.Equal(t, "100% literal", d.Message)
}

func TestDiagnostic_WithPropertyCopies(t *testing.T) {
	base := New(testDescriptor, Location{}, "x", 1)
	a := base.WithProperty(PropPhase, "Emit")
	b := a.WithProperty(PropEditor, "banner")

	assert.Empty(t, base.Property(PropPhase))
	assert.Equal(t, "Emit", a.Property(PropPhase))
	assert.Empty(t, a.Property(PropEditor))
	assert.Equal(t, "Emit", b.Property(PropPhase))
	assert.Equal(t, "banner", b.Property(PropEditor))
}

func TestDiagnostic_WithSeverity(t *testing.T) {
	d := New(testDescriptor, Location{}, "x", 1).WithSeverity(SevError)
	assert.Equal(t, SevError, d.Severity)
	assert.True(t, HasErrors([]Diagnostic{d}))
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		loc      Location
		expected string
	}{
		{Location{}, "<unknown>"},
		{Location{File: "a.proto"}, "a.proto"},
		{Location{File: "a.proto", Line: 2}, "a.proto:2"},
		{Location{File: "a.proto", Line: 2, Column: 9}, "a.proto:2:9"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.loc.String())
	}
}

func TestParseSeverity(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Severity
	}{
		{"info", SevInfo},
		{"WARNING", SevWarning},
		{"warn", SevWarning},
		{" error ", SevError},
	} {
		got, err := ParseSeverity(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	table, err := NewTable(testDescriptor)
	require.NoError(t, err)

	d, ok := table.Lookup("T0001")
	assert.True(t, ok)
	assert.Equal(t, testDescriptor, d)

	_, ok = table.Lookup("missing")
	assert.False(t, ok)
	assert.Panics(t, func() { table.MustLookup("missing") })

	_, err = NewTable(testDescriptor, testDescriptor)
	assert.Error(t, err)

	_, err = NewTable(Descriptor{Title: "no id"})
	assert.Error(t, err)
}

func TestTable_Extend(t *testing.T) {
	base := DefaultTable()
	ext, err := base.Extend(testDescriptor)
	require.NoError(t, err)

	assert.Len(t, ext.All(), len(base.All())+1)
	_, ok := base.Lookup("T0001")
	assert.False(t, ok, "extending must not mutate the original")

	_, err = base.Extend(Descriptor{ID: ProcessingErrorID})
	assert.Error(t, err)
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	assert.Same(t, table, DefaultTable())

	for _, id := range []string{ConstructionErrorID, RegistrationErrorID, ProcessingErrorID} {
		d, ok := table.Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, SevError, d.Severity)
	}

	d := New(table.MustLookup(ProcessingErrorID), Location{}, "Emit", "boom")
	assert.Equal(t, "error during Emit: boom", d.Message)
}

func TestBag(t *testing.T) {
	bag := NewBag(2)
	info := New(testDescriptor, Location{}, "a", 1).WithSeverity(SevInfo)
	warn := New(testDescriptor, Location{}, "b", 2)
	errDiag := New(testDescriptor, Location{}, "c", 3).WithSeverity(SevError)

	assert.True(t, bag.Add(info))
	assert.False(t, bag.HasErrors())
	bag.Report(warn)
	assert.False(t, bag.Add(info), "limit reached")
	assert.True(t, bag.Add(errDiag), "errors bypass the limit")

	assert.Equal(t, 3, bag.Len())
	assert.Equal(t, 1, bag.Dropped())
	assert.True(t, bag.HasErrors())
	assert.Equal(t, 1, bag.Count(SevWarning))
}

func TestBag_Sorted(t *testing.T) {
	bag := NewBag(0)
	bag.Report(New(testDescriptor, Location{File: "b.proto", Line: 1}, "x", 1))
	bag.Report(New(testDescriptor, Location{File: "a.proto", Line: 9}, "x", 1))
	bag.Report(New(testDescriptor, Location{File: "a.proto", Line: 2}, "x", 1).WithSeverity(SevInfo))
	bag.Report(New(testDescriptor, Location{File: "a.proto", Line: 2}, "x", 1).WithSeverity(SevError))

	sorted := bag.Sorted()
	require.Len(t, sorted, 4)
	assert.Equal(t, "a.proto", sorted[0].Location.File)
	assert.Equal(t, SevError, sorted[0].Severity)
	assert.Equal(t, SevInfo, sorted[1].Severity)
	assert.Equal(t, 9, sorted[2].Location.Line)
	assert.Equal(t, "b.proto", sorted[3].Location.File)

	// original order untouched
	assert.Equal(t, "b.proto", bag.Diagnostics()[0].Location.File)
}

func TestSinkFuncs(t *testing.T) {
	var got []Diagnostic
	sink := SinkFuncs{
		ReportFunc: func(d Diagnostic) { got = append(got, d) },
		QueryFunc:  func() []Diagnostic { return got },
	}
	sink.Report(New(testDescriptor, Location{}, "x", 1))
	assert.Len(t, sink.Diagnostics(), 1)

	var empty SinkFuncs
	assert.NotPanics(t, func() { empty.Report(Diagnostic{}) })
	assert.Nil(t, empty.Diagnostics())
}

func TestRaise(t *testing.T) {
	d := New(testDescriptor, Location{File: "x.proto"}, "v", 3)
	err := fmt.Errorf("wrapped: %w", Raise(d))

	var precise *Error
	require.True(t, errors.As(err, &precise))
	assert.Equal(t, d, precise.Diagnostic)
	assert.Contains(t, err.Error(), "T0001")
}
