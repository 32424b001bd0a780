package protohost

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/platinummonkey/weaver/pkg/annotation"
)

// SourceInfoMode selects how much source information compiled descriptors
// carry.
type SourceInfoMode string

const (
	SourceInfoNone     SourceInfoMode = "none"
	SourceInfoStandard SourceInfoMode = "standard"
	SourceInfoExtra    SourceInfoMode = "extra"
)

// Options are the compile options of a program.
type Options struct {
	SourceInfo SourceInfoMode `yaml:"source_info"`
	// IncludeImports adds imported files that are not program units, such
	// as the well-known types, to the emitted descriptor set.
	IncludeImports bool `yaml:"include_imports"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{SourceInfo: SourceInfoStandard}
}

// Validate checks the options
func (o Options) Validate() error {
	switch o.SourceInfo {
	case SourceInfoNone, SourceInfoStandard, SourceInfoExtra:
		return nil
	default:
		return fmt.Errorf("invalid source info mode %q", o.SourceInfo)
	}
}

func (o Options) String() string {
	return fmt.Sprintf("source_info=%s,include_imports=%t", o.SourceInfo, o.IncludeImports)
}

// Unit is one .proto source file.
type Unit struct {
	Path    string
	Content string
}

// Program is an immutable set of units and the options to compile them with.
// Every With method returns a new Program.
type Program struct {
	units       []Unit
	index       map[string]int
	options     Options
	annotations annotation.List
}

var (
	// ErrDuplicateUnit is returned when two units share a path.
	ErrDuplicateUnit = errors.New("duplicate unit")
	// ErrInvalidPath is returned for empty or absolute unit paths.
	ErrInvalidPath = errors.New("invalid unit path")
)

// NewProgram creates a program. Unit order is kept; directives are scanned
// from every unit.
func NewProgram(units []Unit, opts Options) (*Program, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &Program{
		units:   make([]Unit, 0, len(units)),
		index:   make(map[string]int, len(units)),
		options: opts,
	}
	for _, u := range units {
		if err := validatePath(u.Path); err != nil {
			return nil, err
		}
		if _, dup := p.index[u.Path]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUnit, u.Path)
		}
		p.index[u.Path] = len(p.units)
		p.units = append(p.units, u)
	}
	if err := p.scan(); err != nil {
		return nil, err
	}
	return p, nil
}

func validatePath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if !strings.HasSuffix(path, ".proto") {
		return fmt.Errorf("%w: %q is not a .proto file", ErrInvalidPath, path)
	}
	return nil
}

func (p *Program) scan() error {
	var all annotation.List
	for _, u := range p.units {
		found, err := ScanDirectives(u.Path, u.Content)
		if err != nil {
			return err
		}
		all = append(all, found...)
	}
	p.annotations = all
	return nil
}

// Units returns a copy of the units in program order
func (p *Program) Units() []Unit { return slices.Clone(p.units) }

// Len returns the number of units
func (p *Program) Len() int { return len(p.units) }

// Paths returns unit paths in program order
func (p *Program) Paths() []string {
	paths := make([]string, len(p.units))
	for i, u := range p.units {
		paths[i] = u.Path
	}
	return paths
}

// Unit looks up a unit by path
func (p *Program) Unit(path string) (Unit, bool) {
	i, ok := p.index[path]
	if !ok {
		return Unit{}, false
	}
	return p.units[i], true
}

// Options returns the compile options
func (p *Program) Options() Options { return p.options }

// Annotations returns the marker directives found in the program's units,
// in unit order then line order.
func (p *Program) Annotations() []annotation.Declared { return p.annotations }

// WithUnit returns a program with u added, or replacing the unit at the
// same path in place.
func (p *Program) WithUnit(u Unit) (*Program, error) {
	units := p.Units()
	if i, ok := p.index[u.Path]; ok {
		units[i] = u
	} else {
		units = append(units, u)
	}
	return NewProgram(units, p.options)
}

// WithoutUnit returns a program without the unit at path.
func (p *Program) WithoutUnit(path string) *Program {
	i, ok := p.index[path]
	if !ok {
		return p
	}
	units := slices.Delete(p.Units(), i, i+1)
	next, err := NewProgram(units, p.options)
	if err != nil {
		// units were valid before removal
		panic(err)
	}
	return next
}

// WithOptions returns a program compiled with opts.
func (p *Program) WithOptions(opts Options) (*Program, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	next := *p
	next.options = opts
	return &next, nil
}

// Hash returns a content hash of the units and options. Units are hashed in
// path order, so the hash does not depend on program order.
func (p *Program) Hash() string {
	sorted := p.Units()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	hasher := sha256.New()
	for _, u := range sorted {
		hasher.Write([]byte(u.Path))
		hasher.Write([]byte{0})
		hasher.Write([]byte(u.Content))
		hasher.Write([]byte{0})
	}
	hasher.Write([]byte(p.options.String()))
	return hex.EncodeToString(hasher.Sum(nil))
}
