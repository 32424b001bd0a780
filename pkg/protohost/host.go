package protohost

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/processor"
)

// ErrNoOutput is returned when a nil output is handed to the host.
var ErrNoOutput = errors.New("no output")

// Output is the builder emitted for a program: the compiled descriptor set.
type Output struct {
	program  *Program
	set      *descriptorpb.FileDescriptorSet
	revision int
}

// Program returns the program the output was emitted from
func (o *Output) Program() *Program { return o.program }

// Set returns a copy of the descriptor set
func (o *Output) Set() *descriptorpb.FileDescriptorSet {
	return proto.Clone(o.set).(*descriptorpb.FileDescriptorSet)
}

// Revision counts how many times the descriptor set was replaced after
// emission.
func (o *Output) Revision() int { return o.revision }

// Files returns the file names in the descriptor set, dependencies first.
func (o *Output) Files() []string {
	names := make([]string, 0, len(o.set.GetFile()))
	for _, f := range o.set.GetFile() {
		names = append(names, f.GetName())
	}
	return names
}

// File looks up a file descriptor by name
func (o *Output) File(name string) (*descriptorpb.FileDescriptorProto, bool) {
	for _, f := range o.set.GetFile() {
		if f.GetName() == name {
			return proto.Clone(f).(*descriptorpb.FileDescriptorProto), true
		}
	}
	return nil, false
}

// Bytes returns the deterministic binary encoding of the descriptor set.
func (o *Output) Bytes() ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(o.set)
}

// JSON returns the descriptor set in protojson form.
func (o *Output) JSON() ([]byte, error) {
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(o.set)
}

// Host compiles programs for the processor.
type Host struct {
	compiler *Compiler
	reporter diag.Reporter
}

var _ processor.Host[*Program, *descriptorpb.FileDescriptorSet, *Output] = (*Host)(nil)

// NewHost creates a host. Compile warnings are sent to rep.
func NewHost(compiler *Compiler, rep diag.Reporter) *Host {
	return &Host{compiler: compiler, reporter: rep}
}

// Emit compiles program
func (h *Host) Emit(ctx context.Context, program *Program) (*Output, error) {
	set, err := h.compiler.Compile(ctx, program, h.reporter)
	if err != nil {
		return nil, err
	}
	return &Output{program: program, set: set}, nil
}

// AssemblySymbol returns a copy of the output's descriptor set, so edits
// reach the output only through SetAssemblySymbol.
func (h *Host) AssemblySymbol(out *Output) (*descriptorpb.FileDescriptorSet, error) {
	if out == nil {
		return nil, ErrNoOutput
	}
	return out.Set(), nil
}

// SetAssemblySymbol replaces the output's descriptor set
func (h *Host) SetAssemblySymbol(out *Output, set *descriptorpb.FileDescriptorSet) error {
	if out == nil {
		return ErrNoOutput
	}
	if set == nil {
		return fmt.Errorf("replace descriptor set: %w", errors.New("nil descriptor set"))
	}
	out.set = set
	out.revision++
	return nil
}
