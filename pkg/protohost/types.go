package protohost

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/editor"
	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/processor"
)

// Aliases binding the generic core to protobuf programs.
type (
	Editor    = editor.Editor[*Program, *descriptorpb.FileDescriptorSet]
	Env       = editor.Env[*Program, *descriptorpb.FileDescriptorSet]
	Base      = editor.Base[*Program, *descriptorpb.FileDescriptorSet]
	Registry  = annotation.Registry[*Program, *descriptorpb.FileDescriptorSet]
	Factory   = annotation.Factory[*Program, *descriptorpb.FileDescriptorSet]
	Marker    = annotation.Marker[*Program, *descriptorpb.FileDescriptorSet]
	Processor = processor.Processor[*Program, *descriptorpb.FileDescriptorSet, *Output]

	ProgramStep  = pipeline.Step[*Program]
	AssemblyStep = pipeline.Step[*descriptorpb.FileDescriptorSet]
)

// NewRegistry creates an empty marker registry for protobuf editors.
func NewRegistry() *Registry {
	return annotation.NewRegistry[*Program, *descriptorpb.FileDescriptorSet]()
}
