package editors

import (
	"context"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

// StripSourceInfo removes source code info from the emitted descriptors.
type StripSourceInfo struct {
	protohost.Base
}

// NewStripSourceInfo builds the weave.StripSourceInfo marker.
func NewStripSourceInfo(decl annotation.Declared) (protohost.Marker, error) {
	return marker(decl, &StripSourceInfo{Base: protohost.Base{EditorName: decl.Type}})
}

func (s *StripSourceInfo) Initialize(ctx context.Context, env *protohost.Env) ([]protohost.Editor, error) {
	s.AddAssemblyStep(env, pipeline.Func("strip-source-info", stripSourceInfo))
	return nil, nil
}

func stripSourceInfo(ctx context.Context, set *descriptorpb.FileDescriptorSet) (*descriptorpb.FileDescriptorSet, bool, error) {
	stripped := false
	for _, file := range set.GetFile() {
		if file.SourceCodeInfo != nil {
			stripped = true
			break
		}
	}
	if !stripped {
		return set, false, nil
	}

	out := proto.Clone(set).(*descriptorpb.FileDescriptorSet)
	for _, file := range out.GetFile() {
		file.SourceCodeInfo = nil
	}
	return out, true, nil
}
