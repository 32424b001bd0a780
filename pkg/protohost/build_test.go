package protohost

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/editor"
	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/processor"
)

type descriptorSet = descriptorpb.FileDescriptorSet

const generatedProto = `syntax = "proto3";

package demo.v1;

message Generated {
  string value = 1;
}
`

// testRegistry registers "test.AddUnit", which appends generated.proto, and
// "test.Gate", whose editor fails when emission starts.
func testRegistry(t *testing.T, events *[]string) *Registry {
	t.Helper()
	reg := NewRegistry()

	require.NoError(t, reg.Register("test.AddUnit", annotation.RootType, func(decl annotation.Declared) (Marker, error) {
		order, err := decl.Order()
		if err != nil {
			return nil, err
		}
		name := decl.ArgOr("name", "add-unit")
		e := editor.New(name, func(ctx context.Context, self *editor.Func[*Program, *descriptorSet], env *Env) ([]Editor, error) {
			*events = append(*events, name)
			self.AddProgramStep(env, pipeline.Func("add-unit", func(ctx context.Context, p *Program) (*Program, bool, error) {
				next, err := p.WithUnit(Unit{Path: "generated.proto", Content: generatedProto})
				return next, err == nil, err
			}))
			return nil, nil
		})
		return annotation.MarkerOf[*Program, *descriptorSet](order, e), nil
	}))

	require.NoError(t, reg.Register("test.Gate", annotation.RootType, func(decl annotation.Declared) (Marker, error) {
		e := editor.New[*Program, *descriptorSet]("gate", nil)
		e.EmissionStart = func(context.Context) error { return errors.New("emission blocked") }
		return annotation.MarkerOf[*Program, *descriptorSet](0, e), nil
	}))

	return reg
}

func newBuilder(reg *Registry) *Builder {
	return &Builder{
		Registry: reg,
		Compiler: NewCompiler(DefaultCompilerConfig(), nil, nil),
		Options:  []processor.Option{processor.WithRunID(func() string { return "test" })},
	}
}

func TestBuild_AppendedUnitPresentOnce(t *testing.T) {
	var events []string
	p := mustProgram(t, Unit{Path: "common.proto", Content: "// @weave:test.AddUnit\n" + commonProto})

	sink := diag.NewBag(0)
	res := newBuilder(testRegistry(t, &events)).Build(context.Background(), p, sink)

	require.True(t, res.OK, sink.Diagnostics())
	assert.Equal(t, []string{"common.proto", "generated.proto"}, res.Program.Paths())
	assert.Equal(t, []string{"common.proto", "generated.proto"}, res.Output.Files())
	assert.Equal(t, []string{"add-unit"}, res.Editors)
	assert.Equal(t, 1, p.Len(), "input program untouched")
}

func TestBuild_UnitAlreadyPresentNotDuplicated(t *testing.T) {
	var events []string
	p := mustProgram(t,
		Unit{Path: "common.proto", Content: "// @weave:test.AddUnit\n" + commonProto},
		Unit{Path: "generated.proto", Content: generatedProto},
	)

	res := newBuilder(testRegistry(t, &events)).Build(context.Background(), p, diag.NewBag(0))
	require.True(t, res.OK)
	assert.Equal(t, []string{"common.proto", "generated.proto"}, res.Output.Files())
}

func TestBuild_OrderedByDirectiveOrder(t *testing.T) {
	var events []string
	p := mustProgram(t, Unit{
		Path: "common.proto",
		Content: "// @weave:test.AddUnit:name=five,order=5\n" +
			"// @weave:test.AddUnit:name=one,order=1\n" + commonProto,
	})

	res := newBuilder(testRegistry(t, &events)).Build(context.Background(), p, diag.NewBag(0))
	require.True(t, res.OK)
	assert.Equal(t, []string{"one", "five"}, events)
	assert.Equal(t, []string{"one", "five"}, res.Editors)
}

func TestBuild_EmissionStartFailure(t *testing.T) {
	var events []string
	p := mustProgram(t, Unit{Path: "common.proto", Content: "// @weave:test.Gate\n" + commonProto})

	sink := diag.NewBag(0)
	res := newBuilder(testRegistry(t, &events)).Build(context.Background(), p, sink)

	assert.False(t, res.OK)
	assert.Nil(t, res.Output)
	ds := sink.Diagnostics()
	require.Len(t, ds, 1)
	assert.Equal(t, "error during NotifyEmissionStart: emission blocked", ds[0].Message)
}

func TestBuild_CompileErrorsForwarded(t *testing.T) {
	var events []string
	p := mustProgram(t, Unit{Path: "broken.proto", Content: "syntax = \"proto3\";\nmessage B {\n  nope x = 1;\n  alsonope y = 2;\n}\n"})

	sink := diag.NewBag(0)
	res := newBuilder(testRegistry(t, &events)).Build(context.Background(), p, sink)

	assert.False(t, res.OK)
	ds := sink.Diagnostics()
	require.NotEmpty(t, ds)
	for _, d := range ds {
		assert.Equal(t, CompileErrorID, d.ID())
		assert.Equal(t, "broken.proto", d.Location.File)
	}
}

func TestBuild_UnknownAnnotationsIgnored(t *testing.T) {
	var events []string
	p := mustProgram(t, Unit{Path: "common.proto", Content: "// @weave:other.Thing:x=1\n" + commonProto})

	res := newBuilder(testRegistry(t, &events)).Build(context.Background(), p, diag.NewBag(0))
	require.True(t, res.OK)
	assert.Empty(t, res.Editors)
}

func TestBuild_ConstructionFailureReported(t *testing.T) {
	var events []string
	p := mustProgram(t, Unit{Path: "common.proto", Content: "// @weave:test.AddUnit:order=soon\n" + commonProto})

	sink := diag.NewBag(0)
	res := newBuilder(testRegistry(t, &events)).Build(context.Background(), p, sink)
	assert.False(t, res.OK)
	require.Len(t, sink.Diagnostics(), 1)
	assert.Equal(t, diag.ConstructionErrorID, sink.Diagnostics()[0].ID())
	assert.Equal(t, 1, sink.Diagnostics()[0].Location.Line)
	assert.Empty(t, events)
}
