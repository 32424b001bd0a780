package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendStep records its tag and appends it to the string slice.
func appendStep(tag string, seen *[]string) Step[[]string] {
	return Func(tag, func(ctx context.Context, in []string) ([]string, bool, error) {
		*seen = append(*seen, tag)
		out := append(append([]string(nil), in...), tag)
		return out, true, nil
	})
}

func TestPipeline_RunInAppendOrder(t *testing.T) {
	var seen []string
	p := New[[]string]("test")
	p.Append(appendStep("a", &seen))
	p.Append(appendStep("b", &seen))
	p.Append(appendStep("c", &seen))

	out, changed, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"a", "b", "c"}, out)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestPipeline_SubExpandedAtIterationTime(t *testing.T) {
	var seen []string
	p := New[[]string]("root")
	p.Append(appendStep("first", &seen))
	slot := p.Sub("reserved")
	p.Append(appendStep("last", &seen))

	// filled after the later step was appended
	slot.Append(appendStep("slot-1", &seen))
	slot.Append(appendStep("slot-2", &seen))

	out, _, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "slot-1", "slot-2", "last"}, out)
}

func TestPipeline_NestedSubsDepthFirst(t *testing.T) {
	var seen []string
	p := New[[]string]("root")
	outer := p.Sub("outer")
	p.Append(appendStep("tail", &seen))
	outer.Append(appendStep("o1", &seen))
	inner := outer.Sub("inner")
	outer.Append(appendStep("o2", &seen))
	inner.Append(appendStep("i1", &seen))

	_, _, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1", "i1", "o2", "tail"}, seen)
}

func TestPipeline_StepAppendedDuringTraversalRunsSamePass(t *testing.T) {
	var seen []string
	p := New[[]string]("root")
	slot := p.Sub("slot")
	p.Append(Func("spawner", func(ctx context.Context, in []string) ([]string, bool, error) {
		seen = append(seen, "spawner")
		p.Append(appendStep("spawned-root", &seen))
		return in, false, nil
	}))
	slot.Append(Func("slot-spawner", func(ctx context.Context, in []string) ([]string, bool, error) {
		seen = append(seen, "slot-spawner")
		slot.Append(appendStep("spawned-slot", &seen))
		return in, false, nil
	}))

	runs := 0
	for step := range p.Steps() {
		runs++
		if runs > 10 {
			t.Fatal("traversal did not terminate")
		}
		_, _, err := step.Apply(context.Background(), nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, runs)
	assert.Equal(t, []string{"slot-spawner", "spawned-slot", "spawner", "spawned-root"}, seen)
}

func TestPipeline_RunVisitsSpawnedStepsOnce(t *testing.T) {
	var seen []string
	p := New[[]string]("root")
	slot := p.Sub("slot")
	slot.Append(Func("slot-spawner", func(ctx context.Context, in []string) ([]string, bool, error) {
		seen = append(seen, "slot-spawner")
		slot.Append(appendStep("spawned", &seen))
		return in, false, nil
	}))
	p.Append(appendStep("after", &seen))

	out, changed, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"spawned", "after"}, out)
	assert.Equal(t, []string{"slot-spawner", "spawned", "after"}, seen)
}

func TestPipeline_UnchangedKeepsInput(t *testing.T) {
	p := New[int]("ints")
	p.Append(Func("noop", func(ctx context.Context, in int) (int, bool, error) {
		return 999, false, nil
	}))

	out, changed, err := p.Run(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 7, out)
}

func TestPipeline_RegistrationRemove(t *testing.T) {
	var seen []string
	p := New[[]string]("root")
	p.Append(appendStep("keep", &seen))
	reg := p.Append(appendStep("drop", &seen))
	subReg := p.Append(New[[]string]("sub"))

	reg.Remove()
	reg.Remove()
	subReg.Remove()
	assert.True(t, reg.Removed())

	out, _, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, out)
	assert.Equal(t, 1, p.Len())
}

func TestPipeline_RemoveDuringTraversal(t *testing.T) {
	var seen []string
	p := New[[]string]("root")
	var later *Registration
	p.Append(Func("remover", func(ctx context.Context, in []string) ([]string, bool, error) {
		later.Remove()
		return in, false, nil
	}))
	later = p.Append(appendStep("later", &seen))

	_, _, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestPipeline_NilRegistrationRemove(t *testing.T) {
	var reg *Registration
	assert.NotPanics(t, reg.Remove)
	assert.False(t, reg.Removed())
}

func TestPipeline_AppendNil(t *testing.T) {
	p := New[int]("ints")
	reg := p.Append(nil)
	assert.True(t, reg.Removed())
	assert.Equal(t, 0, p.Len())
}

func TestPipeline_StepErrorStopsRun(t *testing.T) {
	var seen []string
	boom := errors.New("boom")
	p := New[[]string]("root")
	p.Append(appendStep("a", &seen))
	p.Append(Func("fail", func(ctx context.Context, in []string) ([]string, bool, error) {
		return nil, false, boom
	}))
	p.Append(appendStep("never", &seen))

	out, changed, err := p.Run(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step fail")
	assert.True(t, changed)
	assert.Equal(t, []string{"a"}, out)
	assert.Equal(t, []string{"a"}, seen)
}

func TestPipeline_CanceledContext(t *testing.T) {
	var seen []string
	ctx, cancel := context.WithCancel(context.Background())
	p := New[[]string]("root")
	p.Append(Func("cancel", func(ctx context.Context, in []string) ([]string, bool, error) {
		cancel()
		return in, false, nil
	}))
	p.Append(appendStep("never", &seen))

	_, _, err := p.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, seen)
}

func TestPipeline_SelfNestingSkipped(t *testing.T) {
	var seen []string
	p := New[[]string]("root")
	p.Append(appendStep("a", &seen))
	p.Append(p)

	out, _, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out)
}

func TestPipeline_StepsEarlyBreak(t *testing.T) {
	var seen []string
	p := New[[]string]("root")
	p.Append(appendStep("a", &seen))
	p.Append(appendStep("b", &seen))

	count := 0
	for range p.Steps() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestPipeline_ApplyRunsAsSingleStep(t *testing.T) {
	var seen []string
	inner := New[[]string]("inner")
	inner.Append(appendStep("x", &seen))

	out, changed, err := inner.Apply(context.Background(), []string{"start"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"start", "x"}, out)
}
