package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/store"
)

func newEnv() *Env[int, string] {
	return &Env[int, string]{
		Program:  pipeline.New[int]("program"),
		Assembly: pipeline.New[string]("assembly"),
		Store:    store.New(),
	}
}

func addOne() pipeline.Step[int] {
	return pipeline.Func("add-one", func(ctx context.Context, in int) (int, bool, error) {
		return in + 1, true, nil
	})
}

func TestBase_TracksAndRevokes(t *testing.T) {
	env := newEnv()
	ed := New[int, string]("adder", func(ctx context.Context, self *Func[int, string], env *Env[int, string]) ([]Editor[int, string], error) {
		self.AddProgramStep(env, addOne())
		self.AddAssemblyStep(env, pipeline.Func("suffix", func(ctx context.Context, in string) (string, bool, error) {
			return in + "!", true, nil
		}))
		return nil, nil
	})

	children, err := ed.Initialize(context.Background(), env)
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.Equal(t, 2, ed.Registrations())

	out, _, err := env.Program.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, out)

	ed.UnregisterAll()
	ed.UnregisterAll()
	assert.Equal(t, 0, ed.Registrations())

	out, changed, err := env.Program.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, out)
	assert.Equal(t, 0, env.Assembly.Len())
}

func TestBase_UnregisterWithoutInitialize(t *testing.T) {
	ed := New[int, string]("idle", nil)
	assert.NotPanics(t, ed.UnregisterAll)

	children, err := ed.Initialize(context.Background(), newEnv())
	assert.NoError(t, err)
	assert.Nil(t, children)
}

func TestBase_TrackNil(t *testing.T) {
	var b Base[int, string]
	assert.Nil(t, b.Track(nil))
	assert.Equal(t, 0, b.Registrations())
}

func TestFunc_Hooks(t *testing.T) {
	var calls []string
	ed := New[int, string]("hooks", nil)
	ed.CompilationStart = func(ctx context.Context) error { calls = append(calls, "cs"); return nil }
	ed.CompilationEnd = func(ctx context.Context) error { calls = append(calls, "ce"); return nil }
	ed.EmissionStart = func(ctx context.Context) error { calls = append(calls, "es"); return nil }
	ed.EmissionEnd = func(ctx context.Context) error { return errors.New("end failed") }
	ed.Teardown = func() error { calls = append(calls, "close"); return nil }

	ctx := context.Background()
	require.NoError(t, ed.OnCompilationStart(ctx))
	require.NoError(t, ed.OnCompilationEnd(ctx))
	require.NoError(t, ed.OnEmissionStart(ctx))
	assert.EqualError(t, ed.OnEmissionEnd(ctx), "end failed")
	require.NoError(t, ed.Close())

	assert.Equal(t, []string{"cs", "ce", "es", "close"}, calls)
	assert.Equal(t, "hooks", ed.Name())
}

func TestFunc_DefaultHooksAreNoops(t *testing.T) {
	ed := New[int, string]("quiet", nil)
	ctx := context.Background()
	assert.NoError(t, ed.OnCompilationStart(ctx))
	assert.NoError(t, ed.OnCompilationEnd(ctx))
	assert.NoError(t, ed.OnEmissionStart(ctx))
	assert.NoError(t, ed.OnEmissionEnd(ctx))
	assert.NoError(t, ed.Close())
}

func TestIsNil(t *testing.T) {
	var typed *Func[int, string]
	assert.True(t, IsNil[int, string](nil))
	assert.True(t, IsNil[int, string](typed))
	assert.False(t, IsNil[int, string](New[int, string]("x", nil)))
}
