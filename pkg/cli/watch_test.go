package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/weaver/pkg/artifacts"
	"github.com/platinummonkey/weaver/pkg/observability"
)

func TestWatch_RebuildsOnProtoChange(t *testing.T) {
	dir := writeTree(t, "api", map[string]string{"a.proto": apiProto})

	ctx, cancel := context.WithCancel(context.Background())
	var builds atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, observability.Discard(), dir, 20*time.Millisecond, func(context.Context) {
			builds.Add(1)
		})
	}()

	assert.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)

	// other files do not trigger a rebuild
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), builds.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.proto"), []byte(apiProto), 0644))
	assert.Eventually(t, func() bool { return builds.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_SurvivesPanics(t *testing.T) {
	dir := writeTree(t, "api", map[string]string{"a.proto": apiProto})

	ctx, cancel := context.WithCancel(context.Background())
	var builds atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, observability.Discard(), dir, 20*time.Millisecond, func(context.Context) {
			builds.Add(1)
			panic("rebuild exploded")
		})
	}()

	assert.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.proto"), []byte(apiProto+"\n"), 0644))
	assert.Eventually(t, func() bool { return builds.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatch_MissingDir(t *testing.T) {
	err := watch(context.Background(), observability.Discard(), filepath.Join(t.TempDir(), "missing"), time.Millisecond, func(context.Context) {})
	assert.Error(t, err)
}

func TestRunWatch_StoresInitialBuild(t *testing.T) {
	captureOutput(t)
	cfg := testConfig(t)
	dir := writeTree(t, "api", map[string]string{"a.proto": apiProto})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, cfg, dir, nil) }()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(cfg.Artifacts.Dir, "api", artifacts.IndexFile))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
