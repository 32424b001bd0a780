package processor

import (
	"context"

	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/store"
)

// Host is the capability the host toolchain exposes to the processor.
type Host[P, A, B any] interface {
	// Emit builds the output builder for program. Called once per edit cycle.
	Emit(ctx context.Context, program P) (B, error)

	// AssemblySymbol extracts the assembly-level symbol embedded in builder.
	AssemblySymbol(builder B) (A, error)

	// SetAssemblySymbol replaces the symbol embedded in builder.
	SetAssemblySymbol(builder B, symbol A) error
}

const recomputeOptionsName = "weaver.recompute-options"

// RecomputeOptionsKey addresses the pending pipeline that rebuilds the
// program with new compile options before editing starts.
func RecomputeOptionsKey[P any]() store.Key[*pipeline.Pipeline[P]] {
	return store.NewKey[*pipeline.Pipeline[P]](recomputeOptionsName)
}

// PendingRecompute returns the recompute pipeline stored in s, creating and
// storing an empty one on first use so several editors can share it.
func PendingRecompute[P any](s *store.Store) *pipeline.Pipeline[P] {
	key := RecomputeOptionsKey[P]()
	if p, ok := store.TryGet(s, key); ok && p != nil {
		return p
	}
	p := pipeline.New[P]("recompute-options")
	store.Set(s, key, p)
	return p
}
