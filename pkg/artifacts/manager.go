package artifacts

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/weaver/pkg/observability"
)

// New creates the manager selected by cfg.Backend
func New(ctx context.Context, cfg *Config) (Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendS3:
		return NewS3Manager(ctx, cfg)
	default:
		return NewFileSystemManager(cfg)
	}
}

// Instrumented records store outcomes and logs them
type Instrumented struct {
	Manager
	metrics *observability.Metrics
	log     *logrus.Logger
}

// Instrument wraps m so every Store is counted and logged
func Instrument(m Manager, metrics *observability.Metrics, log *logrus.Logger) *Instrumented {
	return &Instrumented{Manager: m, metrics: metrics, log: observability.OrDiscard(log)}
}

// Store implements Manager
func (i *Instrumented) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	res, err := i.Manager.Store(ctx, req)

	var size int64
	if res != nil {
		size = res.Size
	}
	i.metrics.RecordArtifact(i.Backend(), int(size), err)

	name := ""
	if req != nil {
		name = req.Name
	}
	entry := i.log.WithFields(logrus.Fields{
		"artifact": name,
		"backend":  i.Backend(),
	})
	if err != nil {
		entry.WithError(err).Warn("failed to store artifact")
		return nil, fmt.Errorf("store %s: %w", name, err)
	}
	entry.WithFields(logrus.Fields{
		"key":  res.Key,
		"hash": res.Hash,
		"size": res.Size,
	}).Info("stored artifact")
	return res, nil
}
