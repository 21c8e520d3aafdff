package memory

import (
	"context"
	"fmt"
	"sync"

	"recosim/domain"
)

// SimConfigRepository holds the operator-tuned simulation parameters.
type SimConfigRepository struct {
	mu  sync.RWMutex
	cfg domain.SimConfig
	set bool
}

func NewSimConfigRepository() *SimConfigRepository {
	return &SimConfigRepository{}
}

func (r *SimConfigRepository) GetConfig(ctx context.Context) (domain.SimConfig, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.SimConfig{}, false, fmt.Errorf("context error: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg, r.set, nil
}

func (r *SimConfigRepository) UpsertConfig(ctx context.Context, cfg domain.SimConfig) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.set = true
	return nil
}
