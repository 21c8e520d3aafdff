package memory

import (
	"context"
	"fmt"
	"sync"

	"recosim/domain"
)

// RunRepository keeps simulation runs and their event logs in memory. Runs
// are cheap to regenerate from a seed, so nothing survives a restart.
type RunRepository struct {
	mu     sync.RWMutex
	runs   map[string]domain.SimulationRun
	events map[string][]domain.Event
}

func NewRunRepository() *RunRepository {
	return &RunRepository{
		runs:   make(map[string]domain.SimulationRun),
		events: make(map[string][]domain.Event),
	}
}

func (r *RunRepository) SaveRun(ctx context.Context, run domain.SimulationRun, events []domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]domain.Event, len(events))
	copy(stored, events)

	r.runs[run.ID] = run
	r.events[run.ID] = stored
	return nil
}

func (r *RunRepository) GetRun(ctx context.Context, id string) (domain.SimulationRun, error) {
	if err := ctx.Err(); err != nil {
		return domain.SimulationRun{}, fmt.Errorf("context error: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return domain.SimulationRun{}, fmt.Errorf("run %s not found", id)
	}
	return run, nil
}

func (r *RunRepository) GetEvents(ctx context.Context, id string, offset, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	events, ok := r.events[id]
	if !ok {
		return nil, fmt.Errorf("run %s not found", id)
	}

	if offset >= len(events) {
		return []domain.Event{}, nil
	}

	end := offset + limit
	if end > len(events) {
		end = len(events)
	}

	out := make([]domain.Event, end-offset)
	copy(out, events[offset:end])
	return out, nil
}
