package memory

import (
	"context"
	"strings"
	"testing"

	"recosim/domain"
)

func sampleEvents(n int) []domain.Event {
	events := make([]domain.Event, n)
	for i := range events {
		events[i] = domain.Event{
			Timestamp:    int64(i),
			UserID:       "u-1",
			Kind:         domain.EventOrganic,
			ProductIndex: i % 5,
		}
	}
	return events
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()

	run := domain.SimulationRun{ID: "r-1", NumUsers: 1, NumEvents: 3}
	if err := repo.SaveRun(ctx, run, sampleEvents(3)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetRun(ctx, "r-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.NumEvents != 3 {
		t.Fatalf("num events %d, want 3", got.NumEvents)
	}

	if _, err := repo.GetRun(ctx, "r-2"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRunRepository_GetEventsPaging(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()

	if err := repo.SaveRun(ctx, domain.SimulationRun{ID: "r-1"}, sampleEvents(25)); err != nil {
		t.Fatalf("save: %v", err)
	}

	page, err := repo.GetEvents(ctx, "r-1", 0, 10)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	if len(page) != 10 || page[0].Timestamp != 0 {
		t.Fatalf("unexpected first page: len=%d first=%+v", len(page), page[0])
	}

	page, err = repo.GetEvents(ctx, "r-1", 20, 10)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	if len(page) != 5 || page[0].Timestamp != 20 {
		t.Fatalf("unexpected last page: len=%d", len(page))
	}

	page, err = repo.GetEvents(ctx, "r-1", 100, 10)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("offset past the end returned %d events", len(page))
	}
}

func TestRunRepository_StoredEventsAreIsolated(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()

	events := sampleEvents(3)
	if err := repo.SaveRun(ctx, domain.SimulationRun{ID: "r-1"}, events); err != nil {
		t.Fatalf("save: %v", err)
	}

	// mutating the caller's slice must not reach the stored copy
	events[0].ProductIndex = 99

	page, err := repo.GetEvents(ctx, "r-1", 0, 3)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	if page[0].ProductIndex == 99 {
		t.Fatal("repository shares storage with the caller")
	}
}

func TestSimConfigRepository_Upsert(t *testing.T) {
	repo := NewSimConfigRepository()
	ctx := context.Background()

	if _, ok, err := repo.GetConfig(ctx); err != nil || ok {
		t.Fatalf("fresh repo: ok=%v err=%v", ok, err)
	}

	cfg := domain.SimConfig{NumProducts: 10, RandomSeed: 42, DefaultPolicy: "uniform"}
	if err := repo.UpsertConfig(ctx, cfg); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok, err := repo.GetConfig(ctx)
	if err != nil || !ok {
		t.Fatalf("get after upsert: ok=%v err=%v", ok, err)
	}
	if got.NumProducts != 10 || got.RandomSeed != 42 {
		t.Fatalf("stored config drifted: %+v", got)
	}
}
