package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/sequence"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/testutil"
)

func TestSequenceLoadEmpty(t *testing.T) {
	repo := repository.NewSequenceRepository(testutil.SetupTestDB(t))
	st, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.Version != 0 || st.Name != entity.SequenceStateKey {
		t.Fatalf("unexpected fresh state %+v", st)
	}
	for _, p := range entity.SeriesPrefixes {
		if _, ok := st.Counters[p]; !ok {
			t.Fatalf("missing prefix %s", p)
		}
	}
}

func TestSequenceSaveDetectsConflict(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSequenceRepository(testutil.SetupTestDB(t))

	a, _ := repo.Load(ctx)
	b, _ := repo.Load(ctx)
	_, next := sequence.Next(a.Counters, "PR", "2025")
	if err := repo.Save(ctx, a, next); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if a.Version != 1 {
		t.Fatalf("expected version 1, got %d", a.Version)
	}
	if err := repo.Save(ctx, b, next); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict creating the row twice, got %v", err)
	}

	stale, _ := repo.Load(ctx)
	fresh, _ := repo.Load(ctx)
	_, next = sequence.Next(fresh.Counters, "PR", "2025")
	if err := repo.Save(ctx, fresh, next); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, stale, next); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict on stale version, got %v", err)
	}

	st, _ := repo.Load(ctx)
	if st.Version != 2 || st.Counters.Get("PR", "2025") != 2 {
		t.Fatalf("unexpected stored state version=%d counters=%v", st.Version, st.Counters)
	}
}
