package repository_test

import (
	"context"
	"testing"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/testutil"
)

func TestUpsertManyAndDeleteNotIn(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories(testutil.SetupTestDB(t))

	if err := repos.Purchase.UpsertMany(ctx, []entity.Purchase{
		{ID: "2025-PF-001", Title: "A", Status: entity.StatusPending},
		{ID: "2025-PF-002", Title: "B", Status: entity.StatusPending},
	}); err != nil {
		t.Fatalf("UpsertMany: %v", err)
	}
	if err := repos.Attachment.Create(ctx, &entity.Attachment{ID: "att-1", PurchaseID: "2025-PF-002", StorageKey: "attachments/2025-PF-002/att-1"}); err != nil {
		t.Fatalf("create attachment: %v", err)
	}
	if err := repos.Purchase.UpsertMany(ctx, []entity.Purchase{{ID: "2025-PF-001", Title: "A2", Status: entity.StatusApproved}}); err != nil {
		t.Fatalf("UpsertMany overwrite: %v", err)
	}
	p, err := repos.Purchase.FindByID(ctx, "2025-PF-001")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if p.Title != "A2" || p.Status != entity.StatusApproved {
		t.Fatalf("expected overwrite, got %+v", p)
	}

	keys, err := repos.Attachment.StorageKeys(ctx, []string{"2025-PF-002"})
	if err != nil || len(keys) != 1 {
		t.Fatalf("expected one storage key, got %v %v", keys, err)
	}

	gone, err := repos.Purchase.DeleteNotIn(ctx, []string{"2025-PF-001"})
	if err != nil {
		t.Fatalf("DeleteNotIn: %v", err)
	}
	if len(gone) != 1 || gone[0] != "2025-PF-002" {
		t.Fatalf("unexpected removed ids %v", gone)
	}
	if n, _ := repos.Purchase.Count(ctx); n != 1 {
		t.Fatalf("expected one purchase left, got %d", n)
	}
	if list, _ := repos.Attachment.ListByPurchase(ctx, "2025-PF-002"); len(list) != 0 {
		t.Fatalf("expected attachments of removed purchase deleted, got %d", len(list))
	}
}
