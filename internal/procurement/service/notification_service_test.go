package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/testutil"
)

func TestNotificationInbox(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	ctx := context.Background()
	svc := env.Services.Notification

	for _, title := range []string{"first", "second", "third"} {
		svc.Notify(ctx, &entity.Notification{Type: entity.NotificationPurchaseCreated, Title: title})
	}
	if env.Publisher.Count() != 3 {
		t.Fatalf("expected 3 published events, got %d", env.Publisher.Count())
	}

	list, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].Title != "third" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[0].ID == "" || list[0].CreatedAt.IsZero() || list[0].Read {
		t.Fatalf("expected id, timestamp and unread state, got %+v", list[0])
	}

	if err := svc.MarkRead(ctx, list[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := svc.MarkRead(ctx, list[0].ID); err != nil {
		t.Fatalf("MarkRead twice should be a no-op: %v", err)
	}
	if n, _ := svc.UnreadCount(ctx); n != 2 {
		t.Fatalf("expected 2 unread, got %d", n)
	}
	unread, _ := svc.List(ctx, true)
	if len(unread) != 2 {
		t.Fatalf("expected unread filter to return 2, got %d", len(unread))
	}

	if err := svc.MarkRead(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, list[1].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, list[1].ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	n, err := svc.MarkAllRead(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected one notification marked, got %d %v", n, err)
	}
	if n, _ := svc.UnreadCount(ctx); n != 0 {
		t.Fatalf("expected none unread, got %d", n)
	}
}

func TestPurgeRead(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	ctx := context.Background()
	svc := env.Services.Notification

	old := time.Now().Add(-60 * 24 * time.Hour)
	svc.Notify(ctx, &entity.Notification{Type: entity.NotificationStatusChanged, Title: "old read", CreatedAt: old})
	svc.Notify(ctx, &entity.Notification{Type: entity.NotificationStatusChanged, Title: "old unread", CreatedAt: old})
	svc.Notify(ctx, &entity.Notification{Type: entity.NotificationStatusChanged, Title: "new read"})

	list, _ := svc.List(ctx, false)
	for _, n := range list {
		if n.Title != "old unread" {
			if err := svc.MarkRead(ctx, n.ID); err != nil {
				t.Fatalf("MarkRead: %v", err)
			}
		}
	}

	removed, err := svc.PurgeRead(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("PurgeRead: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected only the old read notification purged, got %d", removed)
	}
	list, _ = svc.List(ctx, false)
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications left, got %d", len(list))
	}
}
