package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/metrics"
	"go.uber.org/zap"
)

// Publisher pushes events to live listeners.
type Publisher interface {
	Publish(ctx context.Context, eventType string, v interface{})
}

// EventNotification is the live event carrying a stored notification.
const EventNotification = "notification"

// NotificationService manages the notification inbox.
type NotificationService struct {
	repo      *repository.NotificationRepository
	publisher Publisher
	logger    *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, publisher Publisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, publisher: publisher, logger: logger}
}

// List returns notifications newest first.
func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]entity.Notification, error) {
	return s.repo.List(ctx, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}

func (s *NotificationService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.UnreadCount(ctx)
}

// PurgeRead drops read notifications older than maxAge.
func (s *NotificationService) PurgeRead(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, time.Now().Add(-maxAge))
}

// Notify stores n and pushes it to live listeners. Failures are logged and
// never returned: the mutation that triggered n has already been committed.
func (s *NotificationService) Notify(ctx context.Context, n *entity.Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := s.repo.Create(ctx, n); err != nil {
		metrics.NotificationFailures.Inc()
		s.logger.Warn("store notification failed",
			zap.String("type", n.Type),
			zap.String("purchase_id", n.PurchaseID),
			zap.Error(err))
		return
	}
	if s.publisher != nil {
		s.publisher.Publish(ctx, EventNotification, n)
	}
}

func purchaseCreatedNotification(p *entity.Purchase) *entity.Notification {
	return &entity.Notification{
		Type:       entity.NotificationPurchaseCreated,
		Title:      "New Purchase Request",
		Message:    fmt.Sprintf("Purchase request %q (%s) was created", p.Title, p.PRNo),
		PurchaseID: p.ID,
	}
}

func statusChangedNotification(p *entity.Purchase, comments string) *entity.Notification {
	msg := fmt.Sprintf("%q (%s) is now %s", p.Title, p.PRNo, p.Status)
	if comments != "" {
		msg += ": " + comments
	}
	return &entity.Notification{
		Type:       entity.NotificationStatusChanged,
		Title:      "Purchase " + p.Status,
		Message:    msg,
		PurchaseID: p.ID,
	}
}
