package service

import (
	"context"
	"errors"
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options tunes the procurement services.
type Options struct {
	// Location decides which calendar year a new document number belongs to.
	Location *time.Location
	// SystemUser is recorded when no acting user is known.
	SystemUser string
}

// Services bundles the procurement services.
type Services struct {
	Purchase     *PurchaseService
	Notification *NotificationService
	Attachment   *AttachmentService
	Transfer     *TransferService
	Dashboard    *DashboardService
}

// NewServices wires the services over db. blobs and publisher may be nil.
func NewServices(db *gorm.DB, repos *repository.Repositories, blobs BlobStore, publisher Publisher, logger *zap.Logger, opts Options) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.SystemUser == "" {
		opts.SystemUser = "User"
	}

	notifications := NewNotificationService(repos.Notification, publisher, logger)
	purchases := NewPurchaseService(db, repos, notifications, blobs, logger, opts)
	return &Services{
		Purchase:     purchases,
		Notification: notifications,
		Attachment:   NewAttachmentService(db, repos, blobs, logger, opts),
		Transfer:     NewTransferService(db, repos, blobs, logger, opts),
		Dashboard:    NewDashboardService(repos.Purchase),
	}
}

const maxTxAttempts = 3

// transact runs fn inside one transaction, retrying when the counters row
// was changed by another writer.
func transact(ctx context.Context, db *gorm.DB, fn func(repos *repository.Repositories) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(repository.NewRepositories(tx))
		})
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
	}
	return err
}

// actor falls back to the configured system user.
func actor(user, fallback string) string {
	if user == "" {
		return fallback
	}
	return user
}

func ensureSlices(p *entity.Purchase) {
	if p.Items == nil {
		p.Items = []entity.Item{}
	}
	if p.Attachments == nil {
		p.Attachments = []entity.AttachmentRef{}
	}
	if p.AuditTrail == nil {
		p.AuditTrail = []entity.AuditEntry{}
	}
}
