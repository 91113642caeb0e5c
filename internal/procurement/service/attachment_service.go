package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BlobStore keeps attachment payloads outside the database.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

// ErrBlobUnavailable is returned when a payload lives in object storage that
// is not configured.
var ErrBlobUnavailable = errors.New("attachment payload is in object storage, which is not configured")

// AttachmentService stores files attached to purchases.
type AttachmentService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	blobs  BlobStore
	logger *zap.Logger
	opts   Options
}

func NewAttachmentService(db *gorm.DB, repos *repository.Repositories, blobs BlobStore, logger *zap.Logger, opts Options) *AttachmentService {
	return &AttachmentService{db: db, repos: repos, blobs: blobs, logger: logger, opts: opts}
}

// Upload is one incoming file.
type Upload struct {
	OriginalName string
	MimeType     string
	Data         []byte
	UploadedBy   string
}

// Add stores the file and mirrors a reference onto the purchase. The file is
// kept even when the purchase cannot be found.
func (s *AttachmentService) Add(ctx context.Context, purchaseID string, up *Upload) (*entity.Attachment, error) {
	now := time.Now()
	user := actor(up.UploadedBy, s.opts.SystemUser)
	a := &entity.Attachment{
		ID:           uuid.New().String(),
		PurchaseID:   purchaseID,
		Filename:     fmt.Sprintf("%d-%s", now.UnixMilli(), up.OriginalName),
		OriginalName: up.OriginalName,
		MimeType:     up.MimeType,
		Size:         int64(len(up.Data)),
		UploadedAt:   now,
		UploadedBy:   user,
	}
	if s.blobs != nil {
		key := path.Join("attachments", purchaseID, a.ID)
		if err := s.blobs.Put(ctx, key, up.Data, up.MimeType); err != nil {
			return nil, fmt.Errorf("store attachment object: %w", err)
		}
		a.StorageKey = key
	} else {
		a.Data = up.Data
	}

	err := transact(ctx, s.db, func(repos *repository.Repositories) error {
		if err := repos.Attachment.Create(ctx, a); err != nil {
			return err
		}
		p, err := repos.Purchase.FindByID(ctx, purchaseID)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("attachment stored for unknown purchase",
				zap.String("purchase_id", purchaseID),
				zap.String("attachment_id", a.ID))
			return nil
		}
		if err != nil {
			return err
		}
		ensureSlices(p)
		p.Attachments = append(p.Attachments, a.Ref())
		appendAudit(p, now, entity.ActionAttachmentAdded, user, "Attached "+a.OriginalName, "", "")
		p.UpdatedAt = &now
		return repos.Purchase.Save(ctx, p)
	})
	if err != nil {
		removeObjects(ctx, s.blobs, []string{a.StorageKey}, s.logger)
		return nil, fmt.Errorf("add attachment: %w", err)
	}
	a.Data = up.Data
	return a, nil
}

// Get returns the attachment including its payload.
func (s *AttachmentService) Get(ctx context.Context, id string) (*entity.Attachment, error) {
	a, err := s.repos.Attachment.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.StorageKey == "" {
		return a, nil
	}
	if s.blobs == nil {
		return nil, ErrBlobUnavailable
	}
	data, err := s.blobs.Get(ctx, a.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read attachment object: %w", err)
	}
	a.Data = data
	return a, nil
}

// List returns the metadata of a purchase's attachments, oldest first.
func (s *AttachmentService) List(ctx context.Context, purchaseID string) ([]entity.Attachment, error) {
	return s.repos.Attachment.ListByPurchase(ctx, purchaseID)
}

// Delete removes the attachment and, when the purchase still exists, its
// reference on the purchase.
func (s *AttachmentService) Delete(ctx context.Context, id, deletedBy string) error {
	user := actor(deletedBy, s.opts.SystemUser)
	var key string
	err := transact(ctx, s.db, func(repos *repository.Repositories) error {
		a, err := repos.Attachment.FindByID(ctx, id)
		if err != nil {
			return err
		}
		key = a.StorageKey
		if err := repos.Attachment.Delete(ctx, id); err != nil {
			return err
		}
		p, err := repos.Purchase.FindByID(ctx, a.PurchaseID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ensureSlices(p)
		kept := p.Attachments[:0:0]
		for _, ref := range p.Attachments {
			if ref.ID != id {
				kept = append(kept, ref)
			}
		}
		now := time.Now()
		p.Attachments = kept
		appendAudit(p, now, entity.ActionAttachmentRemoved, user, "Removed "+a.OriginalName, "", "")
		p.UpdatedAt = &now
		return repos.Purchase.Save(ctx, p)
	})
	if err != nil {
		return err
	}
	removeObjects(ctx, s.blobs, []string{key}, s.logger)
	return nil
}

// SweepOrphans deletes attachments older than grace whose purchase is gone.
func (s *AttachmentService) SweepOrphans(ctx context.Context, grace time.Duration) (int, error) {
	orphans, err := s.repos.Attachment.Orphans(ctx, time.Now().Add(-grace))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, a := range orphans {
		if err := s.repos.Attachment.Delete(ctx, a.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return removed, err
		}
		removeObjects(ctx, s.blobs, []string{a.StorageKey}, s.logger)
		removed++
	}
	return removed, nil
}

// removeObjects deletes payload objects best-effort.
func removeObjects(ctx context.Context, blobs BlobStore, keys []string, logger *zap.Logger) {
	if blobs == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := blobs.Remove(ctx, key); err != nil {
			logger.Warn("remove attachment object failed", zap.String("key", key), zap.Error(err))
		}
	}
}
