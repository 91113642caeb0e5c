package repository

import (
	"context"
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"gorm.io/gorm"
)

// AttachmentRepository persists attachment records.
type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *entity.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// FindByID loads the full record including the payload.
func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*entity.Attachment, error) {
	var a entity.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListByPurchase returns the purchase's attachments without payloads, oldest
// first.
func (r *AttachmentRepository) ListByPurchase(ctx context.Context, purchaseID string) ([]entity.Attachment, error) {
	var list []entity.Attachment
	err := r.db.WithContext(ctx).
		Omit("data").
		Where("purchase_id = ?", purchaseID).
		Order("uploaded_at ASC").
		Find(&list).Error
	return list, err
}

// StorageKeys returns the object keys held by the given purchases.
func (r *AttachmentRepository) StorageKeys(ctx context.Context, purchaseIDs []string) ([]string, error) {
	var keys []string
	if len(purchaseIDs) == 0 {
		return keys, nil
	}
	err := r.db.WithContext(ctx).Model(&entity.Attachment{}).
		Where("purchase_id IN ? AND storage_key <> ''", purchaseIDs).
		Pluck("storage_key", &keys).Error
	return keys, err
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Attachment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Orphans returns metadata of attachments uploaded before cutoff whose
// purchase no longer exists.
func (r *AttachmentRepository) Orphans(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error) {
	var list []entity.Attachment
	err := r.db.WithContext(ctx).
		Omit("data").
		Where("uploaded_at < ?", cutoff).
		Where("purchase_id NOT IN (?)", r.db.Model(&entity.Purchase{}).Select("id")).
		Find(&list).Error
	return list, err
}
