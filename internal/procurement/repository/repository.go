package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict means the counters row moved underneath a write.
	ErrConflict = errors.New("concurrent modification")
)

// Repositories bundles the procurement repositories.
type Repositories struct {
	Purchase     *PurchaseRepository
	Sequence     *SequenceRepository
	Notification *NotificationRepository
	Attachment   *AttachmentRepository
}

// NewRepositories creates the procurement repositories.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Purchase:     NewPurchaseRepository(db),
		Sequence:     NewSequenceRepository(db),
		Notification: NewNotificationRepository(db),
		Attachment:   NewAttachmentRepository(db),
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
