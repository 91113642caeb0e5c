package entity

import "time"

// Attachment is a file attached to a purchase. Data holds the payload unless
// StorageKey points at an object store.
type Attachment struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	PurchaseID   string    `json:"purchaseId" gorm:"size:32;not null;index"`
	Filename     string    `json:"filename" gorm:"size:300"`
	OriginalName string    `json:"originalName" gorm:"size:255"`
	MimeType     string    `json:"mimeType" gorm:"size:100"`
	Size         int64     `json:"size"`
	Data         []byte    `json:"data,omitempty"`
	StorageKey   string    `json:"-" gorm:"size:300"`
	UploadedAt   time.Time `json:"uploadedAt" gorm:"index"`
	UploadedBy   string    `json:"uploadedBy" gorm:"size:100"`
}

func (Attachment) TableName() string {
	return "attachments"
}

// Ref strips the payload, leaving the metadata mirrored on the purchase.
func (a Attachment) Ref() AttachmentRef {
	return AttachmentRef{
		ID:           a.ID,
		PurchaseID:   a.PurchaseID,
		Filename:     a.Filename,
		OriginalName: a.OriginalName,
		MimeType:     a.MimeType,
		Size:         a.Size,
		UploadedAt:   a.UploadedAt,
		UploadedBy:   a.UploadedBy,
	}
}

// AttachmentRef is the payload-free copy kept in Purchase.Attachments.
type AttachmentRef struct {
	ID           string    `json:"id"`
	PurchaseID   string    `json:"purchaseId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
	UploadedBy   string    `json:"uploadedBy"`
}

// MaxAttachmentSize is the per-file upload cap applied at the HTTP boundary.
const MaxAttachmentSize = 10 << 20
