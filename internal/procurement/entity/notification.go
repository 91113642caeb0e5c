package entity

import "time"

// Notification is a user-facing event shown in the notification inbox. It is
// stored apart from the purchase it refers to.
type Notification struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Type       string    `json:"type" gorm:"size:30;not null"`
	Title      string    `json:"title" gorm:"size:200"`
	Message    string    `json:"message" gorm:"type:text"`
	PurchaseID string    `json:"purchaseId" gorm:"size:32;index"`
	Read       bool      `json:"read" gorm:"column:is_read;default:false;index"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Notification types
const (
	NotificationPurchaseCreated = "purchase_created"
	NotificationStatusChanged   = "status_changed"
)
