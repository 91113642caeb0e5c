package entity

import "time"

// AuditEntry is one immutable line of a purchase's history.
type AuditEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	User          string    `json:"user"`
	Details       string    `json:"details"`
	PreviousValue string    `json:"previousValue,omitempty"`
	NewValue      string    `json:"newValue,omitempty"`
}

// Audit actions
const (
	ActionCreated           = "created"
	ActionUpdated           = "updated"
	ActionApproved          = "approved"
	ActionDenied            = "denied"
	ActionStatusChanged     = "status_changed"
	ActionAttachmentAdded   = "attachment_added"
	ActionAttachmentRemoved = "attachment_removed"
)

// StatusAction maps a target status to the audit action recorded for it.
func StatusAction(status string) string {
	switch status {
	case StatusApproved:
		return ActionApproved
	case StatusDenied:
		return ActionDenied
	default:
		return ActionStatusChanged
	}
}
