package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
)

// appendAudit adds one entry to the end of the trail. Existing entries are
// never touched.
func appendAudit(p *entity.Purchase, at time.Time, action, user, details, prev, next string) {
	p.AuditTrail = append(p.AuditTrail, entity.AuditEntry{
		Timestamp:     at,
		Action:        action,
		User:          user,
		Details:       details,
		PreviousValue: prev,
		NewValue:      next,
	})
}

// describeChanges names the title, total and status differences between two
// versions of a purchase.
func describeChanges(before, after *entity.Purchase) string {
	var parts []string
	if before.Title != after.Title {
		parts = append(parts, fmt.Sprintf("Title changed from %q to %q", before.Title, after.Title))
	}
	if before.TotalAmount != after.TotalAmount {
		parts = append(parts, fmt.Sprintf("Total amount changed from %s to %s",
			formatAmount(before.TotalAmount), formatAmount(after.TotalAmount)))
	}
	if before.Status != after.Status {
		parts = append(parts, fmt.Sprintf("Status changed from %s to %s", before.Status, after.Status))
	}
	if len(parts) == 0 {
		return "Purchase details updated"
	}
	return strings.Join(parts, "; ")
}

func statusDetails(prev, next, comments string) string {
	if comments != "" {
		return comments
	}
	switch next {
	case entity.StatusApproved:
		return "Purchase request approved"
	case entity.StatusDenied:
		return "Purchase request denied"
	}
	return fmt.Sprintf("Status changed from %s to %s", prev, next)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
