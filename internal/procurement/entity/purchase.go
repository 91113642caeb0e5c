package entity

import (
	"math"
	"strings"
	"time"
)

// Purchase is the canonical procurement record. PR, PO, OBR, DV and the other
// printable documents are all projections of it.
type Purchase struct {
	ID    string `json:"id" gorm:"primaryKey;size:32"`
	PRNo  string `json:"prNo" gorm:"column:pr_no;size:32;index"`
	PONo  string `json:"poNo" gorm:"column:po_no;size:32;index"`
	OBRNo string `json:"obrNo" gorm:"column:obr_no;size:32;index"`
	DVNo  string `json:"dvNo" gorm:"column:dv_no;size:32;index"`

	Title      string `json:"title" gorm:"size:255"`
	Date       string `json:"date" gorm:"size:10;index"` // YYYY-MM-DD
	Department string `json:"department" gorm:"size:100"`
	Purpose    string `json:"purpose" gorm:"type:text"`
	Priority   string `json:"priority" gorm:"size:10;default:Normal"`
	Status     string `json:"status" gorm:"size:20;default:Pending;index"`

	Supplier1 Supplier `json:"supplier1" gorm:"embedded;embeddedPrefix:supplier1_"`
	Supplier2 Supplier `json:"supplier2" gorm:"embedded;embeddedPrefix:supplier2_"`
	Supplier3 Supplier `json:"supplier3" gorm:"embedded;embeddedPrefix:supplier3_"`

	Items       []Item  `json:"items" gorm:"serializer:json;type:text"`
	TotalAmount float64 `json:"totalAmount" gorm:"type:decimal(15,2)"`

	ApprovalInfo *ApprovalInfo   `json:"approvalInfo,omitempty" gorm:"serializer:json;type:text"`
	Attachments  []AttachmentRef `json:"attachments" gorm:"serializer:json;type:text"`
	AuditTrail   []AuditEntry    `json:"auditTrail" gorm:"serializer:json;type:text"`

	CreatedAt time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" gorm:"autoUpdateTime:false"`
}

func (Purchase) TableName() string {
	return "purchases"
}

// Identifiers returns the five document numbers in sequencer order.
func (p Purchase) Identifiers() []string {
	return []string{p.ID, p.PRNo, p.PONo, p.OBRNo, p.DVNo}
}

// SortTime is createdAt, or the document date when createdAt was never set.
func (p Purchase) SortTime() time.Time {
	if !p.CreatedAt.IsZero() {
		return p.CreatedAt
	}
	if t, err := time.Parse("2006-01-02", p.Date); err == nil {
		return t
	}
	return time.Time{}
}

// Supplier is a canvassed supplier; a purchase carries up to three.
type Supplier struct {
	Name    string `json:"name" gorm:"size:200"`
	Address string `json:"address" gorm:"size:500"`
}

// Item is one purchase line.
type Item struct {
	Number      int     `json:"number"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// ApprovalInfo is filled on Approved and Denied transitions.
type ApprovalInfo struct {
	ApprovedBy string    `json:"approvedBy"`
	ApprovedAt time.Time `json:"approvedAt"`
	Comments   string    `json:"comments"`
	Signature  string    `json:"signature"`
}

// Statuses
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusDenied    = "Denied"
	StatusCompleted = "Completed"
)

// Priorities
const (
	PriorityLow    = "Low"
	PriorityNormal = "Normal"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

// Identifier series prefixes.
const (
	PrefixRecord = "PF"
	PrefixPR     = "PR"
	PrefixPO     = "PO"
	PrefixOBR    = "OBR"
	PrefixDV     = "DV"
)

// SeriesPrefixes lists the five series in the order they are issued on create.
var SeriesPrefixes = []string{PrefixRecord, PrefixPR, PrefixPO, PrefixOBR, PrefixDV}

// NormalizeItems drops unnamed lines, renumbers from 1 and recomputes line
// totals. It returns the new slice and its grand total.
func NormalizeItems(items []Item) ([]Item, float64) {
	out := make([]Item, 0, len(items))
	var sum float64
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		it.Number = len(out) + 1
		it.Total = roundCents(it.Quantity * it.UnitPrice)
		sum += it.Total
		out = append(out, it)
	}
	return out, roundCents(sum)
}

// Recalculate enforces the items/totalAmount invariant on p in place.
func (p *Purchase) Recalculate() {
	p.Items, p.TotalAmount = NormalizeItems(p.Items)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
