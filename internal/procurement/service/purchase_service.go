package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/sequence"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurchaseService is the record store for purchases.
type PurchaseService struct {
	db            *gorm.DB
	repos         *repository.Repositories
	notifications *NotificationService
	blobs         BlobStore
	logger        *zap.Logger
	opts          Options
}

func NewPurchaseService(db *gorm.DB, repos *repository.Repositories, notifications *NotificationService, blobs BlobStore, logger *zap.Logger, opts Options) *PurchaseService {
	return &PurchaseService{
		db:            db,
		repos:         repos,
		notifications: notifications,
		blobs:         blobs,
		logger:        logger,
		opts:          opts,
	}
}

// CreatePurchaseRequest carries the caller-supplied fields of a new purchase.
// Document numbers are always assigned by the store. Binding tags are checked
// at the HTTP boundary only.
type CreatePurchaseRequest struct {
	Title      string          `json:"title" binding:"required"`
	Date       string          `json:"date"`
	Department string          `json:"department"`
	Purpose    string          `json:"purpose"`
	Priority   string          `json:"priority" binding:"omitempty,oneof=Low Normal High Urgent"`
	Supplier1  entity.Supplier `json:"supplier1"`
	Supplier2  entity.Supplier `json:"supplier2"`
	Supplier3  entity.Supplier `json:"supplier3"`
	Items      []entity.Item   `json:"items"`
}

// UpdatePurchaseRequest is a shallow patch: nil fields are left alone.
type UpdatePurchaseRequest struct {
	Title      *string          `json:"title"`
	Date       *string          `json:"date"`
	Department *string          `json:"department"`
	Purpose    *string          `json:"purpose"`
	Priority   *string          `json:"priority" binding:"omitempty,oneof=Low Normal High Urgent"`
	Status     *string          `json:"status" binding:"omitempty,oneof=Pending Approved Denied Completed"`
	PRNo       *string          `json:"prNo"`
	PONo       *string          `json:"poNo"`
	OBRNo      *string          `json:"obrNo"`
	DVNo       *string          `json:"dvNo"`
	Supplier1  *entity.Supplier `json:"supplier1"`
	Supplier2  *entity.Supplier `json:"supplier2"`
	Supplier3  *entity.Supplier `json:"supplier3"`
	Items      *[]entity.Item   `json:"items"`
	// Approval applies when Status moves the purchase to Approved or Denied.
	Approval *ApprovalMeta `json:"approvalInfo"`
}

// ApprovalMeta is the optional detail recorded with a status change.
type ApprovalMeta struct {
	ApprovedBy string `json:"approvedBy"`
	Comments   string `json:"comments"`
	Signature  string `json:"signature"`
}

// UpdateStatusRequest changes the status of a purchase.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Approved Denied Completed"`
	ApprovalMeta
}

// ListFilter narrows List. The zero value returns everything.
type ListFilter struct {
	Status     string
	Priority   string
	Department string
	DateFrom   string // YYYY-MM-DD, inclusive
	DateTo     string // YYYY-MM-DD, inclusive
	Search     string
}

// Create assigns the five document numbers, records the creation and stores
// the purchase.
func (s *PurchaseService) Create(ctx context.Context, user string, req *CreatePurchaseRequest) (*entity.Purchase, error) {
	p, err := s.create(ctx, user, req)
	if err != nil {
		return nil, err
	}
	metrics.PurchasesCreated.Inc()
	s.notifications.Notify(ctx, purchaseCreatedNotification(p))
	return p, nil
}

func (s *PurchaseService) create(ctx context.Context, user string, req *CreatePurchaseRequest) (*entity.Purchase, error) {
	now := time.Now()
	user = actor(user, s.opts.SystemUser)

	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityNormal
	}
	date := req.Date
	if date == "" {
		date = now.In(s.opts.Location).Format("2006-01-02")
	}

	p := &entity.Purchase{
		Title:      req.Title,
		Date:       date,
		Department: req.Department,
		Purpose:    req.Purpose,
		Priority:   priority,
		Status:     entity.StatusPending,
		Supplier1:  req.Supplier1,
		Supplier2:  req.Supplier2,
		Supplier3:  req.Supplier3,
		Items:      req.Items,
		CreatedAt:  now,
	}
	p.Recalculate()
	ensureSlices(p)
	appendAudit(p, now, entity.ActionCreated, user, "Purchase request created", "", "")

	year := now.In(s.opts.Location).Format("2006")
	err := transact(ctx, s.db, func(repos *repository.Repositories) error {
		st, err := repos.Sequence.Load(ctx)
		if err != nil {
			return err
		}
		counters := st.Counters
		ids := make([]string, len(entity.SeriesPrefixes))
		for i, prefix := range entity.SeriesPrefixes {
			ids[i], counters = sequence.Next(counters, prefix, year)
		}
		p.ID, p.PRNo, p.PONo, p.OBRNo, p.DVNo = ids[0], ids[1], ids[2], ids[3], ids[4]

		if err := repos.Purchase.Create(ctx, p); err != nil {
			return err
		}
		return repos.Sequence.Save(ctx, st, counters)
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	return p, nil
}

// Get returns one purchase or repository.ErrNotFound.
func (s *PurchaseService) Get(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := s.repos.Purchase.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ensureSlices(p)
	return p, nil
}

// List returns purchases newest first.
func (s *PurchaseService) List(ctx context.Context, filter ListFilter) ([]entity.Purchase, error) {
	all, err := s.repos.Purchase.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Purchase, 0, len(all))
	for i := range all {
		if filter.matches(&all[i]) {
			ensureSlices(&all[i])
			out = append(out, all[i])
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(list []entity.Purchase) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SortTime().After(list[j].SortTime())
	})
}

func (f ListFilter) matches(p *entity.Purchase) bool {
	if f.Status != "" && !strings.EqualFold(p.Status, f.Status) {
		return false
	}
	if f.Priority != "" && !strings.EqualFold(p.Priority, f.Priority) {
		return false
	}
	if f.Department != "" && !strings.EqualFold(p.Department, f.Department) {
		return false
	}
	if f.DateFrom != "" && p.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && p.Date > f.DateTo {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		hay := []string{p.ID, p.PRNo, p.PONo, p.Title, p.Supplier1.Name}
		for _, h := range hay {
			if strings.Contains(strings.ToLower(h), q) {
				return true
			}
		}
		return false
	}
	return true
}

// Update merges req over the stored purchase. A status that differs from
// the current one is applied as a status transition in the same write.
func (s *PurchaseService) Update(ctx context.Context, id, user string, req *UpdatePurchaseRequest) (*entity.Purchase, error) {
	user = actor(user, s.opts.SystemUser)
	var (
		updated       *entity.Purchase
		statusChanged bool
		comments      string
	)
	err := transact(ctx, s.db, func(repos *repository.Repositories) error {
		p, err := repos.Purchase.FindByID(ctx, id)
		if err != nil {
			return err
		}
		ensureSlices(p)
		before := *p
		now := time.Now()

		req.apply(p)
		p.Recalculate()
		if req.Status != nil {
			p.Status = *req.Status
		}
		appendAudit(p, now, entity.ActionUpdated, user, describeChanges(&before, p), "", "")

		statusChanged = p.Status != before.Status
		if statusChanged {
			meta := ApprovalMeta{}
			if req.Approval != nil {
				meta = *req.Approval
			}
			comments = meta.Comments
			applyStatus(p, before.Status, p.Status, user, meta, now)
		}
		p.UpdatedAt = &now

		if err := repos.Purchase.Save(ctx, p); err != nil {
			return err
		}
		updated = p
		return reconcileCounters(ctx, repos)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update purchase: %w", err)
	}
	if statusChanged {
		metrics.StatusTransitions.WithLabelValues(updated.Status).Inc()
		s.notifications.Notify(ctx, statusChangedNotification(updated, comments))
	}
	return updated, nil
}

func (r *UpdatePurchaseRequest) apply(p *entity.Purchase) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Date != nil {
		p.Date = *r.Date
	}
	if r.Department != nil {
		p.Department = *r.Department
	}
	if r.Purpose != nil {
		p.Purpose = *r.Purpose
	}
	if r.Priority != nil {
		p.Priority = *r.Priority
	}
	if r.PRNo != nil {
		p.PRNo = *r.PRNo
	}
	if r.PONo != nil {
		p.PONo = *r.PONo
	}
	if r.OBRNo != nil {
		p.OBRNo = *r.OBRNo
	}
	if r.DVNo != nil {
		p.DVNo = *r.DVNo
	}
	if r.Supplier1 != nil {
		p.Supplier1 = *r.Supplier1
	}
	if r.Supplier2 != nil {
		p.Supplier2 = *r.Supplier2
	}
	if r.Supplier3 != nil {
		p.Supplier3 = *r.Supplier3
	}
	if r.Items != nil {
		p.Items = *r.Items
	}
}

// UpdateStatus moves a purchase to req.Status, recording approval details on
// Approved and Denied. Any transition is accepted, including a repeat.
func (s *PurchaseService) UpdateStatus(ctx context.Context, id, user string, req *UpdateStatusRequest) (*entity.Purchase, error) {
	user = actor(user, s.opts.SystemUser)
	var updated *entity.Purchase
	err := transact(ctx, s.db, func(repos *repository.Repositories) error {
		p, err := repos.Purchase.FindByID(ctx, id)
		if err != nil {
			return err
		}
		ensureSlices(p)
		now := time.Now()
		prev := p.Status
		p.Status = req.Status
		applyStatus(p, prev, req.Status, user, req.ApprovalMeta, now)
		p.UpdatedAt = &now
		if err := repos.Purchase.Save(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	metrics.StatusTransitions.WithLabelValues(updated.Status).Inc()
	s.notifications.Notify(ctx, statusChangedNotification(updated, req.Comments))
	return updated, nil
}

// applyStatus records a transition on p, which already carries the new
// status.
func applyStatus(p *entity.Purchase, prev, next, user string, meta ApprovalMeta, now time.Time) {
	appendAudit(p, now, entity.StatusAction(next), user, statusDetails(prev, next, meta.Comments), prev, next)
	if next == entity.StatusApproved || next == entity.StatusDenied {
		p.ApprovalInfo = &entity.ApprovalInfo{
			ApprovedBy: actor(meta.ApprovedBy, user),
			ApprovedAt: now,
			Comments:   meta.Comments,
			Signature:  meta.Signature,
		}
	}
}

// Delete removes a purchase together with its attachments.
func (s *PurchaseService) Delete(ctx context.Context, id string) error {
	keys, err := s.repos.Attachment.StorageKeys(ctx, []string{id})
	if err != nil {
		return fmt.Errorf("list attachment objects: %w", err)
	}
	if err := s.repos.Purchase.Delete(ctx, id); err != nil {
		return err
	}
	removeObjects(ctx, s.blobs, keys, s.logger)
	return nil
}

// reconcileCounters raises the stored counters to cover every identifier
// present in the purchases table.
func reconcileCounters(ctx context.Context, repos *repository.Repositories) error {
	all, err := repos.Purchase.FindAll(ctx)
	if err != nil {
		return err
	}
	st, err := repos.Sequence.Load(ctx)
	if err != nil {
		return err
	}
	counters := sequence.Merge(st.Counters, sequence.Recompute(all, entity.SeriesPrefixes...))
	return repos.Sequence.Save(ctx, st, counters)
}

// EnsureSeeded inserts the sample purchase when the store is empty. It
// reports whether a record was inserted.
func (s *PurchaseService) EnsureSeeded(ctx context.Context) (bool, error) {
	n, err := s.repos.Purchase.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	p, err := s.create(ctx, s.opts.SystemUser, SamplePurchase())
	if err != nil {
		return false, err
	}
	s.logger.Info("seeded sample purchase", zap.String("id", p.ID))
	return true, nil
}

// SamplePurchase is the record a fresh store starts with.
func SamplePurchase() *CreatePurchaseRequest {
	addr := "Pioduran, Albay"
	return &CreatePurchaseRequest{
		Title:      "Repair and Maintenance of MDRRMO Vehicle",
		Department: "MDRRMO",
		Purpose:    "For the repair and maintenance of MDRRMO Monitoring Vehicle",
		Priority:   entity.PriorityNormal,
		Supplier1:  entity.Supplier{Name: "ONGSKIE AUTO SUPPLY", Address: addr},
		Supplier2:  entity.Supplier{Name: "YONGSKY TRADING", Address: addr},
		Supplier3:  entity.Supplier{Name: "ASD COMMERCIAL", Address: addr},
		Items: []entity.Item{
			{Name: "Engine Oil 15W-40", Unit: "pc", Quantity: 4, UnitPrice: 450},
			{Name: "Oil Filter", Unit: "pc", Quantity: 2, UnitPrice: 250},
			{Name: "Air Filter", Unit: "pc", Quantity: 1, UnitPrice: 350},
		},
	}
}
