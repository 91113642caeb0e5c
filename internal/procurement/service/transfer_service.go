package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/sequence"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/metrics"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Import modes.
const (
	ImportMerge   = "merge"
	ImportReplace = "replace"
)

var (
	// ErrNoValidRows means the file held no usable purchase; nothing is written.
	ErrNoValidRows = errors.New("no valid purchases found in import")
	ErrInvalidMode = errors.New("import mode must be merge or replace")
)

// TransferService moves the whole record set in and out of the store.
type TransferService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	blobs  BlobStore
	logger *zap.Logger
	opts   Options
}

func NewTransferService(db *gorm.DB, repos *repository.Repositories, blobs BlobStore, logger *zap.Logger, opts Options) *TransferService {
	return &TransferService{db: db, repos: repos, blobs: blobs, logger: logger, opts: opts}
}

// ImportSummary reports what an import did.
type ImportSummary struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

func (s *TransferService) all(ctx context.Context) ([]entity.Purchase, error) {
	list, err := s.repos.Purchase.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return list, nil
}

// ExportCSV renders every stored purchase, newest first.
func (s *TransferService) ExportCSV(ctx context.Context) ([]byte, error) {
	list, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return ExportCSV(list)
}

// ExportXLSX renders every stored purchase as a workbook. The caller closes
// the returned file.
func (s *TransferService) ExportXLSX(ctx context.Context) (*excelize.File, error) {
	list, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return ExportXLSX(list)
}

// Import reads interchange text and writes the result back. Only the
// imported rows are written: in merge mode other stored records are left
// alone, in replace mode they are deleted with their attachments. The
// snapshot used for back-filling and carried history is read inside the
// same transaction that writes and raises the counters.
func (s *TransferService) Import(ctx context.Context, r io.Reader, mode, user string) (*ImportSummary, error) {
	if mode == "" {
		mode = ImportMerge
	}
	if mode != ImportMerge && mode != ImportReplace {
		return nil, ErrInvalidMode
	}
	user = actor(user, s.opts.SystemUser)

	now := time.Now()
	local := now.In(s.opts.Location)
	rows, skipped := readImportRows(r, local)

	metrics.ImportRows.WithLabelValues("loaded").Add(float64(len(rows)))
	metrics.ImportRows.WithLabelValues("skipped").Add(float64(skipped))
	if skipped > 0 {
		s.logger.Debug("import rows skipped", zap.Int("skipped", skipped))
	}
	if len(rows) == 0 {
		return nil, ErrNoValidRows
	}

	var (
		keys  []string
		total int
	)
	err := transact(ctx, s.db, func(repos *repository.Repositories) error {
		existing, err := repos.Purchase.FindAll(ctx)
		if err != nil {
			return err
		}
		st, err := repos.Sequence.Load(ctx)
		if err != nil {
			return err
		}
		// a retried attempt starts again from the rows as read
		batch := append([]entity.Purchase(nil), rows...)
		backfillIdentifiers(batch, sequence.Merge(st.Counters, sequence.Recompute(existing, entity.SeriesPrefixes...)), local.Format("2006"))
		imported := carryHistory(existing, MergeOverwriteByID(nil, batch), user, now)

		if err := repos.Purchase.UpsertMany(ctx, imported); err != nil {
			return err
		}
		keys = nil
		total = len(MergeOverwriteByID(existing, imported))
		if mode == ImportReplace {
			keep := make([]string, len(imported))
			for i, p := range imported {
				keep[i] = p.ID
			}
			k, err := repos.Attachment.StorageKeys(ctx, droppedIDs(existing, keep))
			if err != nil {
				return err
			}
			keys = k
			if _, err := repos.Purchase.DeleteNotIn(ctx, keep); err != nil {
				return err
			}
			total = len(imported)
		}
		return reconcileCounters(ctx, repos)
	})
	if err != nil {
		return nil, fmt.Errorf("import purchases: %w", err)
	}
	removeObjects(ctx, s.blobs, keys, s.logger)

	s.logger.Info("purchases imported",
		zap.String("mode", mode),
		zap.Int("loaded", len(rows)),
		zap.Int("skipped", skipped),
		zap.Int("total", total))
	return &ImportSummary{Loaded: len(rows), Skipped: skipped, Total: total}, nil
}

// carryHistory keeps the fields the interchange format does not hold from
// the stored record with the same id and records the import on each trail.
func carryHistory(existing, imported []entity.Purchase, user string, now time.Time) []entity.Purchase {
	byID := make(map[string]entity.Purchase, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}
	out := make([]entity.Purchase, len(imported))
	for i, p := range imported {
		if prev, ok := byID[p.ID]; ok {
			if prev.Priority != "" {
				p.Priority = prev.Priority
			}
			p.ApprovalInfo = prev.ApprovalInfo
			p.Attachments = prev.Attachments
			p.AuditTrail = append([]entity.AuditEntry(nil), prev.AuditTrail...)
			ensureSlices(&p)
			appendAudit(&p, now, entity.ActionUpdated, user, "Overwritten by CSV import", "", "")
			stamp := now
			p.UpdatedAt = &stamp
		} else {
			appendAudit(&p, now, entity.ActionCreated, user, "Imported from CSV", "", "")
		}
		out[i] = p
	}
	return out
}

func droppedIDs(existing []entity.Purchase, keep []string) []string {
	kept := make(map[string]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	var gone []string
	for _, p := range existing {
		if !kept[p.ID] {
			gone = append(gone, p.ID)
		}
	}
	return gone
}
