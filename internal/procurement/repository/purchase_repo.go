package repository

import (
	"context"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseRepository persists purchases.
type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// FindByID loads one purchase.
func (r *PurchaseRepository) FindByID(ctx context.Context, id string) (*entity.Purchase, error) {
	var p entity.Purchase
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindAll returns every purchase. Ordering is left to the caller.
func (r *PurchaseRepository) FindAll(ctx context.Context) ([]entity.Purchase, error) {
	var list []entity.Purchase
	err := r.db.WithContext(ctx).Find(&list).Error
	return list, err
}

// Count returns the number of stored purchases.
func (r *PurchaseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Purchase{}).Count(&n).Error
	return n, err
}

func (r *PurchaseRepository) Create(ctx context.Context, p *entity.Purchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Save writes every column of p.
func (r *PurchaseRepository) Save(ctx context.Context, p *entity.Purchase) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete removes the purchase and its attachment rows.
func (r *PurchaseRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&entity.Purchase{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("purchase_id = ?", id).Delete(&entity.Attachment{}).Error
	})
}

// UpsertMany inserts the given purchases, overwriting rows with the same id.
func (r *PurchaseRepository) UpsertMany(ctx context.Context, list []entity.Purchase) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(list, 100).Error
}

// DeleteNotIn removes purchases whose id is not in keep, along with their
// attachment rows. It returns the removed ids.
func (r *PurchaseRepository) DeleteNotIn(ctx context.Context, keep []string) ([]string, error) {
	var gone []string
	q := r.db.WithContext(ctx).Model(&entity.Purchase{})
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	if err := q.Pluck("id", &gone).Error; err != nil {
		return nil, err
	}
	if len(gone) == 0 {
		return nil, nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", gone).Delete(&entity.Purchase{}).Error; err != nil {
			return err
		}
		return tx.Where("purchase_id IN ?", gone).Delete(&entity.Attachment{}).Error
	})
	if err != nil {
		return nil, err
	}
	return gone, nil
}
