package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/sequence"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository reads and writes the single counters row. Callers are
// expected to run Load and Save inside one transaction.
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Load reads the counters row with a row lock. A missing row yields an empty
// state at version 0.
func (r *SequenceRepository) Load(ctx context.Context) (*entity.SequenceState, error) {
	var st entity.SequenceState
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", entity.SequenceStateKey).
		First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.SequenceState{
				Name:     entity.SequenceStateKey,
				Counters: sequence.New(entity.SeriesPrefixes...),
			}, nil
		}
		return nil, err
	}
	if st.Counters == nil {
		st.Counters = sequence.New(entity.SeriesPrefixes...)
	}
	return &st, nil
}

// Save writes counters if the row is still at st.Version, then bumps
// st.Version. ErrConflict is returned when another writer got there first.
func (r *SequenceRepository) Save(ctx context.Context, st *entity.SequenceState, counters sequence.Counters) error {
	now := time.Now()
	db := r.db.WithContext(ctx)
	if st.Version == 0 {
		fresh := entity.SequenceState{
			Name:      entity.SequenceStateKey,
			Counters:  counters,
			Version:   1,
			UpdatedAt: now,
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		st.Counters, st.Version, st.UpdatedAt = counters, 1, now
		return nil
	}

	res := db.Model(&entity.SequenceState{}).
		Where("name = ? AND version = ?", entity.SequenceStateKey, st.Version).
		Updates(map[string]interface{}{
			"counters":   counters,
			"version":    st.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	st.Counters, st.Version, st.UpdatedAt = counters, st.Version+1, now
	return nil
}
