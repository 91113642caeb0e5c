package entity

import (
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/sequence"
)

// SequenceState is the single persisted counters record. Version is bumped on
// every write and checked on update.
type SequenceState struct {
	Name      string            `gorm:"primaryKey;size:32"`
	Counters  sequence.Counters `gorm:"type:text"`
	Version   int64             `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (SequenceState) TableName() string {
	return "sequence_counters"
}

// SequenceStateKey is the name of the one counters row.
const SequenceStateKey = "counters"
