package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardLedgerEntry: positif = hadiah masuk, negatif = penarikan.
// Jumlah semua entry satu freelancer harus sama dengan TeamMember.RewardBalance.
type RewardLedgerEntry struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TeamMemberID uuid.UUID  `gorm:"type:uuid;index;not null" json:"team_member_id"`
	Date         time.Time  `json:"date"`
	Description  string     `gorm:"type:text" json:"description"`
	Amount       int64      `gorm:"not null" json:"amount"`
	ProjectID    *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (e *RewardLedgerEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	return
}
