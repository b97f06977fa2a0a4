package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Card struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CardHolderName string    `gorm:"type:varchar(150)" json:"card_holder_name"`
	BankName       string    `gorm:"type:varchar(80);not null" json:"bank_name"`
	CardType       string    `gorm:"type:varchar(30)" json:"card_type"` // Debit, Kredit, Tunai, dll
	LastFourDigits string    `gorm:"type:varchar(4)" json:"last_four_digits"`
	Balance        int64     `gorm:"not null;default:0" json:"balance"`
	ColorGradient  string    `gorm:"type:varchar(120)" json:"color_gradient"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// DisplayName dipakai di pesan error saldo tidak cukup.
func (c *Card) DisplayName() string {
	if c.LastFourDigits == "" {
		return "Kartu " + c.BankName
	}
	return fmt.Sprintf("Kartu %s •••• %s", c.BankName, c.LastFourDigits)
}

type PocketType string

const (
	PocketSaving     PocketType = "Nabung & Bayar"
	PocketLocked     PocketType = "Terkunci"
	PocketShared     PocketType = "Bersama"
	PocketExpense    PocketType = "Anggaran Pengeluaran"
	PocketRewardPool PocketType = "Tabungan Hadiah Freelancer"
)

// FinancialPocket adalah sub-anggaran bernama yang bisa jadi sumber dana.
type FinancialPocket struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(150);not null" json:"name"`
	Description  string     `gorm:"type:text" json:"description"`
	Icon         string     `gorm:"type:varchar(40)" json:"icon"`
	Type         PocketType `gorm:"type:varchar(40);not null;index" json:"type"`
	Amount       int64      `gorm:"not null;default:0" json:"amount"`
	GoalAmount   *int64     `json:"goal_amount,omitempty"`
	LockEndDate  *time.Time `json:"lock_end_date,omitempty"`
	SourceCardID *uuid.UUID `gorm:"type:uuid" json:"source_card_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (p *FinancialPocket) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (p *FinancialPocket) DisplayName() string {
	return "Kantong " + p.Name
}
