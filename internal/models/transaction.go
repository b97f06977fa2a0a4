package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "Pemasukan"
	TransactionExpense TransactionType = "Pengeluaran"
)

// Kategori yang dipakai langsung oleh service
const (
	CategoryFreelancerSalary = "Gaji Freelancer"
	CategoryRewardWithdrawal = "Penarikan Hadiah Freelancer"
	CategoryClientPayment    = "Pembayaran Klien"
	CategoryTransfer         = "Transfer Internal"
)

// Transaction adalah baris buku kas. Append-only, hanya tanda tangan yang boleh ditambahkan belakangan.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Date            time.Time       `gorm:"index" json:"date"`
	Description     string          `gorm:"type:text" json:"description"`
	Amount          int64           `gorm:"not null" json:"amount"`
	Type            TransactionType `gorm:"type:varchar(20);not null;index" json:"type"`
	Category        string          `gorm:"type:varchar(80);index" json:"category"`
	Method          string          `gorm:"type:varchar(40)" json:"method"`
	ProjectID       *uuid.UUID      `gorm:"type:uuid;index" json:"project_id,omitempty"`
	TeamMemberID    *uuid.UUID      `gorm:"type:uuid;index" json:"team_member_id,omitempty"`
	CardID          *uuid.UUID      `gorm:"type:uuid;index" json:"card_id,omitempty"`
	PocketID        *uuid.UUID      `gorm:"type:uuid;index" json:"pocket_id,omitempty"`
	Reference       string          `gorm:"type:varchar(60);index" json:"reference,omitempty"` // mis. reference Tripay
	VendorSignature string          `gorm:"type:text" json:"vendor_signature,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	return
}
