package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TeamMember adalah freelancer/crew yang dibayar per proyek.
type TeamMember struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(150);not null" json:"name"`
	Role           string    `gorm:"type:varchar(80)" json:"role"`
	Email          string    `gorm:"type:varchar(150)" json:"email"`
	Phone          string    `gorm:"type:varchar(30)" json:"phone"`
	StandardFee    int64     `gorm:"not null;default:0" json:"standard_fee"`
	NoRek          string    `gorm:"type:varchar(60)" json:"no_rek"`
	RewardBalance  int64     `gorm:"not null;default:0" json:"reward_balance"` // cache dari reward_ledger_entries
	Rating         float64   `json:"rating"`
	PortalAccessID string    `gorm:"type:varchar(120);index" json:"portal_access_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

type FeeStatus string

const (
	FeeUnpaid FeeStatus = "Unpaid"
	FeePaid   FeeStatus = "Paid"
)

// TeamProjectPayment adalah kewajiban fee satu freelancer di satu proyek.
type TeamProjectPayment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`
	TeamMemberID uuid.UUID `gorm:"type:uuid;index;not null" json:"team_member_id"`
	MemberName   string    `gorm:"type:varchar(150)" json:"member_name"`
	Role         string    `gorm:"type:varchar(80)" json:"role"`
	Date         time.Time `json:"date"`
	Status       FeeStatus `gorm:"type:varchar(10);not null;default:'Unpaid';index" json:"status"`
	Fee          int64     `gorm:"not null" json:"fee"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (p *TeamProjectPayment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = FeeUnpaid
	}
	return
}

// TeamPaymentRecord adalah satu kali pencairan gaji freelancer (slip).
type TeamPaymentRecord struct {
	ID                uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	RecordNumber      string                         `gorm:"type:varchar(40);uniqueIndex" json:"record_number"`
	TeamMemberID      uuid.UUID                      `gorm:"type:uuid;index;not null" json:"team_member_id"`
	Date              time.Time                      `json:"date"`
	ProjectPaymentIDs datatypes.JSONSlice[uuid.UUID] `json:"project_payment_ids"`
	TotalAmount       int64                          `gorm:"not null" json:"total_amount"`
	TransactionID     uuid.UUID                      `gorm:"type:uuid;index" json:"transaction_id"`
	VendorSignature   string                         `gorm:"type:text" json:"vendor_signature,omitempty"`
	CreatedAt         time.Time                      `json:"created_at"`
}

func (r *TeamPaymentRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
