package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Lunas"
	PaymentStatusPartial PaymentStatus = "DP Terbayar"
	PaymentStatusUnpaid  PaymentStatus = "Belum Bayar"
)

// Project mencakup proyek klien dan acara internal (meeting, libur, dll).
// Acara internal dibedakan lewat ProjectType yang ada di Profile.InternalEventTypes.
type Project struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(200);not null" json:"name"`
	ClientID    *uuid.UUID `gorm:"type:uuid;index" json:"client_id,omitempty"`
	ClientName  string     `gorm:"type:varchar(150)" json:"client_name"`
	ProjectType string     `gorm:"type:varchar(80);index" json:"project_type"`

	PackageID   *uuid.UUID                         `gorm:"type:uuid;index" json:"package_id,omitempty"`
	PackageName string                             `gorm:"type:varchar(150)" json:"package_name"`
	AddOns      datatypes.JSONSlice[AddOnSnapshot] `json:"add_ons"`

	Date      time.Time  `gorm:"index" json:"date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	StartTime string     `gorm:"type:varchar(5)" json:"start_time,omitempty"` // HH:MM
	EndTime   string     `gorm:"type:varchar(5)" json:"end_time,omitempty"`
	Location  string     `gorm:"type:varchar(200)" json:"location"`
	Status    string     `gorm:"type:varchar(60);index" json:"status"`
	Notes     string     `gorm:"type:text" json:"notes"`

	// Nilai biaya dibekukan saat booking, tidak dihitung ulang
	TotalCost      int64         `gorm:"not null;default:0" json:"total_cost"`
	AmountPaid     int64         `gorm:"not null;default:0" json:"amount_paid"`
	PaymentStatus  PaymentStatus `gorm:"type:varchar(20);default:'Belum Bayar'" json:"payment_status"`
	PromoCodeID    *uuid.UUID    `gorm:"type:uuid;index" json:"promo_code_id,omitempty"`
	DiscountAmount int64         `gorm:"not null;default:0" json:"discount_amount"`

	PaymentProofURL string `gorm:"type:text" json:"payment_proof_url,omitempty"` // data URL

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = PaymentStatusUnpaid
	}
	return
}

// Outstanding returns the amount still owed on the project.
func (p *Project) Outstanding() int64 {
	if p.AmountPaid >= p.TotalCost {
		return 0
	}
	return p.TotalCost - p.AmountPaid
}

type RevisionStatus string

const (
	RevisionPending    RevisionStatus = "Menunggu"
	RevisionInProgress RevisionStatus = "Sedang Dikerjakan"
	RevisionCompleted  RevisionStatus = "Selesai"
)

type Revision struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID       uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id"`
	FreelancerID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"freelancer_id"`
	AdminNotes      string         `gorm:"type:text" json:"admin_notes"`
	Deadline        time.Time      `json:"deadline"`
	Status          RevisionStatus `gorm:"type:varchar(30);default:'Menunggu'" json:"status"`
	FreelancerNotes string         `gorm:"type:text" json:"freelancer_notes"`
	DriveLink       string         `gorm:"type:text" json:"drive_link"`
	CompletedDate   *time.Time     `json:"completed_date,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (r *Revision) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = RevisionPending
	}
	return
}
