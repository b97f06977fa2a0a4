package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PhysicalItem struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Package adalah paket layanan (foto/video) yang bisa dipesan klien.
type Package struct {
	ID             uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string                            `gorm:"type:varchar(150);not null" json:"name"`
	Price          int64                             `gorm:"not null" json:"price"`
	Category       string                            `gorm:"type:varchar(80)" json:"category"`
	PhysicalItems  datatypes.JSONSlice[PhysicalItem] `json:"physical_items"`
	DigitalItems   datatypes.JSONSlice[string]       `json:"digital_items"`
	ProcessingTime string                            `gorm:"type:varchar(80)" json:"processing_time"`
	CreatedAt      time.Time                         `json:"created_at"`
	UpdatedAt      time.Time                         `json:"updated_at"`
}

func (p *Package) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

type AddOn struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *AddOn) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// AddOnSnapshot is the copy of an add-on frozen on a project at booking time.
type AddOnSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price int64     `json:"price"`
}

func (a AddOn) Snapshot() AddOnSnapshot {
	return AddOnSnapshot{ID: a.ID, Name: a.Name, Price: a.Price}
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type PromoCode struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"code"` // selalu uppercase
	DiscountType  DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"discount_value"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	UsageCount    int             `gorm:"not null;default:0" json:"usage_count"`
	MaxUsage      *int            `json:"max_usage,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *PromoCode) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
