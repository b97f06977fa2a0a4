package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contract struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractNumber  string    `gorm:"type:varchar(40);uniqueIndex" json:"contract_number"`
	ClientID        uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	ProjectID       uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`
	SigningDate     time.Time `json:"signing_date"`
	SigningLocation string    `gorm:"type:varchar(150)" json:"signing_location"`

	ClientName1    string `gorm:"type:varchar(150)" json:"client_name1"`
	ClientAddress1 string `gorm:"type:text" json:"client_address1"`
	ClientPhone1   string `gorm:"type:varchar(30)" json:"client_phone1"`
	ClientName2    string `gorm:"type:varchar(150)" json:"client_name2,omitempty"`

	ShootingDuration   string `gorm:"type:varchar(80)" json:"shooting_duration"`
	GuaranteedPhotos   string `gorm:"type:varchar(80)" json:"guaranteed_photos"`
	DeliveryTimeframe  string `gorm:"type:varchar(80)" json:"delivery_timeframe"`
	CancellationPolicy string `gorm:"type:text" json:"cancellation_policy"`
	Jurisdiction       string `gorm:"type:varchar(80)" json:"jurisdiction"`

	VendorSignature string `gorm:"type:text" json:"vendor_signature,omitempty"`
	ClientSignature string `gorm:"type:text" json:"client_signature,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.ContractNumber == "" {
		c.ContractNumber = "CTR-" + GenerateCode(8)
	}
	return
}

// SOP adalah dokumen prosedur kerja studio.
type SOP struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Category    string    `gorm:"type:varchar(80);index" json:"category"`
	Content     string    `gorm:"type:text" json:"content"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *SOP) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.LastUpdated = time.Now()
	return
}
