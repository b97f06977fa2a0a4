package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "Aktif"
	ClientStatusInactive ClientStatus = "Tidak Aktif"
	ClientStatusLost     ClientStatus = "Hilang"
)

type Client struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string       `gorm:"type:varchar(150);not null" json:"name"`
	Email          string       `gorm:"type:varchar(150);index" json:"email"`
	Phone          string       `gorm:"type:varchar(30)" json:"phone"`
	Whatsapp       string       `gorm:"type:varchar(30)" json:"whatsapp"`
	Instagram      string       `gorm:"type:varchar(80)" json:"instagram"`
	Since          time.Time    `json:"since"`
	Status         ClientStatus `gorm:"type:varchar(20);default:'Aktif'" json:"status"`
	ClientType     string       `gorm:"type:varchar(30);default:'Langsung'" json:"client_type"`
	PortalAccessID string       `gorm:"type:varchar(120);index" json:"portal_access_id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Since.IsZero() {
		c.Since = time.Now()
	}
	return
}

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "Sedang Diskusi"
	LeadStatusFollowUp  LeadStatus = "Menunggu Follow Up"
	LeadStatusConverted LeadStatus = "Dikonversi"
	LeadStatusRejected  LeadStatus = "Ditolak"
)

type Lead struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string     `gorm:"type:varchar(150);not null" json:"name"`
	ContactChannel string     `gorm:"type:varchar(40)" json:"contact_channel"`
	Location       string     `gorm:"type:varchar(150)" json:"location"`
	Status         LeadStatus `gorm:"type:varchar(30);default:'Sedang Diskusi'" json:"status"`
	Date           time.Time  `json:"date"`
	Notes          string     `gorm:"type:text" json:"notes"`
	Whatsapp       string     `gorm:"type:varchar(30)" json:"whatsapp"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

type SatisfactionLevel string

const (
	SatisfactionVery    SatisfactionLevel = "Sangat Puas"
	SatisfactionGood    SatisfactionLevel = "Puas"
	SatisfactionNeutral SatisfactionLevel = "Biasa Saja"
	SatisfactionBad     SatisfactionLevel = "Tidak Puas"
)

// ClientFeedback menampung kiriman form feedback & saran publik.
type ClientFeedback struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ClientName   string            `gorm:"type:varchar(150);not null" json:"client_name"`
	Satisfaction SatisfactionLevel `gorm:"type:varchar(20)" json:"satisfaction"`
	Rating       int               `json:"rating"` // 1-5, 0 untuk form saran
	Feedback     string            `gorm:"type:text" json:"feedback"`
	Kind         string            `gorm:"type:varchar(20);default:'feedback'" json:"kind"` // feedback | suggestion
	Date         time.Time         `json:"date"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (f *ClientFeedback) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}
