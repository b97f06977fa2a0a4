package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationLink struct {
	View   string `json:"view"`
	Action string `json:"action,omitempty"`
	ID     string `json:"id,omitempty"`
}

type Notification struct {
	ID        uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string                               `gorm:"type:varchar(200);not null" json:"title"`
	Message   string                               `gorm:"type:text" json:"message"`
	Timestamp time.Time                            `gorm:"index" json:"timestamp"`
	IsRead    bool                                 `gorm:"default:false;index" json:"is_read"`
	Icon      string                               `gorm:"type:varchar(40)" json:"icon"` // lead, deadline, revision, feedback, payment, completed, comment
	Link      datatypes.JSONType[NotificationLink] `json:"link"`
	CreatedAt time.Time                            `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	return
}
