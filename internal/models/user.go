package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// internal/models/user.go
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName string    `gorm:"not null" json:"full_name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`

	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Member hanya boleh membuka view yang ada di daftar ini
	Permissions datatypes.JSONSlice[string] `json:"permissions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// CanView reports whether the user may open the given app view.
func (u *User) CanView(view string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == view {
			return true
		}
	}
	return false
}

// App views a Member can be granted.
const (
	ViewDashboard = "Dashboard"
	ViewLeads     = "Prospek"
	ViewClients   = "Klien"
	ViewProjects  = "Proyek"
	ViewTeam      = "Freelancer"
	ViewFinance   = "Keuangan"
	ViewCalendar  = "Kalender"
	ViewPackages  = "Paket"
	ViewPromos    = "Kode Promo"
	ViewContracts = "Kontrak"
	ViewSOP       = "SOP"
	ViewReports   = "Laporan"
	ViewSettings  = "Pengaturan"
)
