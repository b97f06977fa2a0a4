package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StatusConfig struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Profile menyimpan profil studio sekaligus konfigurasi yang dipakai kalender dan keuangan.
type Profile struct {
	ID                  uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyName         string                            `gorm:"type:varchar(150)" json:"company_name"`
	Email               string                            `gorm:"type:varchar(150)" json:"email"`
	Phone               string                            `gorm:"type:varchar(30)" json:"phone"`
	Address             string                            `gorm:"type:text" json:"address"`
	BankAccount         string                            `gorm:"type:varchar(120)" json:"bank_account"`
	InternalEventTypes  datatypes.JSONSlice[string]       `json:"internal_event_types"`
	ProjectStatusConfig datatypes.JSONSlice[StatusConfig] `json:"project_status_config"`
	IncomeCategories    datatypes.JSONSlice[string]       `json:"income_categories"`
	ExpenseCategories   datatypes.JSONSlice[string]       `json:"expense_categories"`
	ProjectTypes        datatypes.JSONSlice[string]       `json:"project_types"`
	CreatedAt           time.Time                         `json:"created_at"`
	UpdatedAt           time.Time                         `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// IsInternalEvent reports whether projectType is configured as an internal event type.
func (p *Profile) IsInternalEvent(projectType string) bool {
	for _, t := range p.InternalEventTypes {
		if t == projectType {
			return true
		}
	}
	return false
}

// DefaultProfile dipakai saat tabel profile masih kosong.
func DefaultProfile() Profile {
	return Profile{
		CompanyName:        "Studio",
		InternalEventTypes: []string{"Meeting Klien", "Survey Lokasi", "Libur", "Workshop", "Acara Internal", "Lainnya"},
		ProjectStatusConfig: []StatusConfig{
			{Name: "Persiapan", Color: "#6366f1"},
			{Name: "Dikonfirmasi", Color: "#3b82f6"},
			{Name: "Editing", Color: "#8b5cf6"},
			{Name: "Revisi", Color: "#14b8a6"},
			{Name: "Cetak", Color: "#f97316"},
			{Name: "Dikirim", Color: "#06b6d4"},
			{Name: "Tertunda", Color: "#eab308"},
			{Name: "Selesai", Color: "#10b981"},
			{Name: "Dibatalkan", Color: "#ef4444"},
		},
		IncomeCategories:  []string{"DP Proyek", "Pelunasan", "Penjualan Cetak", "Lainnya"},
		ExpenseCategories: []string{CategoryFreelancerSalary, "Sewa Alat", "Transportasi", "Konsumsi", "Operasional Kantor", CategoryRewardWithdrawal, "Lainnya"},
		ProjectTypes:      []string{"Pernikahan", "Prewedding", "Lamaran", "Korporat", "Ulang Tahun", "Produk"},
	}
}
