package records

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/pricing"
)

type ClientInput struct {
	Name       string              `json:"name" validate:"required,max=150"`
	Email      string              `json:"email" validate:"omitempty,email,max=150"`
	Phone      string              `json:"phone" validate:"max=30"`
	Whatsapp   string              `json:"whatsapp" validate:"max=30"`
	Instagram  string              `json:"instagram" validate:"max=80"`
	Status     models.ClientStatus `json:"status" validate:"omitempty,oneof=Aktif 'Tidak Aktif' Hilang"`
	ClientType string              `json:"client_type" validate:"max=30"`
}

func (in ClientInput) Apply(c *models.Client) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = strings.TrimSpace(in.Phone)
	c.Whatsapp = strings.TrimSpace(in.Whatsapp)
	c.Instagram = strings.TrimSpace(in.Instagram)
	c.Status = in.Status
	if c.Status == "" {
		c.Status = models.ClientStatusActive
	}
	c.ClientType = in.ClientType
	if c.ClientType == "" {
		c.ClientType = "Langsung"
	}
}

type LeadInput struct {
	Name           string            `json:"name" validate:"required,max=150"`
	ContactChannel string            `json:"contact_channel" validate:"max=40"`
	Location       string            `json:"location" validate:"max=150"`
	Status         models.LeadStatus `json:"status" validate:"omitempty,oneof='Sedang Diskusi' 'Menunggu Follow Up' Dikonversi Ditolak"`
	Date           time.Time         `json:"date"`
	Notes          string            `json:"notes" validate:"max=2000"`
	Whatsapp       string            `json:"whatsapp" validate:"max=30"`
}

func (in LeadInput) Apply(l *models.Lead) {
	l.Name = strings.TrimSpace(in.Name)
	l.ContactChannel = in.ContactChannel
	l.Location = strings.TrimSpace(in.Location)
	l.Status = in.Status
	if l.Status == "" {
		l.Status = models.LeadStatusNew
	}
	l.Date = in.Date
	if l.Date.IsZero() {
		l.Date = time.Now()
	}
	l.Notes = strings.TrimSpace(in.Notes)
	l.Whatsapp = strings.TrimSpace(in.Whatsapp)
}

// ProjectInput edits scheduling and descriptive fields. PackageID, AddOnIDs and
// PromoCode price the project once, on create; afterwards price, payment and
// add-on snapshot stay frozen and updates ignore them.
type ProjectInput struct {
	Name        string     `json:"name" validate:"required,max=200"`
	ClientID    *uuid.UUID `json:"client_id"`
	ProjectType string     `json:"project_type" validate:"required,max=80"`
	Date        time.Time  `json:"date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	StartTime   string     `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime     string     `json:"end_time" validate:"omitempty,datetime=15:04"`
	Location    string     `json:"location" validate:"max=200"`
	Status      string     `json:"status" validate:"required,max=60"`
	Notes       string     `json:"notes" validate:"max=4000"`

	PackageID *uuid.UUID  `json:"package_id"`
	AddOnIDs  []uuid.UUID `json:"add_on_ids"`
	PromoCode string      `json:"promo_code" validate:"max=40"`
}

func (in ProjectInput) Apply(p *models.Project) {
	p.Name = strings.TrimSpace(in.Name)
	p.ClientID = in.ClientID
	p.ProjectType = in.ProjectType
	p.Date = in.Date
	p.EndDate = in.EndDate
	p.StartTime = in.StartTime
	p.EndTime = in.EndTime
	p.Location = strings.TrimSpace(in.Location)
	p.Status = in.Status
	p.Notes = strings.TrimSpace(in.Notes)
}

// Prepare copies the client's name onto the project.
func (in ProjectInput) Prepare(tx *gorm.DB, p *models.Project) error {
	if in.EndDate != nil && in.EndDate.Before(in.Date) {
		return apperr.Validation("end_date", "Tanggal selesai tidak boleh sebelum tanggal mulai")
	}
	if in.ClientID == nil {
		p.ClientName = ""
		return in.price(tx, p)
	}
	c, err := find[models.Client](tx, *in.ClientID)
	if err != nil {
		return apperr.Validation("client_id", "Klien tidak ditemukan")
	}
	p.ClientName = c.Name
	return in.price(tx, p)
}

// price freezes the quote on a new project and redeems its promo in the same tx.
func (in ProjectInput) price(tx *gorm.DB, p *models.Project) error {
	if p.ID != uuid.Nil {
		return nil
	}
	if in.PackageID == nil {
		if strings.TrimSpace(in.PromoCode) != "" || len(in.AddOnIDs) > 0 {
			return apperr.Validation("package_id", "Pilih paket terlebih dahulu")
		}
		return nil
	}

	sel, err := pricing.Load(tx, pricing.Input{PackageID: *in.PackageID, AddOnIDs: in.AddOnIDs, PromoCode: in.PromoCode})
	if err != nil {
		return err
	}
	now := time.Now()
	q := sel.Quote(now)
	if q.PromoError != "" {
		return apperr.Validation("promo_code", q.PromoError)
	}

	snapshots := make([]models.AddOnSnapshot, 0, len(sel.AddOns))
	for _, a := range sel.AddOns {
		snapshots = append(snapshots, a.Snapshot())
	}
	pkgID := sel.Package.ID
	p.PackageID = &pkgID
	p.PackageName = sel.Package.Name
	p.AddOns = snapshots
	p.TotalCost = q.Total
	p.DiscountAmount = q.DiscountAmount
	p.PromoCodeID = q.PromoCodeID
	p.PaymentStatus = models.PaymentStatusUnpaid

	if q.PromoCodeID != nil {
		return pricing.Redeem(tx, *q.PromoCodeID, now)
	}
	return nil
}

type TeamMemberInput struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Role        string  `json:"role" validate:"max=80"`
	Email       string  `json:"email" validate:"omitempty,email,max=150"`
	Phone       string  `json:"phone" validate:"max=30"`
	StandardFee int64   `json:"standard_fee" validate:"gte=0"`
	NoRek       string  `json:"no_rek" validate:"max=60"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
}

// Apply leaves reward_balance alone; it belongs to the reward ledger.
func (in TeamMemberInput) Apply(m *models.TeamMember) {
	m.Name = strings.TrimSpace(in.Name)
	m.Role = in.Role
	m.Email = strings.ToLower(strings.TrimSpace(in.Email))
	m.Phone = strings.TrimSpace(in.Phone)
	m.StandardFee = in.StandardFee
	m.NoRek = strings.TrimSpace(in.NoRek)
	m.Rating = in.Rating
}

type CardInput struct {
	CardHolderName string `json:"card_holder_name" validate:"max=150"`
	BankName       string `json:"bank_name" validate:"required,max=80"`
	CardType       string `json:"card_type" validate:"max=30"`
	LastFourDigits string `json:"last_four_digits" validate:"omitempty,len=4,numeric"`
	ColorGradient  string `json:"color_gradient" validate:"max=120"`
	// only read when the card is created
	InitialBalance int64 `json:"initial_balance" validate:"gte=0"`
}

func (in CardInput) Apply(c *models.Card) {
	c.CardHolderName = strings.TrimSpace(in.CardHolderName)
	c.BankName = strings.TrimSpace(in.BankName)
	c.CardType = in.CardType
	c.LastFourDigits = in.LastFourDigits
	c.ColorGradient = in.ColorGradient
	if c.ID == uuid.Nil {
		c.Balance = in.InitialBalance
	}
}

type PocketInput struct {
	Name         string            `json:"name" validate:"required,max=150"`
	Description  string            `json:"description" validate:"max=1000"`
	Icon         string            `json:"icon" validate:"max=40"`
	Type         models.PocketType `json:"type" validate:"required,max=40"`
	GoalAmount   *int64            `json:"goal_amount" validate:"omitempty,gt=0"`
	LockEndDate  *time.Time        `json:"lock_end_date"`
	SourceCardID *uuid.UUID        `json:"source_card_id"`
}

// Apply leaves amount alone; pockets are funded through ledger transfers.
func (in PocketInput) Apply(p *models.FinancialPocket) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Icon = in.Icon
	p.Type = in.Type
	p.GoalAmount = in.GoalAmount
	p.LockEndDate = in.LockEndDate
	p.SourceCardID = in.SourceCardID
}

func (in PocketInput) Prepare(tx *gorm.DB, p *models.FinancialPocket) error {
	switch in.Type {
	case models.PocketSaving, models.PocketLocked, models.PocketShared, models.PocketExpense, models.PocketRewardPool:
	default:
		return apperr.Validation("type", "Jenis kantong tidak valid")
	}
	if in.SourceCardID != nil {
		if _, err := find[models.Card](tx, *in.SourceCardID); err != nil {
			return apperr.Validation("source_card_id", "Kartu tidak ditemukan")
		}
	}
	if in.Type == models.PocketRewardPool {
		var n int64
		if err := tx.Model(&models.FinancialPocket{}).
			Where("type = ? AND id <> ?", models.PocketRewardPool, p.ID).Count(&n).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memeriksa kantong")
		}
		if n > 0 {
			return apperr.Validation("type", "Kantong tabungan hadiah freelancer sudah ada")
		}
	}
	return nil
}

type ContractInput struct {
	ClientID           uuid.UUID `json:"client_id" validate:"required"`
	ProjectID          uuid.UUID `json:"project_id" validate:"required"`
	SigningDate        time.Time `json:"signing_date" validate:"required"`
	SigningLocation    string    `json:"signing_location" validate:"max=150"`
	ClientName1        string    `json:"client_name1" validate:"required,max=150"`
	ClientAddress1     string    `json:"client_address1" validate:"max=1000"`
	ClientPhone1       string    `json:"client_phone1" validate:"max=30"`
	ClientName2        string    `json:"client_name2" validate:"max=150"`
	ShootingDuration   string    `json:"shooting_duration" validate:"max=80"`
	GuaranteedPhotos   string    `json:"guaranteed_photos" validate:"max=80"`
	DeliveryTimeframe  string    `json:"delivery_timeframe" validate:"max=80"`
	CancellationPolicy string    `json:"cancellation_policy" validate:"max=4000"`
	Jurisdiction       string    `json:"jurisdiction" validate:"max=80"`
}

func (in ContractInput) Apply(c *models.Contract) {
	c.ClientID = in.ClientID
	c.ProjectID = in.ProjectID
	c.SigningDate = in.SigningDate
	c.SigningLocation = in.SigningLocation
	c.ClientName1 = strings.TrimSpace(in.ClientName1)
	c.ClientAddress1 = in.ClientAddress1
	c.ClientPhone1 = in.ClientPhone1
	c.ClientName2 = strings.TrimSpace(in.ClientName2)
	c.ShootingDuration = in.ShootingDuration
	c.GuaranteedPhotos = in.GuaranteedPhotos
	c.DeliveryTimeframe = in.DeliveryTimeframe
	c.CancellationPolicy = in.CancellationPolicy
	c.Jurisdiction = in.Jurisdiction
}

// Prepare requires the project to belong to the contract's client.
func (in ContractInput) Prepare(tx *gorm.DB, _ *models.Contract) error {
	p, err := find[models.Project](tx, in.ProjectID)
	if err != nil {
		return apperr.Validation("project_id", "Proyek tidak ditemukan")
	}
	if p.ClientID == nil || *p.ClientID != in.ClientID {
		return apperr.Validation("project_id", "Proyek bukan milik klien ini")
	}
	return nil
}

type SOPInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	Category string `json:"category" validate:"max=80"`
	Content  string `json:"content" validate:"required"`
}

func (in SOPInput) Apply(s *models.SOP) {
	s.Title = strings.TrimSpace(in.Title)
	s.Category = in.Category
	s.Content = in.Content
	s.LastUpdated = time.Now()
}
