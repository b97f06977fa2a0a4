package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/notify"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/pricing"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/profile"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/upload"
)

// BookingService handles the public forms: booking, lead capture, feedback and suggestion.
type BookingService struct {
	DB      *gorm.DB
	Notify  *notify.NotifyService
	Log     zerolog.Logger
	Timeout time.Duration
	Now     func() time.Time
}

func NewBookingService(db *gorm.DB, n *notify.NotifyService, log zerolog.Logger, timeout time.Duration) *BookingService {
	return &BookingService{DB: db, Notify: n, Log: log, Timeout: timeout, Now: time.Now}
}

func (s *BookingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func observe(form string, err error) {
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	metrics.PublicSubmissions.WithLabelValues(form, result).Inc()
}

type BookingInput struct {
	ClientName  string      `json:"client_name" validate:"required,max=150"`
	Email       string      `json:"email" validate:"required,email,max=150"`
	Phone       string      `json:"phone" validate:"required,max=30"`
	Whatsapp    string      `json:"whatsapp" validate:"max=30"`
	Instagram   string      `json:"instagram" validate:"max=80"`
	ProjectType string      `json:"project_type" validate:"required,max=80"`
	PackageID   uuid.UUID   `json:"package_id" validate:"required"`
	AddOnIDs    []uuid.UUID `json:"add_on_ids"`
	PromoCode   string      `json:"promo_code" validate:"max=40"`
	Date        time.Time   `json:"date" validate:"required"`
	StartTime   string      `json:"start_time" validate:"omitempty,datetime=15:04"`
	Location    string      `json:"location" validate:"required,max=200"`
	Notes       string      `json:"notes" validate:"max=2000"`
	// data URL; a multipart upload is converted by the handler
	PaymentProof string `json:"payment_proof"`
}

type BookingResult struct {
	Client  models.Client  `json:"client"`
	Project models.Project `json:"project"`
	Quote   pricing.Quote  `json:"quote"`
}

// SubmitBooking creates the client and project with the price frozen, redeems
// the promo once and raises a notification, all in one transaction.
func (s *BookingService) SubmitBooking(ctx context.Context, in BookingInput) (*BookingResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var proof string
	if strings.TrimSpace(in.PaymentProof) != "" {
		p, err := upload.DecodeDataURL(in.PaymentProof)
		if err != nil {
			observe("booking", err)
			return nil, err
		}
		proof = p.DataURL
	}

	now := s.Now()
	var (
		out BookingResult
		n   models.Notification
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sel, err := pricing.Load(tx, pricing.Input{PackageID: in.PackageID, AddOnIDs: in.AddOnIDs, PromoCode: in.PromoCode})
		if err != nil {
			return err
		}
		out.Quote = sel.Quote(now)
		if out.Quote.PromoError != "" {
			return apperr.Validation("promo_code", out.Quote.PromoError)
		}

		if err := findOrCreateClient(tx, &out.Client, in); err != nil {
			return err
		}

		prof, err := profile.Load(tx)
		if err != nil {
			return err
		}
		status := "Persiapan"
		if len(prof.ProjectStatusConfig) > 0 {
			status = prof.ProjectStatusConfig[0].Name
		}

		snapshots := make([]models.AddOnSnapshot, 0, len(sel.AddOns))
		for _, a := range sel.AddOns {
			snapshots = append(snapshots, a.Snapshot())
		}
		pkgID, clientID := sel.Package.ID, out.Client.ID
		out.Project = models.Project{
			Name:            in.ProjectType + " " + out.Client.Name,
			ClientID:        &clientID,
			ClientName:      out.Client.Name,
			ProjectType:     in.ProjectType,
			PackageID:       &pkgID,
			PackageName:     sel.Package.Name,
			AddOns:          snapshots,
			Date:            in.Date,
			StartTime:       in.StartTime,
			Location:        strings.TrimSpace(in.Location),
			Status:          status,
			Notes:           strings.TrimSpace(in.Notes),
			TotalCost:       out.Quote.Total,
			PaymentStatus:   models.PaymentStatusUnpaid,
			PromoCodeID:     out.Quote.PromoCodeID,
			DiscountAmount:  out.Quote.DiscountAmount,
			PaymentProofURL: proof,
		}
		if err := tx.Create(&out.Project).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan proyek")
		}

		if out.Quote.PromoCodeID != nil {
			if err := pricing.Redeem(tx, *out.Quote.PromoCodeID, now); err != nil {
				return err
			}
		}

		n = notify.NewBooking(out.Project)
		return notify.Create(tx, &n)
	})
	observe("booking", err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.CodeDependency, err, "Permintaan terlalu lama, coba lagi")
		}
		return nil, err
	}

	if s.Notify != nil {
		s.Notify.Push(ctx, n)
	}
	s.Log.Info().Str("project_id", out.Project.ID.String()).Int64("total", out.Project.TotalCost).
		Bool("promo", out.Project.PromoCodeID != nil).Msg("booking publik diterima")
	return &out, nil
}

func findOrCreateClient(tx *gorm.DB, c *models.Client, in BookingInput) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	err := tx.Where("LOWER(email) = ?", email).First(c).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat klien")
	}

	*c = models.Client{
		Name:       strings.TrimSpace(in.ClientName),
		Email:      email,
		Phone:      strings.TrimSpace(in.Phone),
		Whatsapp:   strings.TrimSpace(in.Whatsapp),
		Instagram:  strings.TrimSpace(in.Instagram),
		Status:     models.ClientStatusActive,
		ClientType: "Langsung",
	}
	if err := tx.Create(c).Error; err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan klien")
	}
	return nil
}

type LeadInput struct {
	Name           string `json:"name" validate:"required,max=150"`
	ContactChannel string `json:"contact_channel" validate:"required,max=40"`
	Location       string `json:"location" validate:"max=150"`
	Whatsapp       string `json:"whatsapp" validate:"required,max=30"`
	Notes          string `json:"notes" validate:"max=2000"`
}

func (s *BookingService) SubmitLead(ctx context.Context, in LeadInput) (*models.Lead, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	lead := models.Lead{
		Name:           strings.TrimSpace(in.Name),
		ContactChannel: in.ContactChannel,
		Location:       strings.TrimSpace(in.Location),
		Status:         models.LeadStatusNew,
		Date:           s.Now(),
		Notes:          strings.TrimSpace(in.Notes),
		Whatsapp:       strings.TrimSpace(in.Whatsapp),
	}
	var n models.Notification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lead).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan prospek")
		}
		n = notify.NewLead(lead)
		return notify.Create(tx, &n)
	})
	observe("lead", err)
	if err != nil {
		return nil, err
	}
	if s.Notify != nil {
		s.Notify.Push(ctx, n)
	}
	return &lead, nil
}

type FeedbackInput struct {
	ClientName   string                   `json:"client_name" validate:"required,max=150"`
	Satisfaction models.SatisfactionLevel `json:"satisfaction" validate:"omitempty,max=20"`
	Rating       int                      `json:"rating" validate:"omitempty,min=1,max=5"`
	Feedback     string                   `json:"feedback" validate:"required,max=4000"`
	Kind         string                   `json:"kind" validate:"omitempty,oneof=feedback suggestion"`
}

// SubmitFeedback stores a feedback or suggestion form. Suggestions carry no rating.
func (s *BookingService) SubmitFeedback(ctx context.Context, in FeedbackInput) (*models.ClientFeedback, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	kind := in.Kind
	if kind == "" {
		kind = "feedback"
	}
	if kind == "feedback" && (in.Rating < 1 || in.Rating > 5) {
		err := apperr.Validation("rating", "Rating harus 1 sampai 5")
		observe(kind, err)
		return nil, err
	}
	fb := models.ClientFeedback{
		ClientName:   strings.TrimSpace(in.ClientName),
		Satisfaction: in.Satisfaction,
		Rating:       in.Rating,
		Feedback:     strings.TrimSpace(in.Feedback),
		Kind:         kind,
		Date:         s.Now(),
	}
	if kind == "suggestion" {
		fb.Rating = 0
		fb.Satisfaction = ""
	}

	var n models.Notification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&fb).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan masukan")
		}
		n = notify.NewFeedback(fb)
		return notify.Create(tx, &n)
	})
	observe(kind, err)
	if err != nil {
		return nil, err
	}
	if s.Notify != nil {
		s.Notify.Push(ctx, n)
	}
	return &fb, nil
}
