package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/pricing"
)

// Publisher pushes a committed notification to live screens.
type Publisher interface {
	Publish(ctx context.Context, kind string, data any)
}

type NotifyService struct {
	DB  *gorm.DB
	Pub Publisher
	Log zerolog.Logger
}

func NewNotifyService(db *gorm.DB, pub Publisher, log zerolog.Logger) *NotifyService {
	return &NotifyService{DB: db, Pub: pub, Log: log}
}

// Create appends n inside the caller's transaction. Push it after commit.
func Create(tx *gorm.DB, n *models.Notification) error {
	if err := tx.Create(n).Error; err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal membuat notifikasi")
	}
	return nil
}

func (s *NotifyService) Push(ctx context.Context, ns ...models.Notification) {
	if s.Pub == nil {
		return
	}
	for _, n := range ns {
		s.Pub.Publish(ctx, "notification", n)
	}
}

// Notify creates and pushes a standalone notification.
func (s *NotifyService) Notify(ctx context.Context, n models.Notification) (*models.Notification, error) {
	if err := Create(s.DB.WithContext(ctx), &n); err != nil {
		return nil, err
	}
	s.Push(ctx, n)
	return &n, nil
}

func (s *NotifyService) List(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.DB.WithContext(ctx).Order("timestamp desc").Limit(limit)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var rows []models.Notification
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat notifikasi")
	}
	return rows, nil
}

func (s *NotifyService) UnreadCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Notification{}).Where("is_read = ?", false).Count(&n).Error; err != nil {
		return 0, apperr.Wrap(apperr.CodeInternal, err, "Gagal menghitung notifikasi")
	}
	return n, nil
}

func (s *NotifyService) MarkRead(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal memperbarui notifikasi")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.CodeNotFound, "Notifikasi tidak ditemukan")
	}
	return nil
}

func (s *NotifyService) MarkAllRead(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).Where("is_read = ?", false).Update("is_read", true)
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal memperbarui notifikasi")
	}
	return res.RowsAffected, nil
}

func link(view, action string, id uuid.UUID) datatypes.JSONType[models.NotificationLink] {
	l := models.NotificationLink{View: view, Action: action}
	if id != uuid.Nil {
		l.ID = id.String()
	}
	return datatypes.NewJSONType(l)
}

func NewLead(l models.Lead) models.Notification {
	return models.Notification{
		Title:   "Prospek baru",
		Message: fmt.Sprintf("%s mengisi formulir prospek via %s.", l.Name, l.ContactChannel),
		Icon:    "lead",
		Link:    link("Prospek", "", l.ID),
	}
}

func NewBooking(p models.Project) models.Notification {
	return models.Notification{
		Title:   "Booking baru",
		Message: fmt.Sprintf("%s memesan %s untuk %s.", p.ClientName, p.PackageName, p.Date.Format("02 Jan 2006")),
		Icon:    "lead",
		Link:    link("Proyek", "view-details", p.ID),
	}
}

func NewFeedback(f models.ClientFeedback) models.Notification {
	kind := "feedback"
	if f.Kind == "suggestion" {
		kind = "saran"
	}
	return models.Notification{
		Title:   "Masukan baru",
		Message: fmt.Sprintf("%s mengirim %s (rating %d).", f.ClientName, kind, f.Rating),
		Icon:    "feedback",
		Link:    link("Klien", "feedback", f.ID),
	}
}

func NewRevisionUpdate(r models.Revision, projectName, memberName string) models.Notification {
	return models.Notification{
		Title:   "Revisi diperbarui",
		Message: fmt.Sprintf("%s memperbarui revisi %s menjadi %s.", memberName, projectName, r.Status),
		Icon:    "revision",
		Link:    link("Proyek", "view-details", r.ProjectID),
	}
}

func NewPayment(p models.Project, amount int64, method string) models.Notification {
	return models.Notification{
		Title:   "Pembayaran diterima",
		Message: fmt.Sprintf("Pembayaran %s untuk %s via %s. Status: %s.", pricing.FormatRupiah(amount), p.Name, method, p.PaymentStatus),
		Icon:    "payment",
		Link:    link("Proyek", "view-details", p.ID),
	}
}

func NewClientNote(p models.Project, subStatus, note string) models.Notification {
	return models.Notification{
		Title:   "Catatan klien",
		Message: fmt.Sprintf("Klien menambahkan catatan pada %s (%s): %s", p.Name, subStatus, note),
		Icon:    "comment",
		Link:    link("Proyek", "view-details", p.ID),
	}
}
