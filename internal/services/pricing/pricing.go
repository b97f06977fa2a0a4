package pricing

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

const (
	MsgPromoNotFound = "Kode promo tidak ditemukan"
	MsgPromoInvalid  = "Kode promo tidak valid atau sudah habis"
)

var hundred = decimal.NewFromInt(100)

// Quote is the price breakdown shown before booking and frozen on the project after.
type Quote struct {
	Subtotal            int64      `json:"subtotal"`
	DiscountAmount      int64      `json:"discount_amount"`
	Total               int64      `json:"total"`
	DiscountDescription string     `json:"discount_description,omitempty"`
	PromoCodeID         *uuid.UUID `json:"promo_code_id,omitempty"`
	PromoError          string     `json:"promo_error,omitempty"`
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsRedeemable: active, not past its expiry day, and below max usage.
func IsRedeemable(p *models.PromoCode, now time.Time) bool {
	if p == nil || !p.IsActive {
		return false
	}
	if p.ExpiryDate != nil && startOfDay(p.ExpiryDate.In(now.Location())).Before(startOfDay(now)) {
		return false
	}
	if p.MaxUsage != nil && p.UsageCount >= *p.MaxUsage {
		return false
	}
	return true
}

// Calculate prices a package plus add-ons and applies promo when the code resolves to it.
// promo is nil when code was supplied but no row matched.
func Calculate(pkg models.Package, addOns []models.AddOn, promo *models.PromoCode, code string, now time.Time) Quote {
	q := Quote{Subtotal: pkg.Price}
	for _, a := range addOns {
		q.Subtotal += a.Price
	}
	q.Total = q.Subtotal

	if NormalizeCode(code) == "" {
		return q
	}
	if promo == nil {
		q.PromoError = MsgPromoNotFound
		return q
	}
	if !IsRedeemable(promo, now) {
		q.PromoError = MsgPromoInvalid
		return q
	}

	var discount int64
	switch promo.DiscountType {
	case models.DiscountPercentage:
		discount = decimal.NewFromInt(q.Subtotal).Mul(promo.DiscountValue).Div(hundred).Round(0).IntPart()
		q.DiscountDescription = promo.DiscountValue.String() + "%"
	default:
		discount = promo.DiscountValue.Round(0).IntPart()
		q.DiscountDescription = FormatRupiah(discount)
	}
	if discount < 0 {
		discount = 0
	}
	if discount > q.Subtotal {
		discount = q.Subtotal
	}

	id := promo.ID
	q.PromoCodeID = &id
	q.DiscountAmount = discount
	q.Total = q.Subtotal - discount
	return q
}

// FormatRupiah formats 550000 as "Rp 550.000".
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "Rp " + b.String()
}

type Input struct {
	PackageID uuid.UUID   `json:"package_id" validate:"required"`
	AddOnIDs  []uuid.UUID `json:"add_on_ids"`
	PromoCode string      `json:"promo_code" validate:"max=40"`
}

// Selection is the catalog rows an Input resolves to.
type Selection struct {
	Package models.Package
	AddOns  []models.AddOn
	Promo   *models.PromoCode
	Code    string
}

func (s Selection) Quote(now time.Time) Quote {
	return Calculate(s.Package, s.AddOns, s.Promo, s.Code, now)
}

// Load resolves an Input against db, which may be a transaction.
func Load(db *gorm.DB, in Input) (Selection, error) {
	sel := Selection{Code: NormalizeCode(in.PromoCode)}

	if err := db.First(&sel.Package, "id = ?", in.PackageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sel, apperr.Validation("package_id", "Paket tidak ditemukan")
		}
		return sel, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat paket")
	}

	if ids := dedupe(in.AddOnIDs); len(ids) > 0 {
		var rows []models.AddOn
		if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return sel, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat add-on")
		}
		if len(rows) != len(ids) {
			return sel, apperr.Validation("add_on_ids", "Add-on tidak ditemukan")
		}
		// urutan mengikuti pilihan klien
		byID := make(map[uuid.UUID]models.AddOn, len(rows))
		for _, r := range rows {
			byID[r.ID] = r
		}
		for _, id := range ids {
			sel.AddOns = append(sel.AddOns, byID[id])
		}
	}

	if sel.Code != "" {
		var promo models.PromoCode
		err := db.Where("code = ?", sel.Code).First(&promo).Error
		switch {
		case err == nil:
			sel.Promo = &promo
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return sel, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat kode promo")
		}
	}
	return sel, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

// Preview prices a selection without side effects.
func (s *Service) Preview(ctx context.Context, in Input) (Quote, error) {
	sel, err := Load(s.DB.WithContext(ctx), in)
	if err != nil {
		return Quote{}, err
	}
	return sel.Quote(s.Now()), nil
}

// Redeem increments usage exactly once. Must run inside the booking transaction.
func (s *Service) Redeem(tx *gorm.DB, promoID uuid.UUID) error {
	return Redeem(tx, promoID, s.Now())
}

func Redeem(tx *gorm.DB, promoID uuid.UUID, now time.Time) error {
	res := tx.Model(&models.PromoCode{}).
		Where("id = ? AND is_active = ?", promoID, true).
		Where("(max_usage IS NULL OR usage_count < max_usage)").
		Where("(expiry_date IS NULL OR expiry_date >= ?)", startOfDay(now)).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal memakai kode promo")
	}
	if res.RowsAffected == 0 {
		return apperr.Validation("promo_code", MsgPromoInvalid)
	}
	return nil
}
