package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/pricing"
)

// CatalogService owns packages, add-ons and promo codes. Rows that projects
// point at cannot be removed, and a referenced package keeps its price.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

func conflictf(format string, args ...any) error {
	return apperr.Newf(apperr.CodeConflict, format, args...)
}

func load[T any](tx *gorm.DB, id uuid.UUID, msg string) (*T, error) {
	var row T
	if err := tx.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, msg)
		}
		return nil, apperr.Wrap(apperr.CodeInternal, err, msg)
	}
	return &row, nil
}

// ---- packages

type PackageInput struct {
	Name           string                `json:"name" validate:"required,max=150"`
	Price          int64                 `json:"price" validate:"gte=0"`
	Category       string                `json:"category" validate:"max=80"`
	PhysicalItems  []models.PhysicalItem `json:"physical_items" validate:"dive"`
	DigitalItems   []string              `json:"digital_items"`
	ProcessingTime string                `json:"processing_time" validate:"max=80"`
}

func (in PackageInput) apply(p *models.Package) {
	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.Category = in.Category
	p.PhysicalItems = in.PhysicalItems
	p.DigitalItems = in.DigitalItems
	p.ProcessingTime = in.ProcessingTime
}

func (s *CatalogService) Packages(ctx context.Context) ([]models.Package, error) {
	var rows []models.Package
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat paket")
	}
	return rows, nil
}

func (s *CatalogService) CreatePackage(ctx context.Context, in PackageInput) (*models.Package, error) {
	if in.Price < 0 {
		return nil, apperr.Validation("price", "Harga tidak boleh negatif")
	}
	var p models.Package
	in.apply(&p)
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan paket")
	}
	return &p, nil
}

func packageUsage(tx *gorm.DB, id uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&models.Project{}).Where("package_id = ?", id).Count(&n).Error
	return n, err
}

func (s *CatalogService) UpdatePackage(ctx context.Context, id uuid.UUID, in PackageInput) (*models.Package, error) {
	if in.Price < 0 {
		return nil, apperr.Validation("price", "Harga tidak boleh negatif")
	}
	var out *models.Package
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := load[models.Package](tx, id, "Paket tidak ditemukan")
		if err != nil {
			return err
		}
		if p.Price != in.Price {
			n, err := packageUsage(tx, id)
			if err != nil {
				return apperr.Wrap(apperr.CodeInternal, err, "Gagal memeriksa pemakaian paket")
			}
			if n > 0 {
				return conflictf("Harga paket tidak bisa diubah karena dipakai %d proyek", n)
			}
		}
		in.apply(p)
		if err := tx.Save(p).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan paket")
		}
		out = p
		return nil
	})
	return out, err
}

func (s *CatalogService) DeletePackage(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := load[models.Package](tx, id, "Paket tidak ditemukan"); err != nil {
			return err
		}
		n, err := packageUsage(tx, id)
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memeriksa pemakaian paket")
		}
		if n > 0 {
			return conflictf("Paket tidak bisa dihapus karena dipakai %d proyek", n)
		}
		return tx.Delete(&models.Package{}, "id = ?", id).Error
	})
}

// ---- add-ons

type AddOnInput struct {
	Name  string `json:"name" validate:"required,max=150"`
	Price int64  `json:"price" validate:"gte=0"`
}

func (s *CatalogService) AddOns(ctx context.Context) ([]models.AddOn, error) {
	var rows []models.AddOn
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat add-on")
	}
	return rows, nil
}

func (s *CatalogService) CreateAddOn(ctx context.Context, in AddOnInput) (*models.AddOn, error) {
	if in.Price < 0 {
		return nil, apperr.Validation("price", "Harga tidak boleh negatif")
	}
	a := models.AddOn{Name: strings.TrimSpace(in.Name), Price: in.Price}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan add-on")
	}
	return &a, nil
}

// UpdateAddOn edits the catalog row only; project snapshots keep their copy.
func (s *CatalogService) UpdateAddOn(ctx context.Context, id uuid.UUID, in AddOnInput) (*models.AddOn, error) {
	if in.Price < 0 {
		return nil, apperr.Validation("price", "Harga tidak boleh negatif")
	}
	a, err := load[models.AddOn](s.DB.WithContext(ctx), id, "Add-on tidak ditemukan")
	if err != nil {
		return nil, err
	}
	a.Name = strings.TrimSpace(in.Name)
	a.Price = in.Price
	if err := s.DB.WithContext(ctx).Save(a).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan add-on")
	}
	return a, nil
}

// addOnUsage counts projects whose snapshot lists id. Snapshots are JSON, so
// the scan happens here instead of in SQL to stay portable across drivers.
func addOnUsage(tx *gorm.DB, id uuid.UUID) (int64, error) {
	var snapshots []datatypes.JSONSlice[models.AddOnSnapshot]
	if err := tx.Model(&models.Project{}).Where("add_ons IS NOT NULL").Pluck("add_ons", &snapshots).Error; err != nil {
		return 0, err
	}
	var n int64
	for _, list := range snapshots {
		for _, a := range list {
			if a.ID == id {
				n++
				break
			}
		}
	}
	return n, nil
}

func (s *CatalogService) DeleteAddOn(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := load[models.AddOn](tx, id, "Add-on tidak ditemukan"); err != nil {
			return err
		}
		n, err := addOnUsage(tx, id)
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memeriksa pemakaian add-on")
		}
		if n > 0 {
			return conflictf("Add-on tidak bisa dihapus karena dipakai %d proyek", n)
		}
		return tx.Delete(&models.AddOn{}, "id = ?", id).Error
	})
}

// ---- promo codes

type PromoInput struct {
	Code          string              `json:"code" validate:"required,max=40"`
	DiscountType  models.DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	IsActive      bool                `json:"is_active"`
	MaxUsage      *int                `json:"max_usage" validate:"omitempty,gt=0"`
	ExpiryDate    *time.Time          `json:"expiry_date"`
}

func (in PromoInput) check() error {
	if in.DiscountValue.IsNegative() || in.DiscountValue.IsZero() {
		return apperr.Validation("discount_value", "Nilai diskon harus lebih dari 0")
	}
	if in.DiscountType == models.DiscountPercentage && in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return apperr.Validation("discount_value", "Diskon persen maksimal 100")
	}
	if pricing.NormalizeCode(in.Code) == "" {
		return apperr.Validation("code", "Kode promo wajib diisi")
	}
	return nil
}

func (s *CatalogService) Promos(ctx context.Context) ([]models.PromoCode, error) {
	var rows []models.PromoCode
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat kode promo")
	}
	return rows, nil
}

func (s *CatalogService) CreatePromo(ctx context.Context, in PromoInput) (*models.PromoCode, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	p := models.PromoCode{
		Code:          pricing.NormalizeCode(in.Code),
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		IsActive:      true,
		MaxUsage:      in.MaxUsage,
		ExpiryDate:    in.ExpiryDate,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Validation("code", "Kode promo sudah ada")
			}
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan kode promo")
		}
		// is_active has a default, so false must be written explicitly
		if !in.IsActive {
			p.IsActive = false
			return tx.Model(&p).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePromo never touches usage_count; max_usage cannot drop below it.
func (s *CatalogService) UpdatePromo(ctx context.Context, id uuid.UUID, in PromoInput) (*models.PromoCode, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	var out *models.PromoCode
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := load[models.PromoCode](tx, id, "Kode promo tidak ditemukan")
		if err != nil {
			return err
		}
		if in.MaxUsage != nil && *in.MaxUsage < p.UsageCount {
			return apperr.Validation("max_usage", "Batas pemakaian tidak boleh di bawah jumlah yang sudah terpakai")
		}
		code := pricing.NormalizeCode(in.Code)
		if err := tx.Model(p).Select("code", "discount_type", "discount_value", "is_active", "max_usage", "expiry_date").
			Updates(models.PromoCode{
				Code:          code,
				DiscountType:  in.DiscountType,
				DiscountValue: in.DiscountValue,
				IsActive:      in.IsActive,
				MaxUsage:      in.MaxUsage,
				ExpiryDate:    in.ExpiryDate,
			}).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Validation("code", "Kode promo sudah ada")
			}
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan kode promo")
		}
		out, err = load[models.PromoCode](tx, id, "Kode promo tidak ditemukan")
		return err
	})
	return out, err
}

func (s *CatalogService) DeletePromo(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := load[models.PromoCode](tx, id, "Kode promo tidak ditemukan")
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Project{}).Where("promo_code_id = ?", id).Count(&n).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memeriksa pemakaian kode promo")
		}
		if n > 0 || p.UsageCount > 0 {
			return conflictf("Kode promo %s sudah dipakai dan tidak bisa dihapus, nonaktifkan saja", p.Code)
		}
		return tx.Delete(&models.PromoCode{}, "id = ?", id).Error
	})
}
