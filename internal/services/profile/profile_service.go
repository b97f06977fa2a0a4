package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// Get returns the studio profile, or the defaults while none has been saved.
func (s *ProfileService) Get(ctx context.Context) (models.Profile, error) {
	return Load(s.DB.WithContext(ctx))
}

func Load(db *gorm.DB) (models.Profile, error) {
	var p models.Profile
	err := db.Order("created_at asc").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultProfile(), nil
	}
	if err != nil {
		return p, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat profil studio")
	}
	return p, nil
}

// Save upserts the single profile row.
func (s *ProfileService) Save(ctx context.Context, in models.Profile) (models.Profile, error) {
	db := s.DB.WithContext(ctx)
	var current models.Profile
	err := db.Order("created_at asc").First(&current).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		in.ID = uuid.Nil
		if err := db.Create(&in).Error; err != nil {
			return in, apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan profil studio")
		}
		return in, nil
	case err != nil:
		return in, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat profil studio")
	}

	in.ID = current.ID
	in.CreatedAt = current.CreatedAt
	if err := db.Save(&in).Error; err != nil {
		return in, apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan profil studio")
	}
	return in, nil
}
