package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

var errForbidden = apperr.New(apperr.CodeForbidden, "Anda tidak memiliki akses ke halaman ini")

func RequireRoles(allowed ...models.Role) fiber.Handler {
	allowedSet := map[string]bool{}
	for _, r := range allowed {
		allowedSet[strings.ToLower(string(r))] = true
	}

	return func(c *fiber.Ctx) error {
		claims, ok := claimsOf(c)
		if !ok {
			return errUnauthorized
		}

		role := strings.ToLower(strings.TrimSpace(claims.Role))
		if !allowedSet[role] {
			return errForbidden
		}
		return c.Next()
	}
}

// RequireView loads the current user and checks it may open view.
// Admins pass, Members need view in their permissions. The user is stored in locals "currentUser".
func RequireView(db *gorm.DB, view string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := CurrentUser(c, db)
		if err != nil {
			return err
		}
		if !u.CanView(view) {
			return errForbidden
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated, active user, loading it once per request.
func CurrentUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	if u, ok := c.Locals("currentUser").(*models.User); ok && u != nil {
		return u, nil
	}
	uid := UserID(c)
	if uid == "" {
		return nil, errUnauthorized
	}

	var u models.User
	if err := db.WithContext(c.UserContext()).First(&u, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUnauthorized
		}
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat pengguna")
	}
	if !u.IsActive {
		return nil, apperr.New(apperr.CodeForbidden, "Akun tidak aktif")
	}
	c.Locals("currentUser", &u)
	return &u, nil
}
