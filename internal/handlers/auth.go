package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db"
	"github.com/Windi-Fikriyansyah/studio_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Expires   int
	Secure    bool
}

func (h *AuthHandler) setSession(c *fiber.Ctx, u *models.User) error {
	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal membuat token")
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
	return nil
}

func userView(u *models.User) fiber.Map {
	return fiber.Map{
		"id":          u.ID,
		"full_name":   u.FullName,
		"email":       u.Email,
		"role":        u.Role,
		"permissions": u.Permissions,
	}
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var errBadCredentials = apperr.New(apperr.CodeUnauthorized, "Email atau password salah")

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var u models.User
	if err := h.DB.WithContext(c.UserContext()).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errBadCredentials
		}
		return apperr.Wrap(apperr.CodeInternal, err, "Terjadi kesalahan server")
	}
	if !utils.CheckPassword(u.Password, req.Password) {
		return errBadCredentials
	}
	if !u.IsActive {
		return apperr.New(apperr.CodeForbidden, "Akun tidak aktif")
	}

	if err := h.setSession(c, &u); err != nil {
		return err
	}
	return ok(c, "Login berhasil", fiber.Map{"user": userView(&u)})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: "Lax",
	})
	return ok(c, "Logout berhasil", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, err := middleware.CurrentUser(c, h.DB)
	if err != nil {
		return err
	}
	return ok(c, "", userView(u))
}

// ---- user management (Admin)

type UserReq struct {
	FullName    string      `json:"full_name" validate:"required,max=150"`
	Email       string      `json:"email" validate:"required,email,max=150"`
	Password    string      `json:"password" validate:"omitempty,min=8,max=72"`
	Role        models.Role `json:"role" validate:"required,oneof=Admin Member"`
	Permissions []string    `json:"permissions"`
	IsActive    *bool       `json:"is_active"`
}

func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := h.DB.WithContext(c.UserContext()).Order("full_name ASC").Find(&users).Error; err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat pengguna")
	}
	out := make([]fiber.Map, 0, len(users))
	for i := range users {
		v := userView(&users[i])
		v["is_active"] = users[i].IsActive
		out = append(out, v)
	}
	return ok(c, "", out)
}

func (h *AuthHandler) CreateUser(c *fiber.Ctx) error {
	var req UserReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Password == "" {
		return apperr.Validation("password", "Password wajib diisi")
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal memproses password")
	}

	u := models.User{
		FullName:    strings.TrimSpace(req.FullName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Password:    hash,
		Role:        req.Role,
		IsActive:    true,
		Permissions: req.Permissions,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.Validation("email", "Email sudah terdaftar")
		}
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan pengguna")
	}
	return created(c, "Pengguna ditambahkan", userView(&u))
}

func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req UserReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if id.String() == middleware.UserID(c) && (req.Role != models.RoleAdmin || (req.IsActive != nil && !*req.IsActive)) {
		return apperr.Validation("role", "Tidak bisa menurunkan atau menonaktifkan akun sendiri")
	}

	dbc := h.DB.WithContext(c.UserContext())
	var u models.User
	if err := dbc.First(&u, "id = ?", id).Error; err != nil {
		return apperr.Wrap(apperr.CodeNotFound, err, "Pengguna tidak ditemukan")
	}
	u.FullName = strings.TrimSpace(req.FullName)
	u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	u.Role = req.Role
	u.Permissions = req.Permissions
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Password != "" {
		if u.Password, err = utils.HashPassword(req.Password); err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memproses password")
		}
	}
	if err := dbc.Save(&u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.Validation("email", "Email sudah terdaftar")
		}
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan pengguna")
	}
	return ok(c, "Pengguna diperbarui", userView(&u))
}

func (h *AuthHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if id.String() == middleware.UserID(c) {
		return apperr.New(apperr.CodeConflict, "Tidak bisa menghapus akun sendiri")
	}
	res := h.DB.WithContext(c.UserContext()).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal menghapus pengguna")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.CodeNotFound, "Pengguna tidak ditemukan")
	}
	return ok(c, "Pengguna dihapus", fiber.Map{"id": id})
}
