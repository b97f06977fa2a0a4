package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuthHandler signs in users that already exist. Accounts are created by an Admin.
type GoogleOAuthHandler struct {
	Auth            *AuthHandler
	Log             zerolog.Logger
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
	// overridable in tests
	UserInfoURL string
	Endpoint    oauth2.Endpoint
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	endpoint := h.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (h *GoogleOAuthHandler) tempCookie(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Auth.Secure,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	next := c.Query("next", "/")
	st := randomState(32)

	h.tempCookie(c, "oauth_state", st, 10*60)
	h.tempCookie(c, "oauth_next", next, 10*60)

	return c.Redirect(h.oauthCfg().AuthCodeURL(st), http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *GoogleOAuthHandler) fail(c *fiber.Ctx, msg string) error {
	return c.Redirect(h.FrontendBaseURL+"/#/login?err="+url.QueryEscape(msg), http.StatusTemporaryRedirect)
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	stCookie := c.Cookies("oauth_state")
	next := c.Cookies("oauth_next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}

	h.tempCookie(c, "oauth_state", "", -1)
	h.tempCookie(c, "oauth_next", "", -1)

	if code == "" || state == "" || stCookie == "" || stCookie != state {
		return h.fail(c, "Sesi login Google tidak valid")
	}

	cfg := h.oauthCfg()
	tok, err := cfg.Exchange(c.UserContext(), code)
	if err != nil {
		h.Log.Warn().Err(err).Msg("google exchange gagal")
		return h.fail(c, "Login Google gagal")
	}

	infoURL := h.UserInfoURL
	if infoURL == "" {
		infoURL = googleUserInfoURL
	}
	resp, err := cfg.Client(c.UserContext(), tok).Get(infoURL)
	if err != nil {
		return h.fail(c, "Login Google gagal")
	}
	defer resp.Body.Close()

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return h.fail(c, "Login Google gagal")
	}
	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" || !gu.VerifiedEmail {
		return h.fail(c, "Email Google belum terverifikasi")
	}

	var u models.User
	if err := h.Auth.DB.WithContext(c.UserContext()).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h.fail(c, "Akun belum terdaftar, hubungi admin studio")
		}
		return h.fail(c, "Terjadi kesalahan server")
	}
	if !u.IsActive {
		return h.fail(c, "Akun tidak aktif")
	}

	if err := h.Auth.setSession(c, &u); err != nil {
		return h.fail(c, "Terjadi kesalahan server")
	}
	return c.Redirect(h.FrontendBaseURL+next, http.StatusTemporaryRedirect)
}
