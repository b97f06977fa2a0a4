package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/utils"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetNX(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Nop())})
}

func post(t *testing.T, app *fiber.App, path, key, body string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	app := newApp()
	calls := 0
	app.Post("/booking", Idempotency(IdempotencyConfig{Store: newMemStore()}), func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "n": calls})
	})

	first, body1 := post(t, app, "/booking", "k-1", `{"a":1}`)
	assert.Equal(t, fiber.StatusCreated, first.StatusCode)
	assert.Empty(t, first.Header.Get(ReplayHeader))

	second, body2 := post(t, app, "/booking", "k-1", `{"a":1}`)
	assert.Equal(t, fiber.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get(ReplayHeader))
	assert.Equal(t, body1, body2)
	assert.Equal(t, 1, calls)

	// a new key runs the handler again
	third, _ := post(t, app, "/booking", "k-2", `{"a":1}`)
	assert.Equal(t, fiber.StatusCreated, third.StatusCode)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyRejectsMissingKeyAndChangedBody(t *testing.T) {
	app := newApp()
	app.Post("/lead", Idempotency(IdempotencyConfig{Store: newMemStore()}), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
	})

	resp, body := post(t, app, "/lead", "", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, IdempotencyHeader)

	resp, _ = post(t, app, "/lead", "k", `{"name":"a"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, body = post(t, app, "/lead", "k", `{"name":"b"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, string(apperr.CodeDuplicate))
	assert.Contains(t, body, "berbeda")
}

func TestIdempotencyReleasesKeyOnFailure(t *testing.T) {
	app := newApp()
	calls := 0
	app.Post("/booking", Idempotency(IdempotencyConfig{Store: newMemStore()}), func(c *fiber.Ctx) error {
		calls++
		if calls == 1 {
			return apperr.Validation("promo_code", "Kode promo tidak ditemukan")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
	})

	resp, body := post(t, app, "/booking", "k", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "promo_code")

	resp, _ = post(t, app, "/booking", "k", `{}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyPendingKeyIsDuplicate(t *testing.T) {
	store := newMemStore()
	app := newApp()
	app.Post("/booking", Idempotency(IdempotencyConfig{Store: store}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	// another instance holds the key
	hashOfEmpty := "44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a"
	require.NoError(t, store.Set(context.Background(), "idem:/booking:k",
		[]byte(`{"pending":true,"request_hash":"`+hashOfEmpty+`"}`), time.Minute))

	resp, body := post(t, app, "/booking", "k", `{}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, string(apperr.CodeDuplicate))
}

// racyStore hides pending records from Get, as when a second request reads
// the key just before the first one claims it.
type racyStore struct {
	*memStore
	looked chan struct{}
}

func (r racyStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.memStore.Get(ctx, key)
	if err == nil && strings.Contains(string(v), `"pending":true`) {
		r.looked <- struct{}{}
		return nil, ErrKeyNotFound
	}
	return v, err
}

func TestIdempotencyConcurrentDuplicateChecksBody(t *testing.T) {
	store := racyStore{memStore: newMemStore(), looked: make(chan struct{}, 1)}
	running := make(chan struct{})
	release := make(chan struct{})
	app := newApp()
	app.Post("/booking", Idempotency(IdempotencyConfig{Store: store}), func(c *fiber.Ctx) error {
		close(running)
		<-release
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
	})

	type result struct {
		status int
		body   string
	}
	send := func(body string, out chan<- result) {
		req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(IdempotencyHeader, "k")
		resp, err := app.Test(req, -1)
		if err != nil {
			out <- result{}
			return
		}
		b, _ := io.ReadAll(resp.Body)
		out <- result{status: resp.StatusCode, body: string(b)}
	}

	first, second := make(chan result, 1), make(chan result, 1)
	go send(`{"paket":"gold"}`, first)
	<-running
	go send(`{"paket":"silver"}`, second)
	<-store.looked
	// let the second request join the in-flight call
	time.Sleep(100 * time.Millisecond)
	close(release)

	assert.Equal(t, fiber.StatusCreated, (<-first).status)
	res := <-second
	assert.Equal(t, fiber.StatusConflict, res.status)
	assert.Contains(t, res.body, "berbeda")
	assert.NotContains(t, res.body, `"success":true`)
}

func TestEnvelope(t *testing.T) {
	status, body := Envelope(apperr.Validation("amount", "Jumlah harus lebih dari 0"))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, map[string][]string{"amount": {"Jumlah harus lebih dari 0"}}, body["errors"])

	status, body = Envelope(apperr.New(apperr.CodeInsufficientFunds, "Saldo Kartu BCA tidak mencukupi"))
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "Saldo Kartu BCA tidak mencukupi", body["message"])

	status, _ = Envelope(fiber.ErrNotFound)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = Envelope(io.ErrUnexpectedEOF)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Terjadi kesalahan server", body["message"])
}

func TestJWTAndRoles(t *testing.T) {
	const secret = "test-secret"
	app := newApp()
	api := app.Group("/api", JWTFromCookie(secret), AttachJWTLocals())
	api.Get("/me", func(c *fiber.Ctx) error { return c.SendString(UserID(c)) })
	api.Get("/admin", RequireRoles(models.RoleAdmin), func(c *fiber.Ctx) error { return c.SendString("ok") })

	get := func(path, token string) (*http.Response, string) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		return resp, string(b)
	}

	resp, _ := get("/api/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = get("/api/me", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	member, err := utils.SignJWT(secret, "user-1", string(models.RoleMember), 5)
	require.NoError(t, err)
	resp, body := get("/api/me", member)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-1", body)

	resp, _ = get("/api/admin", member)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin, err := utils.SignJWT(secret, "user-2", string(models.RoleAdmin), 5)
	require.NoError(t, err)
	resp, _ = get("/api/admin", admin)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	other, err := utils.SignJWT("other-secret", "user-3", string(models.RoleAdmin), 5)
	require.NoError(t, err)
	resp, _ = get("/api/admin", other)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	app := newApp()
	app.Use(RequestLogger(logger.Nop()))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/boom", func(c *fiber.Ctx) error { return apperr.New(apperr.CodeNotFound, "Tidak ada") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "rid-1", resp.Header.Get(RequestIDHeader))
}
