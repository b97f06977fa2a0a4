package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/ledger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/notify"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/payroll"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/portal"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/records"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/reward"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/tripay"
)

const testPortalKey = "0123456789abcdef"

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger.Nop())})
}

type envelope struct {
	Success bool                `json:"success"`
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func recordsApp(t *testing.T) (*fiber.App, *gorm.DB) {
	gdb := dbtest.New(t)
	n := notify.NewNotifyService(gdb, nil, logger.Nop())
	h := NewRecordsHandler(records.NewRecordsService(gdb), portal.NewPortalService(gdb, testPortalKey, n), "http://studio.test/")

	app := newApp()
	app.Get("/clients", h.ListClients)
	app.Post("/clients", h.CreateClient)
	app.Get("/clients/:id", h.GetClient)
	app.Delete("/clients/:id", h.DeleteClient)
	app.Post("/clients/:id/portal-link", h.ClientPortalLink)
	return app, gdb
}

func TestClientEndpoints(t *testing.T) {
	app, gdb := recordsApp(t)

	status, env := do(t, app, http.MethodPost, "/clients", `{"name":""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	assert.Contains(t, env.Errors, "name")

	status, env = do(t, app, http.MethodPost, "/clients", `{"name":"Rina","email":"RINA@mail.com"}`)
	require.Equal(t, fiber.StatusCreated, status)
	var c models.Client
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, "rina@mail.com", c.Email)
	assert.Equal(t, models.ClientStatusActive, c.Status)

	status, env = do(t, app, http.MethodGet, "/clients?q=rin", "")
	require.Equal(t, fiber.StatusOK, status)
	var list []models.Client
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	status, _ = do(t, app, http.MethodGet, "/clients/not-a-uuid", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = do(t, app, http.MethodPost, "/clients/"+c.ID.String()+"/portal-link", "")
	require.Equal(t, fiber.StatusOK, status)
	var link struct {
		Token string `json:"portal_access_id"`
		URL   string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &link))
	assert.Equal(t, "http://studio.test/#/portal/"+link.Token, link.URL)

	// client with a project cannot be deleted
	require.NoError(t, gdb.Create(&models.Project{Name: "Wedding", ClientID: &c.ID, Status: "Persiapan"}).Error)
	status, env = do(t, app, http.MethodDelete, "/clients/"+c.ID.String(), "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Code)
}

func TestExpenseInsufficientFunds(t *testing.T) {
	gdb := dbtest.New(t)
	card := models.Card{BankName: "BCA", Balance: 100000}
	require.NoError(t, gdb.Create(&card).Error)

	h := NewFinanceHandler(
		ledger.NewLedgerService(gdb, logger.Nop()),
		payroll.NewPayrollService(gdb, logger.Nop()),
		reward.NewRewardService(gdb, logger.Nop()),
	)
	app := newApp()
	app.Post("/expense", h.RecordExpense)

	body := `{"amount":250000,"description":"Sewa lensa","category":"Sewa Alat","source":{"kind":"card","id":"` + card.ID.String() + `"}}`
	status, env := do(t, app, http.MethodPost, "/expense", body)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_FUNDS", env.Code)

	var after models.Card
	require.NoError(t, gdb.First(&after, "id = ?", card.ID).Error)
	assert.Equal(t, int64(100000), after.Balance)

	body = strings.Replace(body, "250000", "40000", 1)
	status, _ = do(t, app, http.MethodPost, "/expense", body)
	assert.Equal(t, fiber.StatusCreated, status)
	require.NoError(t, gdb.First(&after, "id = ?", card.ID).Error)
	assert.Equal(t, int64(60000), after.Balance)
}

func TestDisburseEmptySelection(t *testing.T) {
	gdb := dbtest.New(t)
	member := models.TeamMember{Name: "Andi", Role: "Fotografer"}
	require.NoError(t, gdb.Create(&member).Error)

	h := NewFinanceHandler(
		ledger.NewLedgerService(gdb, logger.Nop()),
		payroll.NewPayrollService(gdb, logger.Nop()),
		reward.NewRewardService(gdb, logger.Nop()),
	)
	app := newApp()
	app.Post("/payroll/disburse", h.Disburse)

	status, env := do(t, app, http.MethodPost, "/payroll/disburse", `{"team_member_id":"`+member.ID.String()+`","payment_ids":[]}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Tidak ada fee yang dipilih", env.Message)
	assert.Empty(t, env.Data)

	var n int64
	require.NoError(t, gdb.Model(&models.TeamPaymentRecord{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestResolveRoute(t *testing.T) {
	app := newApp()
	app.Get("/route", (&PublicHandler{}).ResolveRoute)

	status, env := do(t, app, http.MethodGet, "/route?fragment=%23%2Fportal%2Fabc", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"kind":"portal","access_id":"abc"}`, string(env.Data))

	_, env = do(t, app, http.MethodGet, "/route?fragment=%23%2Frevision-form%3FprojectId%3D1", "")
	assert.JSONEq(t, `{"kind":"invalid-link"}`, string(env.Data))
}

func TestRevisionLinkRequiresAllIDs(t *testing.T) {
	app := newApp()
	app.Get("/revisions", (&PublicHandler{}).GetRevision)

	status, env := do(t, app, http.MethodGet, "/revisions?projectId=a&freelancerId=b", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "INVALID_LINK", env.Code)
}

func TestTripayCallbackSignature(t *testing.T) {
	app := newApp()
	disabled := NewPaymentHandler(nil, nil, nil, logger.Nop(), "")
	app.Post("/off", disabled.HandleCallback)

	status, env := do(t, app, http.MethodPost, "/off", `{}`)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_ERROR", env.Code)

	svc := tripay.NewTripayService(tripay.Config{APIKey: "k", PrivateKey: "secret", MerchantCode: "T1"})
	h := NewPaymentHandler(svc, nil, nil, logger.Nop(), "")
	app.Post("/callback", h.HandleCallback)

	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(`{"status":"PAID"}`))
	req.Header.Set(CallbackSignatureHeader, "bogus")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
