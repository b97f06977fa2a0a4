package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/portal"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/tripay"
)

const CallbackSignatureHeader = "X-Callback-Signature"

// PaymentHandler lets clients pay an outstanding project balance through
// Tripay from their portal, and settles the gateway callbacks.
type PaymentHandler struct {
	Tripay      *tripay.TripayService
	Settler     *tripay.Settler
	Portal      *portal.PortalService
	Log         zerolog.Logger
	FrontendURL string
}

func NewPaymentHandler(t *tripay.TripayService, s *tripay.Settler, p *portal.PortalService, log zerolog.Logger, frontendURL string) *PaymentHandler {
	return &PaymentHandler{Tripay: t, Settler: s, Portal: p, Log: log, FrontendURL: frontendURL}
}

func (h *PaymentHandler) enabled() error {
	if h.Tripay == nil {
		return apperr.New(apperr.CodeDependency, "Pembayaran online belum tersedia")
	}
	return nil
}

func (h *PaymentHandler) GetChannels(c *fiber.Ctx) error {
	if err := h.enabled(); err != nil {
		return err
	}
	channels, err := h.Tripay.GetPaymentChannels(c.UserContext())
	if err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "Gagal memuat metode pembayaran")
	}
	return ok(c, "", channels)
}

type CreatePaymentRequest struct {
	ProjectID     uuid.UUID `json:"project_id" validate:"required"`
	PaymentMethod string    `json:"payment_method" validate:"required,max=40"`
	// kosong berarti lunasi seluruh sisa tagihan
	Amount int64 `json:"amount" validate:"gte=0"`
}

// CreatePayment: POST /api/public/portal/:token/payments
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	if err := h.enabled(); err != nil {
		return err
	}
	var req CreatePaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token := c.Params("token")
	view, err := h.Portal.Client(c.UserContext(), token)
	if err != nil {
		return err
	}
	var project *portal.ProjectSummary
	for i := range view.Projects {
		if view.Projects[i].ID == req.ProjectID {
			project = &view.Projects[i]
			break
		}
	}
	if project == nil {
		return apperr.New(apperr.CodeNotFound, "Proyek tidak ditemukan")
	}
	if project.Outstanding <= 0 {
		return apperr.New(apperr.CodeConflict, "Proyek ini sudah lunas")
	}
	amount := req.Amount
	if amount == 0 {
		amount = project.Outstanding
	}
	if amount > project.Outstanding {
		return apperr.Validation("amount", "Nominal melebihi sisa tagihan")
	}

	ch, err := h.Tripay.Channel(c.UserContext(), req.PaymentMethod)
	if err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "Gagal memuat metode pembayaran")
	}
	if ch == nil || !ch.Active {
		return apperr.Validation("payment_method", "Metode pembayaran tidak valid")
	}
	fee := ch.CustomerFee(amount)

	resp, err := h.Tripay.CreateTransaction(c.UserContext(), tripay.Invoice{
		ProjectID:     project.ID,
		Amount:        amount + fee,
		Method:        ch.Code,
		ItemName:      project.Name,
		CustomerName:  view.Client.Name,
		CustomerEmail: view.Client.Email,
		CustomerPhone: view.Client.Phone,
		ReturnURL:     h.FrontendURL + "/#/portal/" + token,
	})
	if err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "Gateway pembayaran sedang bermasalah")
	}

	return created(c, "Tagihan dibuat", fiber.Map{
		"checkout_url": resp.Data.CheckoutURL,
		"reference":    resp.Data.Reference,
		"amount":       amount,
		"fee":          fee,
	})
}

// HandleCallback settles a Tripay callback. Repeated callbacks for the same
// reference are acknowledged without booking the payment twice.
func (h *PaymentHandler) HandleCallback(c *fiber.Ctx) error {
	if err := h.enabled(); err != nil {
		return err
	}
	signature := c.Get(CallbackSignatureHeader)
	body := c.Body()
	if signature == "" || !h.Tripay.ValidateSignature(signature, body) {
		return apperr.New(apperr.CodeUnauthorized, "Signature tidak valid")
	}

	var payload tripay.CallbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "Payload tidak valid")
	}

	_, err := h.Settler.Settle(c.UserContext(), payload)
	if apperr.Is(err, apperr.CodeDuplicate) {
		h.Log.Info().Str("reference", payload.Reference).Msg("callback tripay duplikat")
		return c.JSON(fiber.Map{"success": true})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
