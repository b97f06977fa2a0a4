package tripay

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/ledger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/notify"
)

const (
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
	StatusFailed  = "FAILED"

	CategoryGatewayFee = "Biaya Payment Gateway"
)

type CallbackPayload struct {
	Reference         string `json:"reference"`
	MerchantRef       string `json:"merchant_ref"`
	PaymentMethod     string `json:"payment_method"`
	PaymentMethodCode string `json:"payment_method_code"`
	TotalAmount       int64  `json:"total_amount"`
	FeeMerchant       int64  `json:"fee_merchant"`
	FeeCustomer       int64  `json:"fee_customer"`
	TotalFee          int64  `json:"total_fee"`
	AmountReceived    int64  `json:"amount_received"`
	IsClosedPayment   int    `json:"is_closed_payment"`
	Status            string `json:"status"` // PAID, EXPIRED, FAILED, REFUND
	PaidAt            int64  `json:"paid_at"`
	Note              string `json:"note"`
}

type Settlement struct {
	Project    models.Project
	Payment    *models.Transaction
	GatewayFee *models.Transaction
}

// Settler books paid gateway invoices into the ledger.
type Settler struct {
	DB     *gorm.DB
	Notify *notify.NotifyService
	Log    zerolog.Logger
	CardID uuid.UUID
}

func NewSettler(db *gorm.DB, n *notify.NotifyService, log zerolog.Logger, cardID uuid.UUID) *Settler {
	return &Settler{DB: db, Notify: n, Log: log, CardID: cardID}
}

// Settle records a PAID callback as a client payment into the settlement card,
// plus the merchant fee as an expense. Other statuses return (nil, nil).
// A reference seen before yields DUPLICATE_SUBMISSION.
func (s *Settler) Settle(ctx context.Context, p CallbackPayload) (*Settlement, error) {
	if p.Status != StatusPaid {
		s.Log.Info().Str("reference", p.Reference).Str("status", p.Status).Msg("callback tripay diabaikan")
		return nil, nil
	}
	if s.CardID == uuid.Nil {
		return nil, apperr.New(apperr.CodeInternal, "Kartu penampung Tripay belum dikonfigurasi")
	}
	projectID, err := ParseMerchantRef(p.MerchantRef)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, err, "Merchant ref tidak valid")
	}

	paidAt := time.Now()
	if p.PaidAt > 0 {
		paidAt = time.Unix(p.PaidAt, 0)
	}
	amount := p.TotalAmount - p.FeeCustomer
	card := ledger.Card(s.CardID)

	var (
		out Settlement
		n   models.Notification
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := ledger.ApplyClientPayment(tx, &out.Project, ledger.ClientPaymentInput{
			ProjectID:   projectID,
			Amount:      amount,
			Destination: card,
			Method:      p.PaymentMethod,
			Reference:   p.Reference,
			Date:        paidAt,
		})
		if err != nil {
			return err
		}
		out.Payment = t

		if p.FeeMerchant > 0 {
			pid := out.Project.ID
			fee := &models.Transaction{
				Date:        paidAt,
				Description: "Biaya Tripay " + p.Reference,
				Amount:      p.FeeMerchant,
				Category:    CategoryGatewayFee,
				Method:      p.PaymentMethod,
				ProjectID:   &pid,
			}
			if err := ledger.Spend(tx, card, fee); err != nil {
				return err
			}
			out.GatewayFee = fee
		}

		n = notify.NewPayment(out.Project, amount, p.PaymentMethod)
		return notify.Create(tx, &n)
	})
	metrics.Observe("tripay_settlement", amount, err)
	if err != nil {
		return nil, err
	}

	if s.Notify != nil {
		s.Notify.Push(ctx, n)
	}
	s.Log.Info().Str("reference", p.Reference).Str("project_id", projectID.String()).
		Int64("amount", amount).Msg("pembayaran tripay dicatat")
	return &out, nil
}
