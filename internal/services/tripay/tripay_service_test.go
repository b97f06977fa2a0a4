package tripay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/notify"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestMerchantRefRoundTrip(t *testing.T) {
	id := uuid.New()
	ref := MerchantRef(id, now)
	assert.LessOrEqual(t, len(ref), 50)

	got, err := ParseMerchantRef(ref)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	for _, bad := range []string{"", "INV-123", "Pnothex-abc", "P" + uuid.NewString()} {
		_, err := ParseMerchantRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestCustomerFee(t *testing.T) {
	var ch PaymentChannel
	ch.Fee.Flat = float64(4250)
	ch.Fee.Percent = "0.70"
	// 4250 + 1.000.001 * 0.7% = 11250.007 -> 11251
	assert.Equal(t, int64(11251), ch.CustomerFee(1000001))

	var free PaymentChannel
	assert.Zero(t, free.CustomerFee(500000))
}

func TestSignature(t *testing.T) {
	s := NewTripayService(Config{PrivateKey: "priv", MerchantCode: "T1234"})
	body := []byte(`{"reference":"T1","status":"PAID"}`)
	sig := s.generateSignature(string(body))

	assert.True(t, s.ValidateSignature(sig, body))
	assert.False(t, s.ValidateSignature(sig, []byte(`{"reference":"T2"}`)))
	assert.False(t, s.ValidateSignature("", body))
}

func TestCreateTransactionAndChannels(t *testing.T) {
	var got TransactionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/merchant/payment-channel":
			_, _ = w.Write([]byte(`{"success":true,"data":[{"code":"QRIS","name":"QRIS","total_fee":{"flat":750,"percent":"0.70"}}]}`))
		case "/transaction/create":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"success":true,"data":{"reference":"T0001","merchant_ref":"` + got.MerchantRef + `","checkout_url":"https://pay/T0001","amount":1000}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewTripayService(Config{APIKey: "api-key", PrivateKey: "priv", MerchantCode: "T1234", AppBaseURL: "https://studio.test/"})
	s.BaseURL = srv.URL
	s.Now = func() time.Time { return now }

	ch, err := s.Channel(context.Background(), "QRIS")
	require.NoError(t, err)
	require.NotNil(t, ch)
	missing, err := s.Channel(context.Background(), "BCAVA")
	require.NoError(t, err)
	assert.Nil(t, missing)

	pid := uuid.New()
	resp, err := s.CreateTransaction(context.Background(), Invoice{
		ProjectID: pid, Amount: 1000, Method: "QRIS", ItemName: "Pelunasan", CustomerName: "Rina",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay/T0001", resp.Data.CheckoutURL)
	assert.Equal(t, "https://studio.test/api/tripay/callback", got.Callback)
	assert.Equal(t, s.generateSignature("T1234"+got.MerchantRef+"1000"), got.Signature)
	ref, err := ParseMerchantRef(got.MerchantRef)
	require.NoError(t, err)
	assert.Equal(t, pid, ref)
}

func TestCreateTransactionGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid method"}`))
	}))
	defer srv.Close()

	s := NewTripayService(Config{})
	s.BaseURL = srv.URL
	_, err := s.CreateTransaction(context.Background(), Invoice{ProjectID: uuid.New(), Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid method")
}

func TestSettle(t *testing.T) {
	gdb := dbtest.New(t)
	card := models.Card{BankName: "BCA", LastFourDigits: "1234", Balance: 100000}
	require.NoError(t, gdb.Create(&card).Error)
	project := models.Project{Name: "Wedding Rina", TotalCost: 2000000, AmountPaid: 500000}
	require.NoError(t, gdb.Create(&project).Error)

	s := NewSettler(gdb, notify.NewNotifyService(gdb, nil, logger.Nop()), logger.Nop(), card.ID)
	payload := CallbackPayload{
		Reference:     "T0001",
		MerchantRef:   MerchantRef(project.ID, now),
		PaymentMethod: "QRIS",
		TotalAmount:   1511250,
		FeeCustomer:   11250,
		FeeMerchant:   5000,
		Status:        StatusPaid,
		PaidAt:        now.Unix(),
	}

	res, err := s.Settle(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, int64(2000000), res.Project.AmountPaid)
	assert.Equal(t, models.PaymentStatusPaid, res.Project.PaymentStatus)
	require.NotNil(t, res.GatewayFee)
	assert.Equal(t, int64(5000), res.GatewayFee.Amount)

	var got models.Card
	require.NoError(t, gdb.First(&got, "id = ?", card.ID).Error)
	assert.Equal(t, int64(100000+1500000-5000), got.Balance)

	// tripay retries callbacks
	_, err = s.Settle(context.Background(), payload)
	assert.True(t, apperr.Is(err, apperr.CodeDuplicate))
	require.NoError(t, gdb.First(&got, "id = ?", card.ID).Error)
	assert.Equal(t, int64(1595000), got.Balance)

	payload.Status = StatusExpired
	payload.Reference = "T0002"
	res, err = s.Settle(context.Background(), payload)
	require.NoError(t, err)
	assert.Nil(t, res)
}
