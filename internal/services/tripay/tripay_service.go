package tripay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SandboxURL    = "https://tripay.co.id/api-sandbox"
	ProductionURL = "https://tripay.co.id/api"
)

type Config struct {
	APIKey       string
	PrivateKey   string
	MerchantCode string
	Env          string
	// public base URL of this API, used for callback_url
	AppBaseURL string
}

type TripayService struct {
	Client       *http.Client
	APIKey       string
	PrivateKey   string
	MerchantCode string
	BaseURL      string
	CallbackURL  string
	Now          func() time.Time
}

func NewTripayService(cfg Config) *TripayService {
	baseURL := SandboxURL
	if cfg.Env == "production" {
		baseURL = ProductionURL
	}

	return &TripayService{
		Client:       &http.Client{Timeout: 15 * time.Second},
		APIKey:       cfg.APIKey,
		PrivateKey:   cfg.PrivateKey,
		MerchantCode: cfg.MerchantCode,
		BaseURL:      baseURL,
		CallbackURL:  strings.TrimRight(cfg.AppBaseURL, "/") + "/api/tripay/callback",
		Now:          time.Now,
	}
}

type OrderItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type TransactionRequest struct {
	Method        string      `json:"method"`
	MerchantRef   string      `json:"merchant_ref"`
	Amount        int64       `json:"amount"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`
	OrderItems    []OrderItem `json:"order_items"`
	Callback      string      `json:"callback_url"`
	ReturnUrl     string      `json:"return_url"`
	ExpiredTime   int64       `json:"expired_time"` // Unix timestamp
	Signature     string      `json:"signature"`
}

type TransactionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Reference   string `json:"reference"`
		MerchantRef string `json:"merchant_ref"`
		CheckoutURL string `json:"checkout_url"`
		Amount      int64  `json:"amount"`
	} `json:"data"`
}

// Invoice is what the studio bills through the gateway for one project.
type Invoice struct {
	ProjectID     uuid.UUID
	Amount        int64
	Method        string
	ItemName      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ReturnURL     string
}

// MerchantRef encodes the project so the callback can find it without a pending-payment table.
// Format: P<project uuid hex>-<unix base36>.
func MerchantRef(projectID uuid.UUID, now time.Time) string {
	return "P" + strings.ReplaceAll(projectID.String(), "-", "") + "-" + strconv.FormatInt(now.Unix(), 36)
}

func ParseMerchantRef(ref string) (uuid.UUID, error) {
	body, _, ok := strings.Cut(strings.TrimPrefix(ref, "P"), "-")
	if !ok || !strings.HasPrefix(ref, "P") {
		return uuid.Nil, fmt.Errorf("malformed merchant ref %q", ref)
	}
	return uuid.Parse(body)
}

func (s *TripayService) CreateTransaction(ctx context.Context, inv Invoice) (*TransactionResponse, error) {
	merchantRef := MerchantRef(inv.ProjectID, s.Now())

	// HMAC-SHA256( merchant_code + merchant_ref + amount, private_key )
	signature := s.generateSignature(fmt.Sprintf("%s%s%d", s.MerchantCode, merchantRef, inv.Amount))

	reqBody := TransactionRequest{
		Method:        inv.Method,
		MerchantRef:   merchantRef,
		Amount:        inv.Amount,
		CustomerName:  inv.CustomerName,
		CustomerEmail: inv.CustomerEmail,
		CustomerPhone: inv.CustomerPhone,
		OrderItems: []OrderItem{
			{
				Name:     inv.ItemName,
				Price:    inv.Amount,
				Quantity: 1,
			},
		},
		Callback:    s.CallbackURL,
		ReturnUrl:   inv.ReturnURL,
		ExpiredTime: s.Now().Add(24 * time.Hour).Unix(),
		Signature:   signature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/transaction/create", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var apiResp TransactionResponse
	if err := s.do(req, &apiResp); err != nil {
		return nil, err
	}
	if !apiResp.Success {
		return nil, fmt.Errorf("tripay error: %s", apiResp.Message)
	}
	return &apiResp, nil
}

type PaymentChannel struct {
	Group string `json:"group"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Fee   struct {
		Flat    interface{} `json:"flat"`
		Percent interface{} `json:"percent"`
	} `json:"total_fee"`
	IconURL string `json:"icon_url"`
	Active  bool   `json:"active"`
}

// CustomerFee is flat + amount*percent/100, rounded up to the rupiah.
func (ch PaymentChannel) CustomerFee(amount int64) int64 {
	flat := toDecimal(ch.Fee.Flat)
	pct := toDecimal(ch.Fee.Percent)
	fee := flat.Add(decimal.NewFromInt(amount).Mul(pct).Div(decimal.NewFromInt(100)))
	return fee.Ceil().IntPart()
}

// tripay sends fees as numbers or numeric strings
func toDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case string:
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	}
	return decimal.Zero
}

type ChannelResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    []PaymentChannel `json:"data"`
}

func (s *TripayService) GetPaymentChannels(ctx context.Context) ([]PaymentChannel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/merchant/payment-channel", nil)
	if err != nil {
		return nil, err
	}

	var apiResp ChannelResponse
	if err := s.do(req, &apiResp); err != nil {
		return nil, err
	}
	if !apiResp.Success {
		return nil, fmt.Errorf("tripay error: %s", apiResp.Message)
	}
	return apiResp.Data, nil
}

// Channel looks up one payment method by code.
func (s *TripayService) Channel(ctx context.Context, code string) (*PaymentChannel, error) {
	channels, err := s.GetPaymentChannels(ctx)
	if err != nil {
		return nil, err
	}
	for i := range channels {
		if channels[i].Code == code {
			return &channels[i], nil
		}
	}
	return nil, nil
}

func (s *TripayService) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

func (s *TripayService) generateSignature(data string) string {
	h := hmac.New(sha256.New, []byte(s.PrivateKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateSignature checks a callback: HMAC-SHA256(raw JSON body, private_key).
func (s *TripayService) ValidateSignature(incomingSig string, body []byte) bool {
	return hmac.Equal([]byte(s.generateSignature(string(body))), []byte(incomingSig))
}
