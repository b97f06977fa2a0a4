package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

type LedgerService struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

func NewLedgerService(db *gorm.DB, log zerolog.Logger) *LedgerService {
	return &LedgerService{DB: db, Log: log}
}

// DerivePaymentStatus: Lunas when fully paid, DP Terbayar when partly paid, else Belum Bayar.
func DerivePaymentStatus(total, paid int64) models.PaymentStatus {
	switch {
	case paid <= 0:
		return models.PaymentStatusUnpaid
	case paid >= total:
		return models.PaymentStatusPaid
	default:
		return models.PaymentStatusPartial
	}
}

type ExpenseInput struct {
	Amount       int64      `json:"amount" validate:"required,gt=0"`
	Description  string     `json:"description" validate:"required,max=500"`
	Category     string     `json:"category" validate:"required,max=80"`
	Method       string     `json:"method" validate:"max=40"`
	Source       Source     `json:"source"`
	ProjectID    *uuid.UUID `json:"project_id"`
	TeamMemberID *uuid.UUID `json:"team_member_id"`
	Date         time.Time  `json:"date"`
}

// RecordExpense appends one Expense and debits its source in a single transaction.
func (s *LedgerService) RecordExpense(ctx context.Context, in ExpenseInput) (*models.Transaction, error) {
	t := &models.Transaction{
		Date:         in.Date,
		Description:  strings.TrimSpace(in.Description),
		Amount:       in.Amount,
		Category:     in.Category,
		Method:       in.Method,
		ProjectID:    in.ProjectID,
		TeamMemberID: in.TeamMemberID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return Spend(tx, in.Source, t)
	})
	metrics.Observe("expense", in.Amount, err)
	if err != nil {
		return nil, err
	}

	s.Log.Info().Str("transaction_id", t.ID.String()).Int64("amount", t.Amount).
		Str("category", t.Category).Msg("pengeluaran dicatat")
	return t, nil
}

type IncomeInput struct {
	Amount      int64     `json:"amount" validate:"required,gt=0"`
	Description string    `json:"description" validate:"required,max=500"`
	Category    string    `json:"category" validate:"required,max=80"`
	Method      string    `json:"method" validate:"max=40"`
	Destination Source    `json:"destination"`
	Date        time.Time `json:"date"`
}

// RecordIncome books income that is not tied to a project invoice.
func (s *LedgerService) RecordIncome(ctx context.Context, in IncomeInput) (*models.Transaction, error) {
	t := &models.Transaction{
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Category:    in.Category,
		Method:      in.Method,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return Receive(tx, in.Destination, t)
	})
	metrics.Observe("income", in.Amount, err)
	if err != nil {
		return nil, err
	}
	return t, nil
}

type ClientPaymentInput struct {
	ProjectID   uuid.UUID `json:"project_id" validate:"required"`
	Amount      int64     `json:"amount" validate:"required,gt=0"`
	Destination Source    `json:"destination"`
	Method      string    `json:"method" validate:"max=40"`
	Reference   string    `json:"reference" validate:"max=60"`
	Date        time.Time `json:"date"`
}

// RecordClientPayment books an incoming payment on a project: one Income row,
// the destination credited, and amount_paid/payment_status moved together.
func (s *LedgerService) RecordClientPayment(ctx context.Context, in ClientPaymentInput) (*models.Transaction, *models.Project, error) {
	var (
		t       *models.Transaction
		project models.Project
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		t, err = ApplyClientPayment(tx, &project, in)
		return err
	})
	metrics.Observe("client_payment", in.Amount, err)
	if err != nil {
		return nil, nil, err
	}

	s.Log.Info().Str("project_id", project.ID.String()).Int64("amount", in.Amount).
		Str("payment_status", string(project.PaymentStatus)).Msg("pembayaran klien dicatat")
	return t, &project, nil
}

// ApplyClientPayment is the tx-scoped body of RecordClientPayment; project is filled with the updated row.
func ApplyClientPayment(tx *gorm.DB, project *models.Project, in ClientPaymentInput) (*models.Transaction, error) {
	if in.Amount <= 0 {
		return nil, apperr.Validation("amount", MsgAmountPositive)
	}

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(project, "id = ?", in.ProjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "Proyek tidak ditemukan")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat proyek")
	}
	// Reference lookup runs under the project lock so retries of the same payment serialize.
	if in.Reference != "" {
		var n int64
		if err := tx.Model(&models.Transaction{}).Where("reference = ?", in.Reference).Count(&n).Error; err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memeriksa referensi")
		}
		if n > 0 {
			return nil, apperr.New(apperr.CodeDuplicate, "Pembayaran dengan referensi ini sudah dicatat")
		}
	}
	if in.Amount > project.Outstanding() {
		return nil, apperr.Validation("amount", "Jumlah melebihi sisa tagihan proyek")
	}

	pid := project.ID
	t := &models.Transaction{
		Date:        in.Date,
		Description: "Pembayaran " + project.Name,
		Amount:      in.Amount,
		Category:    models.CategoryClientPayment,
		Method:      in.Method,
		ProjectID:   &pid,
		Reference:   in.Reference,
	}
	if err := Receive(tx, in.Destination, t); err != nil {
		return nil, err
	}

	project.AmountPaid += in.Amount
	project.PaymentStatus = DerivePaymentStatus(project.TotalCost, project.AmountPaid)
	if err := tx.Model(&models.Project{}).Where("id = ?", project.ID).Updates(map[string]any{
		"amount_paid":    project.AmountPaid,
		"payment_status": project.PaymentStatus,
	}).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memperbarui status pembayaran")
	}
	return t, nil
}

type TransferInput struct {
	From        Source    `json:"from"`
	To          Source    `json:"to"`
	Amount      int64     `json:"amount" validate:"required,gt=0"`
	Description string    `json:"description" validate:"max=500"`
	Date        time.Time `json:"date"`
}

// Transfer moves money between a card and a pocket (top-up or withdrawal),
// recorded as an Expense on the sender and an Income on the receiver.
func (s *LedgerService) Transfer(ctx context.Context, in TransferInput) ([]models.Transaction, error) {
	if in.From.IsZero() || in.To.IsZero() {
		return nil, apperr.Validation("source", MsgSourceRequired)
	}
	if in.From == in.To {
		return nil, apperr.Validation("to", "Sumber dan tujuan tidak boleh sama")
	}

	out := make([]models.Transaction, 2)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, fromName, err := locked(tx, in.From)
		if err != nil {
			return err
		}
		_, toName, err := locked(tx, in.To)
		if err != nil {
			return err
		}
		desc := strings.TrimSpace(in.Description)
		if desc == "" {
			desc = "Transfer " + fromName + " ke " + toName
		}

		out[0] = models.Transaction{Date: in.Date, Description: desc, Amount: in.Amount, Category: models.CategoryTransfer}
		if err := Spend(tx, in.From, &out[0]); err != nil {
			return err
		}
		out[1] = models.Transaction{Date: in.Date, Description: desc, Amount: in.Amount, Category: models.CategoryTransfer}
		return Receive(tx, in.To, &out[1])
	})
	metrics.Observe("transfer", in.Amount, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SignTransaction attaches the vendor signature; it is the only mutable field.
func (s *LedgerService) SignTransaction(ctx context.Context, id uuid.UUID, signature string) (*models.Transaction, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, apperr.Validation("vendor_signature", "Tanda tangan wajib diisi")
	}

	var t models.Transaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.CodeNotFound, "Transaksi tidak ditemukan")
			}
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat transaksi")
		}
		t.VendorSignature = signature
		return tx.Model(&models.Transaction{}).Where("id = ?", id).Update("vendor_signature", signature).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type ListFilter struct {
	Type      models.TransactionType
	Category  string
	ProjectID *uuid.UUID
	From, To  *time.Time
}

func (s *LedgerService) List(ctx context.Context, f ListFilter) ([]models.Transaction, error) {
	q := s.DB.WithContext(ctx).Model(&models.Transaction{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	var rows []models.Transaction
	if err := q.Order("date desc, created_at desc").Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat transaksi")
	}
	return rows, nil
}
