package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/ledger"
)

type PayrollService struct {
	DB  *gorm.DB
	Log zerolog.Logger
	Now func() time.Time
}

func NewPayrollService(db *gorm.DB, log zerolog.Logger) *PayrollService {
	return &PayrollService{DB: db, Log: log, Now: time.Now}
}

type AssignInput struct {
	ProjectID    uuid.UUID `json:"project_id" validate:"required"`
	TeamMemberID uuid.UUID `json:"team_member_id" validate:"required"`
	Role         string    `json:"role" validate:"max=80"`
	Fee          *int64    `json:"fee" validate:"omitempty,gte=0"`
}

// AssignFreelancer puts a member on a project with an Unpaid fee row.
// Fee defaults to the member's standard fee.
func (s *PayrollService) AssignFreelancer(ctx context.Context, in AssignInput) (*models.TeamProjectPayment, error) {
	var row models.TeamProjectPayment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "id = ?", in.ProjectID).Error; err != nil {
			return notFound(err, "Proyek tidak ditemukan")
		}
		var member models.TeamMember
		if err := tx.First(&member, "id = ?", in.TeamMemberID).Error; err != nil {
			return notFound(err, "Freelancer tidak ditemukan")
		}

		var n int64
		if err := tx.Model(&models.TeamProjectPayment{}).
			Where("project_id = ? AND team_member_id = ?", project.ID, member.ID).
			Count(&n).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memeriksa tim proyek")
		}
		if n > 0 {
			return apperr.New(apperr.CodeConflict, "Freelancer sudah ditugaskan di proyek ini")
		}

		fee := member.StandardFee
		if in.Fee != nil {
			fee = *in.Fee
		}
		role := in.Role
		if role == "" {
			role = member.Role
		}
		row = models.TeamProjectPayment{
			ProjectID:    project.ID,
			TeamMemberID: member.ID,
			MemberName:   member.Name,
			Role:         role,
			Date:         project.Date,
			Status:       models.FeeUnpaid,
			Fee:          fee,
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan tim proyek")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Unassign removes a member from a project while the fee is still unpaid.
func (s *PayrollService) Unassign(ctx context.Context, paymentID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND status = ?", paymentID, models.FeeUnpaid).
		Delete(&models.TeamProjectPayment{})
	if res.Error != nil {
		return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal menghapus tim proyek")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.CodeConflict, "Fee sudah dibayar atau tidak ditemukan")
	}
	return nil
}

type Outstanding struct {
	Payments []models.TeamProjectPayment `json:"payments"`
	Total    int64                       `json:"total"`
}

// Unpaid lists a member's outstanding fee rows and their sum.
func (s *PayrollService) Unpaid(ctx context.Context, memberID uuid.UUID) (Outstanding, error) {
	var out Outstanding
	if err := s.DB.WithContext(ctx).
		Preload("Project").
		Where("team_member_id = ? AND status = ?", memberID, models.FeeUnpaid).
		Order("date asc").
		Find(&out.Payments).Error; err != nil {
		return out, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat fee")
	}
	for _, p := range out.Payments {
		out.Total += p.Fee
	}
	return out, nil
}

type DisburseInput struct {
	TeamMemberID uuid.UUID     `json:"team_member_id" validate:"required"`
	PaymentIDs   []uuid.UUID   `json:"payment_ids"`
	Source       ledger.Source `json:"source"`
	// Amount must equal the sum of the selected fees; nil means "the sum".
	Amount *int64    `json:"amount"`
	Date   time.Time `json:"date"`
}

// Disburse pays the selected fee rows in one transaction: Expense appended,
// source debited, one record created, every selected row flipped to Paid.
// An empty selection is a no-op and returns (nil, nil).
func (s *PayrollService) Disburse(ctx context.Context, in DisburseInput) (*models.TeamPaymentRecord, error) {
	ids := dedupe(in.PaymentIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	if in.Source.IsZero() {
		return nil, apperr.Validation("source", ledger.MsgSourceRequired)
	}
	date := in.Date
	if date.IsZero() {
		date = s.Now()
	}

	var record models.TeamPaymentRecord
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.TeamMember
		if err := tx.First(&member, "id = ?", in.TeamMemberID).Error; err != nil {
			return notFound(err, "Freelancer tidak ditemukan")
		}

		var rows []models.TeamProjectPayment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat fee")
		}
		if len(rows) != len(ids) {
			return apperr.Validation("payment_ids", "Sebagian fee tidak ditemukan")
		}
		var total int64
		for _, r := range rows {
			if r.TeamMemberID != member.ID {
				return apperr.Validation("payment_ids", "Fee bukan milik freelancer ini")
			}
			if r.Status != models.FeeUnpaid {
				return apperr.Validation("payment_ids", "Fee sudah dibayar")
			}
			total += r.Fee
		}
		if total <= 0 {
			return apperr.Validation("payment_ids", "Total fee harus lebih dari 0")
		}
		if in.Amount != nil && *in.Amount != total {
			return apperr.Validation("amount", fmt.Sprintf("Jumlah pembayaran harus sama dengan total fee (%d)", total))
		}

		mid := member.ID
		t := models.Transaction{
			Date:         date,
			Description:  fmt.Sprintf("%s - %s", models.CategoryFreelancerSalary, member.Name),
			Amount:       total,
			Category:     models.CategoryFreelancerSalary,
			Method:       "Transfer",
			TeamMemberID: &mid,
		}
		if err := ledger.Spend(tx, in.Source, &t); err != nil {
			return err
		}

		record = models.TeamPaymentRecord{
			RecordNumber:      "PAY-" + date.Format("20060102") + "-" + models.GenerateCode(5),
			TeamMemberID:      member.ID,
			Date:              date,
			ProjectPaymentIDs: ids,
			TotalAmount:       total,
			TransactionID:     t.ID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal membuat slip pembayaran")
		}

		res := tx.Model(&models.TeamProjectPayment{}).
			Where("id IN ? AND status = ?", ids, models.FeeUnpaid).
			Update("status", models.FeePaid)
		if res.Error != nil {
			return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal memperbarui status fee")
		}
		if res.RowsAffected != int64(len(ids)) {
			return apperr.New(apperr.CodeConflict, "Fee berubah saat diproses, coba lagi")
		}
		return nil
	})
	var amount int64
	if err == nil {
		amount = record.TotalAmount
	}
	metrics.Observe("payroll", amount, err)
	if err != nil {
		return nil, err
	}

	s.Log.Info().Str("record_number", record.RecordNumber).Str("team_member_id", record.TeamMemberID.String()).
		Int64("amount", record.TotalAmount).Int("fees", len(ids)).Msg("gaji freelancer dibayarkan")
	return &record, nil
}

// SignRecord attaches the vendor signature to a payment record.
func (s *PayrollService) SignRecord(ctx context.Context, recordID uuid.UUID, signature string) (*models.TeamPaymentRecord, error) {
	if signature == "" {
		return nil, apperr.Validation("vendor_signature", "Tanda tangan wajib diisi")
	}
	var rec models.TeamPaymentRecord
	db := s.DB.WithContext(ctx)
	if err := db.First(&rec, "id = ?", recordID).Error; err != nil {
		return nil, notFound(err, "Slip pembayaran tidak ditemukan")
	}
	if err := db.Model(&models.TeamPaymentRecord{}).Where("id = ?", rec.ID).
		Update("vendor_signature", signature).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan tanda tangan")
	}
	rec.VendorSignature = signature
	return &rec, nil
}

func (s *PayrollService) Records(ctx context.Context, memberID uuid.UUID) ([]models.TeamPaymentRecord, error) {
	var rows []models.TeamPaymentRecord
	if err := s.DB.WithContext(ctx).Where("team_member_id = ?", memberID).
		Order("date desc").Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat slip pembayaran")
	}
	return rows, nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.CodeNotFound, msg)
	}
	return apperr.Wrap(apperr.CodeInternal, err, msg)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
