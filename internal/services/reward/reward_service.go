package reward

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
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/ledger"
)

// RewardService owns TeamMember.RewardBalance; nothing else writes it.
type RewardService struct {
	DB  *gorm.DB
	Log zerolog.Logger
	Now func() time.Time
}

func NewRewardService(db *gorm.DB, log zerolog.Logger) *RewardService {
	return &RewardService{DB: db, Log: log, Now: time.Now}
}

type DepositInput struct {
	TeamMemberID uuid.UUID  `json:"team_member_id" validate:"required"`
	Amount       int64      `json:"amount" validate:"required,gt=0"`
	Description  string     `json:"description" validate:"required,max=300"`
	ProjectID    *uuid.UUID `json:"project_id"`
}

func (s *RewardService) Deposit(ctx context.Context, in DepositInput) (*models.RewardLedgerEntry, error) {
	if in.Amount <= 0 {
		return nil, apperr.Validation("amount", ledger.MsgAmountPositive)
	}
	entry := models.RewardLedgerEntry{
		TeamMemberID: in.TeamMemberID,
		Date:         s.Now(),
		Description:  strings.TrimSpace(in.Description),
		Amount:       in.Amount,
		ProjectID:    in.ProjectID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TeamMember{}).Where("id = ?", in.TeamMemberID).
			Update("reward_balance", gorm.Expr("reward_balance + ?", in.Amount))
		if res.Error != nil {
			return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal menambah saldo hadiah")
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.CodeNotFound, "Freelancer tidak ditemukan")
		}
		if err := tx.Create(&entry).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal mencatat hadiah")
		}
		return nil
	})
	metrics.Observe("reward_deposit", in.Amount, err)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type WithdrawInput struct {
	TeamMemberID uuid.UUID `json:"team_member_id" validate:"required"`
	CardID       uuid.UUID `json:"card_id"`
}

type Withdrawal struct {
	Entry       models.RewardLedgerEntry `json:"entry"`
	Transaction models.Transaction       `json:"transaction"`
	PoolDebited bool                     `json:"pool_debited"`
}

// Withdraw pays out the member's whole reward balance from a card. When a
// reward-pool pocket exists it is drawn down by the same amount.
func (s *RewardService) Withdraw(ctx context.Context, in WithdrawInput) (*Withdrawal, error) {
	if in.CardID == uuid.Nil {
		return nil, apperr.Validation("card_id", ledger.MsgSourceRequired)
	}

	var out Withdrawal
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.TeamMember
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&member, "id = ?", in.TeamMemberID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeNotFound, "Freelancer tidak ditemukan")
		}
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat freelancer")
		}
		amount := member.RewardBalance
		if amount <= 0 {
			return apperr.Validation("team_member_id", "Tidak ada saldo hadiah untuk ditarik")
		}

		now := s.Now()
		mid := member.ID
		out.Transaction = models.Transaction{
			Date:         now,
			Description:  models.CategoryRewardWithdrawal + " - " + member.Name,
			Amount:       amount,
			Category:     models.CategoryRewardWithdrawal,
			Method:       "Transfer",
			TeamMemberID: &mid,
		}
		if err := ledger.Spend(tx, ledger.Card(in.CardID), &out.Transaction); err != nil {
			return err
		}

		out.Entry = models.RewardLedgerEntry{
			TeamMemberID: member.ID,
			Date:         now,
			Description:  "Penarikan saldo hadiah",
			Amount:       -amount,
		}
		if err := tx.Create(&out.Entry).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal mencatat penarikan")
		}

		res := tx.Model(&models.TeamMember{}).
			Where("id = ? AND reward_balance = ?", member.ID, amount).
			Update("reward_balance", 0)
		if res.Error != nil {
			return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal memperbarui saldo hadiah")
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.CodeConflict, "Saldo hadiah berubah saat diproses, coba lagi")
		}

		var pool models.FinancialPocket
		err = tx.Where("type = ?", models.PocketRewardPool).Order("created_at asc").First(&pool).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil
		case err != nil:
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat kantong hadiah")
		}
		if err := ledger.Debit(tx, ledger.Pocket(pool.ID), amount); err != nil {
			return err
		}
		out.PoolDebited = true
		return nil
	})
	var amount int64
	if err == nil {
		amount = out.Transaction.Amount
	}
	metrics.Observe("reward_withdraw", amount, err)
	if err != nil {
		return nil, err
	}

	s.Log.Info().Str("team_member_id", in.TeamMemberID.String()).Int64("amount", amount).
		Bool("pool_debited", out.PoolDebited).Msg("saldo hadiah ditarik")
	return &out, nil
}

func (s *RewardService) Entries(ctx context.Context, memberID uuid.UUID) ([]models.RewardLedgerEntry, error) {
	var rows []models.RewardLedgerEntry
	if err := s.DB.WithContext(ctx).Where("team_member_id = ?", memberID).
		Order("date desc, created_at desc").Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat riwayat hadiah")
	}
	return rows, nil
}

type Reconciliation struct {
	TeamMemberID uuid.UUID `json:"team_member_id"`
	Balance      int64     `json:"balance"`
	LedgerSum    int64     `json:"ledger_sum"`
}

func (r Reconciliation) Consistent() bool { return r.Balance == r.LedgerSum }

// Reconcile compares the cached balance with the sum of ledger entries.
func (s *RewardService) Reconcile(ctx context.Context, memberID uuid.UUID) (Reconciliation, error) {
	db := s.DB.WithContext(ctx)
	r := Reconciliation{TeamMemberID: memberID}

	var member models.TeamMember
	if err := db.First(&member, "id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r, apperr.New(apperr.CodeNotFound, "Freelancer tidak ditemukan")
		}
		return r, apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat freelancer")
	}
	r.Balance = member.RewardBalance

	if err := db.Model(&models.RewardLedgerEntry{}).
		Where("team_member_id = ?", memberID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&r.LedgerSum).Error; err != nil {
		return r, apperr.Wrap(apperr.CodeInternal, err, "Gagal menjumlah riwayat hadiah")
	}
	if !r.Consistent() {
		s.Log.Warn().Str("team_member_id", memberID.String()).Int64("balance", r.Balance).
			Int64("ledger_sum", r.LedgerSum).Msg("saldo hadiah tidak sama dengan riwayat")
	}
	return r, nil
}
