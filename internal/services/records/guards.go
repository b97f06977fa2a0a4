package records

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

// Dependents that block a delete, per parent type.
var (
	ClientGuards = []Guard{
		{Model: &models.Project{}, Column: "client_id", What: "proyek"},
		{Model: &models.Contract{}, Column: "client_id", What: "kontrak"},
	}
	ProjectGuards = []Guard{
		{Model: &models.Transaction{}, Column: "project_id", What: "transaksi"},
		{Model: &models.TeamProjectPayment{}, Column: "project_id", What: "penugasan tim"},
		{Model: &models.Contract{}, Column: "project_id", What: "kontrak"},
		{Model: &models.Revision{}, Column: "project_id", What: "revisi"},
	}
	TeamMemberGuards = []Guard{
		{Model: &models.TeamProjectPayment{}, Column: "team_member_id", What: "penugasan proyek"},
		{Model: &models.TeamPaymentRecord{}, Column: "team_member_id", What: "slip pembayaran"},
		{Model: &models.RewardLedgerEntry{}, Column: "team_member_id", What: "catatan hadiah"},
	}
	CardGuards = []Guard{
		{Model: &models.Transaction{}, Column: "card_id", What: "transaksi"},
		{Model: &models.FinancialPocket{}, Column: "source_card_id", What: "kantong"},
	}
	PocketGuards = []Guard{
		{Model: &models.Transaction{}, Column: "pocket_id", What: "transaksi"},
	}
)

// ConvertLead turns a lead into a client and marks it converted, in one transaction.
func (s *RecordsService) ConvertLead(ctx context.Context, leadID uuid.UUID, email string) (*models.Client, error) {
	var client models.Client
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lead, err := find[models.Lead](tx.Clauses(clause.Locking{Strength: "UPDATE"}), leadID)
		if err != nil {
			return err
		}
		if lead.Status == models.LeadStatusConverted {
			return apperr.New(apperr.CodeConflict, "Prospek sudah dikonversi")
		}
		client = models.Client{
			Name:       lead.Name,
			Email:      strings.ToLower(strings.TrimSpace(email)),
			Whatsapp:   lead.Whatsapp,
			Phone:      lead.Whatsapp,
			Status:     models.ClientStatusActive,
			ClientType: "Langsung",
		}
		if err := tx.Create(&client).Error; err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "Gagal menyimpan klien")
		}
		return tx.Model(lead).Update("status", models.LeadStatusConverted).Error
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

type Party string

const (
	PartyVendor Party = "vendor"
	PartyClient Party = "client"
)

// SignContract stores one party's signature (a data URL). Signatures are write-once.
func (s *RecordsService) SignContract(ctx context.Context, id uuid.UUID, party Party, signature string) (*models.Contract, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, apperr.Validation("signature", "Tanda tangan wajib diisi")
	}
	col := map[Party]string{PartyVendor: "vendor_signature", PartyClient: "client_signature"}[party]
	if col == "" {
		return nil, apperr.Validation("party", "Pihak tidak valid")
	}

	var out *models.Contract
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Contract{}).
			Where("id = ?", id).
			Where(clause.Expr{SQL: "(? IS NULL OR ? = '')", Vars: []any{clause.Column{Name: col}, clause.Column{Name: col}}}).
			Update(col, signature)
		if res.Error != nil {
			return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal menyimpan tanda tangan")
		}
		c, err := find[models.Contract](tx, id)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.CodeConflict, "Kontrak sudah ditandatangani")
		}
		out = c
		return nil
	})
	return out, err
}
