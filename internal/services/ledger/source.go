package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

const (
	MsgSourceRequired = "Pilih sumber dana terlebih dahulu"
	MsgSourceNotFound = "Sumber dana tidak ditemukan"
	MsgAmountPositive = "Jumlah harus lebih dari 0"
)

type SourceKind string

const (
	SourceCard   SourceKind = "card"
	SourcePocket SourceKind = "pocket"
)

// Source is a funding source or destination: a card or a pocket.
type Source struct {
	Kind SourceKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

func Card(id uuid.UUID) Source   { return Source{Kind: SourceCard, ID: id} }
func Pocket(id uuid.UUID) Source { return Source{Kind: SourcePocket, ID: id} }

func (s Source) IsZero() bool {
	return s.ID == uuid.Nil || (s.Kind != SourceCard && s.Kind != SourcePocket)
}

// ParseSource accepts the form values sent by the finance screens.
func ParseSource(kind, id string) (Source, error) {
	if kind == "" || id == "" {
		return Source{}, apperr.Validation("source", MsgSourceRequired)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return Source{}, apperr.Validation("source", MsgSourceNotFound)
	}
	s := Source{Kind: SourceKind(kind), ID: uid}
	if s.IsZero() {
		return Source{}, apperr.Validation("source", MsgSourceRequired)
	}
	return s, nil
}

func (s Source) attach(t *models.Transaction) {
	id := s.ID
	switch s.Kind {
	case SourceCard:
		t.CardID = &id
	case SourcePocket:
		t.PocketID = &id
	}
}

// locked loads the source row under a row lock and returns its balance and display name.
func locked(tx *gorm.DB, s Source) (int64, string, error) {
	if s.IsZero() {
		return 0, "", apperr.Validation("source", MsgSourceRequired)
	}

	q := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	var err error
	var balance int64
	var name string
	switch s.Kind {
	case SourceCard:
		var c models.Card
		err = q.First(&c, "id = ?", s.ID).Error
		balance, name = c.Balance, c.DisplayName()
	case SourcePocket:
		var p models.FinancialPocket
		err = q.First(&p, "id = ?", s.ID).Error
		balance, name = p.Amount, p.DisplayName()
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, "", apperr.Validation("source", MsgSourceNotFound)
	}
	if err != nil {
		return 0, "", apperr.Wrap(apperr.CodeInternal, err, "Gagal memuat sumber dana")
	}
	return balance, name, nil
}

func (s Source) table() (any, string) {
	if s.Kind == SourcePocket {
		return &models.FinancialPocket{}, "amount"
	}
	return &models.Card{}, "balance"
}

// Debit takes amount from the source. Must run inside a transaction.
// Rejects before any write when the balance is short.
func Debit(tx *gorm.DB, s Source, amount int64) error {
	if amount <= 0 {
		return apperr.Validation("amount", MsgAmountPositive)
	}
	balance, name, err := locked(tx, s)
	if err != nil {
		return err
	}
	if balance < amount {
		return insufficient(name)
	}

	model, col := s.table()
	res := tx.Model(model).
		Where("id = ? AND "+col+" >= ?", s.ID, amount).
		Update(col, gorm.Expr(col+" - ?", amount))
	if res.Error != nil {
		return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal memotong saldo")
	}
	if res.RowsAffected == 0 {
		return insufficient(name)
	}
	return nil
}

// Credit adds amount to the source. Must run inside a transaction.
func Credit(tx *gorm.DB, s Source, amount int64) error {
	if amount <= 0 {
		return apperr.Validation("amount", MsgAmountPositive)
	}
	if _, _, err := locked(tx, s); err != nil {
		return err
	}

	model, col := s.table()
	res := tx.Model(model).
		Where("id = ?", s.ID).
		Update(col, gorm.Expr(col+" + ?", amount))
	if res.Error != nil {
		return apperr.Wrap(apperr.CodeInternal, res.Error, "Gagal menambah saldo")
	}
	return nil
}

func insufficient(name string) error {
	return apperr.Newf(apperr.CodeInsufficientFunds, "Saldo %s tidak mencukupi", name).
		WithField("source", fmt.Sprintf("Saldo %s tidak mencukupi", name))
}

// Spend debits s and appends t as an Expense referencing it.
func Spend(tx *gorm.DB, s Source, t *models.Transaction) error {
	if err := Debit(tx, s, t.Amount); err != nil {
		return err
	}
	t.Type = models.TransactionExpense
	s.attach(t)
	if err := tx.Create(t).Error; err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal mencatat transaksi")
	}
	return nil
}

// Receive credits s and appends t as an Income referencing it.
func Receive(tx *gorm.DB, s Source, t *models.Transaction) error {
	if err := Credit(tx, s, t.Amount); err != nil {
		return err
	}
	t.Type = models.TransactionIncome
	s.attach(t)
	if err := tx.Create(t).Error; err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "Gagal mencatat transaksi")
	}
	return nil
}
