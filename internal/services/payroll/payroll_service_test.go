package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/ledger"
)

type fixture struct {
	svc    *PayrollService
	member models.TeamMember
	card   models.Card
	fees   []models.TeamProjectPayment
}

func setup(t *testing.T, cardBalance int64) fixture {
	t.Helper()
	svc := NewPayrollService(dbtest.New(t), logger.Nop())
	svc.Now = func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) }

	member := models.TeamMember{Name: "Andi", Role: "Fotografer", StandardFee: 1000000}
	require.NoError(t, svc.DB.Create(&member).Error)
	card := models.Card{BankName: "BCA", LastFourDigits: "1234", Balance: cardBalance}
	require.NoError(t, svc.DB.Create(&card).Error)

	f := fixture{svc: svc, member: member, card: card}
	for i, fee := range []int64{1000000, 1500000} {
		p := models.Project{Name: []string{"Wedding A", "Wedding B"}[i], TotalCost: 5000000}
		require.NoError(t, svc.DB.Create(&p).Error)
		row, err := svc.AssignFreelancer(context.Background(), AssignInput{ProjectID: p.ID, TeamMemberID: member.ID, Fee: &fee})
		require.NoError(t, err)
		f.fees = append(f.fees, *row)
	}
	return f
}

func (f fixture) ids() []uuid.UUID {
	out := make([]uuid.UUID, len(f.fees))
	for i, p := range f.fees {
		out[i] = p.ID
	}
	return out
}

func statuses(t *testing.T, db *gorm.DB, ids []uuid.UUID) []models.FeeStatus {
	t.Helper()
	var out []models.FeeStatus
	for _, id := range ids {
		var row models.TeamProjectPayment
		require.NoError(t, db.First(&row, "id = ?", id).Error)
		out = append(out, row.Status)
	}
	return out
}

func balance(t *testing.T, db *gorm.DB, id uuid.UUID) int64 {
	t.Helper()
	var c models.Card
	require.NoError(t, db.First(&c, "id = ?", id).Error)
	return c.Balance
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestAssignFreelancerDefaultsAndDuplicates(t *testing.T) {
	f := setup(t, 0)
	p := models.Project{Name: "Lamaran"}
	require.NoError(t, f.svc.DB.Create(&p).Error)

	row, err := f.svc.AssignFreelancer(context.Background(), AssignInput{ProjectID: p.ID, TeamMemberID: f.member.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), row.Fee)
	assert.Equal(t, "Fotografer", row.Role)
	assert.Equal(t, models.FeeUnpaid, row.Status)

	_, err = f.svc.AssignFreelancer(context.Background(), AssignInput{ProjectID: p.ID, TeamMemberID: f.member.ID})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	_, err = f.svc.AssignFreelancer(context.Background(), AssignInput{ProjectID: uuid.New(), TeamMemberID: f.member.ID})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestDisburseSuccess(t *testing.T) {
	f := setup(t, 3000000)

	rec, err := f.svc.Disburse(context.Background(), DisburseInput{
		TeamMemberID: f.member.ID, PaymentIDs: f.ids(), Source: ledger.Card(f.card.ID),
	})
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, int64(2500000), rec.TotalAmount)
	assert.ElementsMatch(t, f.ids(), []uuid.UUID(rec.ProjectPaymentIDs))
	assert.Equal(t, int64(500000), balance(t, f.svc.DB, f.card.ID))
	assert.Equal(t, []models.FeeStatus{models.FeePaid, models.FeePaid}, statuses(t, f.svc.DB, f.ids()))
	assert.Equal(t, int64(1), count(t, f.svc.DB, &models.TeamPaymentRecord{}))

	var txn models.Transaction
	require.NoError(t, f.svc.DB.First(&txn, "id = ?", rec.TransactionID).Error)
	assert.Equal(t, models.TransactionExpense, txn.Type)
	assert.Equal(t, models.CategoryFreelancerSalary, txn.Category)
	assert.Equal(t, int64(2500000), txn.Amount)

	out, err := f.svc.Unpaid(context.Background(), f.member.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Payments)
	assert.Zero(t, out.Total)
}

func TestDisburseInsufficientIsAllOrNothing(t *testing.T) {
	f := setup(t, 2000000)

	rec, err := f.svc.Disburse(context.Background(), DisburseInput{
		TeamMemberID: f.member.ID, PaymentIDs: f.ids(), Source: ledger.Card(f.card.ID),
	})
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, apperr.Is(err, apperr.CodeInsufficientFunds))

	assert.Equal(t, int64(2000000), balance(t, f.svc.DB, f.card.ID))
	assert.Zero(t, count(t, f.svc.DB, &models.TeamPaymentRecord{}))
	assert.Zero(t, count(t, f.svc.DB, &models.Transaction{}))
	assert.Equal(t, []models.FeeStatus{models.FeeUnpaid, models.FeeUnpaid}, statuses(t, f.svc.DB, f.ids()))
}

func TestDisburseValidation(t *testing.T) {
	f := setup(t, 5000000)
	ctx := context.Background()

	rec, err := f.svc.Disburse(ctx, DisburseInput{TeamMemberID: f.member.ID, Source: ledger.Card(f.card.ID)})
	assert.NoError(t, err)
	assert.Nil(t, rec)

	_, err = f.svc.Disburse(ctx, DisburseInput{TeamMemberID: f.member.ID, PaymentIDs: f.ids()})
	assert.Equal(t, ledger.MsgSourceRequired, apperr.As(err).Message())

	partial := int64(1000000)
	_, err = f.svc.Disburse(ctx, DisburseInput{TeamMemberID: f.member.ID, PaymentIDs: f.ids(), Source: ledger.Card(f.card.ID), Amount: &partial})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	other := models.TeamMember{Name: "Budi"}
	require.NoError(t, f.svc.DB.Create(&other).Error)
	_, err = f.svc.Disburse(ctx, DisburseInput{TeamMemberID: other.ID, PaymentIDs: f.ids(), Source: ledger.Card(f.card.ID)})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = f.svc.Disburse(ctx, DisburseInput{TeamMemberID: f.member.ID, PaymentIDs: []uuid.UUID{uuid.New()}, Source: ledger.Card(f.card.ID)})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	assert.Equal(t, int64(5000000), balance(t, f.svc.DB, f.card.ID))
}

func TestDisburseTwiceRejectsPaidRows(t *testing.T) {
	f := setup(t, 10000000)
	ctx := context.Background()
	in := DisburseInput{TeamMemberID: f.member.ID, PaymentIDs: f.ids()[:1], Source: ledger.Card(f.card.ID)}

	_, err := f.svc.Disburse(ctx, in)
	require.NoError(t, err)
	_, err = f.svc.Disburse(ctx, in)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	assert.Equal(t, int64(9000000), balance(t, f.svc.DB, f.card.ID))

	out, err := f.svc.Unpaid(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Len(t, out.Payments, 1)
	assert.Equal(t, int64(1500000), out.Total)
}

func TestSignRecordAndUnassign(t *testing.T) {
	f := setup(t, 10000000)
	ctx := context.Background()

	rec, err := f.svc.Disburse(ctx, DisburseInput{TeamMemberID: f.member.ID, PaymentIDs: f.ids()[:1], Source: ledger.Card(f.card.ID)})
	require.NoError(t, err)

	signed, err := f.svc.SignRecord(ctx, rec.ID, "data:image/png;base64,QQ==")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,QQ==", signed.VendorSignature)

	assert.True(t, apperr.Is(f.svc.Unassign(ctx, f.fees[0].ID), apperr.CodeConflict))
	require.NoError(t, f.svc.Unassign(ctx, f.fees[1].ID))

	records, err := f.svc.Records(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
