package payroll

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/ledger"
)

type payrollState struct {
	Card     int64
	Statuses []models.FeeStatus
	Records  int64
	Expenses int64
}

func payrollSnapshot(t *testing.T, db *gorm.DB, cardID uuid.UUID, ids []uuid.UUID) payrollState {
	t.Helper()
	var c models.Card
	require.NoError(t, db.First(&c, "id = ?", cardID).Error)
	st := payrollState{Card: c.Balance, Statuses: statuses(t, db, ids)}
	require.NoError(t, db.Model(&models.TeamPaymentRecord{}).Count(&st.Records).Error)
	require.NoError(t, db.Model(&models.Transaction{}).Where("type = ?", models.TransactionExpense).
		Select("COALESCE(SUM(amount), 0)").Scan(&st.Expenses).Error)
	return st
}

func TestRandomDisburseSequence(t *testing.T) {
	f := setup(t, 6000000)
	ctx := context.Background()
	db := f.svc.DB
	opening := f.card.Balance

	for i := 0; i < 6; i++ {
		p := models.Project{Name: fmt.Sprintf("Acara %d", i), TotalCost: 3000000}
		require.NoError(t, db.Create(&p).Error)
		fee := int64(300000 * (i + 1))
		row, err := f.svc.AssignFreelancer(ctx, AssignInput{ProjectID: p.ID, TeamMemberID: f.member.ID, Fee: &fee})
		require.NoError(t, err)
		f.fees = append(f.fees, *row)
	}
	ids := f.ids()
	fee := map[uuid.UUID]int64{}
	for _, p := range f.fees {
		fee[p.ID] = p.Fee
	}

	rng := rand.New(rand.NewSource(7))
	for step := 0; step < 60; step++ {
		before := payrollSnapshot(t, db, f.card.ID, ids)

		var pick []uuid.UUID
		var sum int64
		for _, id := range ids {
			if rng.Intn(3) == 0 {
				pick = append(pick, id)
				sum += fee[id]
			}
		}
		in := DisburseInput{TeamMemberID: f.member.ID, PaymentIDs: pick, Source: ledger.Card(f.card.ID)}
		if rng.Intn(4) == 0 {
			wrong := sum + 1
			in.Amount = &wrong
		}
		rec, err := f.svc.Disburse(ctx, in)

		after := payrollSnapshot(t, db, f.card.ID, ids)
		require.GreaterOrEqual(t, after.Card, int64(0), "step %d", step)
		require.Equal(t, opening-after.Expenses, after.Card, "step %d", step)

		var paid int64
		for i, s := range after.Statuses {
			if s == models.FeePaid {
				paid += fee[ids[i]]
			}
		}
		require.Equal(t, after.Expenses, paid, "step %d", step)

		switch {
		case err != nil:
			require.True(t, apperr.Is(err, apperr.CodeValidation) || apperr.Is(err, apperr.CodeInsufficientFunds), "step %d: %v", step, err)
			require.Equal(t, before, after, "step %d", step)
		case rec == nil:
			require.Empty(t, pick)
			require.Equal(t, before, after, "step %d", step)
		default:
			assert.Equal(t, sum, rec.TotalAmount)
			assert.Equal(t, before.Records+1, after.Records)
		}
	}
}
