package reward

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

type rewardState struct {
	Card    int64
	Pool    int64
	Balance int64
	Entries int
}

func TestRandomDepositWithdrawSequence(t *testing.T) {
	svc, m, c := setup(t, 1500000)
	ctx := context.Background()
	pool := models.FinancialPocket{Name: "Hadiah", Type: models.PocketRewardPool, Amount: 900000}
	require.NoError(t, svc.DB.Create(&pool).Error)

	state := func() rewardState {
		var card models.Card
		require.NoError(t, svc.DB.First(&card, "id = ?", c.ID).Error)
		var p models.FinancialPocket
		require.NoError(t, svc.DB.First(&p, "id = ?", pool.ID).Error)
		var member models.TeamMember
		require.NoError(t, svc.DB.First(&member, "id = ?", m.ID).Error)
		entries, err := svc.Entries(ctx, m.ID)
		require.NoError(t, err)
		return rewardState{Card: card.Balance, Pool: p.Amount, Balance: member.RewardBalance, Entries: len(entries)}
	}

	rng := rand.New(rand.NewSource(11))
	withdrawn := 0
	for step := 0; step < 80; step++ {
		before := state()

		var err error
		if rng.Intn(3) == 0 {
			_, err = svc.Withdraw(ctx, WithdrawInput{TeamMemberID: m.ID, CardID: c.ID})
			if err == nil {
				withdrawn++
			}
		} else {
			amount := int64(rng.Intn(400000)) - 50000
			_, err = svc.Deposit(ctx, DepositInput{TeamMemberID: m.ID, Amount: amount, Description: "Bonus"})
		}

		after := state()
		require.GreaterOrEqual(t, after.Card, int64(0), "step %d", step)
		require.GreaterOrEqual(t, after.Pool, int64(0), "step %d", step)
		require.GreaterOrEqual(t, after.Balance, int64(0), "step %d", step)
		assertConsistent(t, svc, m.ID)
		// card and pool move together on every withdrawal
		require.Equal(t, before.Card-after.Card, before.Pool-after.Pool, "step %d", step)

		if err != nil {
			require.True(t, apperr.Is(err, apperr.CodeValidation) || apperr.Is(err, apperr.CodeInsufficientFunds), "step %d: %v", step, err)
			require.Equal(t, before, after, "step %d", step)
		}
	}
	assert.Positive(t, withdrawn)
}
