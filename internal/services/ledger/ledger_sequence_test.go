package ledger

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

type ledgerState struct {
	Balances map[Source]int64
	Rows     int64
	Net      int64
}

func snapshot(t *testing.T, db *gorm.DB, sources []Source) ledgerState {
	t.Helper()
	st := ledgerState{Balances: map[Source]int64{}}
	for _, s := range sources {
		if s.Kind == SourceCard {
			st.Balances[s] = cardBalance(t, db, s.ID)
			continue
		}
		var p models.FinancialPocket
		require.NoError(t, db.First(&p, "id = ?", s.ID).Error)
		st.Balances[s] = p.Amount
	}
	st.Rows = countTransactions(t, db)

	var in, out int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("type = ?", models.TransactionIncome).
		Select("COALESCE(SUM(amount), 0)").Scan(&in).Error)
	require.NoError(t, db.Model(&models.Transaction{}).Where("type = ?", models.TransactionExpense).
		Select("COALESCE(SUM(amount), 0)").Scan(&out).Error)
	st.Net = in - out
	return st
}

func (st ledgerState) total() int64 {
	var sum int64
	for _, b := range st.Balances {
		sum += b
	}
	return sum
}

func TestRandomLedgerSequenceKeepsBalances(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a := seedCard(t, svc.DB, 2000000)
	b := seedCard(t, svc.DB, 0)
	p := seedPocket(t, svc.DB, 500000)
	sources := []Source{Card(a.ID), Card(b.ID), Pocket(p.ID)}
	opening := int64(2500000)

	rng := rand.New(rand.NewSource(42))
	pick := func() Source { return sources[rng.Intn(len(sources))] }

	rejected := 0
	for step := 0; step < 200; step++ {
		before := snapshot(t, svc.DB, sources)
		amount := int64(rng.Intn(1500000)) - 100000

		var err error
		switch rng.Intn(3) {
		case 0:
			_, err = svc.RecordExpense(ctx, ExpenseInput{Amount: amount, Description: "Operasional", Category: "Lainnya", Source: pick()})
		case 1:
			_, err = svc.Transfer(ctx, TransferInput{From: pick(), To: pick(), Amount: amount})
		case 2:
			_, err = svc.RecordIncome(ctx, IncomeInput{Amount: amount, Description: "Sewa alat", Category: "Lainnya", Destination: pick()})
		}

		after := snapshot(t, svc.DB, sources)
		for s, bal := range after.Balances {
			require.GreaterOrEqual(t, bal, int64(0), "step %d source %s", step, s.Kind)
		}
		require.Equal(t, opening+after.Net, after.total(), "step %d", step)

		if err != nil {
			rejected++
			require.True(t, apperr.Is(err, apperr.CodeValidation) || apperr.Is(err, apperr.CodeInsufficientFunds), "step %d: %v", step, err)
			require.Equal(t, before, after, "step %d", step)
		}
	}
	assert.Positive(t, rejected)
}

func TestClientPaymentReferenceRace(t *testing.T) {
	svc := newService(t)
	card := seedCard(t, svc.DB, 0)
	project := models.Project{Name: "Wisuda", TotalCost: 3000000}
	require.NoError(t, svc.DB.Create(&project).Error)

	in := ClientPaymentInput{ProjectID: project.ID, Amount: 1000000, Destination: Card(card.ID), Reference: "T-RACE"}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.RecordClientPayment(context.Background(), in)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.CodeDuplicate), "%v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(1000000), cardBalance(t, svc.DB, card.ID))
}

func TestClientPaymentUnknownProjectBeforeReference(t *testing.T) {
	svc := newService(t)
	card := seedCard(t, svc.DB, 0)
	project := models.Project{Name: "Prewedding", TotalCost: 1000000}
	require.NoError(t, svc.DB.Create(&project).Error)

	_, _, err := svc.RecordClientPayment(context.Background(), ClientPaymentInput{
		ProjectID: project.ID, Amount: 100000, Destination: Card(card.ID), Reference: "T-9",
	})
	require.NoError(t, err)

	other := project.ID
	other[0] ^= 0xff
	_, _, err = svc.RecordClientPayment(context.Background(), ClientPaymentInput{
		ProjectID: other, Amount: 100000, Destination: Card(card.ID), Reference: "T-9",
	})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
