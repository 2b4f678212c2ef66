package budget

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/pkg/helpers"
)

type recordingSyncer struct {
	calls []string
}

func (s *recordingSyncer) PutProfile(p models.UserProfile) {
	s.calls = append(s.calls, "profile:"+p.FirstName)
}

func (s *recordingSyncer) PutRecipient(r models.Recipient) {
	s.calls = append(s.calls, fmt.Sprintf("recipient:%s:%.2f", r.ID, r.Spent))
}

func (s *recordingSyncer) DeleteRecipient(r models.Recipient) {
	s.calls = append(s.calls, "delete-recipient:"+r.ID)
}

func (s *recordingSyncer) PutGift(g models.Gift) {
	s.calls = append(s.calls, "gift:"+g.RecipientID+":"+g.ID)
}

func (s *recordingSyncer) DeleteGift(recipientID, giftID string) {
	s.calls = append(s.calls, "delete-gift:"+recipientID+":"+giftID)
}

func TestScenarioAlexBookAndGame(t *testing.T) {
	b := New()
	b.SetUserData("Sam", 500)
	b.AddRecipient(models.Recipient{ID: "alex", Name: "Alex", Budget: 200})
	require.True(t, b.AddGift("alex", models.Gift{ID: "g1", Name: "Book", Price: 20}))
	require.True(t, b.AddGift("alex", models.Gift{ID: "g2", Name: "Game", Price: 35}))

	alex, ok := b.RecipientByID("alex")
	require.True(t, ok)
	assert.Equal(t, 55.0, alex.Spent)
	assert.Equal(t, 55.0, b.TotalSpent())
	assert.Equal(t, 445.0, b.BudgetRemaining())
	assert.InDelta(t, 11.0, b.PercentageUsed(), 1e-9)
}

func TestSpentMatchesGiftSumAfterRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		b := New()
		b.AddRecipient(models.Recipient{ID: "r", Name: "R", Budget: 100})
		nextID := 0
		var live []string

		for step := 0; step < 50; step++ {
			price := float64(rng.Intn(10000)+1) / 100
			switch op := rng.Intn(3); {
			case op == 0 || len(live) == 0:
				id := fmt.Sprintf("g%d", nextID)
				nextID++
				require.True(t, b.AddGift("r", models.Gift{ID: id, Name: id, Price: price}))
				live = append(live, id)
			case op == 1:
				id := live[rng.Intn(len(live))]
				require.True(t, b.UpdateGift("r", id, models.GiftPatch{Price: helpers.Ptr(price)}))
			default:
				i := rng.Intn(len(live))
				require.True(t, b.DeleteGift("r", live[i]))
				live = append(live[:i], live[i+1:]...)
			}

			r, ok := b.RecipientByID("r")
			require.True(t, ok)
			require.Len(t, r.Gifts, len(live))
			require.Equal(t, SumGiftPrices(r.Gifts), r.Spent, "run %d step %d", run, step)
		}
	}
}

func TestDeleteRecipientThenLookupIsAbsent(t *testing.T) {
	b := New()
	b.AddRecipient(models.Recipient{ID: "a", Name: "A", Budget: 10})
	b.AddRecipient(models.Recipient{ID: "b", Name: "B", Budget: 10})

	require.True(t, b.DeleteRecipient("a"))
	_, ok := b.RecipientByID("a")
	assert.False(t, ok)

	_, ok = b.RecipientByID("b")
	assert.True(t, ok)
	assert.False(t, b.DeleteRecipient("a"), "second delete is a no-op")
}

func TestPercentageUsedZeroBudget(t *testing.T) {
	b := New()
	b.AddRecipient(models.Recipient{ID: "a", Name: "A", Budget: 10})
	b.AddGift("a", models.Gift{ID: "g", Name: "Gift", Price: 99})

	assert.Equal(t, 0.0, b.PercentageUsed())
	assert.Equal(t, 0.0, PercentageUsed(0, 1234))
}

func TestAddRecipientIgnoresSuppliedSpent(t *testing.T) {
	b := New()
	b.AddRecipient(models.Recipient{
		ID:     "a",
		Name:   "A",
		Budget: 50,
		Spent:  999,
		Gifts:  []models.Gift{{ID: "g", Name: "Mug", Price: 12, RecipientID: "someone-else"}},
	})

	r, _ := b.RecipientByID("a")
	assert.Equal(t, 12.0, r.Spent)
	assert.Equal(t, "a", r.Gifts[0].RecipientID)
}

func TestUpdateRecipientMergesAndMissingIsNoop(t *testing.T) {
	b := New()
	b.AddRecipient(models.Recipient{ID: "a", Name: "A", Budget: 50})

	require.True(t, b.UpdateRecipient("a", models.RecipientPatch{
		Budget:    helpers.Ptr(80.0),
		Interests: helpers.Ptr("chess"),
	}))
	r, _ := b.RecipientByID("a")
	assert.Equal(t, "A", r.Name)
	assert.Equal(t, 80.0, r.Budget)
	assert.Equal(t, "chess", helpers.Value(r.Interests))

	assert.False(t, b.UpdateRecipient("missing", models.RecipientPatch{Name: helpers.Ptr("x")}))
	assert.Len(t, b.Recipients(), 1)
}

func TestGiftOpsOnMissingRecipientOrGift(t *testing.T) {
	b := New()
	b.AddRecipient(models.Recipient{ID: "a", Name: "A", Budget: 50})

	assert.False(t, b.AddGift("missing", models.Gift{ID: "g", Price: 1}))
	assert.False(t, b.UpdateGift("a", "missing", models.GiftPatch{Price: helpers.Ptr(3.0)}))
	assert.False(t, b.DeleteGift("a", "missing"))
}

func TestRecipientByIDReturnsCopy(t *testing.T) {
	b := New()
	b.AddRecipient(models.Recipient{ID: "a", Name: "A", Budget: 50})
	b.AddGift("a", models.Gift{ID: "g", Name: "Mug", Price: 12, StoreName: helpers.Ptr("Target")})

	r, _ := b.RecipientByID("a")
	r.Gifts[0].Price = 1000
	*r.Gifts[0].StoreName = "changed"

	again, _ := b.RecipientByID("a")
	assert.Equal(t, 12.0, again.Gifts[0].Price)
	assert.Equal(t, "Target", *again.Gifts[0].StoreName)
}

func TestSyncerReceivesMutationsAfterRecompute(t *testing.T) {
	b := New()
	sync := &recordingSyncer{}
	b.Attach(sync)

	b.SetUserData("Sam", 500)
	b.AddRecipient(models.Recipient{ID: "alex", Name: "Alex", Budget: 200})
	b.AddGift("alex", models.Gift{ID: "g1", Name: "Book", Price: 20})
	b.DeleteGift("alex", "g1")
	b.DeleteRecipient("alex")

	assert.Equal(t, []string{
		"profile:Sam",
		"recipient:alex:0.00",
		"gift:alex:g1",
		"recipient:alex:20.00",
		"delete-gift:alex:g1",
		"recipient:alex:0.00",
		"delete-recipient:alex",
	}, sync.calls)
}

func TestNoSyncWithoutSession(t *testing.T) {
	b := New()
	sync := &recordingSyncer{}
	b.Attach(sync)
	b.Attach(nil)

	b.SetUserData("Sam", 500)
	assert.Empty(t, sync.calls)
}

func TestLoadRecomputesSpent(t *testing.T) {
	b := New()
	b.Load(models.UserProfile{FirstName: "Sam", TotalBudget: 300}, []models.Recipient{
		{ID: "a", Name: "A", Budget: 100, Spent: 7, Gifts: []models.Gift{{ID: "g", Price: 40}}},
	})

	snap := b.Snapshot()
	assert.Equal(t, "Sam", snap.Profile.FirstName)
	assert.Equal(t, 40.0, snap.Recipients[0].Spent)
	assert.Equal(t, 40.0, snap.TotalSpent)
	assert.Equal(t, 260.0, snap.BudgetRemaining)
}

func TestDaysUntilChristmas(t *testing.T) {
	loc := time.UTC
	assert.Equal(t, 1, DaysUntilChristmas(time.Date(2025, time.December, 24, 12, 0, 0, 0, loc)))
	assert.Equal(t, 0, DaysUntilChristmas(time.Date(2025, time.December, 25, 0, 0, 0, 0, loc)))
	assert.Equal(t, 365, DaysUntilChristmas(time.Date(2025, time.December, 25, 10, 0, 0, 0, loc)))
	assert.Equal(t, 71, DaysUntilChristmas(time.Date(2026, time.October, 15, 0, 0, 0, 0, loc)))
}
