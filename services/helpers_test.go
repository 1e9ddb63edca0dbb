package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"tripsplit-backend/models"
	"tripsplit-backend/repository/memory"

	"github.com/google/uuid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flakyStats fails SaveSnapshot while fail is set.
type flakyStats struct {
	*memory.StatsStore
	fail bool
}

func (f *flakyStats) SaveSnapshot(ctx context.Context, snapshot *models.TripSnapshot) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.StatsStore.SaveSnapshot(ctx, snapshot)
}

// tripFixture is a trip with two members and one wallet.
type tripFixture struct {
	ledger *memory.Ledger
	tripID uuid.UUID
	alice  models.Member
	bob    models.Member
	wallet models.Wallet
	food   models.Category
}

func newTripFixture() *tripFixture {
	l := memory.NewLedger()
	tripID := uuid.New()
	return &tripFixture{
		ledger: l,
		tripID: tripID,
		alice:  l.AddMember(tripID, "Alice"),
		bob:    l.AddMember(tripID, "Bob"),
		wallet: l.AddWallet(tripID, "Shared"),
		food:   l.AddCategory("Food", models.KindExpense),
	}
}

// addExpense records an expense split equally between alice and bob.
func (f *tripFixture) addExpense(t *testing.T, amount float64, category *models.Category) models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		TripID:   f.tripID,
		WalletID: f.wallet.ID,
		Kind:     models.KindExpense,
		Amount:   amount,
	}
	if category != nil {
		txn.CategoryID = &category.ID
	}
	half := amount / 2
	err := f.ledger.CreateTransaction(context.Background(), txn, []models.TransactionSplit{
		{MemberID: f.alice.ID, Amount: half, Method: models.SplitEqual},
		{MemberID: f.bob.ID, Amount: half, Method: models.SplitEqual},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return *txn
}
