package services_test

import (
	"context"
	"errors"
	"testing"

	"tripsplit-backend/models"
	"tripsplit-backend/repository/memory"
	"tripsplit-backend/services"

	"github.com/google/uuid"
)

func TestRecomputeEqualSplit(t *testing.T) {
	f := newTripFixture()
	f.addExpense(t, 100, &f.food)

	agg := services.NewAggregator(f.ledger, newFakeClock())
	snap, err := agg.Recompute(context.Background(), f.tripID)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	if snap.Trip.TotalExpense != 100 {
		t.Errorf("TotalExpense = %v, want 100", snap.Trip.TotalExpense)
	}
	if snap.Trip.AverageExpense != 50 {
		t.Errorf("AverageExpense = %v, want 50", snap.Trip.AverageExpense)
	}
	if snap.Trip.MemberCount != 2 || snap.Trip.TransactionCount != 1 {
		t.Errorf("counts = %d members, %d transactions", snap.Trip.MemberCount, snap.Trip.TransactionCount)
	}
	if len(snap.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(snap.Members))
	}
	for _, m := range snap.Members {
		if m.Balance != 0 {
			t.Errorf("%s balance = %v, want 0", m.MemberName, m.Balance)
		}
		if m.ShouldPay != 50 || m.TotalAmount != 50 {
			t.Errorf("%s = %+v, want total 50 and should_pay 50", m.MemberName, m)
		}
		if m.ByCategory["Food"] != 50 {
			t.Errorf("%s by_category = %v", m.MemberName, m.ByCategory)
		}
	}
}

func TestRecomputeCategoryRatios(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *tripFixture)
		want  map[string]float64
	}{
		{
			name: "single category covers the total",
			setup: func(t *testing.T, f *tripFixture) {
				f.addExpense(t, 120, &f.food)
				f.addExpense(t, 80, &f.food)
			},
			want: map[string]float64{"Food": 100},
		},
		{
			name: "two categories",
			setup: func(t *testing.T, f *tripFixture) {
				taxi := f.ledger.AddCategory("Transport", models.KindExpense)
				f.addExpense(t, 150, &f.food)
				f.addExpense(t, 50, &taxi)
			},
			want: map[string]float64{"Food": 75, "Transport": 25},
		},
		{
			name: "uncategorized spend dilutes ratios",
			setup: func(t *testing.T, f *tripFixture) {
				f.addExpense(t, 100, &f.food)
				f.addExpense(t, 200, nil)
			},
			want: map[string]float64{"Food": 33.33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTripFixture()
			tt.setup(t, f)

			snap, err := services.NewAggregator(f.ledger, nil).Recompute(context.Background(), f.tripID)
			if err != nil {
				t.Fatalf("Recompute: %v", err)
			}
			if len(snap.Trip.CategoryRatios) != len(tt.want) {
				t.Fatalf("ratios = %v, want %v", snap.Trip.CategoryRatios, tt.want)
			}
			for k, v := range tt.want {
				if snap.Trip.CategoryRatios[k] != v {
					t.Errorf("ratio[%s] = %v, want %v", k, snap.Trip.CategoryRatios[k], v)
				}
			}
		})
	}
}

func TestRecomputeNoSpend(t *testing.T) {
	f := newTripFixture()

	snap, err := services.NewAggregator(f.ledger, nil).Recompute(context.Background(), f.tripID)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if snap.Trip.TotalExpense != 0 || snap.Trip.AverageExpense != 0 {
		t.Errorf("trip = %+v, want zero totals", snap.Trip)
	}
	if len(snap.Trip.CategoryRatios) != 0 {
		t.Errorf("ratios = %v, want empty", snap.Trip.CategoryRatios)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newTripFixture()
	f.addExpense(t, 64.5, &f.food)
	f.addExpense(t, 10, nil)

	agg := services.NewAggregator(f.ledger, newFakeClock())
	first, err := agg.Recompute(context.Background(), f.tripID)
	if err != nil {
		t.Fatalf("first Recompute: %v", err)
	}
	second, err := agg.Recompute(context.Background(), f.tripID)
	if err != nil {
		t.Fatalf("second Recompute: %v", err)
	}

	if first.Trip.TotalExpense != second.Trip.TotalExpense ||
		first.Trip.AverageExpense != second.Trip.AverageExpense ||
		first.Trip.CategoryTotals["Food"] != second.Trip.CategoryTotals["Food"] {
		t.Errorf("recomputes differ: %+v vs %+v", first.Trip, second.Trip)
	}
	for i := range first.Members {
		if first.Members[i].Balance != second.Members[i].Balance {
			t.Errorf("member %d balance differs: %v vs %v", i, first.Members[i].Balance, second.Members[i].Balance)
		}
	}
}

func TestRecomputeWallets(t *testing.T) {
	f := newTripFixture()
	ctx := context.Background()
	f.addExpense(t, 40, nil)
	deposit := &models.Transaction{TripID: f.tripID, WalletID: f.wallet.ID, Kind: models.KindDeposit, Amount: 200}
	if err := f.ledger.CreateTransaction(ctx, deposit, nil); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	_ = f.ledger.SetWalletBalances(ctx, f.wallet.ID, []models.WalletMember{
		{MemberID: f.alice.ID, Balance: 100},
		{MemberID: f.bob.ID, Balance: 60},
	})

	snap, err := services.NewAggregator(f.ledger, nil).Recompute(ctx, f.tripID)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if len(snap.Wallets) != 1 {
		t.Fatalf("wallets = %d, want 1", len(snap.Wallets))
	}
	w := snap.Wallets[0]
	if w.TransactionCount != 2 || w.TotalSpent != 40 || w.TotalDeposited != 200 {
		t.Errorf("wallet = %+v", w)
	}
	if w.TotalBalance != 160 || w.Remaining != 160 {
		t.Errorf("total balance = %v, remaining = %v, want 160", w.TotalBalance, w.Remaining)
	}
	if w.BalanceByMember[f.alice.ID.String()] != 100 {
		t.Errorf("balance_by_member = %v", w.BalanceByMember)
	}
}

func TestRecomputeUnknownTrip(t *testing.T) {
	_, err := services.NewAggregator(memory.NewLedger(), nil).Recompute(context.Background(), uuid.New())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecomputeRejectsBadAmount(t *testing.T) {
	f := newTripFixture()
	bad := &models.Transaction{TripID: f.tripID, WalletID: f.wallet.ID, Kind: models.KindExpense, Amount: -5}
	if err := f.ledger.CreateTransaction(context.Background(), bad, nil); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	_, err := services.NewAggregator(f.ledger, nil).Recompute(context.Background(), f.tripID)
	if !errors.Is(err, services.ErrComputation) {
		t.Fatalf("err = %v, want ErrComputation", err)
	}
}

func TestRecomputeOrdersByName(t *testing.T) {
	l := memory.NewLedger()
	tripID := uuid.New()
	l.AddMember(tripID, "Zoe")
	l.AddMember(tripID, "Adam")
	l.AddWallet(tripID, "Travel")
	l.AddWallet(tripID, "Food")
	ctx := context.Background()

	snap, err := services.NewAggregator(l, nil).Recompute(ctx, tripID)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if snap.Members[0].MemberName != "Adam" || snap.Members[1].MemberName != "Zoe" {
		t.Errorf("members = %s, %s; want Adam, Zoe", snap.Members[0].MemberName, snap.Members[1].MemberName)
	}
	if snap.Wallets[0].WalletName != "Food" || snap.Wallets[1].WalletName != "Travel" {
		t.Errorf("wallets = %s, %s; want Food, Travel", snap.Wallets[0].WalletName, snap.Wallets[1].WalletName)
	}

	store := memory.NewStatsStore(nil)
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	members, err := store.MemberStats(ctx, tripID)
	if err != nil {
		t.Fatalf("MemberStats: %v", err)
	}
	wallets, err := store.WalletStats(ctx, tripID)
	if err != nil {
		t.Fatalf("WalletStats: %v", err)
	}
	if members[0].MemberName != "Adam" || wallets[0].WalletName != "Food" {
		t.Errorf("stored order = %s / %s, want Adam / Food", members[0].MemberName, wallets[0].WalletName)
	}
}
