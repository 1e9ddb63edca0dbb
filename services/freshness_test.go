package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripsplit-backend/models"
	"tripsplit-backend/repository/memory"
	"tripsplit-backend/services"

	"github.com/google/uuid"
)

func newWriteThrough(t *testing.T, f *tripFixture, store services.StatsStore) services.StatsProvider {
	t.Helper()
	p, err := services.NewStatsProvider(services.NewAggregator(f.ledger, nil), services.FreshnessOptions{
		Store:  store,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewStatsProvider: %v", err)
	}
	return p
}

func TestWriteThroughRecomputesWhenAbsent(t *testing.T) {
	f := newTripFixture()
	f.addExpense(t, 100, &f.food)
	store := memory.NewStatsStore(nil)
	p := newWriteThrough(t, f, store)

	if p.Policy() != services.PolicyWriteThrough {
		t.Errorf("Policy() = %q, want write_through", p.Policy())
	}

	trip, err := p.TripStats(context.Background(), f.tripID)
	if err != nil {
		t.Fatalf("TripStats: %v", err)
	}
	if trip.TotalExpense != 100 {
		t.Errorf("TotalExpense = %v, want 100", trip.TotalExpense)
	}
	if got := store.Saves(f.tripID); got != 1 {
		t.Errorf("saves = %d, want 1", got)
	}

	// The second read is served from the store.
	if _, err := p.MemberStats(context.Background(), f.tripID); err != nil {
		t.Fatalf("MemberStats: %v", err)
	}
	if got := store.Saves(f.tripID); got != 1 {
		t.Errorf("saves after second read = %d, want 1", got)
	}
}

func TestWriteThroughOnMutation(t *testing.T) {
	ctx := context.Background()
	f := newTripFixture()
	f.addExpense(t, 100, &f.food)
	store := memory.NewStatsStore(nil)
	p := newWriteThrough(t, f, store)

	if err := p.RecomputeTripAggregates(ctx, f.tripID); err != nil {
		t.Fatalf("RecomputeTripAggregates: %v", err)
	}
	f.addExpense(t, 50, &f.food)
	p.OnLedgerMutation(ctx, f.tripID)

	trip, err := p.TripStats(ctx, f.tripID)
	if err != nil {
		t.Fatalf("TripStats: %v", err)
	}
	if trip.TotalExpense != 150 {
		t.Errorf("TotalExpense = %v, want 150", trip.TotalExpense)
	}
	members, err := p.MemberStats(ctx, f.tripID)
	if err != nil {
		t.Fatalf("MemberStats: %v", err)
	}
	for _, m := range members {
		if m.TotalAmount != 75 {
			t.Errorf("%s total = %v, want 75", m.MemberName, m.TotalAmount)
		}
	}
}

func TestWriteThroughFailureKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newTripFixture()
	f.addExpense(t, 100, &f.food)
	store := &flakyStats{StatsStore: memory.NewStatsStore(nil)}
	p := newWriteThrough(t, f, store)

	if err := p.RecomputeTripAggregates(ctx, f.tripID); err != nil {
		t.Fatalf("RecomputeTripAggregates: %v", err)
	}

	store.fail = true
	f.addExpense(t, 60, nil)
	p.OnLedgerMutation(ctx, f.tripID)

	trip, err := p.TripStats(ctx, f.tripID)
	if err != nil {
		t.Fatalf("TripStats: %v", err)
	}
	if trip.TotalExpense != 100 {
		t.Errorf("TotalExpense = %v, want previous 100", trip.TotalExpense)
	}

	err = p.ForceRefresh(ctx, f.tripID)
	if !errors.Is(err, services.ErrPersistence) {
		t.Errorf("ForceRefresh err = %v, want ErrPersistence", err)
	}

	store.fail = false
	if err := p.ForceRefresh(ctx, f.tripID); err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}
	trip, _ = p.TripStats(ctx, f.tripID)
	if trip.TotalExpense != 160 {
		t.Errorf("TotalExpense after refresh = %v, want 160", trip.TotalExpense)
	}
}

func TestWriteThroughUnknownTrip(t *testing.T) {
	f := newTripFixture()
	p := newWriteThrough(t, f, memory.NewStatsStore(nil))

	_, err := p.WalletStats(context.Background(), uuid.New())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLazyTTLExpiry(t *testing.T) {
	ctx := context.Background()
	f := newTripFixture()
	f.addExpense(t, 100, &f.food)
	clock := newFakeClock()

	p, err := services.NewStatsProvider(services.NewAggregator(f.ledger, clock), services.FreshnessOptions{
		Policy: services.PolicyLazyTTL,
		TTL:    30 * time.Second,
		Clock:  clock,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewStatsProvider: %v", err)
	}

	trip, err := p.TripStats(ctx, f.tripID)
	if err != nil {
		t.Fatalf("TripStats: %v", err)
	}
	if trip.TotalExpense != 100 {
		t.Fatalf("TotalExpense = %v, want 100", trip.TotalExpense)
	}

	// Mutations do not invalidate the cache.
	f.addExpense(t, 20, nil)
	p.OnLedgerMutation(ctx, f.tripID)
	clock.Advance(29 * time.Second)

	trip, _ = p.TripStats(ctx, f.tripID)
	if trip.TotalExpense != 100 {
		t.Errorf("TotalExpense within TTL = %v, want cached 100", trip.TotalExpense)
	}

	clock.Advance(time.Second)
	trip, _ = p.TripStats(ctx, f.tripID)
	if trip.TotalExpense != 120 {
		t.Errorf("TotalExpense after TTL = %v, want 120", trip.TotalExpense)
	}
}

func TestLazyTTLForceRefresh(t *testing.T) {
	ctx := context.Background()
	f := newTripFixture()
	f.addExpense(t, 100, nil)
	clock := newFakeClock()
	cache := services.NewMemoryCache()

	p, err := services.NewStatsProvider(services.NewAggregator(f.ledger, clock), services.FreshnessOptions{
		Policy: services.PolicyLazyTTL,
		Cache:  cache,
		Clock:  clock,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewStatsProvider: %v", err)
	}

	if _, err := p.WalletStats(ctx, f.tripID); err != nil {
		t.Fatalf("WalletStats: %v", err)
	}
	f.addExpense(t, 10, nil)
	if err := p.ForceRefresh(ctx, f.tripID); err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}

	entry, ok, _ := cache.Get(ctx, f.tripID)
	if !ok {
		t.Fatal("cache entry missing after ForceRefresh")
	}
	if entry.Snapshot.Trip.TotalExpense != 110 {
		t.Errorf("cached TotalExpense = %v, want 110", entry.Snapshot.Trip.TotalExpense)
	}
	if !entry.ComputedAt.Equal(clock.Now()) {
		t.Errorf("ComputedAt = %v, want %v", entry.ComputedAt, clock.Now())
	}
}

func TestNewStatsProviderOptions(t *testing.T) {
	agg := services.NewAggregator(memory.NewLedger(), nil)

	if _, err := services.NewStatsProvider(agg, services.FreshnessOptions{}); err == nil {
		t.Error("write-through without a store should fail")
	}
	if _, err := services.NewStatsProvider(agg, services.FreshnessOptions{Policy: "eventual"}); err == nil {
		t.Error("unknown policy should fail")
	}
	p, err := services.NewStatsProvider(agg, services.FreshnessOptions{Policy: services.PolicyLazyTTL})
	if err != nil {
		t.Fatalf("lazy_ttl: %v", err)
	}
	if p.Policy() != services.PolicyLazyTTL {
		t.Errorf("Policy() = %q, want lazy_ttl", p.Policy())
	}
}

func TestWriteThroughKeepsRowsWhenTripEmpties(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStatsStore(nil)
	ledger := memory.NewLedger()
	tripID := uuid.New()
	p, err := services.NewStatsProvider(services.NewAggregator(ledger, nil), services.FreshnessOptions{
		Store:  store,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewStatsProvider: %v", err)
	}

	// Rows left over from when the trip still had members.
	if err := store.SaveSnapshot(ctx, &models.TripSnapshot{Trip: models.TripAggregate{TripID: tripID, TotalExpense: 10}}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	p.OnLedgerMutation(ctx, tripID)

	trip, err := store.TripStats(ctx, tripID)
	if err != nil {
		t.Fatalf("TripStats: %v, want previous rows kept", err)
	}
	if trip.TotalExpense != 10 {
		t.Errorf("TotalExpense = %v, want previous 10", trip.TotalExpense)
	}
	if got := store.Saves(tripID); got != 1 {
		t.Errorf("saves = %d, want 1", got)
	}
}
