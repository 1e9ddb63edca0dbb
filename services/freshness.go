package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tripsplit-backend/models"

	"github.com/google/uuid"
)

type Policy string

const (
	// PolicyWriteThrough recomputes and persists on every ledger mutation.
	PolicyWriteThrough Policy = "write_through"
	// PolicyLazyTTL keeps snapshots in a cache and recomputes on read once
	// they are older than the TTL. Mutations do not invalidate it.
	PolicyLazyTTL Policy = "lazy_ttl"
)

const DefaultCacheTTL = 30 * time.Second

// StatsProvider serves aggregates under one freshness policy. Reads of a
// trip with nothing materialized recompute synchronously before serving.
type StatsProvider interface {
	TripStats(ctx context.Context, tripID uuid.UUID) (*models.TripAggregate, error)
	MemberStats(ctx context.Context, tripID uuid.UUID) ([]models.MemberAggregate, error)
	WalletStats(ctx context.Context, tripID uuid.UUID) ([]models.WalletAggregate, error)

	// RecomputeTripAggregates recomputes the trip and stores the result.
	RecomputeTripAggregates(ctx context.Context, tripID uuid.UUID) error
	// ForceRefresh recomputes unconditionally, whatever the policy.
	ForceRefresh(ctx context.Context, tripID uuid.UUID) error
	// OnLedgerMutation is called after a ledger mutation of the trip has
	// committed. It never fails the mutation.
	OnLedgerMutation(ctx context.Context, tripID uuid.UUID)

	Policy() Policy
}

type FreshnessOptions struct {
	Policy Policy
	// Store is required for PolicyWriteThrough.
	Store StatsStore
	// Cache is used by PolicyLazyTTL; a MemoryCache when nil.
	Cache  Cache
	TTL    time.Duration
	Clock  Clock
	Logger *slog.Logger
}

// NewStatsProvider builds the provider for opts.Policy. The empty policy
// means write-through.
func NewStatsProvider(agg *Aggregator, opts FreshnessOptions) (StatsProvider, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	switch opts.Policy {
	case PolicyWriteThrough, "":
		if opts.Store == nil {
			return nil, errors.New("stats: write-through policy needs a stats store")
		}
		return &WriteThrough{
			agg:    agg,
			store:  opts.Store,
			logger: opts.Logger.With("policy", string(PolicyWriteThrough)),
		}, nil
	case PolicyLazyTTL:
		if opts.Cache == nil {
			opts.Cache = NewMemoryCache()
		}
		if opts.TTL <= 0 {
			opts.TTL = DefaultCacheTTL
		}
		return &LazyTTL{
			agg:    agg,
			cache:  opts.Cache,
			ttl:    opts.TTL,
			clock:  opts.Clock,
			logger: opts.Logger.With("policy", string(PolicyLazyTTL)),
		}, nil
	default:
		return nil, fmt.Errorf("stats: unknown freshness policy %q", opts.Policy)
	}
}

// WriteThrough keeps persisted rows fresh by recomputing after every
// mutation. There is no lock around a trip's recompute: concurrent
// mutations each recompute and the last one to save wins.
type WriteThrough struct {
	agg    *Aggregator
	store  StatsStore
	logger *slog.Logger
}

func (w *WriteThrough) Policy() Policy { return PolicyWriteThrough }

func (w *WriteThrough) recompute(ctx context.Context, tripID uuid.UUID) (*models.TripSnapshot, error) {
	snapshot, err := w.agg.Recompute(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := w.store.SaveSnapshot(ctx, snapshot); err != nil {
		if errors.Is(err, ErrPersistence) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: save stats of trip %s: %v", ErrPersistence, tripID, err)
	}
	return snapshot, nil
}

func (w *WriteThrough) RecomputeTripAggregates(ctx context.Context, tripID uuid.UUID) error {
	_, err := w.recompute(ctx, tripID)
	return err
}

func (w *WriteThrough) ForceRefresh(ctx context.Context, tripID uuid.UUID) error {
	w.logger.Info("forced stats refresh", "trip_id", tripID)
	return w.RecomputeTripAggregates(ctx, tripID)
}

// OnLedgerMutation recomputes right away. On failure the previously saved
// rows stay in place and the failure is only logged.
func (w *WriteThrough) OnLedgerMutation(ctx context.Context, tripID uuid.UUID) {
	if err := w.RecomputeTripAggregates(ctx, tripID); err != nil {
		w.logger.Error("stats recompute after mutation failed, keeping previous snapshot",
			"trip_id", tripID, "error", err)
	}
}

func (w *WriteThrough) TripStats(ctx context.Context, tripID uuid.UUID) (*models.TripAggregate, error) {
	stats, err := w.store.TripStats(ctx, tripID)
	if err == nil {
		return stats, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	w.logger.Debug("trip stats absent, recomputing", "trip_id", tripID)
	snapshot, err := w.recompute(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &snapshot.Trip, nil
}

func (w *WriteThrough) MemberStats(ctx context.Context, tripID uuid.UUID) ([]models.MemberAggregate, error) {
	stats, err := w.store.MemberStats(ctx, tripID)
	if err == nil {
		return stats, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	w.logger.Debug("member stats absent, recomputing", "trip_id", tripID)
	snapshot, err := w.recompute(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return snapshot.Members, nil
}

func (w *WriteThrough) WalletStats(ctx context.Context, tripID uuid.UUID) ([]models.WalletAggregate, error) {
	stats, err := w.store.WalletStats(ctx, tripID)
	if err == nil {
		return stats, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	w.logger.Debug("wallet stats absent, recomputing", "trip_id", tripID)
	snapshot, err := w.recompute(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return snapshot.Wallets, nil
}

// LazyTTL serves cached snapshots younger than the TTL and recomputes from
// the ledger otherwise. Nothing is persisted.
type LazyTTL struct {
	agg    *Aggregator
	cache  Cache
	ttl    time.Duration
	clock  Clock
	logger *slog.Logger
}

func (l *LazyTTL) Policy() Policy { return PolicyLazyTTL }

func (l *LazyTTL) refresh(ctx context.Context, tripID uuid.UUID) (*models.TripSnapshot, error) {
	snapshot, err := l.agg.Recompute(ctx, tripID)
	if err != nil {
		return nil, err
	}
	entry := CacheEntry{Snapshot: snapshot, ComputedAt: l.clock.Now()}
	// The ledger stays the source of truth, so a failed cache write only
	// costs a recompute on the next read.
	if err := l.cache.Set(ctx, tripID, entry); err != nil {
		l.logger.Warn("stats cache write failed", "trip_id", tripID, "error", err)
	}
	return snapshot, nil
}

func (l *LazyTTL) load(ctx context.Context, tripID uuid.UUID) (*models.TripSnapshot, error) {
	entry, ok, err := l.cache.Get(ctx, tripID)
	if err != nil {
		l.logger.Warn("stats cache read failed, recomputing", "trip_id", tripID, "error", err)
		ok = false
	}
	if ok && entry.Snapshot != nil && l.clock.Now().Sub(entry.ComputedAt) < l.ttl {
		return entry.Snapshot, nil
	}
	return l.refresh(ctx, tripID)
}

func (l *LazyTTL) RecomputeTripAggregates(ctx context.Context, tripID uuid.UUID) error {
	_, err := l.refresh(ctx, tripID)
	return err
}

func (l *LazyTTL) ForceRefresh(ctx context.Context, tripID uuid.UUID) error {
	l.logger.Info("forced stats refresh", "trip_id", tripID)
	return l.RecomputeTripAggregates(ctx, tripID)
}

// OnLedgerMutation is a no-op: cached snapshots age out on their own.
func (l *LazyTTL) OnLedgerMutation(_ context.Context, tripID uuid.UUID) {
	l.logger.Debug("ledger mutated, cached stats left to expire", "trip_id", tripID)
}

func (l *LazyTTL) TripStats(ctx context.Context, tripID uuid.UUID) (*models.TripAggregate, error) {
	snapshot, err := l.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	trip := snapshot.Trip
	return &trip, nil
}

func (l *LazyTTL) MemberStats(ctx context.Context, tripID uuid.UUID) ([]models.MemberAggregate, error) {
	snapshot, err := l.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return snapshot.Members, nil
}

func (l *LazyTTL) WalletStats(ctx context.Context, tripID uuid.UUID) ([]models.WalletAggregate, error) {
	snapshot, err := l.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return snapshot.Wallets, nil
}
