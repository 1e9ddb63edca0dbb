package memory

import (
	"context"
	"fmt"
	"sync"

	"tripsplit-backend/models"
	"tripsplit-backend/repository"
	"tripsplit-backend/services"

	"github.com/google/uuid"
)

// StatsStore is an in-memory services.StatsStore. It keeps the same encoded
// rows as the database tables so that map fields go through the codec.
type StatsStore struct {
	mu    sync.RWMutex
	codec services.MapCodec

	trips   map[uuid.UUID]models.TripStats
	members map[uuid.UUID][]models.MemberStats
	wallets map[uuid.UUID][]models.WalletStats
	saves   map[uuid.UUID]int
}

var _ services.StatsStore = (*StatsStore)(nil)

func NewStatsStore(codec services.MapCodec) *StatsStore {
	if codec == nil {
		codec = services.JSONCodec{}
	}
	return &StatsStore{
		codec:   codec,
		trips:   make(map[uuid.UUID]models.TripStats),
		members: make(map[uuid.UUID][]models.MemberStats),
		wallets: make(map[uuid.UUID][]models.WalletStats),
		saves:   make(map[uuid.UUID]int),
	}
}

func (s *StatsStore) SaveSnapshot(_ context.Context, snapshot *models.TripSnapshot) error {
	trip, members, wallets, err := repository.EncodeSnapshot(s.codec, snapshot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := snapshot.Trip.TripID
	s.trips[id] = trip
	s.members[id] = members
	s.wallets[id] = wallets
	s.saves[id]++
	return nil
}

// Saves reports how many snapshots were written for a trip.
func (s *StatsStore) Saves(tripID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves[tripID]
}

func (s *StatsStore) TripStats(_ context.Context, tripID uuid.UUID) (*models.TripAggregate, error) {
	s.mu.RLock()
	row, ok := s.trips[tripID]
	s.mu.RUnlock()
	if !ok {
		return nil, notMaterialized(tripID)
	}
	return repository.DecodeTripStats(s.codec, row)
}

func (s *StatsStore) MemberStats(_ context.Context, tripID uuid.UUID) ([]models.MemberAggregate, error) {
	s.mu.RLock()
	_, ok := s.trips[tripID]
	rows := s.members[tripID]
	s.mu.RUnlock()
	if !ok {
		return nil, notMaterialized(tripID)
	}
	return repository.DecodeMemberStats(s.codec, rows)
}

func (s *StatsStore) WalletStats(_ context.Context, tripID uuid.UUID) ([]models.WalletAggregate, error) {
	s.mu.RLock()
	_, ok := s.trips[tripID]
	rows := s.wallets[tripID]
	s.mu.RUnlock()
	if !ok {
		return nil, notMaterialized(tripID)
	}
	return repository.DecodeWalletStats(s.codec, rows)
}

func (s *StatsStore) DeleteTripStats(_ context.Context, tripID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.trips, tripID)
	delete(s.members, tripID)
	delete(s.wallets, tripID)
	return nil
}

func notMaterialized(tripID uuid.UUID) error {
	return fmt.Errorf("%w: no stats for trip %s", services.ErrNotFound, tripID)
}
