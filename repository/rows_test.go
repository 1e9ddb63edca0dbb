package repository

import (
	"errors"
	"testing"
	"time"

	"tripsplit-backend/models"
	"tripsplit-backend/services"

	"github.com/google/uuid"
)

func TestEncodeDecodeSnapshot(t *testing.T) {
	tripID := uuid.New()
	memberID := uuid.New()
	walletID := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	snap := &models.TripSnapshot{
		Trip: models.TripAggregate{
			TripID:         tripID,
			TotalExpense:   180,
			AverageExpense: 90,
			MemberCount:    2,
			CategoryTotals: map[string]float64{"Food": 120, "Transport": 60},
			CategoryRatios: map[string]float64{"Food": 66.67, "Transport": 33.33},
		},
		Members: []models.MemberAggregate{{
			TripID:      tripID,
			MemberID:    memberID,
			MemberName:  "Alice",
			TotalAmount: 100,
			ByCategory:  map[string]float64{"Food": 100},
			ShouldPay:   90,
			Balance:     10,
		}},
		Wallets: []models.WalletAggregate{{
			TripID:          tripID,
			WalletID:        walletID,
			WalletName:      "Shared",
			BalanceByMember: nil,
			TotalBalance:    0,
		}},
		ComputedAt: at,
	}

	codec := services.JSONCodec{}
	trip, members, wallets, err := EncodeSnapshot(codec, snap)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	if !trip.UpdatedAt.Equal(at) {
		t.Errorf("trip UpdatedAt = %v, want %v", trip.UpdatedAt, at)
	}
	if len(members) != 1 || len(wallets) != 1 {
		t.Fatalf("rows = %d members, %d wallets; want 1 and 1", len(members), len(wallets))
	}
	if wallets[0].BalanceByMember != "{}" {
		t.Errorf("nil map encoded as %q, want {}", wallets[0].BalanceByMember)
	}

	gotTrip, err := DecodeTripStats(codec, trip)
	if err != nil {
		t.Fatalf("DecodeTripStats: %v", err)
	}
	if gotTrip.CategoryTotals["Food"] != 120 || gotTrip.CategoryRatios["Transport"] != 33.33 {
		t.Errorf("decoded trip maps = %v / %v", gotTrip.CategoryTotals, gotTrip.CategoryRatios)
	}

	gotMembers, err := DecodeMemberStats(codec, members)
	if err != nil {
		t.Fatalf("DecodeMemberStats: %v", err)
	}
	if gotMembers[0].ByCategory["Food"] != 100 || gotMembers[0].Balance != 10 {
		t.Errorf("decoded member = %+v", gotMembers[0])
	}

	gotWallets, err := DecodeWalletStats(codec, wallets)
	if err != nil {
		t.Fatalf("DecodeWalletStats: %v", err)
	}
	if gotWallets[0].BalanceByMember == nil || len(gotWallets[0].BalanceByMember) != 0 {
		t.Errorf("decoded wallet map = %v, want empty non-nil", gotWallets[0].BalanceByMember)
	}
}

func TestDecodeRejectsCorruptRow(t *testing.T) {
	_, err := DecodeTripStats(services.JSONCodec{}, models.TripStats{CategoryTotals: "{not json"})
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}
