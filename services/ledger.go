package services

import (
	"context"

	"tripsplit-backend/models"

	"github.com/google/uuid"
)

// LedgerReader is the read side of the ledger store. Lookups of related rows
// are batched: callers pass every id they need at once.
type LedgerReader interface {
	MembersByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Member, error)
	MembersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Member, error)
	WalletsByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Wallet, error)
	Wallet(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error)
	WalletMembersByWallets(ctx context.Context, walletIDs []uuid.UUID) ([]models.WalletMember, error)
	TransactionsByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Transaction, error)
	Transaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	SplitsByTransactions(ctx context.Context, transactionIDs []uuid.UUID) ([]models.TransactionSplit, error)
	CategoriesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Category, error)
}

// LedgerWriter mutates ledger rows. Each call is one unit of work.
type LedgerWriter interface {
	CreateTransaction(ctx context.Context, txn *models.Transaction, splits []models.TransactionSplit) error
	// UpdateTransaction saves txn; splits replace the existing ones when
	// replaceSplits is set.
	UpdateTransaction(ctx context.Context, txn *models.Transaction, splits []models.TransactionSplit, replaceSplits bool) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	SetWalletBalances(ctx context.Context, walletID uuid.UUID, balances []models.WalletMember) error
}

type LedgerStore interface {
	LedgerReader
	LedgerWriter
}

// StatsStore persists materialized aggregates: one row per trip, per
// (trip, member) and per wallet. Reads return ErrNotFound when the trip has
// never been materialized.
type StatsStore interface {
	// SaveSnapshot replaces everything materialized for the snapshot's trip
	// in one unit of work.
	SaveSnapshot(ctx context.Context, snapshot *models.TripSnapshot) error
	TripStats(ctx context.Context, tripID uuid.UUID) (*models.TripAggregate, error)
	MemberStats(ctx context.Context, tripID uuid.UUID) ([]models.MemberAggregate, error)
	WalletStats(ctx context.Context, tripID uuid.UUID) ([]models.WalletAggregate, error)
	// DeleteTripStats is for whoever deletes the trip itself; recompute
	// failures never remove rows.
	DeleteTripStats(ctx context.Context, tripID uuid.UUID) error
}
