// Package memory holds in-process stores used when no database is
// configured, and by tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tripsplit-backend/models"
	"tripsplit-backend/services"

	"github.com/google/uuid"
)

// Ledger is an in-memory services.LedgerStore. Rows are kept in insertion
// order, which is the order list reads return them in.
type Ledger struct {
	mu sync.RWMutex

	members       []models.Member
	wallets       []models.Wallet
	walletMembers []models.WalletMember
	transactions  []models.Transaction
	splits        []models.TransactionSplit
	categories    map[uuid.UUID]models.Category
}

var _ services.LedgerStore = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{categories: make(map[uuid.UUID]models.Category)}
}

func (l *Ledger) AddMember(tripID uuid.UUID, name string) models.Member {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := models.Member{ID: uuid.New(), Name: name, TripID: tripID, CreatedAt: time.Now()}
	l.members = append(l.members, m)
	return m
}

func (l *Ledger) AddWallet(tripID uuid.UUID, name string) models.Wallet {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w := models.Wallet{ID: uuid.New(), Name: name, TripID: tripID, CreatedAt: now, UpdatedAt: now}
	l.wallets = append(l.wallets, w)
	return w
}

func (l *Ledger) AddCategory(name, kind string) models.Category {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := models.Category{ID: uuid.New(), Name: name, Type: kind}
	l.categories[c.ID] = c
	return c
}

func (l *Ledger) MembersByTrip(_ context.Context, tripID uuid.UUID) ([]models.Member, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.Member
	for _, m := range l.members {
		if m.TripID == tripID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (l *Ledger) MembersByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Member, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	wanted := idSet(ids)
	out := make(map[uuid.UUID]models.Member, len(ids))
	for _, m := range l.members {
		if wanted[m.ID] {
			out[m.ID] = m
		}
	}
	return out, nil
}

func (l *Ledger) WalletsByTrip(_ context.Context, tripID uuid.UUID) ([]models.Wallet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.Wallet
	for _, w := range l.wallets {
		if w.TripID == tripID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (l *Ledger) Wallet(_ context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, w := range l.wallets {
		if w.ID == walletID {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("%w: wallet %s", services.ErrNotFound, walletID)
}

func (l *Ledger) WalletMembersByWallets(_ context.Context, walletIDs []uuid.UUID) ([]models.WalletMember, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	wanted := idSet(walletIDs)
	var out []models.WalletMember
	for _, wm := range l.walletMembers {
		if wanted[wm.WalletID] {
			out = append(out, wm)
		}
	}
	return out, nil
}

func (l *Ledger) TransactionsByTrip(_ context.Context, tripID uuid.UUID) ([]models.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.Transaction
	for _, t := range l.transactions {
		if t.TripID == tripID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *Ledger) Transaction(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, t := range l.transactions {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: transaction %s", services.ErrNotFound, id)
}

func (l *Ledger) SplitsByTransactions(_ context.Context, transactionIDs []uuid.UUID) ([]models.TransactionSplit, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	wanted := idSet(transactionIDs)
	var out []models.TransactionSplit
	for _, s := range l.splits {
		if wanted[s.TransactionID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (l *Ledger) CategoriesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Category, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[uuid.UUID]models.Category, len(ids))
	for _, id := range ids {
		if c, ok := l.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (l *Ledger) CreateTransaction(_ context.Context, txn *models.Transaction, splits []models.TransactionSplit) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	now := time.Now()
	txn.CreatedAt, txn.UpdatedAt = now, now

	stored := *txn
	stored.Splits = nil
	l.transactions = append(l.transactions, stored)
	l.appendSplits(txn.ID, splits, now)
	return nil
}

func (l *Ledger) UpdateTransaction(_ context.Context, txn *models.Transaction, splits []models.TransactionSplit, replaceSplits bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.transactionIndex(txn.ID)
	if i < 0 {
		return fmt.Errorf("%w: transaction %s", services.ErrNotFound, txn.ID)
	}
	now := time.Now()
	txn.UpdatedAt = now
	stored := *txn
	stored.Splits = nil
	l.transactions[i] = stored

	if replaceSplits {
		l.dropSplits(txn.ID)
		l.appendSplits(txn.ID, splits, now)
	}
	return nil
}

func (l *Ledger) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.transactionIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: transaction %s", services.ErrNotFound, id)
	}
	l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
	l.dropSplits(id)
	return nil
}

func (l *Ledger) SetWalletBalances(_ context.Context, walletID uuid.UUID, balances []models.WalletMember) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for _, b := range balances {
		updated := false
		for i := range l.walletMembers {
			wm := &l.walletMembers[i]
			if wm.WalletID == walletID && wm.MemberID == b.MemberID {
				wm.Balance = b.Balance
				wm.UpdatedAt = now
				updated = true
				break
			}
		}
		if !updated {
			l.walletMembers = append(l.walletMembers, models.WalletMember{
				ID:        uuid.New(),
				WalletID:  walletID,
				MemberID:  b.MemberID,
				Balance:   b.Balance,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}
	return nil
}

func (l *Ledger) transactionIndex(id uuid.UUID) int {
	for i, t := range l.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) appendSplits(transactionID uuid.UUID, splits []models.TransactionSplit, now time.Time) {
	for i := range splits {
		if splits[i].ID == uuid.Nil {
			splits[i].ID = uuid.New()
		}
		splits[i].TransactionID = transactionID
		splits[i].CreatedAt = now
		l.splits = append(l.splits, splits[i])
	}
}

func (l *Ledger) dropSplits(transactionID uuid.UUID) {
	kept := l.splits[:0]
	for _, s := range l.splits {
		if s.TransactionID != transactionID {
			kept = append(kept, s)
		}
	}
	l.splits = kept
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
