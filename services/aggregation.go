package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/google/uuid"
)

// Aggregator computes trip, member and wallet rollups from ledger rows. It
// holds no state besides its collaborators, so one instance serves every
// trip concurrently.
type Aggregator struct {
	ledger LedgerReader
	clock  Clock
}

func NewAggregator(ledger LedgerReader, clock Clock) *Aggregator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Aggregator{ledger: ledger, clock: clock}
}

// Recompute scans the rows of one trip and returns a fresh snapshot. It only
// reads, so calling it twice without an intervening mutation yields the same
// values.
func (a *Aggregator) Recompute(ctx context.Context, tripID uuid.UUID) (*models.TripSnapshot, error) {
	members, err := a.ledger.MembersByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: load members of trip %s: %v", ErrPersistence, tripID, err)
	}
	wallets, err := a.ledger.WalletsByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: load wallets of trip %s: %v", ErrPersistence, tripID, err)
	}
	if len(members) == 0 && len(wallets) == 0 {
		return nil, fmt.Errorf("%w: trip %s has no members or wallets", ErrNotFound, tripID)
	}
	sortMembers(members)
	sortWallets(wallets)

	transactions, err := a.ledger.TransactionsByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: load transactions of trip %s: %v", ErrPersistence, tripID, err)
	}

	txnIDs := make([]uuid.UUID, 0, len(transactions))
	categoryIDs := make([]uuid.UUID, 0)
	seenCategory := make(map[uuid.UUID]bool)
	txnByID := make(map[uuid.UUID]models.Transaction, len(transactions))
	for _, t := range transactions {
		if t.Amount <= 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			return nil, fmt.Errorf("%w: transaction %s has non-positive amount %v", ErrComputation, t.ID, t.Amount)
		}
		txnIDs = append(txnIDs, t.ID)
		txnByID[t.ID] = t
		if t.CategoryID != nil && !seenCategory[*t.CategoryID] {
			seenCategory[*t.CategoryID] = true
			categoryIDs = append(categoryIDs, *t.CategoryID)
		}
	}

	splits, err := a.ledger.SplitsByTransactions(ctx, txnIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load splits of trip %s: %v", ErrPersistence, tripID, err)
	}
	categories, err := a.ledger.CategoriesByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load categories of trip %s: %v", ErrPersistence, tripID, err)
	}

	walletIDs := make([]uuid.UUID, 0, len(wallets))
	for _, w := range wallets {
		walletIDs = append(walletIDs, w.ID)
	}
	walletMembers, err := a.ledger.WalletMembersByWallets(ctx, walletIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load wallet balances of trip %s: %v", ErrPersistence, tripID, err)
	}

	now := a.clock.Now()
	trip, memberAggs, err := aggregateSplits(tripID, members, txnByID, splits, categories, now)
	if err != nil {
		return nil, err
	}
	trip.TransactionCount = len(transactions)

	return &models.TripSnapshot{
		Trip:       trip,
		Members:    memberAggs,
		Wallets:    aggregateWallets(tripID, wallets, transactions, walletMembers, now),
		ComputedAt: now,
	}, nil
}

// categoryName resolves the category a split is grouped under. Splits of
// uncategorized transactions, or of categories that no longer exist, count
// toward totals but belong to no category.
func categoryName(txn models.Transaction, categories map[uuid.UUID]models.Category) (string, bool) {
	if txn.CategoryID == nil {
		return "", false
	}
	c, ok := categories[*txn.CategoryID]
	if !ok {
		return "", false
	}
	return c.Name, true
}

func aggregateSplits(
	tripID uuid.UUID,
	members []models.Member,
	txnByID map[uuid.UUID]models.Transaction,
	splits []models.TransactionSplit,
	categories map[uuid.UUID]models.Category,
	now time.Time,
) (models.TripAggregate, []models.MemberAggregate, error) {
	trip := models.TripAggregate{
		TripID:         tripID,
		MemberCount:    len(members),
		CategoryTotals: make(map[string]float64),
		CategoryRatios: make(map[string]float64),
		UpdatedAt:      now,
	}

	totals := make(map[uuid.UUID]float64, len(members))
	byCategory := make(map[uuid.UUID]map[string]float64, len(members))
	for _, m := range members {
		byCategory[m.ID] = make(map[string]float64)
	}

	for _, s := range splits {
		txn, ok := txnByID[s.TransactionID]
		if !ok {
			continue
		}
		if math.IsNaN(s.Amount) || math.IsInf(s.Amount, 0) {
			return trip, nil, fmt.Errorf("%w: split %s has invalid amount", ErrComputation, s.ID)
		}

		trip.TotalExpense += s.Amount
		name, categorized := categoryName(txn, categories)
		if categorized {
			trip.CategoryTotals[name] += s.Amount
		}

		memberCategories, isMember := byCategory[s.MemberID]
		if !isMember {
			continue
		}
		totals[s.MemberID] += s.Amount
		if categorized {
			memberCategories[name] += s.Amount
		}
	}

	for name, amount := range trip.CategoryTotals {
		if trip.TotalExpense > 0 {
			trip.CategoryRatios[name] = utils.RoundToTwo(amount / trip.TotalExpense * 100)
		} else {
			trip.CategoryRatios[name] = 0
		}
	}
	if len(members) > 0 {
		trip.AverageExpense = trip.TotalExpense / float64(len(members))
	}

	memberAggs := make([]models.MemberAggregate, 0, len(members))
	for _, m := range members {
		memberAggs = append(memberAggs, models.MemberAggregate{
			TripID:      tripID,
			MemberID:    m.ID,
			MemberName:  m.Name,
			TotalAmount: totals[m.ID],
			ByCategory:  byCategory[m.ID],
			ShouldPay:   trip.AverageExpense,
			Balance:     totals[m.ID] - trip.AverageExpense,
			UpdatedAt:   now,
		})
	}

	return trip, memberAggs, nil
}

func aggregateWallets(
	tripID uuid.UUID,
	wallets []models.Wallet,
	transactions []models.Transaction,
	walletMembers []models.WalletMember,
	now time.Time,
) []models.WalletAggregate {
	aggs := make([]models.WalletAggregate, 0, len(wallets))
	index := make(map[uuid.UUID]int, len(wallets))
	for i, w := range wallets {
		index[w.ID] = i
		aggs = append(aggs, models.WalletAggregate{
			TripID:          tripID,
			WalletID:        w.ID,
			WalletName:      w.Name,
			BalanceByMember: make(map[string]float64),
			UpdatedAt:       now,
		})
	}

	for _, t := range transactions {
		i, ok := index[t.WalletID]
		if !ok {
			continue
		}
		aggs[i].TransactionCount++
		switch t.Kind {
		case models.KindExpense:
			aggs[i].TotalSpent += t.Amount
		case models.KindDeposit:
			aggs[i].TotalDeposited += t.Amount
		}
	}

	for _, wm := range walletMembers {
		i, ok := index[wm.WalletID]
		if !ok {
			continue
		}
		aggs[i].BalanceByMember[wm.MemberID.String()] = wm.Balance
		aggs[i].TotalBalance += wm.Balance
	}
	for i := range aggs {
		aggs[i].Remaining = aggs[i].TotalBalance
	}

	return aggs
}

// Aggregates are listed by name, then id, in byte order. The stats stores
// read rows back in the same order.
func sortMembers(members []models.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Name != members[j].Name {
			return members[i].Name < members[j].Name
		}
		return members[i].ID.String() < members[j].ID.String()
	})
}

func sortWallets(wallets []models.Wallet) {
	sort.SliceStable(wallets, func(i, j int) bool {
		if wallets[i].Name != wallets[j].Name {
			return wallets[i].Name < wallets[j].Name
		}
		return wallets[i].ID.String() < wallets[j].ID.String()
	})
}
