package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/google/uuid"
)

// TransactionService applies ledger mutations and then hands the affected
// trip to the stats provider. The provider runs after the ledger write has
// committed, so it always reads committed state.
type TransactionService struct {
	ledger LedgerStore
	stats  StatsProvider
	logger *slog.Logger
	clock  Clock
}

func NewTransactionService(ledger LedgerStore, stats StatsProvider, logger *slog.Logger) *TransactionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionService{ledger: ledger, stats: stats, logger: logger, clock: SystemClock{}}
}

func (s *TransactionService) Create(ctx context.Context, tripID uuid.UUID, req models.CreateTransactionRequest) (*models.Transaction, error) {
	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		return nil, fmt.Errorf("%w: wallet id %q", ErrInvalidInput, req.WalletID)
	}
	wallet, err := s.ledger.Wallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.TripID != tripID {
		return nil, fmt.Errorf("%w: wallet %s does not belong to trip %s", ErrComputation, walletID, tripID)
	}

	categoryID, err := utils.ParseOptionalUUID(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: category id %q", ErrInvalidInput, req.CategoryID)
	}
	payerID, err := utils.ParseOptionalUUID(req.PayerID)
	if err != nil {
		return nil, fmt.Errorf("%w: payer id %q", ErrInvalidInput, req.PayerID)
	}

	txnDate := s.clock.Now()
	if req.TransactionDate != "" {
		txnDate, err = time.Parse("2006-01-02", req.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction date %q, want YYYY-MM-DD", ErrInvalidInput, req.TransactionDate)
		}
	}

	txn := &models.Transaction{
		TripID:          tripID,
		WalletID:        walletID,
		CategoryID:      categoryID,
		Kind:            req.Kind,
		Amount:          req.Amount,
		PayerID:         payerID,
		TransactionDate: txnDate,
		Note:            req.Note,
	}
	if txn.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %v", ErrComputation, txn.Amount)
	}

	if txn.Kind == models.KindDeposit && (req.SplitMethod != "" || len(req.Splits) > 0) {
		return nil, fmt.Errorf("%w: deposits carry no splits", ErrComputation)
	}
	method := req.SplitMethod
	if method == "" && txn.Kind == models.KindExpense {
		method = models.SplitEqual
	}

	var splits []models.TransactionSplit
	if method != "" {
		shares, err := s.resolveShares(ctx, tripID, method, req.Splits)
		if err != nil {
			return nil, err
		}
		splits, err = AllocateSplits(txn.Amount, method, shares, s.logger)
		if err != nil {
			return nil, err
		}
	}

	if err := s.ledger.CreateTransaction(ctx, txn, splits); err != nil {
		return nil, err
	}
	txn.Splits = splits

	s.logger.Info("transaction created", "trip_id", tripID, "transaction_id", txn.ID, "amount", txn.Amount)
	s.stats.OnLedgerMutation(ctx, tripID)
	return txn, nil
}

func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req models.UpdateTransactionRequest) (*models.Transaction, error) {
	txn, err := s.ledger.Transaction(ctx, id)
	if err != nil {
		return nil, err
	}

	amountChanged, kindChanged := false, false
	if req.CategoryID != nil {
		txn.CategoryID, err = utils.ParseOptionalUUID(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: category id %q", ErrInvalidInput, *req.CategoryID)
		}
	}
	if req.PayerID != nil {
		txn.PayerID, err = utils.ParseOptionalUUID(*req.PayerID)
		if err != nil {
			return nil, fmt.Errorf("%w: payer id %q", ErrInvalidInput, *req.PayerID)
		}
	}
	if req.Kind != nil {
		kindChanged = *req.Kind != txn.Kind
		txn.Kind = *req.Kind
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, fmt.Errorf("%w: amount must be positive, got %v", ErrComputation, *req.Amount)
		}
		amountChanged = *req.Amount != txn.Amount
		txn.Amount = *req.Amount
	}
	if req.TransactionDate != nil {
		txn.TransactionDate, err = time.Parse("2006-01-02", *req.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction date %q, want YYYY-MM-DD", ErrInvalidInput, *req.TransactionDate)
		}
	}
	if req.Note != nil {
		txn.Note = *req.Note
	}

	var splits []models.TransactionSplit
	replace := amountChanged || kindChanged || req.SplitMethod != "" || len(req.Splits) > 0
	if txn.Kind == models.KindDeposit {
		if req.SplitMethod != "" || len(req.Splits) > 0 {
			return nil, fmt.Errorf("%w: deposits carry no splits", ErrComputation)
		}
		// Deposits never keep splits, whatever they held before.
		replace = true
	} else if replace {
		splits, err = s.reallocate(ctx, txn, req)
		if err != nil {
			return nil, err
		}
	}

	if err := s.ledger.UpdateTransaction(ctx, txn, splits, replace); err != nil {
		return nil, err
	}
	if replace {
		txn.Splits = splits
	}

	s.logger.Info("transaction updated", "trip_id", txn.TripID, "transaction_id", txn.ID)
	s.stats.OnLedgerMutation(ctx, txn.TripID)
	return txn, nil
}

// reallocate recomputes the splits of an updated transaction. Without new
// split inputs the existing members are kept: equal splits are redone,
// ratio splits keep their proportions, custom splits must be resent.
func (s *TransactionService) reallocate(ctx context.Context, txn *models.Transaction, req models.UpdateTransactionRequest) ([]models.TransactionSplit, error) {
	existing, err := s.ledger.SplitsByTransactions(ctx, []uuid.UUID{txn.ID})
	if err != nil {
		return nil, fmt.Errorf("%w: load splits of transaction %s: %v", ErrPersistence, txn.ID, err)
	}

	method := req.SplitMethod
	if method == "" && len(existing) > 0 {
		method = existing[0].Method
	}
	if method == "" {
		method = models.SplitEqual
	}

	var shares []SplitShare
	if len(req.Splits) > 0 {
		shares, err = s.resolveShares(ctx, txn.TripID, method, req.Splits)
		if err != nil {
			return nil, err
		}
	} else {
		if method == models.SplitCustom {
			return nil, fmt.Errorf("%w: custom splits must be resent when the amount changes", ErrComputation)
		}
		for _, e := range existing {
			shares = append(shares, SplitShare{MemberID: e.MemberID, Value: e.Amount})
		}
		if len(shares) == 0 {
			shares, err = s.resolveShares(ctx, txn.TripID, method, nil)
			if err != nil {
				return nil, err
			}
		}
	}

	return AllocateSplits(txn.Amount, method, shares, s.logger)
}

// resolveShares validates split inputs against the trip's members. An equal
// split with no inputs covers every member of the trip.
func (s *TransactionService) resolveShares(ctx context.Context, tripID uuid.UUID, method string, inputs []models.SplitInput) ([]SplitShare, error) {
	if len(inputs) == 0 {
		if method != models.SplitEqual {
			return nil, fmt.Errorf("%w: splits required for %s split method", ErrComputation, method)
		}
		members, err := s.ledger.MembersByTrip(ctx, tripID)
		if err != nil {
			return nil, fmt.Errorf("%w: load members of trip %s: %v", ErrPersistence, tripID, err)
		}
		if len(members) == 0 {
			return nil, fmt.Errorf("%w: trip %s has no members", ErrNotFound, tripID)
		}
		shares := make([]SplitShare, 0, len(members))
		for _, m := range members {
			shares = append(shares, SplitShare{MemberID: m.ID})
		}
		return shares, nil
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	shares := make([]SplitShare, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		id, err := uuid.Parse(in.MemberID)
		if err != nil {
			return nil, fmt.Errorf("%w: member id %q", ErrInvalidInput, in.MemberID)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: member %s appears twice in splits", ErrComputation, id)
		}
		seen[id] = true
		ids = append(ids, id)
		shares = append(shares, SplitShare{MemberID: id, Value: in.Value})
	}

	if err := s.checkMembers(ctx, tripID, ids); err != nil {
		return nil, err
	}
	return shares, nil
}

func (s *TransactionService) checkMembers(ctx context.Context, tripID uuid.UUID, ids []uuid.UUID) error {
	members, err := s.ledger.MembersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: load members: %v", ErrPersistence, err)
	}
	for _, id := range ids {
		m, ok := members[id]
		if !ok || m.TripID != tripID {
			return fmt.Errorf("%w: member %s is not part of trip %s", ErrComputation, id, tripID)
		}
	}
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	txn, err := s.ledger.Transaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ledger.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.logger.Info("transaction deleted", "trip_id", txn.TripID, "transaction_id", id)
	s.stats.OnLedgerMutation(ctx, txn.TripID)
	return nil
}

// SetWalletBalances sets the balance of each listed member of a wallet;
// members left out keep what they had. Balance
// updates change wallet aggregates, so they count as a ledger mutation.
func (s *TransactionService) SetWalletBalances(ctx context.Context, walletID uuid.UUID, req models.SetWalletMembersRequest) error {
	wallet, err := s.ledger.Wallet(ctx, walletID)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(req.Members))
	balances := make([]models.WalletMember, 0, len(req.Members))
	seen := make(map[uuid.UUID]bool, len(req.Members))
	for _, in := range req.Members {
		id, err := uuid.Parse(in.MemberID)
		if err != nil {
			return fmt.Errorf("%w: member id %q", ErrInvalidInput, in.MemberID)
		}
		if seen[id] {
			return fmt.Errorf("%w: member %s listed twice for wallet %s", ErrComputation, id, walletID)
		}
		seen[id] = true
		ids = append(ids, id)
		balances = append(balances, models.WalletMember{
			WalletID: walletID,
			MemberID: id,
			Balance:  in.Balance,
		})
	}
	if err := s.checkMembers(ctx, wallet.TripID, ids); err != nil {
		return err
	}

	if err := s.ledger.SetWalletBalances(ctx, walletID, balances); err != nil {
		return err
	}

	s.logger.Info("wallet balances updated", "trip_id", wallet.TripID, "wallet_id", walletID, "members", len(balances))
	s.stats.OnLedgerMutation(ctx, wallet.TripID)
	return nil
}
