package services

import (
	"context"
	"fmt"

	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/google/uuid"
)

const unknownMemberName = "Unknown member"

// ReconciliationService reports wallet balances per member and the transfers
// that would level them. Nothing it computes is persisted.
type ReconciliationService struct {
	ledger LedgerReader
}

func NewReconciliationService(ledger LedgerReader) *ReconciliationService {
	return &ReconciliationService{ledger: ledger}
}

// WalletSettlements returns only the transfers for one wallet. A wallet
// without members settles nothing.
func (s *ReconciliationService) WalletSettlements(ctx context.Context, walletID uuid.UUID) ([]models.Transfer, error) {
	walletMembers, err := s.ledger.WalletMembersByWallets(ctx, []uuid.UUID{walletID})
	if err != nil {
		return nil, fmt.Errorf("%w: load balances of wallet %s: %v", ErrPersistence, walletID, err)
	}
	if len(walletMembers) == 0 {
		return []models.Transfer{}, nil
	}

	names, err := s.memberNames(ctx, walletMembers)
	if err != nil {
		return nil, err
	}
	return settleWallet(walletMembers, names), nil
}

func (s *ReconciliationService) Wallet(ctx context.Context, walletID uuid.UUID) (*models.WalletReconciliation, error) {
	walletMembers, err := s.ledger.WalletMembersByWallets(ctx, []uuid.UUID{walletID})
	if err != nil {
		return nil, fmt.Errorf("%w: load balances of wallet %s: %v", ErrPersistence, walletID, err)
	}
	if len(walletMembers) == 0 {
		return nil, fmt.Errorf("%w: wallet %s has no members", ErrNotFound, walletID)
	}
	wallet, err := s.ledger.Wallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	names, err := s.memberNames(ctx, walletMembers)
	if err != nil {
		return nil, err
	}
	spent, err := s.spentByMember(ctx, wallet.TripID, walletMembers)
	if err != nil {
		return nil, err
	}

	rec := reconcileWallet(*wallet, walletMembers, names, spent)
	return &rec, nil
}

// Trip reconciles every wallet of a trip and sums each member's figures
// across wallets.
func (s *ReconciliationService) Trip(ctx context.Context, tripID uuid.UUID) (*models.ReconciliationReport, error) {
	wallets, err := s.ledger.WalletsByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: load wallets of trip %s: %v", ErrPersistence, tripID, err)
	}
	if len(wallets) == 0 {
		return nil, fmt.Errorf("%w: trip %s has no wallets", ErrNotFound, tripID)
	}

	walletIDs := make([]uuid.UUID, 0, len(wallets))
	for _, w := range wallets {
		walletIDs = append(walletIDs, w.ID)
	}
	allMembers, err := s.ledger.WalletMembersByWallets(ctx, walletIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load wallet balances of trip %s: %v", ErrPersistence, tripID, err)
	}
	names, err := s.memberNames(ctx, allMembers)
	if err != nil {
		return nil, err
	}
	spent, err := s.spentByMember(ctx, tripID, allMembers)
	if err != nil {
		return nil, err
	}

	byWallet := make(map[uuid.UUID][]models.WalletMember, len(wallets))
	for _, wm := range allMembers {
		byWallet[wm.WalletID] = append(byWallet[wm.WalletID], wm)
	}

	report := &models.ReconciliationReport{
		TripID:       tripID,
		TotalWallets: len(wallets),
		Wallets:      make([]models.WalletReconciliation, 0, len(wallets)),
		TripSummary:  []models.TripSummaryMember{},
	}
	summaryIndex := make(map[uuid.UUID]int)

	for _, w := range wallets {
		rec := reconcileWallet(w, byWallet[w.ID], names, spent)
		report.Wallets = append(report.Wallets, rec)

		for _, d := range rec.Members {
			i, ok := summaryIndex[d.MemberID]
			if !ok {
				i = len(report.TripSummary)
				summaryIndex[d.MemberID] = i
				report.TripSummary = append(report.TripSummary, models.TripSummaryMember{
					MemberID:   d.MemberID,
					MemberName: d.MemberName,
				})
			}
			report.TripSummary[i].TotalBalance += d.CurrentBalance
			report.TripSummary[i].TotalDeposited += d.TotalDeposited
			report.TripSummary[i].TotalSpent += d.TotalSpent
		}
	}

	for _, m := range report.TripSummary {
		report.OverallBalance += m.TotalBalance
	}
	return report, nil
}

func (s *ReconciliationService) memberNames(ctx context.Context, walletMembers []models.WalletMember) (map[uuid.UUID]string, error) {
	ids := uniqueMemberIDs(walletMembers)
	members, err := s.ledger.MembersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load members: %v", ErrPersistence, err)
	}
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if m, ok := members[id]; ok {
			names[id] = m.Name
		} else {
			names[id] = unknownMemberName
		}
	}
	return names, nil
}

// spentByMember sums each member's split amounts across the trip.
func (s *ReconciliationService) spentByMember(ctx context.Context, tripID uuid.UUID, walletMembers []models.WalletMember) (map[uuid.UUID]float64, error) {
	transactions, err := s.ledger.TransactionsByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: load transactions of trip %s: %v", ErrPersistence, tripID, err)
	}
	ids := make([]uuid.UUID, 0, len(transactions))
	for _, t := range transactions {
		ids = append(ids, t.ID)
	}
	splits, err := s.ledger.SplitsByTransactions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load splits of trip %s: %v", ErrPersistence, tripID, err)
	}

	wanted := make(map[uuid.UUID]bool, len(walletMembers))
	for _, wm := range walletMembers {
		wanted[wm.MemberID] = true
	}
	spent := make(map[uuid.UUID]float64, len(wanted))
	for _, sp := range splits {
		if wanted[sp.MemberID] {
			spent[sp.MemberID] += sp.Amount
		}
	}
	return spent, nil
}

func reconcileWallet(wallet models.Wallet, walletMembers []models.WalletMember, names map[uuid.UUID]string, spent map[uuid.UUID]float64) models.WalletReconciliation {
	var total float64
	for _, wm := range walletMembers {
		total += wm.Balance
	}

	details := make([]models.MemberDetail, 0, len(walletMembers))
	for _, wm := range walletMembers {
		ratio := 0.0
		if total > 0 {
			ratio = utils.RoundToTwo(wm.Balance / total * 100)
		}
		details = append(details, models.MemberDetail{
			MemberID:       wm.MemberID,
			MemberName:     names[wm.MemberID],
			CurrentBalance: wm.Balance,
			TotalDeposited: wm.Balance + spent[wm.MemberID],
			TotalSpent:     spent[wm.MemberID],
			ShareRatio:     ratio,
		})
	}

	return models.WalletReconciliation{
		WalletID:     wallet.ID,
		WalletName:   wallet.Name,
		TotalBalance: total,
		MemberCount:  len(walletMembers),
		Members:      details,
		Settlements:  settleWallet(walletMembers, names),
	}
}

func settleWallet(walletMembers []models.WalletMember, names map[uuid.UUID]string) []models.Transfer {
	balances := make([]models.ParticipantBalance, 0, len(walletMembers))
	for _, wm := range walletMembers {
		balances = append(balances, models.ParticipantBalance{ParticipantID: wm.MemberID, Balance: wm.Balance})
	}
	transfers := ComputeSettlements(balances)
	for i := range transfers {
		transfers[i].FromName = names[transfers[i].FromID]
		transfers[i].ToName = names[transfers[i].ToID]
	}
	return transfers
}

func uniqueMemberIDs(walletMembers []models.WalletMember) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(walletMembers))
	ids := make([]uuid.UUID, 0, len(walletMembers))
	for _, wm := range walletMembers {
		if !seen[wm.MemberID] {
			seen[wm.MemberID] = true
			ids = append(ids, wm.MemberID)
		}
	}
	return ids
}
