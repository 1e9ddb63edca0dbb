package repository

import (
	"tripsplit-backend/models"
	"tripsplit-backend/services"
)

// EncodeSnapshot converts a snapshot into the rows the stats tables hold,
// encoding every map field with codec.
func EncodeSnapshot(codec services.MapCodec, snapshot *models.TripSnapshot) (models.TripStats, []models.MemberStats, []models.WalletStats, error) {
	t := snapshot.Trip
	totals, err := codec.Encode(t.CategoryTotals)
	if err != nil {
		return models.TripStats{}, nil, nil, err
	}
	ratios, err := codec.Encode(t.CategoryRatios)
	if err != nil {
		return models.TripStats{}, nil, nil, err
	}
	trip := models.TripStats{
		TripID:           t.TripID,
		TotalExpense:     t.TotalExpense,
		AverageExpense:   t.AverageExpense,
		MemberCount:      t.MemberCount,
		TransactionCount: t.TransactionCount,
		CategoryTotals:   totals,
		CategoryRatios:   ratios,
		UpdatedAt:        snapshot.ComputedAt,
	}

	members := make([]models.MemberStats, 0, len(snapshot.Members))
	for _, m := range snapshot.Members {
		byCategory, err := codec.Encode(m.ByCategory)
		if err != nil {
			return models.TripStats{}, nil, nil, err
		}
		members = append(members, models.MemberStats{
			TripID:      m.TripID,
			MemberID:    m.MemberID,
			MemberName:  m.MemberName,
			TotalAmount: m.TotalAmount,
			ByCategory:  byCategory,
			ShouldPay:   m.ShouldPay,
			Balance:     m.Balance,
			UpdatedAt:   snapshot.ComputedAt,
		})
	}

	wallets := make([]models.WalletStats, 0, len(snapshot.Wallets))
	for _, w := range snapshot.Wallets {
		byMember, err := codec.Encode(w.BalanceByMember)
		if err != nil {
			return models.TripStats{}, nil, nil, err
		}
		wallets = append(wallets, models.WalletStats{
			TripID:           w.TripID,
			WalletID:         w.WalletID,
			WalletName:       w.WalletName,
			BalanceByMember:  byMember,
			TotalBalance:     w.TotalBalance,
			TransactionCount: w.TransactionCount,
			TotalDeposited:   w.TotalDeposited,
			TotalSpent:       w.TotalSpent,
			Remaining:        w.Remaining,
			UpdatedAt:        snapshot.ComputedAt,
		})
	}

	return trip, members, wallets, nil
}

func DecodeTripStats(codec services.MapCodec, row models.TripStats) (*models.TripAggregate, error) {
	totals, err := codec.Decode(row.CategoryTotals)
	if err != nil {
		return nil, err
	}
	ratios, err := codec.Decode(row.CategoryRatios)
	if err != nil {
		return nil, err
	}
	return &models.TripAggregate{
		TripID:           row.TripID,
		TotalExpense:     row.TotalExpense,
		AverageExpense:   row.AverageExpense,
		MemberCount:      row.MemberCount,
		TransactionCount: row.TransactionCount,
		CategoryTotals:   totals,
		CategoryRatios:   ratios,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

func DecodeMemberStats(codec services.MapCodec, rows []models.MemberStats) ([]models.MemberAggregate, error) {
	out := make([]models.MemberAggregate, 0, len(rows))
	for _, row := range rows {
		byCategory, err := codec.Decode(row.ByCategory)
		if err != nil {
			return nil, err
		}
		out = append(out, models.MemberAggregate{
			TripID:      row.TripID,
			MemberID:    row.MemberID,
			MemberName:  row.MemberName,
			TotalAmount: row.TotalAmount,
			ByCategory:  byCategory,
			ShouldPay:   row.ShouldPay,
			Balance:     row.Balance,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return out, nil
}

func DecodeWalletStats(codec services.MapCodec, rows []models.WalletStats) ([]models.WalletAggregate, error) {
	out := make([]models.WalletAggregate, 0, len(rows))
	for _, row := range rows {
		byMember, err := codec.Decode(row.BalanceByMember)
		if err != nil {
			return nil, err
		}
		out = append(out, models.WalletAggregate{
			TripID:           row.TripID,
			WalletID:         row.WalletID,
			WalletName:       row.WalletName,
			TransactionCount: row.TransactionCount,
			TotalSpent:       row.TotalSpent,
			TotalDeposited:   row.TotalDeposited,
			BalanceByMember:  byMember,
			TotalBalance:     row.TotalBalance,
			Remaining:        row.Remaining,
			UpdatedAt:        row.UpdatedAt,
		})
	}
	return out, nil
}
