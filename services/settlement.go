package services

import (
	"math"
	"sort"

	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/google/uuid"
)

// Differences within this band of the average settle nothing.
const settlementEpsilon = 0.01

type settlementParty struct {
	id     uuid.UUID
	amount float64
}

// ComputeSettlements turns participant balances into a minimal list of
// transfers that levels everyone to the average balance.
//
// Debtors and creditors are each sorted by the size of their difference,
// largest first, keeping input order on ties, and matched greedily. All
// arithmetic runs at full precision; only emitted amounts are rounded to two
// decimals. Balances that do not sum to zero are not corrected: the average
// is taken from the actual sum.
func ComputeSettlements(balances []models.ParticipantBalance) []models.Transfer {
	transfers := []models.Transfer{}
	n := len(balances)
	if n < 2 {
		return transfers
	}

	var total float64
	for _, b := range balances {
		total += b.Balance
	}
	average := total / float64(n)

	var debtors, creditors []settlementParty
	for _, b := range balances {
		diff := b.Balance - average
		if diff < -settlementEpsilon {
			debtors = append(debtors, settlementParty{b.ParticipantID, math.Abs(diff)})
		} else if diff > settlementEpsilon {
			creditors = append(creditors, settlementParty{b.ParticipantID, diff})
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := math.Min(debtors[i].amount, creditors[j].amount)

		if amount > settlementEpsilon {
			transfers = append(transfers, models.Transfer{
				FromID: debtors[i].id,
				ToID:   creditors[j].id,
				Amount: utils.RoundToTwo(amount),
			})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		if debtors[i].amount < settlementEpsilon {
			i++
		}
		if creditors[j].amount < settlementEpsilon {
			j++
		}
	}

	return transfers
}
