package services

import (
	"fmt"
	"log/slog"
	"math"

	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/google/uuid"
)

// SplitShare is one member's input to an allocation: ignored for equal,
// a weight for ratio, an amount for custom.
type SplitShare struct {
	MemberID uuid.UUID
	Value    float64
}

// AllocateSplits divides amount between members according to method.
// Equal and ratio allocations are rounded to cents and the rounding
// remainder goes to the first member, so they always add up to amount.
// Custom amounts are taken as given; a mismatch with amount is only logged.
func AllocateSplits(amount float64, method string, shares []SplitShare, logger *slog.Logger) ([]models.TransactionSplit, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %v", ErrComputation, amount)
	}
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no members to split between", ErrComputation)
	}

	splits := make([]models.TransactionSplit, 0, len(shares))

	switch method {
	case models.SplitEqual:
		perPerson := utils.RoundToTwo(amount / float64(len(shares)))
		remainder := utils.RoundToTwo(amount - perPerson*float64(len(shares)))

		for i, s := range shares {
			share := perPerson
			if i == 0 {
				share = utils.RoundToTwo(share + remainder)
			}
			splits = append(splits, models.TransactionSplit{
				MemberID: s.MemberID,
				Amount:   share,
				Method:   method,
			})
		}

	case models.SplitRatio:
		var totalWeight float64
		for _, s := range shares {
			if s.Value < 0 {
				return nil, fmt.Errorf("%w: ratio weight for member %s is negative", ErrComputation, s.MemberID)
			}
			totalWeight += s.Value
		}
		if totalWeight <= 0 {
			return nil, fmt.Errorf("%w: ratio weights must add up to more than 0", ErrComputation)
		}

		var allocated float64
		for _, s := range shares {
			share := utils.RoundToTwo(amount * s.Value / totalWeight)
			allocated += share
			splits = append(splits, models.TransactionSplit{
				MemberID: s.MemberID,
				Amount:   share,
				Method:   method,
			})
		}
		splits[0].Amount = utils.RoundToTwo(splits[0].Amount + amount - allocated)

	case models.SplitCustom:
		var total float64
		for _, s := range shares {
			if s.Value <= 0 {
				return nil, fmt.Errorf("%w: custom amount for member %s must be positive", ErrComputation, s.MemberID)
			}
			total += s.Value
			splits = append(splits, models.TransactionSplit{
				MemberID: s.MemberID,
				Amount:   s.Value,
				Method:   method,
			})
		}
		if math.Abs(total-amount) > settlementEpsilon && logger != nil {
			logger.Warn("custom splits do not add up to the transaction amount",
				"splits_total", total, "amount", amount)
		}

	default:
		return nil, fmt.Errorf("%w: invalid split method %q", ErrComputation, method)
	}

	return splits, nil
}
