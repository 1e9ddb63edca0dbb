package models

import (
	"time"

	"tripsplit-backend/utils"

	"github.com/google/uuid"
)

type TripAggregate struct {
	TripID           uuid.UUID          `json:"trip_id"`
	TotalExpense     float64            `json:"total_expense"`
	AverageExpense   float64            `json:"average_expense"`
	MemberCount      int                `json:"member_count"`
	TransactionCount int                `json:"transaction_count"`
	CategoryTotals   map[string]float64 `json:"category_totals"`
	CategoryRatios   map[string]float64 `json:"category_ratios"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type MemberAggregate struct {
	TripID      uuid.UUID          `json:"trip_id"`
	MemberID    uuid.UUID          `json:"member_id"`
	MemberName  string             `json:"member_name"`
	TotalAmount float64            `json:"total_amount"`
	ByCategory  map[string]float64 `json:"by_category"`
	ShouldPay   float64            `json:"should_pay"`
	Balance     float64            `json:"balance"` // total_amount - should_pay
	UpdatedAt   time.Time          `json:"updated_at"`
}

type WalletAggregate struct {
	TripID           uuid.UUID          `json:"trip_id"`
	WalletID         uuid.UUID          `json:"wallet_id"`
	WalletName       string             `json:"wallet_name"`
	TransactionCount int                `json:"transaction_count"`
	TotalSpent       float64            `json:"total_spent"`
	TotalDeposited   float64            `json:"total_deposited"`
	BalanceByMember  map[string]float64 `json:"balance_by_member"` // keyed by member id
	TotalBalance     float64            `json:"total_balance"`
	Remaining        float64            `json:"remaining"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// TripSnapshot is everything one recompute of a trip produces.
type TripSnapshot struct {
	Trip       TripAggregate     `json:"trip"`
	Members    []MemberAggregate `json:"members"`
	Wallets    []WalletAggregate `json:"wallets"`
	ComputedAt time.Time         `json:"computed_at"`
}

// Rounded returns a copy with every amount rounded to 2 decimals for display.
func (a TripAggregate) Rounded() TripAggregate {
	a.TotalExpense = utils.RoundToTwo(a.TotalExpense)
	a.AverageExpense = utils.RoundToTwo(a.AverageExpense)
	a.CategoryTotals = roundMap(a.CategoryTotals)
	a.CategoryRatios = roundMap(a.CategoryRatios)
	return a
}

func (a MemberAggregate) Rounded() MemberAggregate {
	a.TotalAmount = utils.RoundToTwo(a.TotalAmount)
	a.ShouldPay = utils.RoundToTwo(a.ShouldPay)
	a.Balance = utils.RoundToTwo(a.Balance)
	a.ByCategory = roundMap(a.ByCategory)
	return a
}

func (a WalletAggregate) Rounded() WalletAggregate {
	a.TotalSpent = utils.RoundToTwo(a.TotalSpent)
	a.TotalDeposited = utils.RoundToTwo(a.TotalDeposited)
	a.TotalBalance = utils.RoundToTwo(a.TotalBalance)
	a.Remaining = utils.RoundToTwo(a.Remaining)
	a.BalanceByMember = roundMap(a.BalanceByMember)
	return a
}

func roundMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = utils.RoundToTwo(v)
	}
	return out
}
