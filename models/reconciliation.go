package models

import "github.com/google/uuid"

type MemberDetail struct {
	MemberID       uuid.UUID `json:"member_id"`
	MemberName     string    `json:"member_name"`
	CurrentBalance float64   `json:"current_balance"`
	TotalDeposited float64   `json:"total_deposited"`
	TotalSpent     float64   `json:"total_spent"`
	ShareRatio     float64   `json:"share_ratio"`
}

// WalletReconciliation is returned for GET /api/reconciliation/wallets/:id
type WalletReconciliation struct {
	WalletID     uuid.UUID      `json:"wallet_id"`
	WalletName   string         `json:"wallet_name"`
	TotalBalance float64        `json:"total_balance"`
	MemberCount  int            `json:"member_count"`
	Members      []MemberDetail `json:"members"`
	Settlements  []Transfer     `json:"settlements"`
}

type TripSummaryMember struct {
	MemberID       uuid.UUID `json:"member_id"`
	MemberName     string    `json:"member_name"`
	TotalBalance   float64   `json:"total_balance"`
	TotalDeposited float64   `json:"total_deposited"`
	TotalSpent     float64   `json:"total_spent"`
}

// ReconciliationReport is returned for GET /api/reconciliation/trips/:id
type ReconciliationReport struct {
	TripID         uuid.UUID              `json:"trip_id"`
	TotalWallets   int                    `json:"total_wallets"`
	OverallBalance float64                `json:"overall_balance"`
	Wallets        []WalletReconciliation `json:"wallets"`
	TripSummary    []TripSummaryMember    `json:"trip_summary"`
}
