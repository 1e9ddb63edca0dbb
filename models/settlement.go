package models

import "github.com/google/uuid"

// ParticipantBalance is one input row of a settlement computation.
type ParticipantBalance struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Balance       float64   `json:"balance"`
}

// Transfer is a recommended payment. Transfers are computed on demand and
// never persisted.
type Transfer struct {
	FromID   uuid.UUID `json:"from_member_id"`
	FromName string    `json:"from_member_name,omitempty"`
	ToID     uuid.UUID `json:"to_member_id"`
	ToName   string    `json:"to_member_name,omitempty"`
	Amount   float64   `json:"amount"`
}

type ComputeSettlementsRequest struct {
	Balances []BalanceInput `json:"balances" binding:"dive"`
}

type BalanceInput struct {
	ParticipantID string  `json:"participant_id" binding:"required"`
	Balance       float64 `json:"balance"`
}
