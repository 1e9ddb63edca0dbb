package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet is a pooled fund shared by the members of a trip.
type Wallet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:100;index" json:"name"`
	TripID    uuid.UUID `gorm:"type:uuid;index;not null" json:"trip_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WalletMember holds one member's signed balance share in a wallet.
// There is at most one row per (wallet, member).
type WalletMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WalletID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:unique_wallet_member" json:"wallet_id"`
	MemberID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:unique_wallet_member" json:"member_id"`
	Balance   float64   `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (wm *WalletMember) BeforeCreate(tx *gorm.DB) error {
	if wm.ID == uuid.Nil {
		wm.ID = uuid.New()
	}
	return nil
}

// Request structs
type SetWalletMembersRequest struct {
	Members []WalletMemberInput `json:"members" binding:"required,dive"`
}

type WalletMemberInput struct {
	MemberID string  `json:"member_id" binding:"required"`
	Balance  float64 `json:"balance"`
}
