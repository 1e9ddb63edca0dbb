package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KindDeposit = "deposit"
	KindExpense = "expense"
)

const (
	SplitEqual  = "equal"
	SplitRatio  = "ratio"
	SplitCustom = "custom"
)

type Transaction struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	TripID          uuid.UUID          `gorm:"type:uuid;index;not null" json:"trip_id"`
	WalletID        uuid.UUID          `gorm:"type:uuid;index;not null" json:"wallet_id"`
	CategoryID      *uuid.UUID         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Kind            string             `gorm:"column:transaction_type;not null;size:20" json:"transaction_type"` // deposit, expense
	Amount          float64            `gorm:"not null" json:"amount"`
	PayerID         *uuid.UUID         `gorm:"type:uuid" json:"payer_id,omitempty"`
	TransactionDate time.Time          `gorm:"type:date;not null" json:"transaction_date"`
	Note            string             `gorm:"column:remark" json:"remark,omitempty"`
	Splits          []TransactionSplit `gorm:"foreignKey:TransactionID" json:"splits,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TransactionSplit struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index:idx_transaction_member" json:"transaction_id"`
	MemberID      uuid.UUID `gorm:"type:uuid;not null;index;index:idx_transaction_member" json:"member_id"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Method        string    `gorm:"column:split_method;not null;size:20" json:"split_method"` // equal, ratio, custom
	CreatedAt     time.Time `json:"created_at"`
}

func (s *TransactionSplit) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Request structs
type CreateTransactionRequest struct {
	WalletID        string       `json:"wallet_id" binding:"required"`
	CategoryID      string       `json:"category_id"`
	Kind            string       `json:"transaction_type" binding:"required,oneof=deposit expense"`
	Amount          float64      `json:"amount" binding:"required,gt=0"`
	PayerID         string       `json:"payer_id"`
	TransactionDate string       `json:"transaction_date"` // YYYY-MM-DD
	Note            string       `json:"remark" binding:"max=500"`
	SplitMethod     string       `json:"split_method" binding:"omitempty,oneof=equal ratio custom"`
	Splits          []SplitInput `json:"splits"` // members for equal, weights for ratio, amounts for custom
}

type SplitInput struct {
	MemberID string  `json:"member_id" binding:"required"`
	Value    float64 `json:"value"`
}

// UpdateTransactionRequest only touches the fields that are set.
type UpdateTransactionRequest struct {
	CategoryID      *string      `json:"category_id"`
	Kind            *string      `json:"transaction_type" binding:"omitempty,oneof=deposit expense"`
	Amount          *float64     `json:"amount" binding:"omitempty,gt=0"`
	PayerID         *string      `json:"payer_id"`
	TransactionDate *string      `json:"transaction_date"`
	Note            *string      `json:"remark" binding:"omitempty,max=500"`
	SplitMethod     string       `json:"split_method" binding:"omitempty,oneof=equal ratio custom"`
	Splits          []SplitInput `json:"splits"`
}
