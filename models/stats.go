package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Materialized rows. Map-valued fields are stored as encoded text and only
// decoded by the stats repository.

type TripStats struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	TripID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TotalExpense     float64   `gorm:"default:0"`
	AverageExpense   float64   `gorm:"default:0"`
	MemberCount      int       `gorm:"default:0"`
	TransactionCount int       `gorm:"default:0"`
	CategoryTotals   string    `gorm:"type:text"`
	CategoryRatios   string    `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time `gorm:"index"`
}

func (s *TripStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type MemberStats struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TripID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ix_member_stats_trip_member"`
	MemberID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ix_member_stats_trip_member"`
	MemberName  string    `gorm:"size:50"`
	TotalAmount float64   `gorm:"default:0"`
	ByCategory  string    `gorm:"type:text"`
	ShouldPay   float64   `gorm:"default:0"`
	Balance     float64   `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s *MemberStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type WalletStats struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	TripID           uuid.UUID `gorm:"type:uuid;not null;index"`
	WalletID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	WalletName       string    `gorm:"size:100"`
	BalanceByMember  string    `gorm:"type:text"`
	TotalBalance     float64   `gorm:"default:0"`
	TransactionCount int       `gorm:"default:0"`
	TotalDeposited   float64   `gorm:"default:0"`
	TotalSpent       float64   `gorm:"default:0"`
	Remaining        float64   `gorm:"default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time `gorm:"index"`
}

func (s *WalletStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
