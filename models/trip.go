package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Trip struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null;size:100;index" json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `gorm:"type:date" json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	Status      string     `gorm:"default:planning;size:20" json:"status"` // planning, ongoing, finished
	Members     []Member   `gorm:"foreignKey:TripID" json:"members,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Member is a participant of exactly one trip.
type Member struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:50" json:"name"`
	TripID    uuid.UUID `gorm:"type:uuid;index;not null" json:"trip_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
