package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RetreatStatusDraft    = "DRAFT"
	RetreatStatusActive   = "ACTIVE"
	RetreatStatusArchived = "ARCHIVED"
)

// Retreat is the bookable product: a scheduled stay with a per-guest price.
type Retreat struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"index;not null" json:"userId"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Type            string          `gorm:"size:64" json:"type"`
	Location        string          `gorm:"size:255" json:"location"`
	StartDate       time.Time       `gorm:"column:start_date" json:"startDate"`
	EndDate         time.Time       `gorm:"column:end_date" json:"endDate"`
	Capacity        int             `gorm:"not null;default:0" json:"capacity"`
	CurrentBookings int             `gorm:"column:current_bookings;not null;default:0" json:"currentBookings"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	// DepositRatio overrides the tenant's partial payment ratio for this retreat.
	DepositRatio *decimal.Decimal `gorm:"column:deposit_ratio;type:decimal(5,4)" json:"depositRatio,omitempty"`
	Status       string           `gorm:"size:32;default:ACTIVE" json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`

	OccupancyRate float64 `gorm:"-" json:"occupancyRate"`
}

// Occupancy is currentBookings / capacity, or 0 for a retreat without capacity.
func (r *Retreat) Occupancy() float64 {
	if r.Capacity <= 0 {
		return 0
	}
	return float64(r.CurrentBookings) / float64(r.Capacity)
}

// SeatsLeft is negative when the retreat is overbooked.
func (r *Retreat) SeatsLeft() int {
	return r.Capacity - r.CurrentBookings
}

func (r *Retreat) AfterFind(tx *gorm.DB) error {
	r.OccupancyRate = r.Occupancy()
	return nil
}

func (r *Retreat) AfterCreate(tx *gorm.DB) error {
	r.OccupancyRate = r.Occupancy()
	return nil
}
