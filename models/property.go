package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property and Appliance belong to the property-management vertical.
type Property struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"userId"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Type        string          `gorm:"size:64" json:"type"`
	Address     string          `gorm:"type:text" json:"address"`
	City        string          `gorm:"size:100" json:"city"`
	Units       int             `gorm:"default:1" json:"units"`
	MonthlyRent decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"monthlyRent"`
	Status      string          `gorm:"size:32;default:AVAILABLE" json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Property) TableName() string {
	return "properties"
}

type Appliance struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"userId"`
	PropertyID      *uint      `gorm:"index" json:"propertyId"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	Category        string     `gorm:"size:64" json:"category"`
	Brand           string     `gorm:"size:100" json:"brand"`
	ModelNumber     string     `gorm:"size:100" json:"modelNumber"`
	SerialNumber    string     `gorm:"size:100" json:"serialNumber"`
	Status          string     `gorm:"size:32;default:WORKING" json:"status"`
	PurchaseDate    *time.Time `json:"purchaseDate"`
	WarrantyExpiry  *time.Time `json:"warrantyExpiry"`
	LastServiceDate *time.Time `json:"lastServiceDate"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
