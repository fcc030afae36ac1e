package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TenantSetting holds the business profile and payment defaults of one tenant.
type TenantSetting struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Name     string `gorm:"size:255" json:"name"`
	Address  string `gorm:"type:text" json:"address"`
	Phone    string `gorm:"size:50" json:"phone"`
	Email    string `gorm:"size:150" json:"email"`
	Website  string `gorm:"size:255" json:"website"`
	Logo     string `gorm:"size:255" json:"logo"`
	Currency string `gorm:"size:3;default:USD" json:"currency"`

	PartialPaymentRatio  *decimal.Decimal `gorm:"type:decimal(5,4)" json:"partialPaymentRatio"`
	DefaultPaymentMethod string           `gorm:"size:32" json:"defaultPaymentMethod"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
