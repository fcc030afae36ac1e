package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Staff struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"index;not null" json:"userId"`
	FirstName  string          `gorm:"size:100;not null" json:"firstName"`
	LastName   string          `gorm:"size:100;not null" json:"lastName"`
	Email      string          `gorm:"size:191" json:"email"`
	Phone      string          `gorm:"size:50" json:"phone"`
	Role       string          `gorm:"size:64" json:"role"`
	Department string          `gorm:"size:64" json:"department"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"hourlyRate"`
	HireDate   *time.Time      `json:"hireDate"`
	Active     bool            `gorm:"default:true" json:"active"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (Staff) TableName() string {
	return "staff"
}
