package models

import "time"

type Employer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	ContactName string    `gorm:"size:255" json:"contactName"`
	Email       string    `gorm:"size:191" json:"email"`
	Phone       string    `gorm:"size:50" json:"phone"`
	Industry    string    `gorm:"size:100" json:"industry"`
	Address     string    `gorm:"type:text" json:"address"`
	Website     string    `gorm:"size:255" json:"website"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
