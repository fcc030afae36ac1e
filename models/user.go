package models

import "time"

// User is a tenant account. Every other row carries its ID in user_id.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:255" json:"fullName"`
	Email        string    `gorm:"uniqueIndex;size:191" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Vertical     string    `gorm:"size:32" json:"vertical"` // RETREATS or PROPERTIES
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	VerticalRetreats   = "RETREATS"
	VerticalProperties = "PROPERTIES"
)
