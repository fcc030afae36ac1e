package models

import "time"

// Facility is a space at a retreat venue (hall, spa, kitchen) that expenses can be attributed to.
type Facility struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Type        string    `gorm:"size:64" json:"type"`
	Location    string    `gorm:"size:255" json:"location"`
	Capacity    int       `gorm:"default:0" json:"capacity"`
	Status      string    `gorm:"size:32;default:AVAILABLE" json:"status"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Facility) TableName() string {
	return "facilities"
}
