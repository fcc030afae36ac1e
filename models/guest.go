package models

import (
	"time"

	"gorm.io/datatypes"
)

// Guest is a person attached to a booking. The primary guest made the reservation;
// additional guests travel with them.
type Guest struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID    uint  `gorm:"index;not null" json:"userId"`
	BookingID *uint `gorm:"index;column:booking_id" json:"bookingId"`

	IsPrimary        bool       `gorm:"column:is_primary;default:false" json:"isPrimary"`
	FirstName        string     `gorm:"size:100" json:"firstName"`
	LastName         string     `gorm:"size:100" json:"lastName"`
	Email            string     `gorm:"size:191;index" json:"email"`
	Phone            string     `gorm:"size:50" json:"phone"`
	DateOfBirth      *time.Time `json:"dateOfBirth"`
	Gender           string     `gorm:"size:32" json:"gender"`
	Nationality      string     `gorm:"size:100" json:"nationality"`
	EmergencyContact string     `gorm:"size:255" json:"emergencyContact"`

	// Free-form lists coming from the intake form, e.g. ["vegan", "nut allergy"].
	DietaryRequirements datatypes.JSON `gorm:"column:dietary_requirements" json:"dietaryRequirements,omitempty"`
	MedicalConditions   datatypes.JSON `gorm:"column:medical_conditions" json:"medicalConditions,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (g Guest) FullName() string {
	switch {
	case g.FirstName == "":
		return g.LastName
	case g.LastName == "":
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}
