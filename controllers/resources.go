package controllers

import (
	"encoding/json"
	"strings"
	"time"

	"opsdash-backend/models"
	"opsdash-backend/services"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type employerPayload struct {
	Name        string `json:"name" binding:"required,trimmed,max=255"`
	ContactName string `json:"contactName" binding:"max=255"`
	Email       string `json:"email" binding:"omitempty,email,max=191"`
	Phone       string `json:"phone" binding:"max=50"`
	Industry    string `json:"industry" binding:"max=100"`
	Address     string `json:"address"`
	Website     string `json:"website" binding:"omitempty,url,max=255"`
	Notes       string `json:"notes"`
}

func (p employerPayload) Build(userID uint) *models.Employer {
	return &models.Employer{
		UserID:      userID,
		Name:        strings.TrimSpace(p.Name),
		ContactName: p.ContactName,
		Email:       p.Email,
		Phone:       p.Phone,
		Industry:    p.Industry,
		Address:     p.Address,
		Website:     p.Website,
		Notes:       p.Notes,
	}
}

func (p employerPayload) Changes() map[string]any {
	return map[string]any{
		"name":         strings.TrimSpace(p.Name),
		"contact_name": p.ContactName,
		"email":        p.Email,
		"phone":        p.Phone,
		"industry":     p.Industry,
		"address":      p.Address,
		"website":      p.Website,
		"notes":        p.Notes,
	}
}

type retreatPayload struct {
	Name         string           `json:"name" binding:"required,trimmed,max=255"`
	Description  string           `json:"description"`
	Type         string           `json:"type" binding:"max=64"`
	Location     string           `json:"location" binding:"max=255"`
	StartDate    time.Time        `json:"startDate" binding:"required"`
	EndDate      time.Time        `json:"endDate" binding:"required,gtefield=StartDate"`
	Capacity     int              `json:"capacity" binding:"gte=0"`
	Price        decimal.Decimal  `json:"price" binding:"gte=0"`
	DepositRatio *decimal.Decimal `json:"depositRatio" binding:"omitempty,gt=0,lt=1"`
	Status       string           `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
}

func (p retreatPayload) status() string {
	if p.Status == "" {
		return models.RetreatStatusActive
	}
	return p.Status
}

func (p retreatPayload) Build(userID uint) *models.Retreat {
	r := &models.Retreat{
		UserID:       userID,
		Name:         strings.TrimSpace(p.Name),
		Description:  p.Description,
		Type:         p.Type,
		Location:     p.Location,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Capacity:     p.Capacity,
		Price:        models.Cents(p.Price),
		DepositRatio: p.DepositRatio,
		Status:       p.status(),
	}
	r.OccupancyRate = r.Occupancy()
	return r
}

// Changes leaves current_bookings alone; seats move only with bookings.
func (p retreatPayload) Changes() map[string]any {
	return map[string]any{
		"name":          strings.TrimSpace(p.Name),
		"description":   p.Description,
		"type":          p.Type,
		"location":      p.Location,
		"start_date":    p.StartDate,
		"end_date":      p.EndDate,
		"capacity":      p.Capacity,
		"price":         models.Cents(p.Price),
		"deposit_ratio": p.DepositRatio,
		"status":        p.status(),
	}
}

type guestPayload struct {
	BookingID           *uint      `json:"bookingId"`
	IsPrimary           bool       `json:"isPrimary"`
	FirstName           string     `json:"firstName" binding:"required,trimmed,max=100"`
	LastName            string     `json:"lastName" binding:"required,trimmed,max=100"`
	Email               string     `json:"email" binding:"omitempty,email,max=191"`
	Phone               string     `json:"phone" binding:"max=50"`
	DateOfBirth         *time.Time `json:"dateOfBirth"`
	Gender              string     `json:"gender" binding:"max=32"`
	Nationality         string     `json:"nationality" binding:"max=100"`
	EmergencyContact    string     `json:"emergencyContact" binding:"max=255"`
	DietaryRequirements []string   `json:"dietaryRequirements"`
	MedicalConditions   []string   `json:"medicalConditions"`
}

func jsonList(items []string) datatypes.JSON {
	if len(items) == 0 {
		return nil
	}
	raw, _ := json.Marshal(items)
	return datatypes.JSON(raw)
}

func (p guestPayload) guest(userID uint) models.Guest {
	return models.Guest{
		UserID:              userID,
		BookingID:           p.BookingID,
		IsPrimary:           p.IsPrimary,
		FirstName:           strings.TrimSpace(p.FirstName),
		LastName:            strings.TrimSpace(p.LastName),
		Email:               p.Email,
		Phone:               p.Phone,
		DateOfBirth:         p.DateOfBirth,
		Gender:              p.Gender,
		Nationality:         p.Nationality,
		EmergencyContact:    p.EmergencyContact,
		DietaryRequirements: jsonList(p.DietaryRequirements),
		MedicalConditions:   jsonList(p.MedicalConditions),
	}
}

func (p guestPayload) Build(userID uint) *models.Guest {
	g := p.guest(userID)
	return &g
}

func (p guestPayload) Changes() map[string]any {
	return map[string]any{
		"booking_id":           p.BookingID,
		"is_primary":           p.IsPrimary,
		"first_name":           strings.TrimSpace(p.FirstName),
		"last_name":            strings.TrimSpace(p.LastName),
		"email":                p.Email,
		"phone":                p.Phone,
		"date_of_birth":        p.DateOfBirth,
		"gender":               p.Gender,
		"nationality":          p.Nationality,
		"emergency_contact":    p.EmergencyContact,
		"dietary_requirements": jsonList(p.DietaryRequirements),
		"medical_conditions":   jsonList(p.MedicalConditions),
	}
}

func (p guestPayload) References() []services.Reference {
	return []services.Reference{{Model: &models.Booking{}, Label: "booking", ID: p.BookingID}}
}

type staffPayload struct {
	FirstName  string          `json:"firstName" binding:"required,trimmed,max=100"`
	LastName   string          `json:"lastName" binding:"required,trimmed,max=100"`
	Email      string          `json:"email" binding:"omitempty,email,max=191"`
	Phone      string          `json:"phone" binding:"max=50"`
	Role       string          `json:"role" binding:"max=64"`
	Department string          `json:"department" binding:"max=64"`
	HourlyRate decimal.Decimal `json:"hourlyRate" binding:"gte=0"`
	HireDate   *time.Time      `json:"hireDate"`
	Active     *bool           `json:"active"`
}

func (p staffPayload) active() bool {
	return p.Active == nil || *p.Active
}

func (p staffPayload) Build(userID uint) *models.Staff {
	return &models.Staff{
		UserID:     userID,
		FirstName:  strings.TrimSpace(p.FirstName),
		LastName:   strings.TrimSpace(p.LastName),
		Email:      p.Email,
		Phone:      p.Phone,
		Role:       p.Role,
		Department: p.Department,
		HourlyRate: models.Cents(p.HourlyRate),
		HireDate:   p.HireDate,
		Active:     p.active(),
	}
}

func (p staffPayload) Changes() map[string]any {
	return map[string]any{
		"first_name":  strings.TrimSpace(p.FirstName),
		"last_name":   strings.TrimSpace(p.LastName),
		"email":       p.Email,
		"phone":       p.Phone,
		"role":        p.Role,
		"department":  p.Department,
		"hourly_rate": models.Cents(p.HourlyRate),
		"hire_date":   p.HireDate,
		"active":      p.active(),
	}
}

type facilityPayload struct {
	Name        string `json:"name" binding:"required,trimmed,max=255"`
	Type        string `json:"type" binding:"max=64"`
	Location    string `json:"location" binding:"max=255"`
	Capacity    int    `json:"capacity" binding:"gte=0"`
	Status      string `json:"status" binding:"omitempty,oneof=AVAILABLE IN_USE MAINTENANCE CLOSED"`
	Description string `json:"description"`
}

func (p facilityPayload) status() string {
	if p.Status == "" {
		return "AVAILABLE"
	}
	return p.Status
}

func (p facilityPayload) Build(userID uint) *models.Facility {
	return &models.Facility{
		UserID:      userID,
		Name:        strings.TrimSpace(p.Name),
		Type:        p.Type,
		Location:    p.Location,
		Capacity:    p.Capacity,
		Status:      p.status(),
		Description: p.Description,
	}
}

func (p facilityPayload) Changes() map[string]any {
	return map[string]any{
		"name":        strings.TrimSpace(p.Name),
		"type":        p.Type,
		"location":    p.Location,
		"capacity":    p.Capacity,
		"status":      p.status(),
		"description": p.Description,
	}
}

type propertyPayload struct {
	Name        string          `json:"name" binding:"required,trimmed,max=255"`
	Type        string          `json:"type" binding:"max=64"`
	Address     string          `json:"address"`
	City        string          `json:"city" binding:"max=100"`
	Units       int             `json:"units" binding:"gte=0"`
	MonthlyRent decimal.Decimal `json:"monthlyRent" binding:"gte=0"`
	Status      string          `json:"status" binding:"omitempty,oneof=AVAILABLE OCCUPIED MAINTENANCE"`
}

func (p propertyPayload) status() string {
	if p.Status == "" {
		return "AVAILABLE"
	}
	return p.Status
}

func (p propertyPayload) Build(userID uint) *models.Property {
	return &models.Property{
		UserID:      userID,
		Name:        strings.TrimSpace(p.Name),
		Type:        p.Type,
		Address:     p.Address,
		City:        p.City,
		Units:       p.Units,
		MonthlyRent: models.Cents(p.MonthlyRent),
		Status:      p.status(),
	}
}

func (p propertyPayload) Changes() map[string]any {
	return map[string]any{
		"name":         strings.TrimSpace(p.Name),
		"type":         p.Type,
		"address":      p.Address,
		"city":         p.City,
		"units":        p.Units,
		"monthly_rent": models.Cents(p.MonthlyRent),
		"status":       p.status(),
	}
}

type appliancePayload struct {
	PropertyID      *uint      `json:"propertyId"`
	Name            string     `json:"name" binding:"required,trimmed,max=255"`
	Category        string     `json:"category" binding:"max=64"`
	Brand           string     `json:"brand" binding:"max=100"`
	ModelNumber     string     `json:"modelNumber" binding:"max=100"`
	SerialNumber    string     `json:"serialNumber" binding:"max=100"`
	Status          string     `json:"status" binding:"omitempty,oneof=WORKING NEEDS_SERVICE BROKEN RETIRED"`
	PurchaseDate    *time.Time `json:"purchaseDate"`
	WarrantyExpiry  *time.Time `json:"warrantyExpiry"`
	LastServiceDate *time.Time `json:"lastServiceDate"`
	Notes           string     `json:"notes"`
}

func (p appliancePayload) status() string {
	if p.Status == "" {
		return "WORKING"
	}
	return p.Status
}

func (p appliancePayload) Build(userID uint) *models.Appliance {
	return &models.Appliance{
		UserID:          userID,
		PropertyID:      p.PropertyID,
		Name:            strings.TrimSpace(p.Name),
		Category:        p.Category,
		Brand:           p.Brand,
		ModelNumber:     p.ModelNumber,
		SerialNumber:    p.SerialNumber,
		Status:          p.status(),
		PurchaseDate:    p.PurchaseDate,
		WarrantyExpiry:  p.WarrantyExpiry,
		LastServiceDate: p.LastServiceDate,
		Notes:           p.Notes,
	}
}

func (p appliancePayload) Changes() map[string]any {
	return map[string]any{
		"property_id":       p.PropertyID,
		"name":              strings.TrimSpace(p.Name),
		"category":          p.Category,
		"brand":             p.Brand,
		"model_number":      p.ModelNumber,
		"serial_number":     p.SerialNumber,
		"status":            p.status(),
		"purchase_date":     p.PurchaseDate,
		"warranty_expiry":   p.WarrantyExpiry,
		"last_service_date": p.LastServiceDate,
		"notes":             p.Notes,
	}
}

func (p appliancePayload) References() []services.Reference {
	return []services.Reference{{Model: &models.Property{}, Label: "property", ID: p.PropertyID}}
}

// Concrete controllers, one per tenant resource.
type (
	EmployerController  = CRUDController[models.Employer, employerPayload]
	RetreatController   = CRUDController[models.Retreat, retreatPayload]
	GuestController     = CRUDController[models.Guest, guestPayload]
	StaffController     = CRUDController[models.Staff, staffPayload]
	FacilityController  = CRUDController[models.Facility, facilityPayload]
	PropertyController  = CRUDController[models.Property, propertyPayload]
	ApplianceController = CRUDController[models.Appliance, appliancePayload]
)

func NewEmployerController(s Store[models.Employer]) *EmployerController {
	return NewCRUDController[models.Employer, employerPayload](s, "Employer")
}

func NewRetreatController(s Store[models.Retreat]) *RetreatController {
	return NewCRUDController[models.Retreat, retreatPayload](s, "Retreat")
}

func NewGuestController(s Store[models.Guest]) *GuestController {
	return NewCRUDController[models.Guest, guestPayload](s, "Guest")
}

func NewStaffController(s Store[models.Staff]) *StaffController {
	return NewCRUDController[models.Staff, staffPayload](s, "Staff")
}

func NewFacilityController(s Store[models.Facility]) *FacilityController {
	return NewCRUDController[models.Facility, facilityPayload](s, "Facility")
}

func NewPropertyController(s Store[models.Property]) *PropertyController {
	return NewCRUDController[models.Property, propertyPayload](s, "Property")
}

func NewApplianceController(s Store[models.Appliance]) *ApplianceController {
	return NewCRUDController[models.Appliance, appliancePayload](s, "Appliance")
}
