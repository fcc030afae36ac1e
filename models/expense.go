package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ExpenseStatus string

const (
	ExpensePending   ExpenseStatus = "PENDING"
	ExpenseApproved  ExpenseStatus = "APPROVED"
	ExpenseRejected  ExpenseStatus = "REJECTED"
	ExpenseProcessed ExpenseStatus = "PROCESSED"
)

var expenseTransitions = map[ExpenseStatus][]ExpenseStatus{
	ExpensePending:  {ExpenseApproved, ExpenseRejected},
	ExpenseApproved: {ExpenseProcessed, ExpenseRejected},
	ExpenseRejected: {ExpensePending},
}

func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpensePending, ExpenseApproved, ExpenseRejected, ExpenseProcessed:
		return true
	}
	return false
}

// Committed expenses count against revenue in reports.
func (s ExpenseStatus) Committed() bool {
	return s == ExpenseApproved || s == ExpenseProcessed
}

func CanTransitionExpense(from, to ExpenseStatus) bool {
	for _, next := range expenseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Expense is optionally attributed to a retreat, a facility and a booking. Approving
// or processing it has no effect on those records.
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"userId"`
	Category    string          `gorm:"size:64;index;not null" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	Vendor      string          `gorm:"size:255" json:"vendor"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	ExpenseDate time.Time       `gorm:"column:expense_date;index" json:"expenseDate"`
	Status      ExpenseStatus   `gorm:"size:32;index;not null" json:"status"`

	RetreatID  *uint `gorm:"index" json:"retreatId"`
	FacilityID *uint `gorm:"index" json:"facilityId"`
	BookingID  *uint `gorm:"index" json:"bookingId"`

	ApprovedBy  string         `gorm:"size:255" json:"approvedBy,omitempty"`
	ReviewedAt  *time.Time     `json:"reviewedAt,omitempty"`
	ProcessedAt *time.Time     `json:"processedAt,omitempty"`
	Tags        datatypes.JSON `json:"tags,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Review moves the expense along its status machine on behalf of actor.
func (e *Expense) Review(to ExpenseStatus, actor string, now time.Time) error {
	if !to.Valid() {
		return Invalid("unknown expense status %q", to)
	}
	if !CanTransitionExpense(e.Status, to) {
		return &TransitionError{Machine: "expense", From: string(e.Status), To: string(to)}
	}
	switch to {
	case ExpenseApproved, ExpenseRejected:
		e.ApprovedBy = actor
		e.ReviewedAt = &now
	case ExpenseProcessed:
		e.ProcessedAt = &now
	case ExpensePending:
		e.ApprovedBy = ""
		e.ReviewedAt = nil
	}
	e.Status = to
	return nil
}
