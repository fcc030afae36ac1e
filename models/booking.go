package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID    uint `gorm:"index;not null" json:"userId"`
	RetreatID uint `gorm:"index;not null;column:retreat_id" json:"retreatId"`

	CheckInDate  time.Time `gorm:"column:check_in_date" json:"checkInDate"`
	CheckOutDate time.Time `gorm:"column:check_out_date" json:"checkOutDate"`
	GuestCount   int       `gorm:"column:guest_count;not null;default:1" json:"guestCount"`

	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null" json:"totalAmount"`
	PaidAmount    decimal.Decimal `gorm:"column:paid_amount;type:decimal(12,2);not null;default:0" json:"paidAmount"`
	PaymentMethod *string         `gorm:"column:payment_method;size:32" json:"paymentMethod"`

	Status        BookingStatus `gorm:"column:status;size:32;index;not null" json:"status"`
	PaymentStatus PaymentStatus `gorm:"column:payment_status;size:32;index;not null" json:"paymentStatus"`

	SpecialRequests    string     `gorm:"column:special_requests;type:text" json:"specialRequests"`
	CancellationReason string     `gorm:"column:cancellation_reason;size:255" json:"cancellationReason,omitempty"`
	CheckedInAt        *time.Time `gorm:"column:checked_in_at" json:"checkedInAt,omitempty"`
	CheckedOutAt       *time.Time `gorm:"column:checked_out_at" json:"checkedOutAt,omitempty"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Retreat *Retreat `gorm:"foreignKey:RetreatID;references:ID" json:"retreat,omitempty"`
	Guests  []Guest  `gorm:"foreignKey:BookingID" json:"guests,omitempty"`

	RemainingBalance decimal.Decimal `gorm:"-" json:"remainingBalance"`
}

// Remaining is totalAmount - paidAmount. It is never stored.
func (b *Booking) Remaining() decimal.Decimal {
	return b.TotalAmount.Sub(b.PaidAmount)
}

func (b *Booking) derive() {
	b.RemainingBalance = b.Remaining()
}

func (b *Booking) AfterFind(tx *gorm.DB) error {
	b.derive()
	return nil
}

func (b *Booking) AfterCreate(tx *gorm.DB) error {
	b.derive()
	return nil
}

func (b *Booking) PrimaryGuest() *Guest {
	for i := range b.Guests {
		if b.Guests[i].IsPrimary {
			return &b.Guests[i]
		}
	}
	if len(b.Guests) > 0 {
		return &b.Guests[0]
	}
	return nil
}

// ApplyStatus moves the booking along the status machine and stamps the lifecycle
// timestamps. Cancellation goes through Cancel instead.
func (b *Booking) ApplyStatus(to BookingStatus, now time.Time) error {
	if b.Status == BookingCancelled {
		return ErrBookingCancelled
	}
	if !to.Valid() {
		return Invalid("unknown booking status %q", to)
	}
	if to == BookingCancelled || !CanTransitionBooking(b.Status, to) {
		return &TransitionError{Machine: "booking", From: string(b.Status), To: string(to)}
	}
	switch to {
	case BookingCheckedIn:
		if b.CheckedInAt == nil {
			b.CheckedInAt = &now
		}
	case BookingCheckedOut:
		b.CheckedOutAt = &now
	}
	b.Status = to
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status == BookingCancelled {
		return ErrBookingCancelled
	}
	if !CanCancel(b.Status) {
		return &TransitionError{Machine: "booking", From: string(b.Status), To: string(BookingCancelled)}
	}
	b.Status = BookingCancelled
	b.CancellationReason = reason
	b.CancelledAt = &now
	return nil
}

// SeatDelta is how retreat.currentBookings must change when the booking moves from one
// status to another.
func SeatDelta(from, to BookingStatus, guests int) int {
	switch {
	case from.HoldsSeats() && !to.HoldsSeats():
		return -guests
	case !from.HoldsSeats() && to.HoldsSeats():
		return guests
	}
	return 0
}
