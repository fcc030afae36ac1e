package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultPaymentMethod = "CARD"

// PaymentRecord is one entry of a booking's payment audit trail.
type PaymentRecord struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"index;not null" json:"userId"`
	BookingID      uint            `gorm:"index;not null" json:"bookingId"`
	PreviousStatus PaymentStatus   `gorm:"size:32" json:"previousStatus"`
	Status         PaymentStatus   `gorm:"size:32" json:"status"`
	PreviousAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"previousAmount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"paidAmount"`
	Difference     decimal.Decimal `gorm:"type:decimal(12,2)" json:"paymentDifference"`
	Method         string          `gorm:"size:32" json:"paymentMethod"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// PaymentUpdate is a requested payment-state change. A nil PaidAmount keeps the
// current amount, except for PAID (settles the total) and REFUNDED (returns everything).
type PaymentUpdate struct {
	Status     PaymentStatus
	PaidAmount *decimal.Decimal
	Method     *string
}

type PaymentOutcome struct {
	PreviousStatus PaymentStatus
	PreviousAmount decimal.Decimal
	Status         PaymentStatus
	PaidAmount     decimal.Decimal
	Method         string
	Difference     decimal.Decimal
	Changed        bool
}

// Record turns an applied outcome into its audit row.
func (o PaymentOutcome) Record(b *Booking) PaymentRecord {
	return PaymentRecord{
		UserID:         b.UserID,
		BookingID:      b.ID,
		PreviousStatus: o.PreviousStatus,
		Status:         o.Status,
		PreviousAmount: o.PreviousAmount,
		PaidAmount:     o.PaidAmount,
		Difference:     o.Difference,
		Method:         o.Method,
	}
}

// ReconcilePayment validates u against the booking and the payment machine and returns
// the resulting state without touching b. Overpayment is rejected.
func (b *Booking) ReconcilePayment(u PaymentUpdate, fallbackMethod string) (PaymentOutcome, error) {
	if b.Status == BookingCancelled {
		return PaymentOutcome{}, ErrBookingCancelled
	}
	if !u.Status.Valid() {
		return PaymentOutcome{}, Invalid("unknown payment status %q", u.Status)
	}
	if !CanTransitionPayment(b.PaymentStatus, u.Status) {
		return PaymentOutcome{}, &TransitionError{Machine: "payment", From: string(b.PaymentStatus), To: string(u.Status)}
	}

	total := b.TotalAmount
	paid := b.PaidAmount
	switch {
	case u.PaidAmount != nil:
		paid = Cents(*u.PaidAmount)
	case u.Status == PaymentPaid:
		paid = total
	case u.Status == PaymentRefunded:
		paid = decimal.Zero
	}

	if paid.IsNegative() {
		return PaymentOutcome{}, Invalid("paid amount cannot be negative")
	}
	if paid.GreaterThan(total) {
		return PaymentOutcome{}, Invalid("paid amount %s exceeds total %s", paid.StringFixed(2), total.StringFixed(2))
	}
	switch u.Status {
	case PaymentPaid:
		if !paid.Equal(total) {
			return PaymentOutcome{}, Invalid("PAID requires the full amount %s", total.StringFixed(2))
		}
	case PaymentPartial:
		if !paid.IsPositive() || !paid.LessThan(total) {
			return PaymentOutcome{}, Invalid("PARTIAL requires an amount between 0 and %s", total.StringFixed(2))
		}
	case PaymentRefunded:
		if !paid.IsZero() {
			return PaymentOutcome{}, Invalid("REFUNDED leaves nothing paid")
		}
	}

	current := ""
	if b.PaymentMethod != nil {
		current = *b.PaymentMethod
	}
	method := current
	if u.Method != nil && strings.TrimSpace(*u.Method) != "" {
		method = strings.ToUpper(strings.TrimSpace(*u.Method))
	}
	if method == "" {
		method = fallbackMethod
	}
	if method == "" {
		method = DefaultPaymentMethod
	}

	return PaymentOutcome{
		PreviousStatus: b.PaymentStatus,
		PreviousAmount: b.PaidAmount,
		Status:         u.Status,
		PaidAmount:     paid,
		Method:         method,
		Difference:     paid.Sub(b.PaidAmount),
		Changed:        u.Status != b.PaymentStatus || !paid.Equal(b.PaidAmount) || method != current,
	}, nil
}

// Apply writes an outcome onto the booking and refreshes the derived balance.
func (b *Booking) Apply(o PaymentOutcome) {
	b.PaymentStatus = o.Status
	b.PaidAmount = o.PaidAmount
	method := o.Method
	b.PaymentMethod = &method
	b.derive()
}

type QuickAction string

const (
	QuickFull    QuickAction = "FULL"
	QuickPartial QuickAction = "PARTIAL"
)

// QuickPayment expands a dashboard shortcut into a regular update. ratio is the share
// of the total collected by a partial payment and must lie strictly between 0 and 1.
func (b *Booking) QuickPayment(action QuickAction, ratio decimal.Decimal) (PaymentUpdate, error) {
	switch action {
	case QuickFull:
		amount := b.TotalAmount
		return PaymentUpdate{Status: PaymentPaid, PaidAmount: &amount}, nil
	case QuickPartial:
		if !ratio.IsPositive() || !ratio.LessThan(decimal.NewFromInt(1)) {
			return PaymentUpdate{}, Invalid("partial payment ratio %s out of range", ratio.String())
		}
		amount := Cents(b.TotalAmount.Mul(ratio))
		return PaymentUpdate{Status: PaymentPartial, PaidAmount: &amount}, nil
	}
	return PaymentUpdate{}, Invalid("unknown quick action %q", action)
}
