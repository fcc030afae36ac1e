package models

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
	BookingCancelled  BookingStatus = "CANCELLED"
	BookingWaitlisted BookingStatus = "WAITLISTED"
)

var BookingStatuses = []BookingStatus{
	BookingPending, BookingConfirmed, BookingCheckedIn,
	BookingCheckedOut, BookingCancelled, BookingWaitlisted,
}

// Moves staff can make through the status endpoint. CANCELLED is reached only
// through Cancel, see cancellable.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingWaitlisted},
	BookingWaitlisted: {BookingPending, BookingConfirmed},
	BookingConfirmed:  {BookingPending, BookingCheckedIn},
	BookingCheckedIn:  {BookingCheckedOut},
}

var cancellable = map[BookingStatus]bool{
	BookingPending:    true,
	BookingWaitlisted: true,
	BookingConfirmed:  true,
	BookingCheckedIn:  true,
}

func (s BookingStatus) Valid() bool {
	for _, v := range BookingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCheckedOut
}

// HoldsSeats reports whether a booking in this status counts against retreat capacity.
func (s BookingStatus) HoldsSeats() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn, BookingCheckedOut:
		return true
	}
	return false
}

// CanTransitionBooking is true for a same-status no-op and for every edge in the table.
func CanTransitionBooking(from, to BookingStatus) bool {
	if from == to {
		return from.Valid()
	}
	if to == BookingCancelled {
		return cancellable[from]
	}
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanCancel(from BookingStatus) bool {
	return cancellable[from]
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

var PaymentStatuses = []PaymentStatus{
	PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded, PaymentFailed,
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPartial, PaymentPaid, PaymentFailed},
	PaymentPartial: {PaymentPaid, PaymentRefunded, PaymentFailed},
	PaymentPaid:    {PaymentRefunded},
	PaymentFailed:  {PaymentPending, PaymentPartial, PaymentPaid},
}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransitionPayment allows staying in place so a PARTIAL payment can record another
// instalment and a repeated update stays harmless.
func CanTransitionPayment(from, to PaymentStatus) bool {
	if from == to {
		return from.Valid()
	}
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
