package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsdash-backend/metrics"
	"opsdash-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingService owns the booking lifecycle: creation against retreat capacity,
// status moves, cancellation and payment reconciliation. Every mutation locks the
// booking row, scoped by tenant, inside one transaction.
type BookingService struct {
	DB *gorm.DB
	// Ratio is the server-wide share collected by a partial quick payment.
	Ratio          decimal.Decimal
	FallbackMethod string
	Now            func() time.Time
}

func NewBookingService(db *gorm.DB, ratio decimal.Decimal, fallbackMethod string) *BookingService {
	return &BookingService{DB: db, Ratio: ratio, FallbackMethod: fallbackMethod, Now: time.Now}
}

type BookingFilter struct {
	Status        string
	PaymentStatus string
	RetreatID     *uint
	// Query matches guest first name, last name or email.
	Query string
}

type NewBooking struct {
	RetreatID       uint
	CheckInDate     time.Time
	CheckOutDate    time.Time
	GuestCount      int
	SpecialRequests string
	PaymentMethod   *string
	AllowWaitlist   bool
	Guests          []models.Guest
}

// PaymentResult is the booking after a payment update together with the audited
// difference between its previous and new paid amount. When Noop is set the update
// changed nothing and Difference is the one of the latest audit record.
type PaymentResult struct {
	Booking    *models.Booking
	Difference decimal.Decimal
	Noop       bool
}

func recordPayment(res *PaymentResult) {
	metrics.RecordPaymentUpdate(string(res.Booking.PaymentStatus), !res.Noop)
}

func (s *BookingService) List(ctx context.Context, userID uint, f BookingFilter) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).
		Preload("Guests").
		Preload("Retreat").
		Scopes(scopeTenant(userID))

	if f.Status != "" {
		st := models.BookingStatus(strings.ToUpper(f.Status))
		if !st.Valid() {
			return nil, models.Invalid("unknown booking status %q", f.Status)
		}
		q = q.Where("status = ?", st)
	}
	if f.PaymentStatus != "" {
		ps := models.PaymentStatus(strings.ToUpper(f.PaymentStatus))
		if !ps.Valid() {
			return nil, models.Invalid("unknown payment status %q", f.PaymentStatus)
		}
		q = q.Where("payment_status = ?", ps)
	}
	if f.RetreatID != nil {
		q = q.Where("retreat_id = ?", *f.RetreatID)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + term + "%"
		guests := s.DB.Model(&models.Guest{}).
			Select("booking_id").
			Where("user_id = ? AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)", userID, like, like, like)
		q = q.Where("id IN (?)", guests)
	}

	var out []models.Booking
	if err := q.Order("check_in_date DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

func (s *BookingService) Get(ctx context.Context, userID, id uint) (*models.Booking, error) {
	var b models.Booking
	err := s.DB.WithContext(ctx).
		Preload("Guests").
		Preload("Retreat").
		Scopes(scopeOwned(userID, id)).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound("Booking")
		}
		return nil, fmt.Errorf("find booking %d: %w", id, err)
	}
	return &b, nil
}

// Create books guestCount seats on a retreat of the tenant. totalAmount is fixed here
// from the retreat price. A full retreat either waitlists the booking or refuses it.
func (s *BookingService) Create(ctx context.Context, userID uint, in NewBooking) (*models.Booking, error) {
	if in.GuestCount < 1 {
		return nil, models.Invalid("guestCount must be at least 1")
	}
	if !in.CheckOutDate.After(in.CheckInDate) {
		return nil, models.Invalid("checkOutDate must be after checkInDate")
	}

	var booking models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var retreat models.Retreat
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(scopeOwned(userID, in.RetreatID)).
			First(&retreat).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Invalid("retreat %d does not exist", in.RetreatID)
			}
			return fmt.Errorf("lock retreat: %w", err)
		}

		status := models.BookingPending
		if retreat.Capacity > 0 && retreat.SeatsLeft() < in.GuestCount {
			if !in.AllowWaitlist {
				return fmt.Errorf("%w: %d seats left on %s", models.ErrCapacityExceeded, max(retreat.SeatsLeft(), 0), retreat.Name)
			}
			status = models.BookingWaitlisted
		}

		var method *string
		if in.PaymentMethod != nil && strings.TrimSpace(*in.PaymentMethod) != "" {
			m := strings.ToUpper(strings.TrimSpace(*in.PaymentMethod))
			method = &m
		}

		booking = models.Booking{
			UserID:          userID,
			RetreatID:       retreat.ID,
			CheckInDate:     in.CheckInDate,
			CheckOutDate:    in.CheckOutDate,
			GuestCount:      in.GuestCount,
			TotalAmount:     models.Cents(retreat.Price.Mul(decimal.NewFromInt(int64(in.GuestCount)))),
			PaidAmount:      decimal.Zero,
			PaymentMethod:   method,
			Status:          status,
			PaymentStatus:   models.PaymentPending,
			SpecialRequests: in.SpecialRequests,
			Guests:          ownGuests(userID, in.Guests),
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		if status.HoldsSeats() {
			if err := bumpSeats(tx, &retreat, in.GuestCount); err != nil {
				return err
			}
		}
		booking.Retreat = &retreat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ownGuests stamps the tenant on every guest and makes the first one primary when the
// caller marked none.
func ownGuests(userID uint, guests []models.Guest) []models.Guest {
	if len(guests) == 0 {
		return nil
	}
	out := make([]models.Guest, len(guests))
	primary := false
	for i, g := range guests {
		g.ID = 0
		g.UserID = userID
		g.BookingID = nil
		if g.IsPrimary {
			if primary {
				g.IsPrimary = false
			}
			primary = true
		}
		out[i] = g
	}
	if !primary {
		out[0].IsPrimary = true
	}
	return out
}

func (s *BookingService) UpdateStatus(ctx context.Context, userID, id uint, to models.BookingStatus) (*models.Booking, error) {
	var (
		b    *models.Booking
		from models.BookingStatus
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = lockBooking(tx, userID, id); err != nil {
			return err
		}
		from = b.Status
		if from == models.BookingCancelled {
			return models.ErrBookingCancelled
		}
		if from == to {
			return nil
		}
		if err := b.ApplyStatus(to, s.now()); err != nil {
			return err
		}
		if err := adjustSeats(tx, userID, b.RetreatID, models.SeatDelta(from, to, b.GuestCount)); err != nil {
			return err
		}
		return updateBooking(tx, b, from, map[string]any{
			"status":         b.Status,
			"checked_in_at":  b.CheckedInAt,
			"checked_out_at": b.CheckedOutAt,
		})
	})
	if err != nil {
		return nil, err
	}
	if from != to {
		metrics.RecordBookingTransition(string(from), string(to))
	}
	return b, nil
}

func (s *BookingService) Cancel(ctx context.Context, userID, id uint, reason string) (*models.Booking, error) {
	var (
		b    *models.Booking
		from models.BookingStatus
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = lockBooking(tx, userID, id); err != nil {
			return err
		}
		from = b.Status
		if err := b.Cancel(strings.TrimSpace(reason), s.now()); err != nil {
			return err
		}
		if err := adjustSeats(tx, userID, b.RetreatID, models.SeatDelta(from, b.Status, b.GuestCount)); err != nil {
			return err
		}
		return updateBooking(tx, b, from, map[string]any{
			"status":              b.Status,
			"cancellation_reason": b.CancellationReason,
			"cancelled_at":        b.CancelledAt,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordBookingTransition(string(from), string(models.BookingCancelled))
	return b, nil
}

func (s *BookingService) UpdatePayment(ctx context.Context, userID, id uint, u models.PaymentUpdate) (*PaymentResult, error) {
	var res *PaymentResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, userID, id)
		if err != nil {
			return err
		}
		res, err = s.applyPayment(tx, b, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	recordPayment(res)
	return res, nil
}

// QuickPayment settles the booking in full or collects the partial share. The share
// is the retreat's deposit ratio, else the tenant's, else the server default.
func (s *BookingService) QuickPayment(ctx context.Context, userID, id uint, action models.QuickAction) (*PaymentResult, error) {
	var res *PaymentResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, userID, id)
		if err != nil {
			return err
		}
		if b.Status == models.BookingCancelled {
			return models.ErrBookingCancelled
		}

		ratio := s.Ratio
		if action == models.QuickPartial {
			if ratio, err = s.partialRatio(tx, b); err != nil {
				return err
			}
		}
		u, err := b.QuickPayment(action, ratio)
		if err != nil {
			return err
		}
		res, err = s.applyPayment(tx, b, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	recordPayment(res)
	return res, nil
}

// Payments lists the audit trail of a booking, newest first.
func (s *BookingService) Payments(ctx context.Context, userID, id uint) ([]models.PaymentRecord, error) {
	db := s.DB.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Booking{}).Scopes(scopeOwned(userID, id)).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("check booking %d: %w", id, err)
	}
	if n == 0 {
		return nil, models.NotFound("Booking")
	}

	var out []models.PaymentRecord
	err := db.Where("booking_id = ? AND user_id = ?", id, userID).
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

// applyPayment reconciles u against the locked booking. An update that changes nothing
// writes nothing and reports the difference of the latest audit record, so a repeated
// request never doubles the recorded payment.
func (s *BookingService) applyPayment(tx *gorm.DB, b *models.Booking, u models.PaymentUpdate) (*PaymentResult, error) {
	fallback := s.FallbackMethod
	if b.PaymentMethod == nil && (u.Method == nil || strings.TrimSpace(*u.Method) == "") {
		setting, err := tenantSetting(tx, b.UserID)
		if err != nil {
			return nil, err
		}
		if setting != nil && setting.DefaultPaymentMethod != "" {
			fallback = setting.DefaultPaymentMethod
		}
	}

	outcome, err := b.ReconcilePayment(u, fallback)
	if err != nil {
		return nil, err
	}

	if !outcome.Changed {
		var last models.PaymentRecord
		err := tx.Where("booking_id = ? AND user_id = ?", b.ID, b.UserID).
			Order("id DESC").
			Limit(1).
			Find(&last).Error
		if err != nil {
			return nil, fmt.Errorf("latest payment record: %w", err)
		}
		return &PaymentResult{Booking: b, Difference: last.Difference, Noop: true}, nil
	}

	from := b.Status
	b.Apply(outcome)
	err = updateBooking(tx, b, from, map[string]any{
		"payment_status": b.PaymentStatus,
		"paid_amount":    b.PaidAmount,
		"payment_method": b.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	rec := outcome.Record(b)
	if err := tx.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return &PaymentResult{Booking: b, Difference: outcome.Difference}, nil
}

func (s *BookingService) partialRatio(tx *gorm.DB, b *models.Booking) (decimal.Decimal, error) {
	var retreat models.Retreat
	err := tx.Select("id", "deposit_ratio").
		Scopes(scopeOwned(b.UserID, b.RetreatID)).
		Limit(1).
		Find(&retreat).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("load retreat: %w", err)
	}
	if retreat.DepositRatio != nil {
		return *retreat.DepositRatio, nil
	}

	setting, err := tenantSetting(tx, b.UserID)
	if err != nil {
		return decimal.Zero, err
	}
	if setting != nil && setting.PartialPaymentRatio != nil {
		return *setting.PartialPaymentRatio, nil
	}
	return s.Ratio, nil
}

func (s *BookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func lockBooking(tx *gorm.DB, userID, id uint) (*models.Booking, error) {
	var b models.Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(scopeOwned(userID, id)).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound("Booking")
		}
		return nil, fmt.Errorf("lock booking %d: %w", id, err)
	}
	return &b, nil
}

// updateBooking writes changes only while the row still has the status it was read
// with; zero matched rows means it moved or left the tenant underneath us.
func updateBooking(tx *gorm.DB, b *models.Booking, from models.BookingStatus, changes map[string]any) error {
	res := tx.Model(&models.Booking{}).
		Where("id = ? AND user_id = ? AND status = ?", b.ID, b.UserID, from).
		Updates(changes)
	if res.Error != nil {
		return fmt.Errorf("update booking %d: %w", b.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("Booking")
	}
	return nil
}

// adjustSeats moves retreat.currentBookings by delta. Taking seats is checked against
// capacity; releasing never is.
func adjustSeats(tx *gorm.DB, userID, retreatID uint, delta int) error {
	if delta == 0 {
		return nil
	}
	var retreat models.Retreat
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(scopeOwned(userID, retreatID)).
		First(&retreat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NotFound("Retreat")
		}
		return fmt.Errorf("lock retreat: %w", err)
	}
	if delta > 0 && retreat.Capacity > 0 && retreat.SeatsLeft() < delta {
		return fmt.Errorf("%w: %d seats left on %s", models.ErrCapacityExceeded, max(retreat.SeatsLeft(), 0), retreat.Name)
	}
	return bumpSeats(tx, &retreat, delta)
}

func bumpSeats(tx *gorm.DB, retreat *models.Retreat, delta int) error {
	expr := gorm.Expr("GREATEST(current_bookings + ?, 0)", delta)
	if err := tx.Model(&models.Retreat{}).Where("id = ?", retreat.ID).UpdateColumn("current_bookings", expr).Error; err != nil {
		return fmt.Errorf("update retreat seats: %w", err)
	}
	retreat.CurrentBookings = max(retreat.CurrentBookings+delta, 0)
	retreat.OccupancyRate = retreat.Occupancy()
	return nil
}

func tenantSetting(tx *gorm.DB, userID uint) (*models.TenantSetting, error) {
	var setting models.TenantSetting
	res := tx.Where("user_id = ?", userID).Limit(1).Find(&setting)
	if res.Error != nil {
		return nil, fmt.Errorf("load tenant settings: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &setting, nil
}
