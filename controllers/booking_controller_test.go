package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"opsdash-backend/models"
	"opsdash-backend/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) List(ctx context.Context, userID uint, f services.BookingFilter) ([]models.Booking, error) {
	args := m.Called(ctx, userID, f)
	out, _ := args.Get(0).([]models.Booking)
	return out, args.Error(1)
}

func (m *mockBookingStore) Get(ctx context.Context, userID, id uint) (*models.Booking, error) {
	args := m.Called(ctx, userID, id)
	out, _ := args.Get(0).(*models.Booking)
	return out, args.Error(1)
}

func (m *mockBookingStore) Create(ctx context.Context, userID uint, in services.NewBooking) (*models.Booking, error) {
	args := m.Called(ctx, userID, in)
	out, _ := args.Get(0).(*models.Booking)
	return out, args.Error(1)
}

func (m *mockBookingStore) UpdateStatus(ctx context.Context, userID, id uint, to models.BookingStatus) (*models.Booking, error) {
	args := m.Called(ctx, userID, id, to)
	out, _ := args.Get(0).(*models.Booking)
	return out, args.Error(1)
}

func (m *mockBookingStore) Cancel(ctx context.Context, userID, id uint, reason string) (*models.Booking, error) {
	args := m.Called(ctx, userID, id, reason)
	out, _ := args.Get(0).(*models.Booking)
	return out, args.Error(1)
}

func (m *mockBookingStore) UpdatePayment(ctx context.Context, userID, id uint, u models.PaymentUpdate) (*services.PaymentResult, error) {
	args := m.Called(ctx, userID, id, u)
	out, _ := args.Get(0).(*services.PaymentResult)
	return out, args.Error(1)
}

func (m *mockBookingStore) QuickPayment(ctx context.Context, userID, id uint, action models.QuickAction) (*services.PaymentResult, error) {
	args := m.Called(ctx, userID, id, action)
	out, _ := args.Get(0).(*services.PaymentResult)
	return out, args.Error(1)
}

func (m *mockBookingStore) Payments(ctx context.Context, userID, id uint) ([]models.PaymentRecord, error) {
	args := m.Called(ctx, userID, id)
	out, _ := args.Get(0).([]models.PaymentRecord)
	return out, args.Error(1)
}

func bookingRouter(store BookingStore) http.Handler {
	r := newTestRouter()
	NewBookingController(store).Register(r.Group("/api/bridge-retreats/bookings"))
	return r
}

func paidBooking(total, paid string, ps models.PaymentStatus) *models.Booking {
	b := &models.Booking{
		ID:            11,
		UserID:        7,
		Status:        models.BookingConfirmed,
		PaymentStatus: ps,
		TotalAmount:   decimal.RequireFromString(total),
		PaidAmount:    decimal.RequireFromString(paid),
	}
	b.RemainingBalance = b.Remaining()
	return b
}

func TestUpdatePaymentReturnsDifference(t *testing.T) {
	store := new(mockBookingStore)
	r := bookingRouter(store)

	store.On("UpdatePayment", mock.Anything, uint(7), uint(11), mock.MatchedBy(func(u models.PaymentUpdate) bool {
		return u.Status == models.PaymentPartial && u.PaidAmount != nil && u.PaidAmount.Equal(decimal.NewFromInt(500)) &&
			u.Method != nil && *u.Method == "cash"
	})).Return(&services.PaymentResult{
		Booking:    paidBooking("1000", "500", models.PaymentPartial),
		Difference: decimal.NewFromInt(500),
	}, nil).Once()

	w := doJSON(r, http.MethodPut, "/api/bridge-retreats/bookings/11/payment", 7,
		`{"paymentStatus":"partial","paidAmount":500,"paymentMethod":"cash"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.EqualValues(t, 500, got["paymentDifference"])
	assert.EqualValues(t, 500, got["remainingBalance"])
	assert.EqualValues(t, 500, got["paidAmount"])
	assert.Equal(t, "PARTIAL", got["paymentStatus"])
	assert.Equal(t, false, got["noop"])
	store.AssertExpectations(t)
}

func TestUnchangedPaymentIsFlaggedNoop(t *testing.T) {
	store := new(mockBookingStore)
	r := bookingRouter(store)

	store.On("UpdatePayment", mock.Anything, uint(7), uint(11), mock.Anything).Return(&services.PaymentResult{
		Booking:    paidBooking("1000", "1000", models.PaymentPaid),
		Difference: decimal.NewFromInt(1000),
		Noop:       true,
	}, nil).Once()

	w := doJSON(r, http.MethodPut, "/api/bridge-retreats/bookings/11/payment", 7, `{"paymentStatus":"PAID"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, true, got["noop"])
	assert.EqualValues(t, 1000, got["paymentDifference"], "the difference of the latest audit record is repeated")
	store.AssertExpectations(t)
}

func TestUpdatePaymentErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
	}{
		{models.NotFound("Booking"), http.StatusNotFound, "NOT_FOUND"},
		{models.ErrBookingCancelled, http.StatusConflict, "INVALID_TRANSITION"},
		{&models.TransitionError{Machine: "payment", From: "PAID", To: "PENDING"}, http.StatusConflict, "INVALID_TRANSITION"},
		{models.Invalid("paid amount 1200.00 exceeds total 1000.00"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("update booking 11: %w", assert.AnError), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			store := new(mockBookingStore)
			r := bookingRouter(store)
			store.On("UpdatePayment", mock.Anything, uint(7), uint(11), mock.Anything).Return(nil, tc.err).Once()

			w := doJSON(r, http.MethodPut, "/api/bridge-retreats/bookings/11/payment", 7, `{"paymentStatus":"PAID"}`)
			assert.Equal(t, tc.code, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tc.kind, env.Error.Kind)
			if tc.code == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), assert.AnError.Error())
			}
		})
	}
}

func TestUpdatePaymentRejectsBadBodyWithoutCallingService(t *testing.T) {
	store := new(mockBookingStore)
	r := bookingRouter(store)

	for _, body := range []string{
		`{}`,
		`{"paymentStatus":"LOST"}`,
		`{"paymentStatus":"PAID","paidAmount":-5}`,
		`not json`,
	} {
		w := doJSON(r, http.MethodPut, "/api/bridge-retreats/bookings/11/payment", 7, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	store.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQuickPaymentScenario(t *testing.T) {
	store := new(mockBookingStore)
	r := bookingRouter(store)

	store.On("QuickPayment", mock.Anything, uint(7), uint(11), models.QuickPartial).Return(&services.PaymentResult{
		Booking:    paidBooking("1000", "500", models.PaymentPartial),
		Difference: decimal.NewFromInt(500),
	}, nil).Once()
	store.On("QuickPayment", mock.Anything, uint(7), uint(11), models.QuickFull).Return(&services.PaymentResult{
		Booking:    paidBooking("1000", "1000", models.PaymentPaid),
		Difference: decimal.NewFromInt(500),
	}, nil).Once()

	w := doJSON(r, http.MethodPost, "/api/bridge-retreats/bookings/11/payment/quick", 7, `{"action":"partial"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.EqualValues(t, 500, got["remainingBalance"])

	w = doJSON(r, http.MethodPost, "/api/bridge-retreats/bookings/11/payment/quick", 7, `{"action":"FULL"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.EqualValues(t, 0, got["remainingBalance"])
	assert.Equal(t, "PAID", got["paymentStatus"])

	w = doJSON(r, http.MethodPost, "/api/bridge-retreats/bookings/11/payment/quick", 7, `{"action":"HALF"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.AssertExpectations(t)
}

func TestUpdateStatusAndCancel(t *testing.T) {
	store := new(mockBookingStore)
	r := bookingRouter(store)

	store.On("UpdateStatus", mock.Anything, uint(7), uint(11), models.BookingCheckedIn).
		Return(&models.Booking{ID: 11, Status: models.BookingCheckedIn}, nil).Once()
	store.On("Cancel", mock.Anything, uint(7), uint(11), "").
		Return(nil, models.ErrBookingCancelled).Once()

	w := doJSON(r, http.MethodPut, "/api/bridge-retreats/bookings/11/status", 7, `{"status":"checked_in"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPut, "/api/bridge-retreats/bookings/11/status", 7, `{"status":"ARCHIVED"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/bridge-retreats/bookings/11/cancel", 7, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	store.AssertExpectations(t)
}

func TestListBookingsPassesFilters(t *testing.T) {
	store := new(mockBookingStore)
	r := bookingRouter(store)
	retreat := uint(3)

	store.On("List", mock.Anything, uint(7), services.BookingFilter{
		Status:        "CONFIRMED",
		PaymentStatus: "PARTIAL",
		RetreatID:     &retreat,
		Query:         "ana",
	}).Return([]models.Booking{{ID: 11}}, nil).Once()

	w := doJSON(r, http.MethodGet, "/api/bridge-retreats/bookings?status=CONFIRMED&paymentStatus=PARTIAL&retreatId=3&q=ana", 7, nil)
	require.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

func TestCreateBookingValidation(t *testing.T) {
	store := new(mockBookingStore)
	r := bookingRouter(store)

	w := doJSON(r, http.MethodPost, "/api/bridge-retreats/bookings", 7,
		`{"retreatId":3,"checkInDate":"2026-04-05T00:00:00Z","checkOutDate":"2026-04-01T00:00:00Z","guestCount":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	store.On("Create", mock.Anything, uint(7), mock.MatchedBy(func(in services.NewBooking) bool {
		return in.RetreatID == 3 && in.GuestCount == 2 && len(in.Guests) == 1 && in.Guests[0].UserID == 7
	})).Return(&models.Booking{ID: 12, Status: models.BookingPending}, nil).Once()

	w = doJSON(r, http.MethodPost, "/api/bridge-retreats/bookings", 7,
		`{"retreatId":3,"checkInDate":"2026-04-01T00:00:00Z","checkOutDate":"2026-04-05T00:00:00Z","guestCount":2,
		  "guests":[{"firstName":"Ana","lastName":"Ruiz","dietaryRequirements":["vegan"]}]}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	store.AssertExpectations(t)
}
