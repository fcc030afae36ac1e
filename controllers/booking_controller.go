package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"opsdash-backend/models"
	"opsdash-backend/services"
	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BookingStore interface {
	List(ctx context.Context, userID uint, f services.BookingFilter) ([]models.Booking, error)
	Get(ctx context.Context, userID, id uint) (*models.Booking, error)
	Create(ctx context.Context, userID uint, in services.NewBooking) (*models.Booking, error)
	UpdateStatus(ctx context.Context, userID, id uint, to models.BookingStatus) (*models.Booking, error)
	Cancel(ctx context.Context, userID, id uint, reason string) (*models.Booking, error)
	UpdatePayment(ctx context.Context, userID, id uint, u models.PaymentUpdate) (*services.PaymentResult, error)
	QuickPayment(ctx context.Context, userID, id uint, action models.QuickAction) (*services.PaymentResult, error)
	Payments(ctx context.Context, userID, id uint) ([]models.PaymentRecord, error)
}

type BookingController struct {
	BookingSvc BookingStore
}

func NewBookingController(svc BookingStore) *BookingController {
	return &BookingController{BookingSvc: svc}
}

func (ctl *BookingController) Register(rg *gin.RouterGroup) {
	rg.GET("", ctl.ListBookings)
	rg.POST("", ctl.CreateBooking)
	rg.GET("/:id", ctl.GetBooking)
	rg.PUT("/:id/status", ctl.UpdateStatus)
	rg.POST("/:id/cancel", ctl.CancelBooking)
	rg.PUT("/:id/payment", ctl.UpdatePayment)
	rg.POST("/:id/payment/quick", ctl.QuickPayment)
	rg.GET("/:id/payments", ctl.ListPayments)
}

type bookingQuery struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"paymentStatus"`
	RetreatID     *uint  `form:"retreatId"`
	Q             string `form:"q"`
}

type createBookingRequest struct {
	RetreatID       uint           `json:"retreatId" binding:"required"`
	CheckInDate     time.Time      `json:"checkInDate" binding:"required"`
	CheckOutDate    time.Time      `json:"checkOutDate" binding:"required,gtfield=CheckInDate"`
	GuestCount      int            `json:"guestCount" binding:"required,min=1,max=500"`
	SpecialRequests string         `json:"specialRequests"`
	PaymentMethod   *string        `json:"paymentMethod" binding:"omitempty,max=32"`
	AllowWaitlist   bool           `json:"allowWaitlist"`
	Guests          []guestPayload `json:"guests" binding:"omitempty,dive"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

type paymentRequest struct {
	PaymentStatus string           `json:"paymentStatus" binding:"required"`
	PaidAmount    *decimal.Decimal `json:"paidAmount" binding:"omitempty,gte=0"`
	PaymentMethod *string          `json:"paymentMethod" binding:"omitempty,max=32"`
}

type quickPaymentRequest struct {
	Action string `json:"action" binding:"required,oneof=FULL PARTIAL full partial"`
}

// paymentResponse is the booking plus the difference the update recorded. With
// noop set nothing was written and paymentDifference repeats the latest audit record.
type paymentResponse struct {
	*models.Booking
	PaymentDifference decimal.Decimal `json:"paymentDifference"`
	Noop              bool            `json:"noop"`
}

func newPaymentResponse(res *services.PaymentResult) paymentResponse {
	return paymentResponse{Booking: res.Booking, PaymentDifference: res.Difference, Noop: res.Noop}
}

// ListBookings (GET /api/bridge-retreats/bookings)
func (ctl *BookingController) ListBookings(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	var q bookingQuery
	if !bindQuery(c, &q) {
		return
	}
	items, err := ctl.BookingSvc.List(c.Request.Context(), uid, services.BookingFilter{
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		RetreatID:     q.RetreatID,
		Query:         q.Q,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}

// CreateBooking (POST /api/bridge-retreats/bookings)
func (ctl *BookingController) CreateBooking(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	guests := make([]models.Guest, 0, len(req.Guests))
	for _, g := range req.Guests {
		guests = append(guests, g.guest(uid))
	}
	b, err := ctl.BookingSvc.Create(c.Request.Context(), uid, services.NewBooking{
		RetreatID:       req.RetreatID,
		CheckInDate:     req.CheckInDate,
		CheckOutDate:    req.CheckOutDate,
		GuestCount:      req.GuestCount,
		SpecialRequests: req.SpecialRequests,
		PaymentMethod:   req.PaymentMethod,
		AllowWaitlist:   req.AllowWaitlist,
		Guests:          guests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, b)
}

// GetBooking (GET /api/bridge-retreats/bookings/:id)
func (ctl *BookingController) GetBooking(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := ctl.BookingSvc.Get(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// UpdateStatus (PUT /api/bridge-retreats/bookings/:id/status)
func (ctl *BookingController) UpdateStatus(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	to := models.BookingStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !to.Valid() {
		respondError(c, models.Invalid("unknown booking status %q", req.Status))
		return
	}
	b, err := ctl.BookingSvc.UpdateStatus(c.Request.Context(), uid, id, to)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// CancelBooking (POST /api/bridge-retreats/bookings/:id/cancel)
func (ctl *BookingController) CancelBooking(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req cancelRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	b, err := ctl.BookingSvc.Cancel(c.Request.Context(), uid, id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// UpdatePayment (PUT /api/bridge-retreats/bookings/:id/payment)
func (ctl *BookingController) UpdatePayment(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}
	status := models.PaymentStatus(strings.ToUpper(strings.TrimSpace(req.PaymentStatus)))
	if !status.Valid() {
		respondError(c, models.Invalid("unknown payment status %q", req.PaymentStatus))
		return
	}
	res, err := ctl.BookingSvc.UpdatePayment(c.Request.Context(), uid, id, models.PaymentUpdate{
		Status:     status,
		PaidAmount: req.PaidAmount,
		Method:     req.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newPaymentResponse(res))
}

// QuickPayment (POST /api/bridge-retreats/bookings/:id/payment/quick)
func (ctl *BookingController) QuickPayment(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req quickPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	action := models.QuickAction(strings.ToUpper(req.Action))
	res, err := ctl.BookingSvc.QuickPayment(c.Request.Context(), uid, id, action)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newPaymentResponse(res))
}

// ListPayments (GET /api/bridge-retreats/bookings/:id/payments)
func (ctl *BookingController) ListPayments(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	records, err := ctl.BookingSvc.Payments(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, records)
}
