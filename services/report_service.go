package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"opsdash-backend/models"
	"opsdash-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

type Period struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

type Revenue struct {
	Total       decimal.Decimal `json:"total"`
	Collected   decimal.Decimal `json:"collected"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type RetreatOccupancy struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Capacity        int     `json:"capacity"`
	CurrentBookings int     `json:"currentBookings"`
	OccupancyRate   float64 `json:"occupancyRate"`
}

type Overview struct {
	Period           Period             `json:"period"`
	Bookings         int                `json:"bookings"`
	ByStatus         map[string]int     `json:"byStatus"`
	ByPaymentStatus  map[string]int     `json:"byPaymentStatus"`
	Revenue          Revenue            `json:"revenue"`
	Expenses         utils.Breakdown    `json:"expenses"`
	CommittedExpense decimal.Decimal    `json:"committedExpenses"`
	Net              decimal.Decimal    `json:"net"`
	Occupancy        []RetreatOccupancy `json:"occupancy"`
}

// Overview loads the tenant's bookings, expenses and retreats for the period and
// summarizes them in memory.
func (s *ReportService) Overview(ctx context.Context, userID uint, p Period) (*Overview, error) {
	db := s.DB.WithContext(ctx)

	bq := db.Scopes(scopeTenant(userID))
	if p.From != nil {
		bq = bq.Where("check_in_date >= ?", *p.From)
	}
	if p.To != nil {
		bq = bq.Where("check_in_date <= ?", *p.To)
	}
	var bookings []models.Booking
	if err := bq.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("report bookings: %w", err)
	}

	eq := db.Scopes(scopeTenant(userID))
	if p.From != nil {
		eq = eq.Where("expense_date >= ?", *p.From)
	}
	if p.To != nil {
		eq = eq.Where("expense_date <= ?", *p.To)
	}
	var expenses []models.Expense
	if err := eq.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("report expenses: %w", err)
	}

	var retreats []models.Retreat
	if err := db.Scopes(scopeTenant(userID)).Order("start_date ASC, id ASC").Find(&retreats).Error; err != nil {
		return nil, fmt.Errorf("report retreats: %w", err)
	}

	o := BuildOverview(bookings, expenses, retreats)
	o.Period = p
	return o, nil
}

// BuildOverview is the pure part of Overview. Cancelled bookings count towards the
// status breakdown but not towards revenue.
func BuildOverview(bookings []models.Booking, expenses []models.Expense, retreats []models.Retreat) *Overview {
	o := &Overview{
		Bookings: len(bookings),
		ByStatus: utils.CountBy(bookings, func(b models.Booking) string { return string(b.Status) }),
		ByPaymentStatus: utils.CountBy(bookings, func(b models.Booking) string {
			return string(b.PaymentStatus)
		}),
		Revenue:          Revenue{Total: decimal.Zero, Collected: decimal.Zero, Outstanding: decimal.Zero},
		Expenses:         SummarizeExpenses(expenses),
		CommittedExpense: decimal.Zero,
		Occupancy:        make([]RetreatOccupancy, 0, len(retreats)),
	}

	for _, b := range bookings {
		if b.Status == models.BookingCancelled {
			continue
		}
		o.Revenue.Total = o.Revenue.Total.Add(b.TotalAmount)
		o.Revenue.Collected = o.Revenue.Collected.Add(b.PaidAmount)
		o.Revenue.Outstanding = o.Revenue.Outstanding.Add(b.Remaining())
	}
	for _, e := range expenses {
		if e.Status.Committed() {
			o.CommittedExpense = o.CommittedExpense.Add(e.Amount)
		}
	}
	o.Net = o.Revenue.Collected.Sub(o.CommittedExpense)

	for _, r := range retreats {
		o.Occupancy = append(o.Occupancy, RetreatOccupancy{
			ID:              r.ID,
			Name:            r.Name,
			Capacity:        r.Capacity,
			CurrentBookings: r.CurrentBookings,
			OccupancyRate:   r.Occupancy(),
		})
	}
	sort.SliceStable(o.Occupancy, func(i, j int) bool {
		return o.Occupancy[i].OccupancyRate > o.Occupancy[j].OccupancyRate
	})
	return o
}
