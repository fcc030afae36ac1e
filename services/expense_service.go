package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsdash-backend/metrics"
	"opsdash-backend/models"
	"opsdash-backend/utils"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseFilter struct {
	Category  string
	Status    string
	RetreatID *uint
	From      *time.Time
	To        *time.Time
}

// ExpenseService manages expenses independently of the records they are attributed
// to; reviewing an expense never touches a retreat, facility or booking.
type ExpenseService struct {
	DB    *gorm.DB
	store *OwnedStore[models.Expense]
	Now   func() time.Time
}

func NewExpenseService(db *gorm.DB) *ExpenseService {
	return &ExpenseService{DB: db, store: NewOwnedStore[models.Expense](db, "Expense"), Now: time.Now}
}

func (s *ExpenseService) List(ctx context.Context, userID uint, f ExpenseFilter) ([]models.Expense, error) {
	q := s.DB.WithContext(ctx).Scopes(scopeTenant(userID))

	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("category = ?", c)
	}
	if f.Status != "" {
		st := models.ExpenseStatus(strings.ToUpper(f.Status))
		if !st.Valid() {
			return nil, models.Invalid("unknown expense status %q", f.Status)
		}
		q = q.Where("status = ?", st)
	}
	if f.RetreatID != nil {
		q = q.Where("retreat_id = ?", *f.RetreatID)
	}
	if f.From != nil {
		q = q.Where("expense_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("expense_date <= ?", *f.To)
	}

	var out []models.Expense
	if err := q.Order("expense_date DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id uint) (*models.Expense, error) {
	return s.store.Get(ctx, userID, id)
}

// Create stores a new PENDING expense after checking that every attribution id names
// a record of the same tenant.
func (s *ExpenseService) Create(ctx context.Context, userID uint, e *models.Expense) error {
	e.ID = 0
	e.UserID = userID
	e.Status = models.ExpensePending
	e.ApprovedBy = ""
	e.ReviewedAt = nil
	e.ProcessedAt = nil

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkAttribution(tx, userID, e.RetreatID, e.FacilityID, e.BookingID); err != nil {
			return err
		}
		if err := tx.Create(e).Error; err != nil {
			return s.store.writeError("create", err)
		}
		return nil
	})
}

// Update applies field changes. Status is not among them; it moves through Review.
func (s *ExpenseService) Update(ctx context.Context, userID, id uint, changes map[string]any) (*models.Expense, error) {
	var out *models.Expense
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkAttribution(tx, userID, uintField(changes, "retreat_id"), uintField(changes, "facility_id"), uintField(changes, "booking_id")); err != nil {
			return err
		}
		res := tx.Model(&models.Expense{}).Scopes(scopeOwned(userID, id)).Updates(changes)
		if res.Error != nil {
			return s.store.writeError("update", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NotFound("Expense")
		}
		rec, err := s.store.get(tx, userID, id)
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id uint) error {
	return s.store.Delete(ctx, userID, id)
}

// Review moves the expense through its status machine, recording who did it.
func (s *ExpenseService) Review(ctx context.Context, userID, id uint, to models.ExpenseStatus, actor string) (*models.Expense, error) {
	var e models.Expense
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(scopeOwned(userID, id)).
			First(&e).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NotFound("Expense")
			}
			return fmt.Errorf("lock expense %d: %w", id, err)
		}

		from := e.Status
		if err := e.Review(to, strings.TrimSpace(actor), s.Now().UTC()); err != nil {
			return err
		}
		res := tx.Model(&models.Expense{}).
			Where("id = ? AND user_id = ? AND status = ?", id, userID, from).
			Updates(map[string]any{
				"status":       e.Status,
				"approved_by":  e.ApprovedBy,
				"reviewed_at":  e.ReviewedAt,
				"processed_at": e.ProcessedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("update expense %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NotFound("Expense")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordExpenseReview(string(e.Status))
	return &e, nil
}

func (s *ExpenseService) Summary(ctx context.Context, userID uint, f ExpenseFilter) (utils.Breakdown, error) {
	expenses, err := s.List(ctx, userID, f)
	if err != nil {
		return utils.Breakdown{}, err
	}
	return SummarizeExpenses(expenses), nil
}

func SummarizeExpenses(expenses []models.Expense) utils.Breakdown {
	return utils.BreakdownBy(expenses,
		func(e models.Expense) string { return e.Category },
		func(e models.Expense) decimal.Decimal { return e.Amount },
	)
}

const (
	expenseSheet = "Expenses"
	summarySheet = "Summary"
)

var expenseHeaders = []string{"ID", "Date", "Category", "Description", "Vendor", "Amount", "Status", "Retreat", "Facility", "Booking", "Approved by"}

// Export renders the filtered expenses and their category breakdown as an .xlsx
// workbook.
func (s *ExpenseService) Export(ctx context.Context, userID uint, f ExpenseFilter) ([]byte, error) {
	expenses, err := s.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return ExpenseWorkbook(expenses)
}

func ExpenseWorkbook(expenses []models.Expense) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(expenseSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(expenseSheet, "A1", &expenseHeaders); err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(expenseHeaders), 1)
	if err := f.SetCellStyle(expenseSheet, "A1", lastHeader, header); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, e := range expenses {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		amount, _ := e.Amount.Float64()
		row := []any{
			e.ID,
			e.ExpenseDate.Format("2006-01-02"),
			e.Category,
			e.Description,
			e.Vendor,
			amount,
			string(e.Status),
			optionalID(e.RetreatID),
			optionalID(e.FacilityID),
			optionalID(e.BookingID),
			e.ApprovedBy,
		}
		if err := f.SetSheetRow(expenseSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(expenseSheet, "B", "E", 20); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]string{"Category", "Count", "Amount", "Percentage"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "D1", header); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	breakdown := SummarizeExpenses(expenses)
	for i, c := range breakdown.Categories {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		sum, _ := c.Sum.Float64()
		if err := f.SetSheetRow(summarySheet, cell, &[]any{c.Key, c.Count, sum, c.Percentage}); err != nil {
			return nil, err
		}
	}
	totalCell, _ := excelize.CoordinatesToCellName(1, len(breakdown.Categories)+2)
	total, _ := breakdown.Total.Float64()
	pct := 0.0
	if !breakdown.Total.IsZero() {
		pct = 100
	}
	if err := f.SetSheetRow(summarySheet, totalCell, &[]any{"Total", breakdown.Count, total, pct}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func optionalID(id *uint) any {
	if id == nil {
		return ""
	}
	return *id
}

func checkAttribution(tx *gorm.DB, userID uint, retreatID, facilityID, bookingID *uint) error {
	return checkReferences(tx, userID, []Reference{
		{Model: &models.Retreat{}, Label: "retreat", ID: retreatID},
		{Model: &models.Facility{}, Label: "facility", ID: facilityID},
		{Model: &models.Booking{}, Label: "booking", ID: bookingID},
	})
}

func uintField(changes map[string]any, key string) *uint {
	switch v := changes[key].(type) {
	case *uint:
		return v
	case uint:
		return &v
	}
	return nil
}
