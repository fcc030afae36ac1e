package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"opsdash-backend/models"
	"opsdash-backend/services"
	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExpenseStore interface {
	List(ctx context.Context, userID uint, f services.ExpenseFilter) ([]models.Expense, error)
	Get(ctx context.Context, userID, id uint) (*models.Expense, error)
	Create(ctx context.Context, userID uint, e *models.Expense) error
	Update(ctx context.Context, userID, id uint, changes map[string]any) (*models.Expense, error)
	Delete(ctx context.Context, userID, id uint) error
	Review(ctx context.Context, userID, id uint, to models.ExpenseStatus, actor string) (*models.Expense, error)
	Summary(ctx context.Context, userID uint, f services.ExpenseFilter) (utils.Breakdown, error)
	Export(ctx context.Context, userID uint, f services.ExpenseFilter) ([]byte, error)
}

type ExpenseController struct {
	ExpenseSvc ExpenseStore
}

func NewExpenseController(svc ExpenseStore) *ExpenseController {
	return &ExpenseController{ExpenseSvc: svc}
}

func (ctl *ExpenseController) Register(rg *gin.RouterGroup) {
	rg.GET("", ctl.ListExpenses)
	rg.POST("", ctl.CreateExpense)
	rg.PUT("", ctl.UpdateExpenseByBody)
	rg.GET("/summary", ctl.Summary)
	rg.GET("/export", ctl.Export)
	rg.GET("/:id", ctl.GetExpense)
	rg.PUT("/:id", ctl.UpdateExpense)
	rg.DELETE("/:id", ctl.DeleteExpense)
	rg.PUT("/:id/status", ctl.ReviewExpense)
}

type expenseQuery struct {
	Category  string `form:"category"`
	Status    string `form:"status"`
	RetreatID *uint  `form:"retreatId"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// filter parses from/to as dates; to is inclusive of the whole day.
func (q expenseQuery) filter() (services.ExpenseFilter, error) {
	f := services.ExpenseFilter{Category: q.Category, Status: q.Status, RetreatID: q.RetreatID}
	from, to, err := parsePeriod(q.From, q.To)
	if err != nil {
		return f, err
	}
	f.From, f.To = from, to
	return f, nil
}

func parsePeriod(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromRaw != "" {
		t, err := time.Parse(time.DateOnly, fromRaw)
		if err != nil {
			return nil, nil, models.Invalid("from must be YYYY-MM-DD")
		}
		from = &t
	}
	if toRaw != "" {
		t, err := time.Parse(time.DateOnly, toRaw)
		if err != nil {
			return nil, nil, models.Invalid("to must be YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, models.Invalid("to is before from")
	}
	return from, to, nil
}

type expensePayload struct {
	Category    string          `json:"category" binding:"required,trimmed,max=64"`
	Description string          `json:"description"`
	Vendor      string          `json:"vendor" binding:"max=255"`
	Amount      decimal.Decimal `json:"amount" binding:"gt=0"`
	ExpenseDate time.Time       `json:"expenseDate" binding:"required"`
	RetreatID   *uint           `json:"retreatId"`
	FacilityID  *uint           `json:"facilityId"`
	BookingID   *uint           `json:"bookingId"`
	Tags        []string        `json:"tags"`
}

func (p expensePayload) build() *models.Expense {
	return &models.Expense{
		Category:    strings.TrimSpace(p.Category),
		Description: p.Description,
		Vendor:      p.Vendor,
		Amount:      models.Cents(p.Amount),
		ExpenseDate: p.ExpenseDate,
		RetreatID:   p.RetreatID,
		FacilityID:  p.FacilityID,
		BookingID:   p.BookingID,
		Tags:        jsonList(p.Tags),
	}
}

func (p expensePayload) changes() map[string]any {
	return map[string]any{
		"category":     strings.TrimSpace(p.Category),
		"description":  p.Description,
		"vendor":       p.Vendor,
		"amount":       models.Cents(p.Amount),
		"expense_date": p.ExpenseDate,
		"retreat_id":   p.RetreatID,
		"facility_id":  p.FacilityID,
		"booking_id":   p.BookingID,
		"tags":         jsonList(p.Tags),
	}
}

type expenseUpdateByBody struct {
	ID uint `json:"id" binding:"required"`
	expensePayload
}

type reviewRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED PROCESSED"`
	Actor  string `json:"actor" binding:"max=255"`
}

// ListExpenses (GET /api/bridge-retreats/expenses)
func (ctl *ExpenseController) ListExpenses(c *gin.Context) {
	uid, f, ok := ctl.tenantFilter(c)
	if !ok {
		return
	}
	items, err := ctl.ExpenseSvc.List(c.Request.Context(), uid, f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}

// CreateExpense (POST /api/bridge-retreats/expenses)
func (ctl *ExpenseController) CreateExpense(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	var p expensePayload
	if !bindJSON(c, &p) {
		return
	}
	e := p.build()
	if err := ctl.ExpenseSvc.Create(c.Request.Context(), uid, e); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, e)
}

// GetExpense (GET /api/bridge-retreats/expenses/:id)
func (ctl *ExpenseController) GetExpense(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	e, err := ctl.ExpenseSvc.Get(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, e)
}

// UpdateExpense (PUT /api/bridge-retreats/expenses/:id)
func (ctl *ExpenseController) UpdateExpense(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var p expensePayload
	if !bindJSON(c, &p) {
		return
	}
	ctl.update(c, uid, id, p)
}

// UpdateExpenseByBody (PUT /api/bridge-retreats/expenses) takes the id from the body,
// the shape the expenses page sends.
func (ctl *ExpenseController) UpdateExpenseByBody(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	var p expenseUpdateByBody
	if !bindJSON(c, &p) {
		return
	}
	ctl.update(c, uid, p.ID, p.expensePayload)
}

func (ctl *ExpenseController) update(c *gin.Context, uid, id uint, p expensePayload) {
	e, err := ctl.ExpenseSvc.Update(c.Request.Context(), uid, id, p.changes())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, e)
}

// DeleteExpense (DELETE /api/bridge-retreats/expenses/:id)
func (ctl *ExpenseController) DeleteExpense(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := ctl.ExpenseSvc.Delete(c.Request.Context(), uid, id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// ReviewExpense (PUT /api/bridge-retreats/expenses/:id/status)
func (ctl *ExpenseController) ReviewExpense(c *gin.Context) {
	uid, ok := tenant(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := ctl.ExpenseSvc.Review(c.Request.Context(), uid, id, models.ExpenseStatus(req.Status), req.Actor)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, e)
}

// Summary (GET /api/bridge-retreats/expenses/summary)
func (ctl *ExpenseController) Summary(c *gin.Context) {
	uid, f, ok := ctl.tenantFilter(c)
	if !ok {
		return
	}
	b, err := ctl.ExpenseSvc.Summary(c.Request.Context(), uid, f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// Export (GET /api/bridge-retreats/expenses/export)
func (ctl *ExpenseController) Export(c *gin.Context) {
	uid, f, ok := ctl.tenantFilter(c)
	if !ok {
		return
	}
	data, err := ctl.ExpenseSvc.Export(c.Request.Context(), uid, f)
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("expenses_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (ctl *ExpenseController) tenantFilter(c *gin.Context) (uint, services.ExpenseFilter, bool) {
	uid, ok := tenant(c)
	if !ok {
		return 0, services.ExpenseFilter{}, false
	}
	var q expenseQuery
	if !bindQuery(c, &q) {
		return 0, services.ExpenseFilter{}, false
	}
	f, err := q.filter()
	if err != nil {
		respondError(c, err)
		return 0, services.ExpenseFilter{}, false
	}
	return uid, f, true
}
