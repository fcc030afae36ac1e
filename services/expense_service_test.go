package services

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"opsdash-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	selectExpenses = regexp.QuoteMeta("SELECT * FROM `expenses` WHERE")
	updateExpenses = regexp.QuoteMeta("UPDATE `expenses` SET")
	insertExpenses = regexp.QuoteMeta("INSERT INTO `expenses`")
	countRetreats  = regexp.QuoteMeta("SELECT count(*) FROM `retreats` WHERE")
)

func sampleExpenses() []models.Expense {
	day := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	retreat := uint(3)
	return []models.Expense{
		{ID: 1, Category: "Catering", Amount: decimal.RequireFromString("300.00"), ExpenseDate: day, Status: models.ExpenseApproved, RetreatID: &retreat},
		{ID: 2, Category: "Utilities", Amount: decimal.RequireFromString("100.00"), ExpenseDate: day, Status: models.ExpensePending},
		{ID: 3, Category: "Catering", Amount: decimal.RequireFromString("200.00"), ExpenseDate: day, Status: models.ExpenseProcessed},
	}
}

func TestSummarizeExpenses(t *testing.T) {
	b := SummarizeExpenses(sampleExpenses())

	assert.True(t, b.Total.Equal(decimal.RequireFromString("600")))
	assert.Equal(t, 3, b.Count)
	require.Len(t, b.Categories, 2)
	assert.Equal(t, "Catering", b.Categories[0].Key)
	assert.Equal(t, 2, b.Categories[0].Count)
	assert.InDelta(t, 83.33, b.Categories[0].Percentage, 0.001)
	assert.InDelta(t, 16.67, b.Categories[1].Percentage, 0.001)
}

func TestExpenseWorkbook(t *testing.T) {
	data, err := ExpenseWorkbook(sampleExpenses())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{expenseSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(expenseSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Category", rows[0][2])
	assert.Equal(t, "Catering", rows[1][2])
	assert.Equal(t, "3", rows[1][7])

	style, err := f.GetCellStyle(expenseSheet, "K1")
	require.NoError(t, err)
	assert.NotZero(t, style, "header row is styled")
	width, err := f.GetColWidth(expenseSheet, "C")
	require.NoError(t, err)
	assert.Equal(t, 20.0, width)

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, "Catering", summary[1][0])
	assert.Equal(t, "Total", summary[3][0])
	assert.Equal(t, "600", summary[3][2])
	style, err = f.GetCellStyle(summarySheet, "D1")
	require.NoError(t, err)
	assert.NotZero(t, style)
}

func TestExpenseReviewApproves(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewExpenseService(db)
	now := time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	mock.ExpectBegin()
	mock.ExpectQuery(selectExpenses).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category", "amount", "status"}).
			AddRow(1, 7, "Catering", "300.00", "PENDING"))
	mock.ExpectExec(updateExpenses).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e, err := svc.Review(context.Background(), 7, 1, models.ExpenseApproved, " Dana ")
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseApproved, e.Status)
	assert.Equal(t, "Dana", e.ApprovedBy)
	require.NotNil(t, e.ReviewedAt)
	assert.Equal(t, now, *e.ReviewedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseReviewRejectsProcessed(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewExpenseService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(selectExpenses).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).AddRow(1, 7, "PROCESSED"))
	mock.ExpectRollback()

	_, err := svc.Review(context.Background(), 7, 1, models.ExpensePending, "Dana")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseCreateChecksAttribution(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewExpenseService(db)
	retreat := uint(99)

	mock.ExpectBegin()
	mock.ExpectQuery(countRetreats).WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectRollback()

	err := svc.Create(context.Background(), 7, &models.Expense{
		Category:    "Catering",
		Amount:      decimal.RequireFromString("10"),
		ExpenseDate: time.Now(),
		RetreatID:   &retreat,
	})
	assert.ErrorIs(t, err, models.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseCreateStartsPending(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewExpenseService(db)

	mock.ExpectBegin()
	mock.ExpectExec(insertExpenses).WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	e := &models.Expense{
		Category:    "Utilities",
		Amount:      decimal.RequireFromString("42.50"),
		ExpenseDate: time.Now(),
		Status:      models.ExpenseProcessed,
		ApprovedBy:  "someone",
	}
	require.NoError(t, svc.Create(context.Background(), 7, e))
	assert.Equal(t, uint(5), e.ID)
	assert.Equal(t, uint(7), e.UserID)
	assert.Equal(t, models.ExpensePending, e.Status)
	assert.Empty(t, e.ApprovedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseListRejectsUnknownStatus(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewExpenseService(db)

	_, err := svc.List(context.Background(), 7, ExpenseFilter{Status: "lost"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestExpenseCreateAcceptsEveryAttribution(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewExpenseService(db)
	retreat, facility, booking := uint(3), uint(4), uint(11)

	one := func() *sqlmock.Rows { return sqlmock.NewRows([]string{"count(*)"}).AddRow(1) }
	mock.ExpectBegin()
	mock.ExpectQuery(countRetreats).WillReturnRows(one())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `facilities` WHERE")).WillReturnRows(one())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `bookings` WHERE")).WillReturnRows(one())
	mock.ExpectExec(insertExpenses).WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectCommit()

	e := &models.Expense{
		Category:    "Maintenance",
		Amount:      decimal.RequireFromString("80"),
		ExpenseDate: time.Now(),
		RetreatID:   &retreat,
		FacilityID:  &facility,
		BookingID:   &booking,
	}
	require.NoError(t, svc.Create(context.Background(), 7, e))
	assert.Equal(t, uint(6), e.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
