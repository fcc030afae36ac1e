package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts go to the dashboard as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Cents rounds an amount to two decimal places, the precision of every money column.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
