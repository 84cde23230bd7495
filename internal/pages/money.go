package pages

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatEuros renders an amount in euros, e.g. "€1,234.50" or "-€20.00".
func FormatEuros(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, money.EUR).Display()
}
