package model

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats amounts with English digit grouping.
var printer = message.NewPrinter(language.English)

// FormatPrice formats v with two decimals and the currency code,
// e.g. "1,234.50 GBP". An empty currency yields the bare amount.
func FormatPrice(v float64, currency string) string {
	s := printer.Sprintf("%.2f", v)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
