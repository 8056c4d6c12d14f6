// Package core money rendering.
//
// Amounts stay integer cents everywhere in the engine; formatting to a
// currency string happens only at the report presentation boundary.
package core

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// The upstream report surface is USD in en-US conventions.
var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCents renders an integer cent amount as a grouped currency string.
//
// Examples:
//
//	FormatCents(0)      -> "$0.00"
//	FormatCents(75000)  -> "$750.00"
//	FormatCents(111200) -> "$1,112.00"
func FormatCents(cents int64) string {
	units := float64(cents) / 100
	return printer.Sprintf("%v%v",
		currency.Symbol(currency.USD),
		number.Decimal(units,
			number.MinFractionDigits(2),
			number.MaxFractionDigits(2)))
}
