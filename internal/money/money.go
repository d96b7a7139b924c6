// Package money formats decimal amounts as display currency strings.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency symbols used across invoice documents.
const (
	SymbolUSD  = "$"
	SymbolRiel = "៛"
)

var printer = message.NewPrinter(language.English)

// Format renders an amount as a value-then-symbol currency string, e.g.
// "1,234.50$" or "8,090,000៛". Whole amounts drop the fraction entirely;
// everything else carries exactly two decimal places, rounded half away
// from zero. The precision rule is evaluated per amount.
func Format(amount decimal.Decimal, riel bool) string {
	symbol := SymbolUSD
	if riel {
		symbol = SymbolRiel
	}

	neg := amount.IsNegative()
	abs := amount.Abs()

	var body string
	if amount.IsInteger() {
		body = group(abs.IntPart())
	} else {
		// Rounding can land on a whole value (1.999 -> 2.00); the two
		// fraction digits are still rendered because the input was fractional.
		rounded := abs.Round(2)
		frac := rounded.Sub(rounded.Truncate(0)).Shift(2).IntPart()
		body = group(rounded.IntPart()) + printer.Sprintf(".%02d", frac)
	}

	if neg {
		body = "-" + body
	}
	return body + symbol
}

// group renders an integer with comma thousands separators.
func group(v int64) string {
	return printer.Sprintf("%d", v)
}
