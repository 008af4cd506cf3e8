package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// formatMoney renders amount with the account locale's digit grouping and
// the currency's minor units. Unknown locales fall back to English.
func formatMoney(amount decimal.Decimal, code, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)

	scale := 2
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
		code = unit.String()
	}
	return p.Sprintf("%v %s", number.Decimal(amount.InexactFloat64(), number.Scale(scale)), code)
}

// formatMovementDate renders a movement date relative to today.
func formatMovementDate(at time.Time, daysAgo int) string {
	switch {
	case daysAgo == 0:
		return "Today"
	case daysAgo == 1:
		return "Yesterday"
	case daysAgo <= 7:
		return fmt.Sprintf("%d days ago", daysAgo)
	default:
		return at.Format("02/01/2006")
	}
}
