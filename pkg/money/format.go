// Package money renders payment amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// symbols overrides CLDR for the portal currencies so the page shows the
// narrow form a payer expects.
var symbols = map[string]string{
	"AUD": "A$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"SEK": "kr ",
	"USD": "$",
}

const fallbackScale = 2

type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a formatter for a BCP 47 locale; an unparseable locale
// falls back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format renders amount in the given ISO 4217 currency, e.g. "$1,234.50" or
// "¥1,500". An unknown or empty currency yields the grouped number with two
// decimals and no symbol.
func (f *Formatter) Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))

	scale := fallbackScale
	symbol := ""
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
		symbol = f.symbol(code, unit)
	}

	d := decimal.NewFromFloat(amount).Round(int32(scale))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	digits := f.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(scale)))
	return sign + symbol + digits
}

func (f *Formatter) symbol(code string, unit currency.Unit) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	s := f.printer.Sprint(currency.NarrowSymbol(unit))
	if s == code {
		return s + " "
	}
	return s
}
