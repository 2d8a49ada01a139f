package money

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const NairaSign = "₦"

var printer = message.NewPrinter(language.English)

// FormatAmount renders a thousands-separated amount with two decimals.
// Amounts that round to zero carry no sign.
func FormatAmount(amount float64) string {
	cents := math.Round(amount * 100)
	if cents < 0 {
		return "-" + printer.Sprintf("%.2f", -cents/100)
	}
	return printer.Sprintf("%.2f", math.Abs(cents)/100)
}

// FormatNaira renders amount as ₦1,234,567.89. Negative amounts put the
// minus sign before the currency sign.
func FormatNaira(amount float64) string {
	formatted := FormatAmount(amount)
	if rest, ok := strings.CutPrefix(formatted, "-"); ok {
		return "-" + NairaSign + rest
	}
	return NairaSign + formatted
}
