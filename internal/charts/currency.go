// Package charts holds presentation helpers shared by the dashboard widgets:
// currency symbols and stable category colors.
package charts

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"RUB": "₽",
	"UAH": "₴",
	"PLN": "zł",
	"CZK": "Kč",
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"CHF": "CHF",
	"CAD": "C$",
	"AUD": "A$",
	"INR": "₹",
	"BRL": "R$",
	"TRY": "₺",
	"KRW": "₩",
	"CNY": "¥",
}

// CurrencySymbol maps an ISO 4217 code to a display symbol. Unknown but valid
// codes fall back to the normalized code itself; garbage falls back to USD.
func CurrencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if symbol, ok := currencySymbols[code]; ok {
		return symbol
	}
	if unit, err := currency.ParseISO(code); err == nil {
		return unit.String()
	}
	return currencySymbols["USD"]
}

// FormatAmount renders an amount with its currency symbol, e.g. "$12.40".
func FormatAmount(code string, amount float64) string {
	return CurrencySymbol(code) + fmt.Sprintf("%.2f", amount)
}
