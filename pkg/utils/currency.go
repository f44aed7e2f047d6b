package utils

import (
	"fmt"
	"strings"
)

var currencySymbols = map[string]string{
	"GBP": "£",
	"EUR": "€",
	"USD": "$",
}

// FormatCurrency renders an amount for display, e.g. £1,234.56. Unknown
// currency codes fall back to prefixing the code itself. The numeric core
// never formats; this is for presentation only.
func FormatCurrency(amount float64, currencyCode string) string {
	if currencyCode == "" {
		currencyCode = "GBP"
	}
	symbol, ok := currencySymbols[strings.ToUpper(currencyCode)]
	if !ok {
		symbol = strings.ToUpper(currencyCode) + " "
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}

	whole := fmt.Sprintf("%.2f", amount)
	dot := strings.Index(whole, ".")
	intPart, fracPart := whole[:dot], whole[dot:]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	formatted := symbol + strings.Join(groups, ",") + fracPart
	if negative {
		return "-" + formatted
	}
	return formatted
}
