package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     string
	}{
		{"default sterling", 1234.56, "", "£1,234.56"},
		{"sterling", 0.5, "GBP", "£0.50"},
		{"euro", 1000000, "EUR", "€1,000,000.00"},
		{"dollar", 42, "USD", "$42.00"},
		{"unknown code", 99.99, "CHF", "CHF 99.99"},
		{"negative", -1234.5, "GBP", "-£1,234.50"},
		{"lowercase code", 10, "gbp", "£10.00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatCurrency(tc.amount, tc.currency))
		})
	}
}
