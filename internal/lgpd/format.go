package lgpd

import (
	"fmt"
	"strings"
	"unicode"
)

// FormatRevealed applies the display grouping for a revealed value. Only
// revealed values are ever formatted; masked placeholders come from
// Placeholder. Values with unrecognized digit counts pass through untouched.
func FormatRevealed(kind FieldKind, raw string) string {
	digits := digitsOnly(raw)
	switch kind {
	case KindTaxID:
		return formatTaxID(raw, digits)
	case KindPostalCode:
		if len(digits) == 8 {
			return digits[:5] + "-" + digits[5:]
		}
	case KindPhone:
		return formatPhone(raw, digits)
	}
	return raw
}

// formatTaxID groups an 11-digit CPF or a 14-digit CNPJ.
func formatTaxID(raw, digits string) string {
	switch len(digits) {
	case 11:
		return fmt.Sprintf("%s.%s.%s-%s", digits[:3], digits[3:6], digits[6:9], digits[9:])
	case 14:
		return fmt.Sprintf("%s.%s.%s/%s-%s", digits[:2], digits[2:5], digits[5:8], digits[8:12], digits[12:])
	}
	return raw
}

// formatPhone selects the grouping by digit count: 10 (landline with area
// code), 11 (mobile with area code) or 13 (mobile with country code).
func formatPhone(raw, digits string) string {
	switch len(digits) {
	case 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:6], digits[6:])
	case 11:
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:7], digits[7:])
	case 13:
		return fmt.Sprintf("+%s (%s) %s-%s", digits[:2], digits[2:4], digits[4:9], digits[9:])
	}
	return raw
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
