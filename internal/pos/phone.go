package pos

import "strings"

// Digits strips every non-digit rune.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone returns the digits-only phone number stored with an order.
func NormalizePhone(s string) (string, error) {
	d := Digits(s)
	if len(d) < 10 || len(d) > 13 {
		return "", ErrInvalidPhone
	}
	return d, nil
}

// InternationalPhone prefixes the country code to national numbers (10 or 11 digits).
func InternationalPhone(phone, countryCode string) string {
	d := Digits(phone)
	cc := Digits(countryCode)
	if cc == "" || len(d) > 11 {
		return d
	}
	return cc + d
}
