package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalid is returned when a number cannot be normalized to E.164.
var ErrInvalid = errors.New("invalid phone number")

// Normalize converts a user-supplied number to E.164 ("+919812345678").
// A leading "00" international prefix is rewritten to "+"; a number without
// any prefix is read as already carrying its country code. The result must be
// a valid number for its region per libphonenumber metadata.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "+"):
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	default:
		s = "+" + s
	}
	num, err := phonenumbers.Parse(s, "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Digits returns the number without the leading "+", as some SMS gateways expect.
func Digits(e164Number string) string {
	return strings.TrimPrefix(e164Number, "+")
}
