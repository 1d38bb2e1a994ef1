// Package dateutils parses and formats Brazilian day-first dates.
package dateutils

import (
	"regexp"
	"strconv"
	"time"

	"github.com/rafaelvasco/dindinho/internal/parsererror"
)

// DateLayoutBrazilian is the canonical statement date layout.
const DateLayoutBrazilian = "02/01/2006"

var datePattern = regexp.MustCompile(`^(\d{1,2})([/-])(\d{1,2})([/-])(\d{4})$`)

// ParseBrazilianDate parses a strictly day-first DD/MM/YYYY (or DD-MM-YYYY)
// date. Day-first is always assumed; a token like 03/01/2026 is January 3rd,
// never March 1st. Out-of-range day or month is rejected, as are mixed or
// unknown separators.
func ParseBrazilianDate(token string) (time.Time, error) {
	match := datePattern.FindStringSubmatch(token)
	if match == nil {
		return time.Time{}, &parsererror.DateFormatError{Token: token, Reason: "expected DD/MM/YYYY"}
	}
	if match[2] != match[4] {
		return time.Time{}, &parsererror.DateFormatError{Token: token, Reason: "mixed separators"}
	}

	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[3])
	year, _ := strconv.Atoi(match[5])

	if month < 1 || month > 12 {
		return time.Time{}, &parsererror.DateFormatError{Token: token, Reason: "month out of range"}
	}
	if day < 1 || day > 31 {
		return time.Time{}, &parsererror.DateFormatError{Token: token, Reason: "day out of range"}
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31/02 becomes March); reject that.
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, &parsererror.DateFormatError{Token: token, Reason: "day out of range for month"}
	}
	return t, nil
}

// FormatBrazilianDate renders a date as DD/MM/YYYY.
func FormatBrazilianDate(t time.Time) string {
	return t.Format(DateLayoutBrazilian)
}
