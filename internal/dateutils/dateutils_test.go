package dateutils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rafaelvasco/dindinho/internal/parsererror"
)

func TestParseBrazilianDate(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected time.Time
		hasError bool
	}{
		{"Day first", "03/01/2026", time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), false},
		{"End of year", "31/12/2025", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"Single digit fields", "3/1/2026", time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), false},
		{"Dash separator", "03-01-2026", time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), false},
		{"Day above twelve", "25/06/2025", time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC), false},
		{"Leap day", "29/02/2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), false},
		{"Month out of range", "03/13/2026", time.Time{}, true},
		{"Day out of range", "32/01/2026", time.Time{}, true},
		{"Nonexistent leap day", "29/02/2025", time.Time{}, true},
		{"Two digit year", "03/01/26", time.Time{}, true},
		{"Mixed separators", "03/01-2026", time.Time{}, true},
		{"ISO date", "2026-01-03", time.Time{}, true},
		{"Empty", "", time.Time{}, true},
		{"Garbage", "not a date", time.Time{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBrazilianDate(tc.token)

			if tc.hasError {
				assert.Error(t, err)
				var dfe *parsererror.DateFormatError
				assert.True(t, errors.As(err, &dfe), "expected DateFormatError, got %T", err)
			} else {
				assert.NoError(t, err)
				assert.True(t, tc.expected.Equal(got), "expected %s, got %s", tc.expected, got)
			}
		})
	}
}

// Day-first is never swapped: 03/01 is January 3rd even though 01/03 would
// also be a valid calendar date.
func TestParseBrazilianDateNeverSwaps(t *testing.T) {
	got, err := ParseBrazilianDate("03/01/2026")
	assert.NoError(t, err)
	assert.Equal(t, 3, got.Day())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 2026, got.Year())
}

func TestFormatBrazilianDate(t *testing.T) {
	assert.Equal(t, "03/01/2026", FormatBrazilianDate(time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)))
}
