// Package currencyutils parses and formats Brazilian Real (BRL) amounts.
// Amounts are handled as signed integer centavos so equality checks during
// deduplication are exact; floats never enter the pipeline.
package currencyutils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rafaelvasco/dindinho/internal/parsererror"
)

// brlPattern accepts the BRL shape: optional R$ prefix, optional minus
// before or after it, dot thousands groups, a single comma decimal group.
var brlPattern = regexp.MustCompile(`^-?(R\$\s*)?-?(\d{1,3}(\.\d{3})+|\d+)(,\d{1,2})?$`)

// ParseBRL converts a BRL currency token to signed centavos.
//
//	"R$ 119,90" -> 11990
//	"-703,69"   -> -70369
//	"1.008,71"  -> 100871
func ParseBRL(token string) (int64, error) {
	cleaned := strings.TrimSpace(token)
	if cleaned == "" {
		return 0, &parsererror.ValueFormatError{Token: token, Reason: "empty token"}
	}
	if strings.Count(cleaned, ",") > 1 {
		return 0, &parsererror.ValueFormatError{Token: token, Reason: "more than one decimal group"}
	}
	if strings.Count(cleaned, "-") > 1 {
		return 0, &parsererror.ValueFormatError{Token: token, Reason: "more than one sign"}
	}
	if !brlPattern.MatchString(cleaned) {
		return 0, &parsererror.ValueFormatError{Token: token, Reason: "does not match BRL amount pattern"}
	}

	negative := strings.Contains(cleaned, "-")
	cleaned = strings.NewReplacer("R$", "", " ", "", "-", "", ".", "").Replace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, &parsererror.ValueFormatError{Token: token, Reason: err.Error()}
	}

	cents := dec.Shift(2).IntPart()
	if negative {
		cents = -cents
	}
	return cents, nil
}

// FormatBRL renders centavos back to the Brazilian format with R$ prefix.
//
//	11990 -> "R$ 119,90"
//	-70369 -> "R$ -703,69"
func FormatBRL(cents int64) string {
	dec := decimal.NewFromInt(cents).Shift(-2)
	fixed := dec.Abs().StringFixed(2)

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	sign := ""
	if cents < 0 {
		sign = "-"
	}
	return "R$ " + sign + grouped.String() + "," + fracPart
}
