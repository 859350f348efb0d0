// Package validate checks individual request fields for presence and format.
// Validation is fail-fast: callers run rules in order and stop at the first
// *FieldError.
package validate

import (
	"regexp"
	"strings"

	"github.com/jarrod-lowe/cnh-agent-actions/internal/payload"
)

// Format is a whole-value pattern with its human-readable description
type Format struct {
	Pattern     *regexp.Regexp
	Description string
}

var (
	// CPF is an 11-digit identifier without separators
	CPF = &Format{
		Pattern:     regexp.MustCompile(`^[0-9]{11}$`),
		Description: "Use 11 dígitos numéricos",
	}
	// Date is a DD/MM/YYYY shaped date. Calendar validity is not checked.
	Date = &Format{
		Pattern:     regexp.MustCompile(`^[0-9]{2}/[0-9]{2}/[0-9]{4}$`),
		Description: "Formato DD/MM/AAAA",
	}
)

// Rule is one declarative required-field check. A nil Format only checks
// presence.
type Rule struct {
	Field  string
	Format *Format
}

// Required builds a presence-only rule
func Required(field string) Rule {
	return Rule{Field: field}
}

// RequiredFormat builds a presence and format rule
func RequiredFormat(field string, format *Format) Rule {
	return Rule{Field: field, Format: format}
}

// Require checks that field is present and non-blank in p, and when format is
// non-nil that its text fully matches. It returns the unmodified value.
func Require(p payload.Payload, field string, format *Format) (any, error) {
	v, ok := p.Get(field)
	if !ok || v == nil {
		return nil, NewMissingFieldError(field)
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, NewMissingFieldError(field)
	}

	if format != nil && !format.Pattern.MatchString(payload.TextOf(v)) {
		return nil, NewInvalidFormatError(field, format.Description)
	}
	return v, nil
}

// Apply runs rules in order against p and returns the first failure
func Apply(p payload.Payload, rules []Rule) error {
	for _, r := range rules {
		if _, err := Require(p, r.Field, r.Format); err != nil {
			return err
		}
	}
	return nil
}
