package validation

import "regexp"

// Reference numbers as printed on reports: letters, digits, hyphens,
// e.g. GIL-2024-001234. Matching is exact and case-sensitive everywhere;
// this only constrains the shape of new references.
var referenceRe = regexp.MustCompile(`^[A-Za-z0-9-]{6,64}$`)

// Proportions are decimal strings as printed (e.g. "57.5", "34.0").
var numericRe = regexp.MustCompile(`^\d+(\.\d+)?$`)

func IsValidReferenceNumber(ref string) bool {
	return referenceRe.MatchString(ref)
}

func IsNumericString(s string) bool {
	return numericRe.MatchString(s)
}
