package domain

import "strings"

// ServiceID identifies a fibre broadband service. It is the join key across
// every diagnostic dataset.
type ServiceID string

// ServiceIDLength is the canonical identifier length. Lookups are only
// performed once an identifier reaches it; partial input never triggers
// evaluation.
const ServiceIDLength = 14

// CanonicalServiceID trims and upper-cases raw input.
func CanonicalServiceID(raw string) ServiceID {
	return ServiceID(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsCanonical reports whether the identifier has the canonical length.
func (s ServiceID) IsCanonical() bool {
	return len(s) == ServiceIDLength
}
