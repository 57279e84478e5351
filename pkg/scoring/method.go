package scoring

import (
	"fmt"
)

// Method selects one of the published comorbidity weighting schemes.
type Method string

const (
	// MethodVanWalraven is the van Walraven adaptation of the Elixhauser
	// index (Med Care 2009).
	MethodVanWalraven Method = "van_walraven"

	// MethodSID30 is the 30-indicator SID readmission weighting.
	MethodSID30 Method = "sid_30"

	// MethodSID29 is the 29-indicator SID readmission weighting. It has no
	// cardiac arrhythmia term.
	MethodSID29 Method = "sid_29"

	// DefaultMethod is used when the caller does not specify one.
	DefaultMethod = MethodVanWalraven
)

// Methods lists the recognized weighting schemes in documentation order.
var Methods = []Method{MethodVanWalraven, MethodSID30, MethodSID29}

// ParseMethod converts a string into a Method. Matching is exact, no
// normalization ("sid30" or "VanWalraven" are rejected).
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodVanWalraven, MethodSID30, MethodSID29:
		return Method(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownMethod)
}

func (m Method) valid() bool {
	switch m {
	case MethodVanWalraven, MethodSID30, MethodSID29:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (m Method) String() string {
	return string(m)
}
