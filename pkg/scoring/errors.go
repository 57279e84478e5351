package scoring

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNoData is returned when the table is nil or has no rows.
	ErrNoData = errors.New("dataset required: table is nil or has no rows")

	// ErrUnknownMethod is returned for a method outside the recognized set.
	ErrUnknownMethod = errors.New(`method must be one of "van_walraven", "sid_30", "sid_29"`)

	// ErrCardArrhUnsupported is returned when the cardiac arrhythmia term is
	// requested with sid_29, which does not define a weight for it.
	ErrCardArrhUnsupported = errors.New(`method "sid_29" does not define a cardiac arrhythmia weight`)
)

// SchemaError reports missing or misnamed indicator columns. Its message
// enumerates the full expected column set with descriptions so the caller
// can fix their data against the HCUP naming standard.
type SchemaError struct {
	// Missing holds the absent column names in canonical order.
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) == 1 && e.Missing[0] == CardArrhColumn {
		return fmt.Sprintf("cardiac arrhythmia column %s (%s) missing or misnamed", CardArrhColumn, cardArrhDesc)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "missing or misnamed comorbidity columns: %s; expected columns:", strings.Join(e.Missing, ", "))
	for _, c := range comorbidities {
		fmt.Fprintf(&b, "\n  %-8s %s", c.name, c.desc)
	}
	return b.String()
}

// DomainError reports a non-binary indicator value. The whole dataset is
// validated before any score is computed; the first offending cell in
// column order is reported.
type DomainError struct {
	Column string
	Row    int // zero-based
	Value  string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("comorbidity indicators must be binary 0/1: column %s row %d has %q",
		e.Column, e.Row, e.Value)
}
