// Package scoring computes Elixhauser-based comorbidity indices (van
// Walraven, SID-30, SID-29) from binary indicator tables. Scores are pure
// per-row weighted sums over fixed published weight tables; the package
// holds no state between calls.
package scoring

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// parallelRowThreshold is the row count above which the per-row dot product
// is chunked across goroutines. Purely a throughput optimization: output
// order and values are identical on both paths.
const parallelRowThreshold = 4096

// Scores computes one comorbidity score per table row, in input row order.
//
// Validation happens fully before any score is computed, in fixed order:
// the table is non-nil and non-empty, the method is recognized (and
// compatible with includeCardArrh), all 29 required indicator columns are
// present, every cell in those columns across every row is binary 0/1, and
// when includeCardArrh is set the CARDARRH column exists and is binary too.
// A single violation aborts the whole computation with no partial result.
//
// The table is never mutated.
func Scores(t *Table, m Method, includeCardArrh bool) ([]int, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrNoData
	}
	if !m.valid() {
		return nil, fmt.Errorf("%q: %w", m, ErrUnknownMethod)
	}
	if includeCardArrh && m == MethodSID29 {
		return nil, ErrCardArrhUnsupported
	}

	var missing []string
	for _, c := range comorbidities {
		if !t.HasColumn(c.name) {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	if err := checkBinary(t, Columns()); err != nil {
		return nil, err
	}

	if includeCardArrh {
		if !t.HasColumn(CardArrhColumn) {
			return nil, &SchemaError{Missing: []string{CardArrhColumn}}
		}
		if err := checkBinary(t, []string{CardArrhColumn}); err != nil {
			return nil, err
		}
	}

	terms := methodTerms(t, m, includeCardArrh)
	scores := make([]int, t.Len())

	if t.Len() < parallelRowThreshold {
		for i := range scores {
			scores[i] = scoreRow(t, i, terms)
		}
		return scores, nil
	}

	g := new(errgroup.Group)
	workers := runtime.NumCPU()
	chunk := (t.Len() + workers - 1) / workers
	for lo := 0; lo < t.Len(); lo += chunk {
		lo, hi := lo, min(lo+chunk, t.Len())
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				scores[i] = scoreRow(t, i, terms)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// term is one resolved (column index, weight) pair of the selected method.
type term struct {
	col    int
	weight int
}

func methodTerms(t *Table, m Method, includeCardArrh bool) []term {
	terms := make([]term, 0, len(comorbidities)+1)
	for _, c := range comorbidities {
		terms = append(terms, term{col: t.idx[c.name], weight: c.weight(m)})
	}
	if includeCardArrh {
		terms = append(terms, term{col: t.idx[CardArrhColumn], weight: cardArrhWeights[m]})
	}
	return terms
}

func scoreRow(t *Table, row int, terms []term) int {
	var sum int
	for _, tm := range terms {
		// validated: cell is "0" or "1" modulo whitespace
		if v, _ := binaryValue(t.cell(row, tm.col)); v == 1 {
			sum += tm.weight
		}
	}
	return sum
}

// checkBinary scans the named columns across all rows and returns a
// DomainError for the first non-binary cell, in column-major order.
func checkBinary(t *Table, columns []string) error {
	for _, name := range columns {
		col := t.idx[name]
		for row := range t.rows {
			if _, ok := binaryValue(t.cell(row, col)); !ok {
				return &DomainError{Column: name, Row: row, Value: t.cell(row, col)}
			}
		}
	}
	return nil
}

// binaryValue coerces one cell to its 0/1 indicator value. Only "0" and "1"
// qualify after whitespace trim; "", "yes", "2", "-1" and "1.0" all fail.
func binaryValue(s string) (int, bool) {
	switch strings.TrimSpace(s) {
	case "0":
		return 0, true
	case "1":
		return 1, true
	}
	return 0, false
}
