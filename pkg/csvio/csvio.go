// Package csvio reads indicator tables from CSV and writes scored copies
// back out. The first record is the header; every record after it is one
// patient row.
package csvio

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/clinsight/comorbid/pkg/scoring"
	"github.com/pkg/errors"
)

// ScoreColumn is the default name of the appended score column.
const ScoreColumn = "SCORE"

// ReadTable parses CSV content into a table. Column names are taken from the
// header verbatim, no renaming or case folding.
func ReadTable(r io.Reader) (*scoring.Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty CSV: missing header record")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}

	t := scoring.NewTable(header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read CSV record")
		}
		if err := t.Append(rec...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadTableFile reads a CSV file into a table.
func ReadTableFile(path string) (*scoring.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file: %s", path)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse CSV file: %s", path)
	}
	return t, nil
}

// WriteScored writes the table back out as CSV with one extra column holding
// the computed scores. The score count must match the row count.
func WriteScored(w io.Writer, t *scoring.Table, scores []int, column string) error {
	if t == nil {
		return errors.New("table required")
	}
	if len(scores) != t.Len() {
		return errors.Errorf("have %d scores for %d rows", len(scores), t.Len())
	}
	if column == "" {
		column = ScoreColumn
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(t.Columns(), column)); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for i := 0; i < t.Len(); i++ {
		rec := append(t.Row(i), strconv.Itoa(scores[i]))
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "failed to write CSV record %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV output")
}
