package data

import (
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/clinsight/comorbid/pkg/scoring"
)

const (
	// PatientIDColumn is used as the patient identifier when present in an
	// imported table; otherwise the 1-based row number is stored.
	PatientIDColumn = "PID"

	insertCohortSQL    = `INSERT INTO cohort (name, imported_at, patients) VALUES (?, ?, ?)`
	insertPatientSQL   = `INSERT INTO patient (cohort_id, seq, pid) VALUES (?, ?, ?)`
	insertIndicatorSQL = `INSERT INTO indicator (cohort_id, seq, name, value) VALUES (?, ?, ?, ?)`

	selectCohortSQL = `SELECT id, name, imported_at, patients FROM cohort WHERE name = ?`
	listCohortsSQL  = `SELECT id, name, imported_at, patients FROM cohort ORDER BY name`

	selectIndicatorsSQL = `SELECT p.seq, p.pid, i.name, i.value
		FROM patient p
		JOIN indicator i ON i.cohort_id = p.cohort_id AND i.seq = p.seq
		WHERE p.cohort_id = ?
		ORDER BY p.seq
	`

	selectHasCardArrhSQL = `SELECT COUNT(*) FROM indicator WHERE cohort_id = ? AND name = ?`
)

// Cohort describes one imported dataset.
type Cohort struct {
	ID         int64  `json:"-" yaml:"-"`
	Name       string `json:"name" yaml:"name"`
	ImportedAt string `json:"imported_at" yaml:"importedAt"`
	Patients   int    `json:"patients" yaml:"patients"`
}

// SaveCohort validates the table and stores it under the given name. The 29
// required indicators are always stored; CARDARRH is stored when the table
// has it. Validation uses the default method, so a table that would fail
// every scoring call is rejected at import time.
func SaveCohort(db *sql.DB, name string, t *scoring.Table) (*Cohort, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if name == "" {
		return nil, errors.New("cohort name required")
	}
	if t.Len() == 0 {
		return nil, scoring.ErrNoData
	}

	withCardArrh := t.HasColumn(scoring.CardArrhColumn)
	if _, err := scoring.Scores(t, scoring.DefaultMethod, withCardArrh); err != nil {
		return nil, err
	}

	cols := scoring.Columns()
	if withCardArrh {
		cols = append(cols, scoring.CardArrhColumn)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}

	importedAt := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.Exec(insertCohortSQL, name, importedAt, t.Len())
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrapf(err, "failed to insert cohort: %s", name)
	}
	cohortID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "failed to get cohort id")
	}

	patientStmt, err := tx.Prepare(insertPatientSQL)
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "failed to prepare patient statement")
	}
	indicatorStmt, err := tx.Prepare(insertIndicatorSQL)
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "failed to prepare indicator statement")
	}

	for seq := 0; seq < t.Len(); seq++ {
		pid := strconv.Itoa(seq + 1)
		if v, ok := t.Value(seq, PatientIDColumn); ok && v != "" {
			pid = v
		}
		if _, err := patientStmt.Exec(cohortID, seq, pid); err != nil {
			tx.Rollback()
			return nil, errors.Wrapf(err, "failed to insert patient %s", pid)
		}
		for _, c := range cols {
			cell, _ := t.Value(seq, c)
			v := 0
			if strings.TrimSpace(cell) == "1" {
				v = 1
			}
			if _, err := indicatorStmt.Exec(cohortID, seq, c, v); err != nil {
				tx.Rollback()
				return nil, errors.Wrapf(err, "failed to insert indicator %s for patient %s", c, pid)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	slog.Debug("cohort saved", "name", name, "patients", t.Len(), "cardarrh", withCardArrh)
	return &Cohort{ID: cohortID, Name: name, ImportedAt: importedAt, Patients: t.Len()}, nil
}

// GetCohort returns cohort metadata by name, or nil when not found.
func GetCohort(db *sql.DB, name string) (*Cohort, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var c Cohort
	err := db.QueryRow(selectCohortSQL, name).Scan(&c.ID, &c.Name, &c.ImportedAt, &c.Patients)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query cohort: %s", name)
	}
	return &c, nil
}

// ListCohorts returns all imported cohorts ordered by name.
func ListCohorts(db *sql.DB) ([]*Cohort, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(listCohortsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cohorts")
	}
	defer rows.Close()

	list := make([]*Cohort, 0)
	for rows.Next() {
		var c Cohort
		if err := rows.Scan(&c.ID, &c.Name, &c.ImportedAt, &c.Patients); err != nil {
			return nil, errors.Wrap(err, "failed to scan cohort row")
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// GetCohortTable reconstructs the indicator table of a stored cohort in its
// original row order: a PID column, the 29 indicators in canonical order,
// and CARDARRH when it was imported.
func GetCohortTable(db *sql.DB, name string) (*scoring.Table, error) {
	c, err := GetCohort(db, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.Errorf("cohort not found: %s", name)
	}

	var cardArrhRows int
	if err := db.QueryRow(selectHasCardArrhSQL, c.ID, scoring.CardArrhColumn).Scan(&cardArrhRows); err != nil {
		return nil, errors.Wrap(err, "failed to check cardiac arrhythmia column")
	}

	cols := append([]string{PatientIDColumn}, scoring.Columns()...)
	if cardArrhRows > 0 {
		cols = append(cols, scoring.CardArrhColumn)
	}
	colIdx := make(map[string]int, len(cols))
	for i, col := range cols {
		colIdx[col] = i
	}

	rows, err := db.Query(selectIndicatorsSQL, c.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query indicators for cohort: %s", name)
	}
	defer rows.Close()

	t := scoring.NewTable(cols)
	var cells []string
	lastSeq := -1
	flush := func() error {
		if cells == nil {
			return nil
		}
		return t.Append(cells...)
	}

	for rows.Next() {
		var (
			seq        int
			pid, iname string
			value      int
		)
		if err := rows.Scan(&seq, &pid, &iname, &value); err != nil {
			return nil, errors.Wrap(err, "failed to scan indicator row")
		}
		if seq != lastSeq {
			if err := flush(); err != nil {
				return nil, err
			}
			cells = make([]string, len(cols))
			for i := range cells {
				cells[i] = "0"
			}
			cells[0] = pid
			lastSeq = seq
		}
		if i, ok := colIdx[iname]; ok {
			cells[i] = strconv.Itoa(value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate indicator rows")
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return t, nil
}
