package data

import (
	"database/sql"

	"github.com/pkg/errors"
)

var stateQueries = map[string]string{
	"cohorts":    "SELECT COUNT(*) FROM cohort",
	"patients":   "SELECT COUNT(*) FROM patient",
	"indicators": "SELECT COUNT(*) FROM indicator",
	"scores":     "SELECT COUNT(*) FROM score",
	"methods":    "SELECT COUNT(DISTINCT method) FROM score",
}

// GetDataState returns row counts of the database.
func GetDataState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64)
	for k, q := range stateQueries {
		var count int64
		err := db.QueryRow(q).Scan(&count)
		if err != nil && err != sql.ErrNoRows {
			return nil, errors.Wrapf(err, "error getting %s count", k)
		}
		state[k] = count
	}

	return state, nil
}
