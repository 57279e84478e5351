package data

import (
	"database/sql"
	"log/slog"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/clinsight/comorbid/pkg/scoring"
)

const (
	upsertScoreSQL = `INSERT INTO score (cohort_id, seq, method, with_cardarrh, value, computed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cohort_id, seq, method, with_cardarrh) DO UPDATE
		SET value = excluded.value, computed_at = excluded.computed_at
	`

	selectScoresSQL = `SELECT p.pid, s.value
		FROM score s
		JOIN patient p ON p.cohort_id = s.cohort_id AND p.seq = s.seq
		WHERE s.cohort_id = ? AND s.method = ? AND s.with_cardarrh = ?
		ORDER BY s.seq
	`

	selectScoreStatsSQL = `SELECT COUNT(*), MIN(value), MAX(value), AVG(value)
		FROM score
		WHERE cohort_id = ? AND method = ? AND with_cardarrh = ?
	`

	selectScoreCountsSQL = `SELECT value, COUNT(*)
		FROM score
		WHERE cohort_id = ? AND method = ? AND with_cardarrh = ?
		GROUP BY value
		ORDER BY value
	`
)

// PatientScore is one stored per-patient score.
type PatientScore struct {
	Patient string `json:"patient" yaml:"patient"`
	Score   int    `json:"score" yaml:"score"`
}

// ScoreSummary describes one compute run over a stored cohort.
type ScoreSummary struct {
	Cohort       string  `json:"cohort" yaml:"cohort"`
	Method       string  `json:"method" yaml:"method"`
	WithCardArrh bool    `json:"with_cardarrh" yaml:"withCardarrh"`
	Patients     int     `json:"patients" yaml:"patients"`
	Min          int     `json:"min" yaml:"min"`
	Max          int     `json:"max" yaml:"max"`
	Mean         float64 `json:"mean" yaml:"mean"`
}

// ScoreDistribution is per-value score counts, chart-shaped.
type ScoreDistribution struct {
	Summary ScoreSummary `json:"summary" yaml:"summary"`
	Labels  []string     `json:"labels" yaml:"labels"`
	Counts  []int        `json:"counts" yaml:"counts"`
}

// ComputeScores loads a stored cohort, scores it with the given method, and
// upserts the per-patient results. Returns the run summary.
func ComputeScores(db *sql.DB, name string, m scoring.Method, includeCardArrh bool) (*ScoreSummary, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	c, err := GetCohort(db, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.Errorf("cohort not found: %s", name)
	}

	t, err := GetCohortTable(db, name)
	if err != nil {
		return nil, err
	}

	scores, err := scoring.Scores(t, m, includeCardArrh)
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	stmt, err := tx.Prepare(upsertScoreSQL)
	if err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "failed to prepare score statement")
	}

	computedAt := time.Now().UTC().Format(time.RFC3339)
	for seq, v := range scores {
		if _, err := stmt.Exec(c.ID, seq, string(m), boolToInt(includeCardArrh), v, computedAt); err != nil {
			tx.Rollback()
			return nil, errors.Wrapf(err, "failed to save score for row %d", seq)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	slog.Debug("scores computed", "cohort", name, "method", m, "patients", len(scores))
	return summarize(name, m, includeCardArrh, scores), nil
}

// GetScores returns the stored per-patient scores in import row order.
func GetScores(db *sql.DB, name string, m scoring.Method, includeCardArrh bool) ([]*PatientScore, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	c, err := GetCohort(db, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.Errorf("cohort not found: %s", name)
	}

	rows, err := db.Query(selectScoresSQL, c.ID, string(m), boolToInt(includeCardArrh))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query scores for cohort: %s", name)
	}
	defer rows.Close()

	list := make([]*PatientScore, 0)
	for rows.Next() {
		var ps PatientScore
		if err := rows.Scan(&ps.Patient, &ps.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan score row")
		}
		list = append(list, &ps)
	}
	return list, rows.Err()
}

// GetScoreDistribution returns stored score counts grouped by value, plus
// the run summary. Empty when no scores were computed for that combination.
func GetScoreDistribution(db *sql.DB, name string, m scoring.Method, includeCardArrh bool) (*ScoreDistribution, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	c, err := GetCohort(db, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.Errorf("cohort not found: %s", name)
	}

	dist := &ScoreDistribution{
		Summary: ScoreSummary{Cohort: name, Method: string(m), WithCardArrh: includeCardArrh},
		Labels:  make([]string, 0),
		Counts:  make([]int, 0),
	}

	var (
		count          int
		min, max, mean sql.NullFloat64
	)
	err = db.QueryRow(selectScoreStatsSQL, c.ID, string(m), boolToInt(includeCardArrh)).
		Scan(&count, &min, &max, &mean)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query score stats")
	}
	if count == 0 {
		return dist, nil
	}
	dist.Summary.Patients = count
	dist.Summary.Min = int(min.Float64)
	dist.Summary.Max = int(max.Float64)
	dist.Summary.Mean = mean.Float64

	rows, err := db.Query(selectScoreCountsSQL, c.ID, string(m), boolToInt(includeCardArrh))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query score counts")
	}
	defer rows.Close()

	for rows.Next() {
		var value, n int
		if err := rows.Scan(&value, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan score count row")
		}
		dist.Labels = append(dist.Labels, strconv.Itoa(value))
		dist.Counts = append(dist.Counts, n)
	}
	return dist, rows.Err()
}

func summarize(name string, m scoring.Method, includeCardArrh bool, scores []int) *ScoreSummary {
	s := &ScoreSummary{
		Cohort:       name,
		Method:       string(m),
		WithCardArrh: includeCardArrh,
		Patients:     len(scores),
	}
	if len(scores) == 0 {
		return s
	}
	s.Min, s.Max = scores[0], scores[0]
	var sum int
	for _, v := range scores {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Mean = float64(sum) / float64(len(scores))
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
