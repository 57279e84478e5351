package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsight/comorbid/pkg/scoring"
)

// testTable builds a scoreable table with a PID column, all 29 indicators,
// optionally CARDARRH, and the given per-row indicator overrides.
func testTable(t *testing.T, withCardArrh bool, rows ...map[string]string) *scoring.Table {
	t.Helper()
	cols := append([]string{PatientIDColumn}, scoring.Columns()...)
	if withCardArrh {
		cols = append(cols, scoring.CardArrhColumn)
	}
	tbl := scoring.NewTable(cols)
	for i, overrides := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = "0"
			if v, ok := overrides[c]; ok {
				cells[j] = v
			}
		}
		if cells[0] == "0" {
			cells[0] = "p-" + string(rune('a'+i))
		}
		require.NoError(t, tbl.Append(cells...))
	}
	return tbl
}

func TestSaveCohort(t *testing.T) {
	db := setupTestDB(t)
	tbl := testTable(t, false,
		map[string]string{"CHF": "1"},
		map[string]string{"METS": "1", "DRUG": "1"},
	)

	c, err := SaveCohort(db, "admits-2025", tbl)
	require.NoError(t, err)
	assert.Equal(t, "admits-2025", c.Name)
	assert.Equal(t, 2, c.Patients)
	assert.NotEmpty(t, c.ImportedAt)
}

func TestSaveCohort_NilDB(t *testing.T) {
	_, err := SaveCohort(nil, "x", testTable(t, false, map[string]string{}))
	assert.Error(t, err)
}

func TestSaveCohort_EmptyName(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveCohort(db, "", testTable(t, false, map[string]string{}))
	assert.Error(t, err)
}

func TestSaveCohort_DuplicateName(t *testing.T) {
	db := setupTestDB(t)
	tbl := testTable(t, false, map[string]string{})
	_, err := SaveCohort(db, "dup", tbl)
	require.NoError(t, err)
	_, err = SaveCohort(db, "dup", tbl)
	assert.Error(t, err)
}

func TestSaveCohort_RejectsInvalidData(t *testing.T) {
	db := setupTestDB(t)

	// missing indicator columns
	bad := scoring.NewTable([]string{"PID", "CHF"})
	require.NoError(t, bad.Append("p-1", "1"))
	_, err := SaveCohort(db, "bad", bad)
	var schemaErr *scoring.SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	// non-binary cell
	tbl := testTable(t, false, map[string]string{"CHF": "yes"})
	_, err = SaveCohort(db, "bad2", tbl)
	var domainErr *scoring.DomainError
	assert.ErrorAs(t, err, &domainErr)
}

func TestGetCohort_NotFound(t *testing.T) {
	db := setupTestDB(t)
	c, err := GetCohort(db, "nope")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestListCohorts(t *testing.T) {
	db := setupTestDB(t)

	list, err := ListCohorts(db)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = SaveCohort(db, "beta", testTable(t, false, map[string]string{}))
	require.NoError(t, err)
	_, err = SaveCohort(db, "alpha", testTable(t, false, map[string]string{}))
	require.NoError(t, err)

	list, err = ListCohorts(db)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "beta", list[1].Name)
}

func TestGetCohortTable_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	tbl := testTable(t, true,
		map[string]string{PatientIDColumn: "p-1", "CHF": "1", scoring.CardArrhColumn: "1"},
		map[string]string{PatientIDColumn: "p-2", "LYTES": "1"},
		map[string]string{PatientIDColumn: "p-3"},
	)
	_, err := SaveCohort(db, "rt", tbl)
	require.NoError(t, err)

	got, err := GetCohortTable(db, "rt")
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())
	assert.True(t, got.HasColumn(scoring.CardArrhColumn))

	// row order and values survive
	pid, _ := got.Value(0, PatientIDColumn)
	assert.Equal(t, "p-1", pid)
	chf, _ := got.Value(0, "CHF")
	assert.Equal(t, "1", chf)
	ca, _ := got.Value(0, scoring.CardArrhColumn)
	assert.Equal(t, "1", ca)
	lytes, _ := got.Value(1, "LYTES")
	assert.Equal(t, "1", lytes)
	chf3, _ := got.Value(2, "CHF")
	assert.Equal(t, "0", chf3)

	// reconstructed table scores cleanly
	scores, err := scoring.Scores(got, scoring.MethodVanWalraven, true)
	require.NoError(t, err)
	assert.Equal(t, []int{12, 5, 0}, scores)
}

func TestGetCohortTable_SynthesizedPIDs(t *testing.T) {
	db := setupTestDB(t)

	cols := scoring.Columns() // no PID column
	tbl := scoring.NewTable(cols)
	cells := make([]string, len(cols))
	for i := range cells {
		cells[i] = "0"
	}
	require.NoError(t, tbl.Append(cells...))
	require.NoError(t, tbl.Append(cells...))

	_, err := SaveCohort(db, "nopid", tbl)
	require.NoError(t, err)

	got, err := GetCohortTable(db, "nopid")
	require.NoError(t, err)
	pid, _ := got.Value(0, PatientIDColumn)
	assert.Equal(t, "1", pid)
	pid, _ = got.Value(1, PatientIDColumn)
	assert.Equal(t, "2", pid)
}

func TestGetCohortTable_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := GetCohortTable(db, "nope")
	assert.Error(t, err)
}
