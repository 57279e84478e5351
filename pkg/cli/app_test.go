package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsight/comorbid/pkg/logging"
	"github.com/clinsight/comorbid/pkg/scoring"
)

func TestMain(m *testing.M) {
	logging.SetDefaultCLILogger(false)
	os.Exit(m.Run())
}

// writeCohortCSV writes a CSV with PID + all 29 indicators (+ CARDARRH when
// asked) and the given per-row overrides.
func writeCohortCSV(t *testing.T, dir string, withCardArrh bool, rows ...map[string]string) string {
	t.Helper()
	cols := append([]string{"PID"}, scoring.Columns()...)
	if withCardArrh {
		cols = append(cols, scoring.CardArrhColumn)
	}

	var b strings.Builder
	b.WriteString(strings.Join(cols, ","))
	b.WriteString("\n")
	for i, overrides := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = "0"
			if v, ok := overrides[c]; ok {
				cells[j] = v
			}
		}
		if cells[0] == "0" {
			cells[0] = "p-" + string(rune('1'+i))
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}

	path := filepath.Join(dir, "cohort.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0600))
	return path
}

func TestNewApp(t *testing.T) {
	app := newApp()
	require.NotNil(t, app)
	assert.Equal(t, "comorbid", app.Name)

	names := make([]string, 0, len(app.Commands))
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	for _, want := range []string{"score", "import", "compute", "query", "config", "server"} {
		assert.Contains(t, names, want)
	}
}

func TestRunScoreToFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCohortCSV(t, dir, false,
		map[string]string{"CHF": "1", "DRUG": "1", "METS": "1"},
		map[string]string{},
	)
	outPath := filepath.Join(dir, "scored.csv")
	dbPath := filepath.Join(dir, "data.db")

	app := newApp()
	err := app.Run([]string{"comorbid", "--db", dbPath,
		"score", "--file", csvPath, "--out", outPath})
	require.NoError(t, err)

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], ",SCORE"))
	assert.True(t, strings.HasSuffix(lines[1], ",12"))
	assert.True(t, strings.HasSuffix(lines[2], ",0"))
}

func TestRunScoreUnknownMethod(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCohortCSV(t, dir, false, map[string]string{})

	app := newApp()
	err := app.Run([]string{"comorbid", "--db", filepath.Join(dir, "data.db"),
		"score", "--file", csvPath, "--method", "sid30"})
	assert.ErrorIs(t, err, scoring.ErrUnknownMethod)
}

func TestRunScoreMissingFile(t *testing.T) {
	dir := t.TempDir()
	app := newApp()
	err := app.Run([]string{"comorbid", "--db", filepath.Join(dir, "data.db"),
		"score", "--file", filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)
}

func TestRunImportAndCompute(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCohortCSV(t, dir, true,
		map[string]string{"CHF": "1", scoring.CardArrhColumn: "1"},
	)
	dbPath := filepath.Join(dir, "data.db")

	run := func(args ...string) error {
		app := newApp()
		return app.Run(append([]string{"comorbid", "--db", dbPath}, args...))
	}

	require.NoError(t, run("import", "--file", csvPath, "--name", "c1"))
	require.NoError(t, run("compute", "--name", "c1", "--method", "sid_30", "--cardarrh"))
	require.NoError(t, run("query", "cohorts"))
	require.NoError(t, run("query", "scores", "--name", "c1", "--method", "sid_30", "--cardarrh"))
	require.NoError(t, run("query", "scores", "--name", "c1", "--method", "sid_30", "--cardarrh", "--patients"))
	require.NoError(t, run("query", "state"))

	// unknown cohort fails
	assert.Error(t, run("compute", "--name", "nope"))
}

func TestGetHomeDir(t *testing.T) {
	assert.NotEmpty(t, getHomeDir())
}
