package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"

	"github.com/clinsight/comorbid/pkg/csvio"
	"github.com/clinsight/comorbid/pkg/data"
)

var (
	cohortNameFlag = &urfave.StringFlag{
		Name:     "name",
		Aliases:  []string{"n"},
		Usage:    "Cohort name",
		Required: true,
	}

	importCmd = &urfave.Command{
		Name:      "import",
		Aliases:   []string{"i"},
		Usage:     "Validate an indicator CSV file and store it as a named cohort",
		UsageText: `comorbid import --file cohort.csv --name admits-2025`,
		Action:    cmdImport,
		Flags: []urfave.Flag{
			fileFlag,
			cohortNameFlag,
		},
	}

	computeCmd = &urfave.Command{
		Name:    "compute",
		Aliases: []string{"c"},
		Usage:   "Compute and store scores for an imported cohort",
		UsageText: `comorbid compute --name admits-2025                        # van Walraven
   comorbid compute --name admits-2025 --method sid_30 --cardarrh`,
		Action: cmdCompute,
		Flags: []urfave.Flag{
			cohortNameFlag,
			methodFlag,
			cardarrhFlag,
		},
	}
)

func cmdImport(c *urfave.Context) error {
	file := c.String(fileFlag.Name)
	name := c.String(cohortNameFlag.Name)
	cfg := getConfig(c)

	t, err := csvio.ReadTableFile(file)
	if err != nil {
		return fmt.Errorf("failed to read table: %w", err)
	}

	cohort, err := data.SaveCohort(cfg.DB, name, t)
	if err != nil {
		return fmt.Errorf("failed to import cohort: %w", err)
	}

	return encode(cohort)
}

func cmdCompute(c *urfave.Context) error {
	name := c.String(cohortNameFlag.Name)
	cfg := getConfig(c)

	m, err := selectedMethod(c)
	if err != nil {
		return err
	}

	summary, err := data.ComputeScores(cfg.DB, name, m, c.Bool(cardarrhFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to compute scores: %w", err)
	}

	return encode(summary)
}
