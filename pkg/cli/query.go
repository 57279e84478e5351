package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"

	"github.com/clinsight/comorbid/pkg/data"
)

var (
	patientsFlag = &urfave.BoolFlag{
		Name:  "patients",
		Usage: "List per-patient scores instead of the distribution",
	}

	queryCmd = &urfave.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Query imported cohorts and stored scores",
		Subcommands: []*urfave.Command{
			{
				Name:    "cohorts",
				Usage:   "List imported cohorts",
				Aliases: []string{"c"},
				Action:  cmdQueryCohorts,
			},
			{
				Name:    "scores",
				Usage:   "Show stored scores for a cohort (distribution, or per-patient with --patients)",
				Aliases: []string{"s"},
				Action:  cmdQueryScores,
				Flags: []urfave.Flag{
					cohortNameFlag,
					methodFlag,
					cardarrhFlag,
					patientsFlag,
				},
			},
			{
				Name:   "state",
				Usage:  "Show database row counts",
				Action: cmdQueryState,
			},
		},
	}
)

func cmdQueryCohorts(c *urfave.Context) error {
	cfg := getConfig(c)
	list, err := data.ListCohorts(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to list cohorts: %w", err)
	}
	return encode(list)
}

func cmdQueryScores(c *urfave.Context) error {
	name := c.String(cohortNameFlag.Name)
	cfg := getConfig(c)

	m, err := selectedMethod(c)
	if err != nil {
		return err
	}
	withCardArrh := c.Bool(cardarrhFlag.Name)

	if c.Bool(patientsFlag.Name) {
		list, err := data.GetScores(cfg.DB, name, m, withCardArrh)
		if err != nil {
			return fmt.Errorf("failed to query scores: %w", err)
		}
		return encode(list)
	}

	dist, err := data.GetScoreDistribution(cfg.DB, name, m, withCardArrh)
	if err != nil {
		return fmt.Errorf("failed to query score distribution: %w", err)
	}
	return encode(dist)
}

func cmdQueryState(c *urfave.Context) error {
	cfg := getConfig(c)
	state, err := data.GetDataState(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query data state: %w", err)
	}
	return encode(state)
}
