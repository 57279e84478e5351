package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"

	"github.com/clinsight/comorbid/pkg/config"
	"github.com/clinsight/comorbid/pkg/scoring"
)

var (
	confMethodFlag = &urfave.StringFlag{
		Name:  "method",
		Usage: "Default weighting method",
	}

	confFormatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Default output format [json, yaml]",
	}

	confDBFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Default Sqlite database file path",
	}

	configCmd = &urfave.Command{
		Name:  "config",
		Usage: "Show or update persisted CLI defaults",
		Subcommands: []*urfave.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: cmdConfigShow,
			},
			{
				Name:   "set",
				Usage:  "Update one or more configuration defaults",
				Action: cmdConfigSet,
				Flags: []urfave.Flag{
					confMethodFlag,
					confFormatFlag,
					confDBFlag,
				},
			},
		},
	}
)

func cmdConfigShow(c *urfave.Context) error {
	return encode(getConfig(c).Conf)
}

func cmdConfigSet(c *urfave.Context) error {
	home := getHomeDir()
	conf, err := config.Load(home)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if v := c.String(confMethodFlag.Name); v != "" {
		if _, err := scoring.ParseMethod(v); err != nil {
			return err
		}
		conf.Method = v
	}
	if v := c.String(confFormatFlag.Name); v != "" {
		if v != formatJSON && v != formatYAML {
			return fmt.Errorf("unknown format: %s", v)
		}
		conf.Format = v
	}
	if v := c.String(confDBFlag.Name); v != "" {
		conf.DBPath = v
	}

	if err := config.Save(home, conf); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return encode(conf)
}
