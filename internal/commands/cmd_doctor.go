package commands

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/storefront/internal/api"
	"github.com/hay-kot/storefront/internal/commands/doctor"
	"github.com/hay-kot/storefront/internal/printer"
	"github.com/hay-kot/storefront/internal/store/jsonfile"
)

type DoctorCmd struct {
	flags  *Flags
	format string
	fix    bool
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your shop setup",
		UsageText:   "shop doctor [--fix] [--format text|json]",
		Description: "Checks the configuration, the saved session and cart, and whether the backend answers.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "fix",
				Usage:       "reset unreadable or stale local files",
				Destination: &cmd.fix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	report := doctor.Run(ctx,
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewStorageCheck(
			jsonfile.NewSessionStore(cfg.SessionFile()),
			jsonfile.NewCartStore(cfg.CartFile()),
			cmd.fix,
		),
		doctor.NewAPICheck(api.New(cfg.API.BaseURL,
			api.WithTimeout(cfg.API.Timeout),
			api.WithUserAgent(cfg.API.UserAgent),
		)),
	)

	if cmd.format == "json" {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		cmd.outputText(ctx, report)
	}

	if !report.Healthy {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DoctorCmd) outputText(ctx context.Context, report doctor.Report) {
	p := printer.Ctx(ctx)

	for _, result := range report.Checks {
		p.Section(result.Name)

		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass, doctor.StatusFixed:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			}
		}

		p.Printf("")
	}

	sum := report.Summary
	p.Printf("Summary: %d passed, %d warnings, %d failed", sum.Passed, sum.Warned, sum.Failed)

	if sum.Fixed > 0 {
		p.Successf("Repaired %d issue(s)", sum.Fixed)
	}
	if sum.Fixable > 0 && !cmd.fix {
		p.Infof("Run 'shop doctor --fix' to repair %d issue(s)", sum.Fixable)
	}
}
