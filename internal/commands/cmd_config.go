package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/storefront/internal/commands/doctor"
	"github.com/hay-kot/storefront/internal/printer"
)

// ConfigCmd inspects the effective configuration without contacting the
// backend or touching the saved session and cart.
type ConfigCmd struct {
	flags  *Flags
	format string
}

func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Inspect the shop configuration",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Check the backend URL, currency, banned route and data directory",
				UsageText:   "shop config validate [--format text|json]",
				Description: "Exits 1 when a setting is invalid. Warnings, such as sending tokens over plain http, do not fail the command.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:        "show",
				Usage:       "Print the effective configuration",
				UsageText:   "shop config show",
				Description: "Prints the configuration after defaults and flag overrides are applied.",
				Action:      cmd.runShow,
			},
		},
	})

	return app
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	report := doctor.Run(ctx, doctor.NewConfigCheck(cmd.flags.Config, cmd.flags.ConfigPath))
	settings := report.Checks[0].Items

	if cmd.format == "json" {
		out := struct {
			Valid    bool          `json:"valid"`
			Settings []doctor.Item `json:"settings"`
		}{
			Valid:    report.Healthy,
			Settings: settings,
		}

		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		p := printer.Ctx(ctx)
		for _, item := range settings {
			switch item.Status {
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			default:
				p.CheckItem(item.Label, item.Detail)
			}
		}

		p.Printf("")
		switch sum := report.Summary; {
		case sum.Failed > 0:
			p.Errorf("%d invalid setting(s), %d warning(s)", sum.Failed, sum.Warned)
		case sum.Warned > 0:
			p.Successf("Configuration is valid (%d warning(s))", sum.Warned)
		default:
			p.Successf("Configuration is valid")
		}
	}

	if !report.Healthy {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ConfigCmd) runShow(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	out := c.Root().Writer
	_, _ = fmt.Fprintf(out, "# config: %s\n# data:   %s\n", cmd.flags.ConfigPath, cmd.flags.Config.DataDir)

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cmd.flags.Config); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
