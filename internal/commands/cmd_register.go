package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/storefront/internal/printer"
)

type RegisterCmd struct {
	flags    *Flags
	name     string
	email    string
	password string
}

// NewRegisterCmd creates a new register command
func NewRegisterCmd(flags *Flags) *RegisterCmd {
	return &RegisterCmd{flags: flags}
}

// Register adds the register command to the application
func (cmd *RegisterCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "register",
		Usage:       "Create an account and sign in",
		UsageText:   "shop register [--name NAME] [--email EMAIL] [--password PASSWORD]",
		Description: "Creates a new account and signs in with it. Passwords need at least 6 characters.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Aliases:     []string{"n"},
				Usage:       "display name",
				Destination: &cmd.name,
			},
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "account email",
				Sources:     cli.EnvVars("SHOP_EMAIL"),
				Destination: &cmd.email,
			},
			&cli.StringFlag{
				Name:        "password",
				Usage:       "account password",
				Sources:     cli.EnvVars("SHOP_PASSWORD"),
				Destination: &cmd.password,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RegisterCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	err := promptCredentials("Create account", credentialFields{
		Name:     &cmd.name,
		Email:    &cmd.email,
		Password: &cmd.password,
	})
	if err != nil {
		return err
	}

	sess, err := cmd.flags.Service.Sessions.Register(ctx, cmd.name, cmd.email, cmd.password)
	if err != nil {
		return err
	}

	p.Success("Welcome, "+sess.Name, sess.Email)
	return nil
}
