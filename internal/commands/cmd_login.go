package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/storefront/internal/printer"
)

type LoginCmd struct {
	flags    *Flags
	email    string
	password string
}

// NewLoginCmd creates a new login command
func NewLoginCmd(flags *Flags) *LoginCmd {
	return &LoginCmd{flags: flags}
}

// Register adds the login command to the application
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "login",
		Usage:     "Sign in to the store",
		UsageText: "shop login [--email EMAIL] [--password PASSWORD]",
		Description: `Signs in and saves the session to the data directory.

Missing credentials are prompted for when stdin is a terminal. Your wishlist
is loaded right after a successful login.`,
		Flags: []cli.Flag{
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

func (cmd *LoginCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	err := promptCredentials("Sign in", credentialFields{
		Email:    &cmd.email,
		Password: &cmd.password,
	})
	if err != nil {
		return err
	}

	sess, err := cmd.flags.Service.Sessions.Login(ctx, cmd.email, cmd.password)
	if err != nil {
		return err
	}

	p.Success("Signed in as "+sess.Name, sess.Email)
	if n := cmd.flags.Service.Wishlist.Len(); n > 0 {
		p.Infof("%d item(s) on your wishlist", n)
	}

	return nil
}
