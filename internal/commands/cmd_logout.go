package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/storefront/internal/printer"
)

type LogoutCmd struct {
	flags *Flags
}

// NewLogoutCmd creates a new logout command
func NewLogoutCmd(flags *Flags) *LogoutCmd {
	return &LogoutCmd{flags: flags}
}

// Register adds the logout command to the application
func (cmd *LogoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "logout",
		Usage:       "Sign out and forget the saved session",
		UsageText:   "shop logout",
		Description: "Removes the saved session. The cart is kept.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *LogoutCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	sess, ok := cmd.flags.Service.Sessions.Current()
	if err := cmd.flags.Service.Sessions.Logout(ctx); err != nil {
		return err
	}

	if !ok {
		p.Infof("Not signed in")
		return nil
	}

	p.Successf("Signed out %s", sess.Email)
	return nil
}
