package commands

import (
	"context"
	"encoding/json"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/storefront/internal/printer"
)

type WhoamiCmd struct {
	flags  *Flags
	format string
}

// NewWhoamiCmd creates a new whoami command
func NewWhoamiCmd(flags *Flags) *WhoamiCmd {
	return &WhoamiCmd{flags: flags}
}

// Register adds the whoami command to the application
func (cmd *WhoamiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "whoami",
		Usage:       "Show the signed-in account",
		UsageText:   "shop whoami [--format text|json]",
		Description: "Prints the saved session. The token itself is never printed.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WhoamiCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	sess, ok := cmd.flags.Service.Sessions.Current()
	expires, hasExpiry := sess.ExpiresAt()

	if cmd.format == "json" {
		out := struct {
			SignedIn  bool       `json:"signed_in"`
			ID        string     `json:"id,omitempty"`
			Name      string     `json:"name,omitempty"`
			Email     string     `json:"email,omitempty"`
			IsAdmin   bool       `json:"is_admin,omitempty"`
			ExpiresAt *time.Time `json:"expires_at,omitempty"`
		}{
			SignedIn: ok,
			ID:       sess.ID,
			Name:     sess.Name,
			Email:    sess.Email,
			IsAdmin:  sess.IsAdmin,
		}
		if hasExpiry {
			out.ExpiresAt = &expires
		}

		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if !ok {
		p.Infof("Not signed in. Run 'shop login' to sign in")
		return nil
	}

	p.Printf("%s <%s>", p.Bold(sess.Name), sess.Email)
	if sess.IsAdmin {
		p.Infof("admin")
	}
	if hasExpiry {
		p.Infof("session expires %s", expires.Local().Format(time.RFC1123))
	}

	return nil
}
