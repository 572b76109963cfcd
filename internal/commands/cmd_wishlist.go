package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/storefront/internal/core/product"
	"github.com/hay-kot/storefront/internal/core/wishlist"
	"github.com/hay-kot/storefront/internal/printer"
)

type WishlistCmd struct {
	flags *Flags
	match string
}

// NewWishlistCmd creates a new wishlist command
func NewWishlistCmd(flags *Flags) *WishlistCmd {
	return &WishlistCmd{flags: flags}
}

// Register adds the wishlist command to the application
func (cmd *WishlistCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "wishlist",
		Aliases: []string{"wl"},
		Usage:   "Manage your saved products",
		Description: `The wishlist lives on the server and requires a signed-in session.

Examples:
  shop wishlist ls
  shop wishlist ls --match "*lamp*"
  shop wishlist add 64f1c2
  shop wishlist toggle 64f1c2`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List saved products",
				UsageText: "shop wishlist ls [--match GLOB]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "match",
						Aliases:     []string{"m"},
						Usage:       "only show products whose name or id matches the glob",
						Destination: &cmd.match,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "add",
				Usage:     "Save a product",
				UsageText: "shop wishlist add <product-id>",
				Action:    cmd.runAdd,
			},
			{
				Name:      "rm",
				Usage:     "Remove a saved product",
				UsageText: "shop wishlist rm <product-id>",
				Action:    cmd.runRm,
			},
			{
				Name:      "toggle",
				Usage:     "Save a product, or remove it if already saved",
				UsageText: "shop wishlist toggle <product-id>",
				Action:    cmd.runToggle,
			},
			{
				Name:      "has",
				Usage:     "Exit 0 if the product is saved, 1 otherwise",
				UsageText: "shop wishlist has <product-id>",
				Action:    cmd.runHas,
			},
		},
	})

	return app
}

// requireSession stops the command with a sign-in hint when logged out.
func (cmd *WishlistCmd) requireSession(ctx context.Context, err error) error {
	if errors.Is(err, wishlist.ErrAuthRequired) {
		printer.Ctx(ctx).Warnf("Sign in to use your wishlist: shop login")
		return cli.Exit("", 1)
	}
	return err
}

func productArg(c *cli.Command) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("product id required. Usage: %s", c.UsageText)
	}
	return c.Args().First(), nil
}

func (cmd *WishlistCmd) runLs(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	matcher, err := newNameMatcher(cmd.match)
	if err != nil {
		return err
	}

	if _, ok := cmd.flags.Service.Sessions.Current(); !ok {
		return cmd.requireSession(ctx, wishlist.ErrAuthRequired)
	}

	if err := cmd.flags.Service.Wishlist.Refresh(ctx); err != nil {
		return err
	}

	entries := cmd.flags.Service.Wishlist.Items()
	if len(entries) == 0 {
		p.Infof("Your wishlist is empty")
		return nil
	}

	unit := cmd.flags.Config.CurrencyUnit()
	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tPRICE")

	shown := 0
	for _, e := range entries {
		if !matcher.Match(e.Name, e.ProductID) {
			continue
		}
		shown++
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.ProductID, displayName(e.Name, "-"), printer.Money(e.Price, unit))
	}
	_ = w.Flush()

	if shown == 0 {
		p.Infof("No saved products match %q", cmd.match)
	}
	return nil
}

func (cmd *WishlistCmd) runAdd(ctx context.Context, c *cli.Command) error {
	id, err := productArg(c)
	if err != nil {
		return err
	}

	if err := cmd.flags.Service.Wishlist.Add(ctx, product.Product{ID: id}); err != nil {
		return cmd.requireSession(ctx, err)
	}

	printer.Ctx(ctx).Successf("%s Saved %s (%d on wishlist)", printer.Heart, id, cmd.flags.Service.Wishlist.Len())
	return nil
}

func (cmd *WishlistCmd) runRm(ctx context.Context, c *cli.Command) error {
	id, err := productArg(c)
	if err != nil {
		return err
	}

	if err := cmd.flags.Service.Wishlist.Remove(ctx, id); err != nil {
		return cmd.requireSession(ctx, err)
	}

	printer.Ctx(ctx).Successf("Removed %s (%d on wishlist)", id, cmd.flags.Service.Wishlist.Len())
	return nil
}

func (cmd *WishlistCmd) runToggle(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := productArg(c)
	if err != nil {
		return err
	}

	// Toggle decides from local state, so load the server's list first.
	if err := cmd.flags.Service.Wishlist.Refresh(ctx); err != nil {
		return err
	}

	saved, err := cmd.flags.Service.Wishlist.Toggle(ctx, product.Product{ID: id})
	if err != nil {
		return cmd.requireSession(ctx, err)
	}

	if saved {
		p.Successf("%s Saved %s", printer.Heart, id)
	} else {
		p.Successf("Removed %s", id)
	}
	return nil
}

func (cmd *WishlistCmd) runHas(ctx context.Context, c *cli.Command) error {
	id, err := productArg(c)
	if err != nil {
		return err
	}

	if err := cmd.flags.Service.Wishlist.Refresh(ctx); err != nil {
		return err
	}

	if !cmd.flags.Service.Wishlist.Contains(id) {
		return cli.Exit("", 1)
	}

	_, err = fmt.Fprintln(c.Root().Writer, id)
	return err
}
