package commands

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/storefront/internal/core/product"
	"github.com/hay-kot/storefront/internal/printer"
	"github.com/hay-kot/storefront/internal/styles"
)

type CartCmd struct {
	flags *Flags

	// ls
	match string

	// add
	name      string
	image     string
	price     string
	salePrice string
	quantity  int
	variants  []string
}

// NewCartCmd creates a new cart command
func NewCartCmd(flags *Flags) *CartCmd {
	return &CartCmd{flags: flags}
}

// Register adds the cart command to the application
func (cmd *CartCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "cart",
		Usage: "View and change the shopping cart",
		Description: `The cart is kept on this machine and survives logout.

Examples:
  shop cart add 64f1c2 --name "Desk Lamp" --price 49.99 --qty 2
  shop cart add 64f1d7 --name "T-Shirt" --price 20 --variant size=M --variant color=black
  shop cart ls --match "*lamp*"
  shop cart set 64f1c2 3
  shop cart rm 64f1c2`,
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.addCmd(),
			cmd.rmCmd(),
			cmd.setCmd(),
			cmd.clearCmd(),
			cmd.totalCmd(),
		},
	})

	return app
}

func (cmd *CartCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List cart items",
		UsageText: "shop cart ls [--match GLOB]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "match",
				Aliases:     []string{"m"},
				Usage:       "only show items whose name or id matches the glob",
				Destination: &cmd.match,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *CartCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a product to the cart",
		UsageText: "shop cart add <product-id> --name NAME --price PRICE [--sale-price PRICE] [--qty N] [--variant key=value]",
		Description: `Adds a product, or increases the quantity if it is already in the cart.
The price is recorded when the product is first added.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "product name",
				Destination: &cmd.name,
			},
			&cli.StringFlag{
				Name:        "image",
				Usage:       "product image URL",
				Destination: &cmd.image,
			},
			&cli.StringFlag{
				Name:        "price",
				Usage:       "list price",
				Required:    true,
				Destination: &cmd.price,
			},
			&cli.StringFlag{
				Name:        "sale-price",
				Usage:       "sale price, charged instead of the list price",
				Destination: &cmd.salePrice,
			},
			&cli.IntFlag{
				Name:        "qty",
				Aliases:     []string{"q"},
				Usage:       "quantity to add",
				Value:       1,
				Destination: &cmd.quantity,
			},
			&cli.StringSliceFlag{
				Name:        "variant",
				Usage:       "selected variant as key=value (repeatable)",
				Destination: &cmd.variants,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *CartCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Remove a product from the cart",
		UsageText: "shop cart rm <product-id>",
		Action:    cmd.runRm,
	}
}

func (cmd *CartCmd) setCmd() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set the quantity of a cart item (0 removes it)",
		UsageText: "shop cart set <product-id> <quantity>",
		Action:    cmd.runSet,
	}
}

func (cmd *CartCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "Empty the cart",
		UsageText: "shop cart clear",
		Action:    cmd.runClear,
	}
}

func (cmd *CartCmd) totalCmd() *cli.Command {
	return &cli.Command{
		Name:      "total",
		Usage:     "Print the cart total",
		UsageText: "shop cart total",
		Action:    cmd.runTotal,
	}
}

func (cmd *CartCmd) money(amount decimal.Decimal) string {
	return printer.Money(amount, cmd.flags.Config.CurrencyUnit())
}

func (cmd *CartCmd) runLs(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	matcher, err := newNameMatcher(cmd.match)
	if err != nil {
		return err
	}

	items := cmd.flags.Service.Cart.Items()
	if len(items) == 0 {
		p.Infof("Your cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tVARIANT\tQTY\tPRICE\tSUBTOTAL")

	shown := 0
	for _, it := range items {
		if !matcher.Match(it.Name, it.ProductID) {
			continue
		}
		shown++

		// no colors inside the table; tabwriter counts escape codes as width
		price := cmd.money(it.Price())
		if it.Product().OnSale() {
			price += " (sale)"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			it.ProductID, it.Name, formatVariant(it.SelectedVariant), it.Quantity, price, cmd.money(it.Subtotal()))
	}
	_ = w.Flush()

	if shown == 0 {
		p.Infof("No items match %q", cmd.match)
	}

	p.Printf("")
	total := styles.PriceStyle.Render(cmd.money(cmd.flags.Service.Cart.Total()))
	p.Printf("%s  %s (%d item(s))", p.Bold("Total"), total, cmd.flags.Service.Cart.Count())
	return nil
}

func (cmd *CartCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.NArg() < 1 {
		return fmt.Errorf("product id required. Usage: %s", c.UsageText)
	}

	prod, err := cmd.product(c.Args().First())
	if err != nil {
		return err
	}

	variant, err := parseVariant(cmd.variants)
	if err != nil {
		return err
	}

	if prod.SalePrice != nil && !prod.OnSale() {
		p.Warnf("sale price %s is not below the list price %s; it will still be charged",
			cmd.money(*prod.SalePrice), cmd.money(prod.Price))
	}

	if err := cmd.flags.Service.Cart.AddItem(ctx, prod, cmd.quantity, variant); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}

	line, _ := cmd.flags.Service.Cart.Find(prod.ID)
	p.Successf("%s × %d in cart", displayName(line.Name, line.ProductID), line.Quantity)
	p.Infof("cart total %s", cmd.money(cmd.flags.Service.Cart.Total()))
	return nil
}

func (cmd *CartCmd) product(id string) (product.Product, error) {
	price, err := decimal.NewFromString(cmd.price)
	if err != nil {
		return product.Product{}, fmt.Errorf("invalid --price %q: %w", cmd.price, err)
	}

	prod := product.Product{
		ID:    id,
		Name:  cmd.name,
		Image: cmd.image,
		Price: price,
	}

	if cmd.salePrice != "" {
		sale, err := decimal.NewFromString(cmd.salePrice)
		if err != nil {
			return product.Product{}, fmt.Errorf("invalid --sale-price %q: %w", cmd.salePrice, err)
		}
		prod.SalePrice = &sale
	}

	return prod, prod.Validate()
}

func (cmd *CartCmd) runRm(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.NArg() < 1 {
		return fmt.Errorf("product id required. Usage: %s", c.UsageText)
	}
	id := c.Args().First()

	if _, ok := cmd.flags.Service.Cart.Find(id); !ok {
		p.Infof("%s is not in the cart", id)
		return nil
	}

	if err := cmd.flags.Service.Cart.RemoveItem(ctx, id); err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}

	p.Successf("Removed %s", id)
	return nil
}

func (cmd *CartCmd) runSet(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.NArg() < 2 {
		return fmt.Errorf("product id and quantity required. Usage: %s", c.UsageText)
	}

	id := c.Args().Get(0)
	qty, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid quantity %q", c.Args().Get(1))
	}

	if err := cmd.flags.Service.Cart.UpdateQuantity(ctx, id, qty); err != nil {
		return err
	}

	if qty < 1 {
		p.Successf("Removed %s", id)
	} else {
		p.Successf("%s quantity set to %d", id, qty)
	}
	return nil
}

func (cmd *CartCmd) runClear(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.flags.Service.Cart.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	p.Successf("Cart cleared")
	return nil
}

func (cmd *CartCmd) runTotal(ctx context.Context, c *cli.Command) error {
	_, err := fmt.Fprintln(c.Root().Writer, cmd.money(cmd.flags.Service.Cart.Total()))
	return err
}

// parseVariant turns repeated key=value flags into a variant map.
func parseVariant(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	variant := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --variant %q, expected key=value", pair)
		}
		variant[k] = strings.TrimSpace(v)
	}
	return variant, nil
}

func formatVariant(variant map[string]string) string {
	if len(variant) == 0 {
		return "-"
	}

	keys := make([]string, 0, len(variant))
	for k := range variant {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+variant[k])
	}
	return strings.Join(parts, ",")
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return name
}
