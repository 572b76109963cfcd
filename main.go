package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/storefront/internal/api"
	"github.com/hay-kot/storefront/internal/commands"
	"github.com/hay-kot/storefront/internal/core/config"
	"github.com/hay-kot/storefront/internal/printer"
	"github.com/hay-kot/storefront/internal/shop"
	"github.com/hay-kot/storefront/internal/store/jsonfile"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// offlineCommands inspect local files directly and must see them before the
// stores discard anything unreadable.
var offlineCommands = []string{"doctor", "config"}

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", ""); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	app := &cli.Command{
		Name:      "shop",
		Usage:     "Storefront account, cart, and wishlist from the terminal",
		UsageText: "shop [global options] command [command options]",
		Description: `shop keeps a signed-in session, a local cart, and your server-side wishlist.

Run 'shop login' to sign in, 'shop cart ls' to see your cart, and
'shop wishlist ls' to see saved products.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SHOP_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("SHOP_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SHOP_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("SHOP_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "backend API base URL (overrides api.base_url)",
				Sources:     cli.EnvVars("SHOP_API_URL"),
				Destination: &flags.APIURL,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := setupLogger(flags.LogLevel, flags.LogFile); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			if flags.APIURL != "" {
				cfg.API.BaseURL = flags.APIURL
				if err := cfg.Validate(); err != nil {
					return ctx, fmt.Errorf("invalid --api-url: %w", err)
				}
			}
			flags.Config = cfg

			if slices.Contains(offlineCommands, c.Args().First()) {
				return ctx, nil
			}

			// Create service
			var (
				logger = log.With().Str("app", "shop").Logger()
				p      = printer.Ctx(ctx)
			)

			flags.Service = shop.New(ctx, shop.Config{
				BaseURL:      cfg.API.BaseURL,
				BannedRoute:  cfg.BannedRoute,
				SessionStore: jsonfile.NewSessionStore(cfg.SessionFile()),
				CartStore:    jsonfile.NewCartStore(cfg.CartFile()),
				Navigator: shop.NavigatorFunc(func(_ context.Context, route string) {
					p.Banned(route, "This account has been banned by the store.")
				}),
				Logger: logger,
				APIOptions: []api.Option{
					api.WithTimeout(cfg.API.Timeout),
					api.WithUserAgent(cfg.API.UserAgent + "/" + version),
				},
			})

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flags.Service != nil {
				flags.Service.Close()
			}
			return nil
		},
	}

	app = commands.NewLoginCmd(flags).Register(app)
	app = commands.NewRegisterCmd(flags).Register(app)
	app = commands.NewLogoutCmd(flags).Register(app)
	app = commands.NewWhoamiCmd(flags).Register(app)
	app = commands.NewCartCmd(flags).Register(app)
	app = commands.NewWishlistCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	os.Exit(exitCode)
}

func setupLogger(level string, logFile string) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		// Create log directory if it doesn't exist
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		// Write to both console and file
		output = io.MultiWriter(
			zerolog.ConsoleWriter{Out: os.Stderr},
			file,
		)
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}
