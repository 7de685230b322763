package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/brewstock/internal"
	"github.com/starford/brewstock/internal/credentials"
	pkgconfig "github.com/starford/brewstock/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOrDefault(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// options builds the application options shared by all commands.
func options(cmd *cli.Command, extra ...internal.Option) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return append([]internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, extra...), nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// Commands that print to stdout log to stderr.
func quietOptions(cmd *cli.Command) ([]internal.Option, error) {
	return options(cmd, internal.WithLogOutput(os.Stderr))
}

func report(ctx context.Context, cmd *cli.Command) error {
	opts, err := quietOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Report(ctx, os.Stdout, cmd.String("kind"), cmd.String("format"), opts...)
}

func export(ctx context.Context, cmd *cli.Command) error {
	opts, err := quietOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Export(ctx, cmd.String("out"), opts...)
}

func setCredentials(ctx context.Context, cmd *cli.Command) error {
	opts, err := quietOptions(cmd)
	if err != nil {
		return err
	}
	c := credentials.Credentials{
		UserID: cmd.String("user-id"),
		APIKey: cmd.String("api-key"),
	}
	return internal.SetCredentials(ctx, os.Stdout, c, opts...)
}

func showCredentials(ctx context.Context, cmd *cli.Command) error {
	opts, err := quietOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ShowCredentials(ctx, os.Stdout, opts...)
}

func batch(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("batch ID is required")
	}
	opts, err := quietOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ShowBatch(ctx, os.Stdout, id, opts...)
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the protocol.
	opts, err := quietOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:    "brewstock",
		Usage:   "Brewfather inventory dashboard: stock, planned usage and what is left",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults apply when it does not exist)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the dashboard over HTTP and refresh it in the background",
				Action: serve,
			},
			{
				Name:  "report",
				Usage: "Print inventory tables",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "kind",
						Aliases: []string{"k"},
						Usage:   "all, fermentables or hops",
						Value:   internal.KindAll,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "text or json",
						Value:   internal.FormatText,
					},
				},
				Action: report,
			},
			{
				Name:  "export",
				Usage: "Write both tables to an XLSX workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file",
						Value:   "brewstock.xlsx",
					},
				},
				Action: export,
			},
			{
				Name:  "credentials",
				Usage: "Manage the Brewfather user ID and API key",
				Commands: []*cli.Command{
					{
						Name:  "set",
						Usage: "Save a credential pair and check it against Brewfather",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "user-id",
								Usage:    "Brewfather user ID",
								Required: true,
								Sources:  cli.EnvVars("BREWFATHER_USER_ID"),
							},
							&cli.StringFlag{
								Name:     "api-key",
								Usage:    "Brewfather API key",
								Required: true,
								Sources:  cli.EnvVars("BREWFATHER_API_KEY"),
							},
						},
						Action: setCredentials,
					},
					{
						Name:   "show",
						Usage:  "Show the stored user ID and masked API key",
						Action: showCredentials,
					},
				},
			},
			{
				Name:      "batch",
				Usage:     "Show details of one batch",
				ArgsUsage: "ID",
				Action:    batch,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
