package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dssafford/daylog/internal"
	pkgconfig "github.com/dssafford/daylog/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func syncRun(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sum, err := internal.RunSync(ctx, cfg, cmd.Args().Slice(), cmd.Bool("force"))
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("sync: %d section(s) failed", sum.Failed)
	}
	return nil
}

func mcpRun(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, cfg)
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("DAYLOG_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "daylog",
		Usage: "Sync pending items and inbound entries into marker-anchored sections of daily notes",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP entry endpoint and drop-folder watcher",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:      "sync",
				Usage:     "Run a one-shot sync (targets: empty for time-of-day, 'all', a schedule name, or section keys)",
				ArgsUsage: "[targets...]",
				Action:    syncRun,
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Ignore the per-day processed state",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP stdio server",
				Action: mcpRun,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
