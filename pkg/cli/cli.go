package cli

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/urfave/cli/v3"

	"github.com/aoi-lab/chatkeeper/pkg/cli/config"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryDSN string
	var closer func()

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting (disabled if empty)",
			Category:    "Logging",
			Sources:     cli.EnvVars("CHATKEEPER_SENTRY_DSN"),
			Destination: &sentryDSN,
		},
	}
	flags = append(flags, loggerCfg.Flags()...)

	app := &cli.Command{
		Name:    "chatkeeper",
		Usage:   "Slack presence and message keeper",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			if sentryDSN != "" {
				if err := sentry.Init(sentry.ClientOptions{
					Dsn:     sentryDSN,
					Release: version,
				}); err != nil {
					return ctx, err
				}
			}

			logging.Default().Info("Starting chatkeeper", "logger", loggerCfg, "sentry", sentryDSN != "")
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			sentry.Flush(2 * time.Second)
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
