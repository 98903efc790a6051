package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aoi-lab/chatkeeper/pkg/cli/config"
	httpctrl "github.com/aoi-lab/chatkeeper/pkg/controller/http"
	slacksvc "github.com/aoi-lab/chatkeeper/pkg/service/slack"
	"github.com/aoi-lab/chatkeeper/pkg/usecase"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var engineCfg config.Engine
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("CHATKEEPER_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of the application used for the OAuth redirect (e.g., https://your-domain.com)",
			Sources:     cli.EnvVars("CHATKEEPER_BASE_URL"),
			Destination: &baseURL,
		},
	}

	// Add shared config flags
	flags = append(flags, engineCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			engine, err := engineCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load engine configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ucOpts := []usecase.Option{
				usecase.WithEngineConfig(engine),
			}

			if slackCfg.IsOAuthConfigured() {
				if baseURL == "" {
					return goerr.New("base-url is required when OAuth is configured")
				}
				redirectURL := strings.TrimSuffix(baseURL, "/") + "/slack"
				ucOpts = append(ucOpts, usecase.WithOAuth(
					slackCfg.ClientID(),
					slackCfg.ClientSecret(),
					redirectURL,
				))
				logging.Default().Info("Slack OAuth installation enabled", "redirect_url", redirectURL)
			} else {
				logging.Default().Warn("Slack OAuth not configured, installation pages disabled")
			}

			uc := usecase.New(repo, slacksvc.NewFactory(), ucOpts...)

			// Warm per-user records from the repository before serving
			uc.Event.Bootstrap(ctx)

			httpOpts := []httpctrl.Options{}
			if slackCfg.IsWebhookConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithSlackSigningSecret(slackCfg.SigningSecret()))
				logging.Default().Info("Slack webhook handler enabled")
			} else {
				logging.Default().Warn("Slack signing secret not configured, webhook endpoint disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
