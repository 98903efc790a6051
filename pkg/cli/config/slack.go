package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Slack holds the Slack app credentials used by the webhook server and
// OAuth installation flow.
type Slack struct {
	clientID      string
	clientSecret  string
	signingSecret string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-client-id",
			Usage:       "Slack app client ID for OAuth installation",
			Category:    "Slack",
			Sources:     cli.EnvVars("CHATKEEPER_SLACK_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "slack-client-secret",
			Usage:       "Slack app client secret for OAuth installation",
			Category:    "Slack",
			Sources:     cli.EnvVars("CHATKEEPER_SLACK_CLIENT_SECRET"),
			Destination: &x.clientSecret,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack signing secret for webhook verification",
			Category:    "Slack",
			Sources:     cli.EnvVars("CHATKEEPER_SLACK_SIGNING_SECRET"),
			Destination: &x.signingSecret,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_id", x.clientID),
		slog.Bool("client_secret.configured", x.clientSecret != ""),
		slog.Bool("signing_secret.configured", x.signingSecret != ""),
	)
}

// IsOAuthConfigured reports whether the installation flow can be served.
func (x *Slack) IsOAuthConfigured() bool {
	return x.clientID != "" && x.clientSecret != ""
}

// IsWebhookConfigured reports whether webhook signatures can be verified.
func (x *Slack) IsWebhookConfigured() bool {
	return x.signingSecret != ""
}

func (x *Slack) ClientID() string      { return x.clientID }
func (x *Slack) ClientSecret() string  { return x.clientSecret }
func (x *Slack) SigningSecret() string { return x.signingSecret }
