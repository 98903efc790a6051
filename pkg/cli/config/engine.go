package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model/config"
)

// Engine holds the CLI flag for the optional engine tuning file.
type Engine struct {
	configPath string
}

func (x *Engine) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML file overriding engine tuning values",
			Category:    "Engine",
			Sources:     cli.EnvVars("CHATKEEPER_CONFIG"),
			Destination: &x.configPath,
		},
	}
}

func (x Engine) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config", x.configPath),
	)
}

type engineFile struct {
	StatusPrefix       *string `toml:"status_prefix"`
	StatusEmoji        *string `toml:"status_emoji"`
	ActivityWindowSecs *int64  `toml:"activity_window_secs"`
	DeleteWindowSecs   *int64  `toml:"delete_window_secs"`
	MaxDeleteMarkers   *int    `toml:"max_delete_markers"`
	HistoryLimit       *int    `toml:"history_limit"`
}

// Configure returns the engine configuration with defaults applied, merged
// with the TOML overrides if a config file was given.
func (x *Engine) Configure() (*config.Engine, error) {
	cfg := config.DefaultEngine()

	if x.configPath != "" {
		raw, err := os.ReadFile(filepath.Clean(x.configPath))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", x.configPath))
		}

		var file engineFile
		if err := toml.Unmarshal(raw, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", x.configPath))
		}

		if file.StatusPrefix != nil {
			cfg.StatusPrefix = *file.StatusPrefix
		}
		if file.StatusEmoji != nil {
			cfg.StatusEmoji = *file.StatusEmoji
		}
		if file.ActivityWindowSecs != nil {
			cfg.ActivityWindow = time.Duration(*file.ActivityWindowSecs) * time.Second
		}
		if file.DeleteWindowSecs != nil {
			cfg.DeleteWindow = time.Duration(*file.DeleteWindowSecs) * time.Second
		}
		if file.MaxDeleteMarkers != nil {
			cfg.MaxDeleteMarkers = *file.MaxDeleteMarkers
		}
		if file.HistoryLimit != nil {
			cfg.HistoryLimit = *file.HistoryLimit
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
