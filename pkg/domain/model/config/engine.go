package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Engine holds the tuning values of the event engine. All values have
// defaults matching the production Slack app; a TOML file may override them.
type Engine struct {
	// StatusPrefix marks a presence status as managed by this system.
	// Only statuses carrying this exact prefix (or empty ones) are
	// overwritten.
	StatusPrefix string

	// StatusEmoji is the sentinel emoji paired with the prefix.
	StatusEmoji string

	// ActivityWindow is the status-update cooldown and also the lifetime
	// of a status set by this system.
	ActivityWindow time.Duration

	// DeleteWindow is the cooldown between delete commands.
	DeleteWindow time.Duration

	// MaxDeleteMarkers caps how many marker characters of a delete command
	// are honored.
	MaxDeleteMarkers int

	// HistoryLimit is the page size for the single channel-history fetch
	// of a non-threaded delete command.
	HistoryLimit int
}

// DefaultEngine returns the engine configuration with production defaults
func DefaultEngine() *Engine {
	return &Engine{
		StatusPrefix:     "Chatting in #",
		StatusEmoji:      ":speech_balloon:",
		ActivityWindow:   10 * time.Minute,
		DeleteWindow:     30 * time.Second,
		MaxDeleteMarkers: 5,
		HistoryLimit:     100,
	}
}

// Validate checks if the engine configuration is usable
func (x *Engine) Validate() error {
	if x.StatusPrefix == "" {
		return goerr.New("status prefix is required")
	}
	if x.StatusEmoji == "" {
		return goerr.New("status emoji is required")
	}
	if x.ActivityWindow <= 0 {
		return goerr.New("activity window must be positive", goerr.V("window", x.ActivityWindow))
	}
	if x.DeleteWindow <= 0 {
		return goerr.New("delete window must be positive", goerr.V("window", x.DeleteWindow))
	}
	if x.MaxDeleteMarkers < 1 {
		return goerr.New("max delete markers must be at least 1", goerr.V("max", x.MaxDeleteMarkers))
	}
	if x.HistoryLimit < 1 {
		return goerr.New("history limit must be at least 1", goerr.V("limit", x.HistoryLimit))
	}
	return nil
}
