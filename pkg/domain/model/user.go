package model

import (
	"log/slog"
	"time"

	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
)

// UserRecord holds the per-user state tracked for one authorized Slack user.
// Token, ID and AuthorizedAt are persisted; Channel and the two timestamps
// live only in the process cache and reset on restart.
type UserRecord struct {
	ID    types.UserID
	Token string

	// Channel is the channel of the most recent status-triggering message,
	// empty until the first one arrives.
	Channel types.ChannelID

	// LatestActivityTime is when the last status-triggering message was
	// processed for this user.
	LatestActivityTime time.Time

	// LatestDeleteTime is when the last delete command was executed.
	LatestDeleteTime time.Time

	AuthorizedAt time.Time
	UpdatedAt    time.Time
}

// Clone returns a copy of the record
func (x *UserRecord) Clone() *UserRecord {
	if x == nil {
		return nil
	}
	clone := *x
	return &clone
}

// LogValue hides the token from structured logs
func (x *UserRecord) LogValue() slog.Value {
	if x == nil {
		return slog.AnyValue(nil)
	}
	return slog.GroupValue(
		slog.String("id", x.ID.String()),
		slog.Int("token.len", len(x.Token)),
		slog.String("channel", x.Channel.String()),
		slog.Time("latest_activity_time", x.LatestActivityTime),
		slog.Time("latest_delete_time", x.LatestDeleteTime),
	)
}
