package usecase

import (
	"time"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
)

// RateLimiter evaluates the two cooldowns of the engine. Both checks are
// pure predicates over a record snapshot; timestamps are stamped by the
// caller only after the guarded action succeeded.
type RateLimiter struct {
	activityWindow time.Duration
	deleteWindow   time.Duration
}

// NewRateLimiter creates a rate limiter with the given cooldown windows
func NewRateLimiter(activityWindow, deleteWindow time.Duration) *RateLimiter {
	return &RateLimiter{
		activityWindow: activityWindow,
		deleteWindow:   deleteWindow,
	}
}

// AllowStatusUpdate reports whether a status update may run. A message in
// the channel of the last update is suppressed within the activity window;
// crossing channels resets eligibility immediately.
func (x *RateLimiter) AllowStatusUpdate(rec *model.UserRecord, channel types.ChannelID, now time.Time) bool {
	if rec.Channel != channel {
		return true
	}
	return now.Sub(rec.LatestActivityTime) >= x.activityWindow
}

// AllowDelete reports whether a delete command may run, independent of
// channel.
func (x *RateLimiter) AllowDelete(rec *model.UserRecord, now time.Time) bool {
	return now.Sub(rec.LatestDeleteTime) >= x.deleteWindow
}
