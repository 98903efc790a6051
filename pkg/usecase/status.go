package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
	slacksvc "github.com/aoi-lab/chatkeeper/pkg/service/slack"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
)

// updateStatus runs the presence status transition for a qualifying
// message. A status set by something other than this system is never
// overwritten; that is detected by the exact prefix/sentinel match, not a
// dedicated marker field. The record is mutated only after every external
// call succeeded.
func (uc *EventUseCase) updateStatus(ctx context.Context, gw slacksvc.Gateway, rec *model.UserRecord, msg *model.Message, now time.Time) (types.EventOutcome, error) {
	if !uc.limiter.AllowStatusUpdate(rec, msg.ChannelID, now) {
		return types.OutcomeStatusUnchanged, nil
	}

	channel, err := gw.GetChannelInfo(ctx, msg.ChannelID.String())
	if err != nil {
		return "", goerr.Wrap(err, "failed to look up channel", goerr.V("channel", msg.ChannelID))
	}

	profile, err := gw.GetUserProfile(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch current profile", goerr.V("user", rec.ID))
	}

	if !uc.statusOverwritable(profile) {
		logging.From(ctx).Debug("status set elsewhere, leaving it alone",
			"user", rec.ID, "status_text", profile.StatusText)
		return types.OutcomeStatusUnchanged, nil
	}

	statusText := uc.cfg.StatusPrefix + channel.Name
	expiration := now.Add(uc.cfg.ActivityWindow).Unix()
	if err := gw.SetUserStatus(ctx, statusText, uc.cfg.StatusEmoji, expiration); err != nil {
		return "", goerr.Wrap(err, "failed to set status",
			goerr.V("user", rec.ID),
			goerr.V("status_text", statusText),
		)
	}

	rec.Channel = msg.ChannelID
	rec.LatestActivityTime = now
	uc.cache.Put(rec)

	logging.From(ctx).Info("status updated",
		"user", rec.ID,
		"channel", channel.Name,
		"expires", expiration,
	)

	return types.OutcomeStatusUpdated, nil
}

// statusOverwritable reports whether the current status is either empty or
// one this system wrote earlier.
func (uc *EventUseCase) statusOverwritable(profile *slacksvc.Profile) bool {
	textOK := profile.StatusText == "" || strings.HasPrefix(profile.StatusText, uc.cfg.StatusPrefix)
	emojiOK := profile.StatusEmoji == "" || profile.StatusEmoji == uc.cfg.StatusEmoji
	return textOK && emojiOK
}
