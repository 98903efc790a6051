package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
	slacksvc "github.com/aoi-lab/chatkeeper/pkg/service/slack"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
)

// deleteConcurrency bounds parallel chat.delete calls per batch
const deleteConcurrency = 4

// runDelete executes a delete command. The marker count, capped at the
// configured maximum, selects that many of the issuer's most recent
// messages plus one so the command message itself is removable. Deletion
// is best-effort per message; the cooldown timestamps are stamped once the
// batch finishes, even when some deletions failed.
func (uc *EventUseCase) runDelete(ctx context.Context, gw slacksvc.Gateway, rec *model.UserRecord, msg *model.Message, markers int, now time.Time) (types.EventOutcome, []model.DeleteResult, error) {
	if markers <= 0 {
		return types.OutcomeDeleteRejected, nil, nil
	}

	if !uc.limiter.AllowDelete(rec, now) {
		logging.From(ctx).Debug("delete command within cooldown", "user", rec.ID)
		return types.OutcomeRateLimited, nil, nil
	}

	count := min(markers, uc.cfg.MaxDeleteMarkers) + 1

	var candidates []slacksvc.Message
	if msg.ThreadTS == "" {
		history, err := gw.GetChannelHistory(ctx, msg.ChannelID.String(), uc.cfg.HistoryLimit)
		if err != nil {
			return "", nil, goerr.Wrap(err, "failed to fetch channel history", goerr.V("channel", msg.ChannelID))
		}
		candidates = selectOwnMessages(history, rec.ID, count)
	} else {
		replies, err := uc.collectThreadReplies(ctx, gw, msg)
		if err != nil {
			return "", nil, err
		}
		// Replies arrive oldest first; selection wants most recent first
		slices.Reverse(replies)
		candidates = selectOwnMessages(replies, rec.ID, count)
	}

	results := uc.deleteMessages(ctx, gw, msg.ChannelID, candidates)

	rec.LatestDeleteTime = now
	rec.LatestActivityTime = now
	uc.cache.Put(rec)

	logging.From(ctx).Info("bulk delete finished",
		"user", rec.ID,
		"channel", msg.ChannelID,
		"selected", len(candidates),
		"deleted", model.CountDeleted(results),
	)

	return types.OutcomeDeletePerformed, results, nil
}

// collectThreadReplies follows the continuation cursor until the platform
// reports none remaining and returns the full reply sequence.
func (uc *EventUseCase) collectThreadReplies(ctx context.Context, gw slacksvc.Gateway, msg *model.Message) ([]slacksvc.Message, error) {
	var all []slacksvc.Message
	var cursor string

	for {
		page, nextCursor, err := gw.GetThreadReplies(ctx, msg.ChannelID.String(), msg.ThreadTS, cursor)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch thread replies",
				goerr.V("channel", msg.ChannelID),
				goerr.V("thread_ts", msg.ThreadTS),
			)
		}

		all = append(all, page...)

		if nextCursor == "" {
			return all, nil
		}
		cursor = nextCursor
	}
}

// selectOwnMessages keeps the issuer's messages in the given order, up to
// count entries.
func selectOwnMessages(messages []slacksvc.Message, userID types.UserID, count int) []slacksvc.Message {
	var selected []slacksvc.Message
	for _, m := range messages {
		if m.UserID != userID.String() {
			continue
		}
		selected = append(selected, m)
		if len(selected) >= count {
			break
		}
	}
	return selected
}

// deleteMessages issues one delete call per selected message. Failures are
// logged and recorded but never abort the batch.
func (uc *EventUseCase) deleteMessages(ctx context.Context, gw slacksvc.Gateway, channelID types.ChannelID, messages []slacksvc.Message) []model.DeleteResult {
	results := make([]model.DeleteResult, len(messages))

	var eg errgroup.Group
	eg.SetLimit(deleteConcurrency)

	for i, m := range messages {
		eg.Go(func() error {
			err := gw.DeleteMessage(ctx, channelID.String(), m.Timestamp)
			if err != nil {
				logging.From(ctx).Error("failed to delete message",
					"channel", channelID,
					"timestamp", m.Timestamp,
					"error", err.Error(),
				)
			}
			results[i] = model.DeleteResult{Timestamp: m.Timestamp, Err: err}
			return nil
		})
	}

	// Workers never return an error; Wait is only a join point
	_ = eg.Wait()

	return results
}
