package usecase

import (
	"context"
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aoi-lab/chatkeeper/pkg/domain/interfaces"
	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/domain/model/config"
	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
	slacksvc "github.com/aoi-lab/chatkeeper/pkg/service/slack"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
)

// EventUseCase is the event cache and status/delete engine. One instance
// handles all webhook deliveries; shared state lives in the cache.
type EventUseCase struct {
	repo    interfaces.Repository
	factory slacksvc.Factory
	cache   *Cache
	limiter *RateLimiter
	cfg     *config.Engine
	nowFn   func() time.Time
}

func newEventUseCase(repo interfaces.Repository, factory slacksvc.Factory, cache *Cache, cfg *config.Engine, nowFn func() time.Time) *EventUseCase {
	return &EventUseCase{
		repo:    repo,
		factory: factory,
		cache:   cache,
		limiter: NewRateLimiter(cfg.ActivityWindow, cfg.DeleteWindow),
		cfg:     cfg,
		nowFn:   nowFn,
	}
}

// Cache exposes the state store, mainly for bootstrap and authorization
func (uc *EventUseCase) Cache() *Cache {
	return uc.cache
}

// deleteCommandRe matches a delete command: the message is nothing but a
// case-insensitive run of the marker character.
var deleteCommandRe = regexp.MustCompile(`^(?i)d+$`)

// deleteMarkerCount returns the number of marker characters when text is a
// delete command, and false otherwise.
func deleteMarkerCount(text string) (int, bool) {
	if !deleteCommandRe.MatchString(text) {
		return 0, false
	}
	return len(text), true
}

// HandleEvent processes one webhook message event: dedup, authorization
// lookup, then either the bulk delete engine or the status state machine.
// The returned results are per-message outcomes of a delete batch, nil for
// any other path.
func (uc *EventUseCase) HandleEvent(ctx context.Context, ev *model.Event) (types.EventOutcome, []model.DeleteResult, error) {
	if ev == nil || ev.Kind != model.EventKindMessage || ev.Message == nil {
		return "", nil, goerr.Wrap(ErrMalformedEvent, "event is not a message")
	}

	msg := ev.Message
	if msg.UserID == "" || msg.ChannelID == "" {
		return "", nil, goerr.Wrap(ErrMalformedEvent, "message misses user or channel",
			goerr.V("user", msg.UserID),
			goerr.V("channel", msg.ChannelID),
		)
	}

	if !uc.cache.Accept(ev.ID, ev.Time) {
		logging.From(ctx).Debug("duplicate or stale event rejected",
			"event_id", ev.ID, "event_time", ev.Time)
		return types.OutcomeDuplicateOrStale, nil, nil
	}

	unlock := uc.cache.LockUser(msg.UserID)
	defer unlock()

	rec, ok := uc.cache.Get(msg.UserID)
	if !ok {
		return types.OutcomeUnauthorizedUser, nil, nil
	}

	gw, err := uc.factory.ForToken(rec.Token)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to create slack client", goerr.V("user", rec.ID))
	}

	now := uc.nowFn()

	if markers, ok := deleteMarkerCount(msg.Text); ok {
		return uc.runDelete(ctx, gw, rec, msg, markers, now)
	}

	outcome, err := uc.updateStatus(ctx, gw, rec, msg, now)
	return outcome, nil, err
}
