package usecase

import (
	"context"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
)

// Bootstrap seeds the cache from the persistent store. Conversational
// state always starts fresh: empty channel, zero timestamps. A failed read
// is logged and the process starts with an empty cache; records reappear
// lazily as users re-authorize.
func (uc *EventUseCase) Bootstrap(ctx context.Context) {
	logger := logging.From(ctx)

	users, err := uc.repo.User().GetAll(ctx)
	if err != nil {
		logger.Error("failed to load users from store, starting with empty cache",
			"error", err.Error())
		return
	}

	for _, user := range users {
		uc.cache.Put(&model.UserRecord{
			ID:           user.ID,
			Token:        user.Token,
			AuthorizedAt: user.AuthorizedAt,
			UpdatedAt:    user.UpdatedAt,
		})
	}

	logger.Info("user cache bootstrapped", "users", uc.cache.Len())
}
