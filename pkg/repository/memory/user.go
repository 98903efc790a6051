package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[types.UserID]*model.UserRecord
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[types.UserID]*model.UserRecord),
	}
}

// GetAll retrieves all authorized users from memory
func (r *userRepository) GetAll(ctx context.Context) ([]*model.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.UserRecord, 0, len(r.users))
	for _, user := range r.users {
		// Return a copy to prevent external modifications
		users = append(users, user.Clone())
	}

	return users, nil
}

// GetByID retrieves a single user by ID
func (r *userRepository) GetByID(ctx context.Context, id types.UserID) (*model.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}

	return user.Clone(), nil
}

// Put upserts a user record
func (r *userRepository) Put(ctx context.Context, rec *model.UserRecord) error {
	if rec == nil || rec.ID == "" {
		return goerr.New("user record requires an ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[rec.ID] = rec.Clone()
	return nil
}

// Delete removes a user record
func (r *userRepository) Delete(ctx context.Context, id types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}

	delete(r.users, id)
	return nil
}
