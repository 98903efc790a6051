package interfaces

import (
	"context"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
)

// Repository defines the interface for persistent storage
type Repository interface {
	User() UserRepository
	Close() error
}

// UserRepository provides storage operations for authorized user
// credentials. The engine reads it once at bootstrap; writes happen only
// through the authorization path.
type UserRepository interface {
	// GetAll retrieves all authorized users
	GetAll(ctx context.Context) ([]*model.UserRecord, error)

	// GetByID retrieves a single user by ID. Returns an error wrapping the
	// backend's not-found sentinel when the user does not exist.
	GetByID(ctx context.Context, id types.UserID) (*model.UserRecord, error)

	// Put upserts a user record
	Put(ctx context.Context, rec *model.UserRecord) error

	// Delete removes a user record
	Delete(ctx context.Context, id types.UserID) error
}
