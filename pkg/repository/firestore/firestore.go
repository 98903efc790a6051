package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/aoi-lab/chatkeeper/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("document not found")

type Firestore struct {
	client *firestore.Client
	user   *userRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for tests sharing
// one Firestore project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.user.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client: client,
		user:   newUserRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
