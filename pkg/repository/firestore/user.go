package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aoi-lab/chatkeeper/pkg/domain/interfaces"
	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
)

const usersCollection = "users"

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client: client,
	}
}

// userDoc is the Firestore persistence model. Only durable credential
// fields are stored; conversational state lives in the process cache.
type userDoc struct {
	ID           string    `firestore:"id"`
	Token        string    `firestore:"token"`
	AuthorizedAt time.Time `firestore:"authorized_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func (r *userRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + usersCollection)
	}
	return r.client.Collection(usersCollection)
}

func toDoc(rec *model.UserRecord) *userDoc {
	return &userDoc{
		ID:           string(rec.ID),
		Token:        rec.Token,
		AuthorizedAt: rec.AuthorizedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func fromDoc(doc *userDoc) *model.UserRecord {
	return &model.UserRecord{
		ID:           types.UserID(doc.ID),
		Token:        doc.Token,
		AuthorizedAt: doc.AuthorizedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

// GetAll retrieves all authorized users ordered by most recent update
func (r *userRepository) GetAll(ctx context.Context) ([]*model.UserRecord, error) {
	iter := r.collection().OrderBy("updated_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var users []*model.UserRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var doc userDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user document", goerr.V("doc", snap.Ref.ID))
		}
		users = append(users, fromDoc(&doc))
	}

	return users, nil
}

// GetByID retrieves a single user by ID
func (r *userRepository) GetByID(ctx context.Context, id types.UserID) (*model.UserRecord, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user document", goerr.V("id", id))
	}

	return fromDoc(&doc), nil
}

// Put upserts a user record
func (r *userRepository) Put(ctx context.Context, rec *model.UserRecord) error {
	if rec == nil || rec.ID == "" {
		return goerr.New("user record requires an ID")
	}

	if _, err := r.collection().Doc(string(rec.ID)).Set(ctx, toDoc(rec)); err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("id", rec.ID))
	}
	return nil
}

// Delete removes a user record
func (r *userRepository) Delete(ctx context.Context, id types.UserID) error {
	doc := r.collection().Doc(string(id))
	if _, err := doc.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to look up user", goerr.V("id", id))
	}

	if _, err := doc.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V("id", id))
	}
	return nil
}
