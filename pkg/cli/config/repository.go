package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aoi-lab/chatkeeper/pkg/domain/interfaces"
	"github.com/aoi-lab/chatkeeper/pkg/repository/firestore"
	"github.com/aoi-lab/chatkeeper/pkg/repository/memory"
)

// Repository holds CLI flags for selecting the user record backend.
type Repository struct {
	backend             string
	firestoreProjectID  string
	firestoreDatabaseID string
}

func (x *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Backend type (firestore or memory)",
			Category:    "Repository",
			Value:       "firestore",
			Sources:     cli.EnvVars("CHATKEEPER_REPOSITORY_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project ID for Firestore",
			Category:    "Repository",
			Sources:     cli.EnvVars("CHATKEEPER_FIRESTORE_PROJECT_ID"),
			Destination: &x.firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID (default database if empty)",
			Category:    "Repository",
			Sources:     cli.EnvVars("CHATKEEPER_FIRESTORE_DATABASE_ID"),
			Destination: &x.firestoreDatabaseID,
		},
	}
}

func (x Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("firestore.project_id", x.firestoreProjectID),
		slog.String("firestore.database_id", x.firestoreDatabaseID),
	)
}

func (x *Repository) ProjectID() string  { return x.firestoreProjectID }
func (x *Repository) DatabaseID() string { return x.firestoreDatabaseID }

// Configure builds the repository selected by the flags.
func (x *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch x.backend {
	case "memory":
		return memory.New(), nil

	case "firestore":
		if x.firestoreProjectID == "" {
			return nil, goerr.New("firestore-project-id is required for firestore backend")
		}
		repo, err := firestore.New(ctx, x.firestoreProjectID, x.firestoreDatabaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create firestore repository")
		}
		return repo, nil

	default:
		return nil, goerr.New("unknown repository backend", goerr.V("backend", x.backend))
	}
}
