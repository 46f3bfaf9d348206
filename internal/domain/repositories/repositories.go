package repositories

import (
	"context"

	"filevault/internal/domain/models"
)

// UserRepository is the catalog of registered users (the identity store).
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// FolderRepository is the durable mapping of (owner, normalized path) to
// folder rows. Paths are stored normalized; (user_id, path) is unique.
type FolderRepository interface {
	// FindOrCreate looks up the folder for the owner and normalized path,
	// inserting it if absent. The bool reports whether a row was created.
	// A concurrent insert losing the unique-index race re-reads and
	// reports created=false.
	FindOrCreate(ctx context.Context, userID, path string) (*models.Folder, bool, error)
	GetByPath(ctx context.Context, userID, path string) (*models.Folder, error)
	ListByUser(ctx context.Context, userID string) ([]models.Folder, error)
	// Delete removes the folder row only. Dependent file rows must be
	// deleted first; the cascade order is the service's responsibility.
	Delete(ctx context.Context, id, userID string) error
}

// FileRepository is the durable mapping of (folder, stored filename) to
// file rows. (folder_id, filename) is unique.
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	ListByFolder(ctx context.Context, folderID string) ([]models.File, error)
	GetByName(ctx context.Context, folderID, filename string) (*models.File, error)
	// ListVersioned returns rows whose stored filename matches
	// base + "_v<digits>" + ext, the versioned siblings of a base name.
	ListVersioned(ctx context.Context, folderID, base, ext string) ([]models.File, error)
	// SearchByName returns rows whose stored filename contains the needle,
	// optionally restricted to an exact revision.
	SearchByName(ctx context.Context, folderID, needle string, revision *int) ([]models.File, error)
	Delete(ctx context.Context, id string) error
}
