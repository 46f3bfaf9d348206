package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// FindOrCreate looks up a folder by (owner, normalized path), inserting it
// if absent. The lookup-then-insert is closed against concurrent first
// creation by the unique index on (user_id, path): the losing insert fails
// with a unique violation, after which we re-read and proceed as if the
// folder had been found.
func (r *PostgresFolderRepository) FindOrCreate(ctx context.Context, userID, path string) (*models.Folder, bool, error) {
	existing, err := r.getByPath(ctx, userID, path)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	folder := &models.Folder{
		ID:     uuid.NewString(),
		UserID: userID,
		Path:   path,
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, path)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, r.tables.Folders)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.ID,
		folder.UserID,
		folder.Path,
	).Scan(&folder.CreatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			// Lost the race - another request created it first
			winner, rerr := r.getByPath(ctx, userID, path)
			if rerr != nil {
				return nil, false, rerr
			}
			if winner == nil {
				return nil, false, fmt.Errorf("folder '%s': %w", path, domain.ErrConflict)
			}
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("create folder: %w", err)
	}

	return folder, true, nil
}

// GetByPath retrieves a folder by its normalized path
func (r *PostgresFolderRepository) GetByPath(ctx context.Context, userID, path string) (*models.Folder, error) {
	folder, err := r.getByPath(ctx, userID, path)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("folder '%s': %w", path, domain.ErrNotFound)
	}
	return folder, nil
}

// ListByUser retrieves all folders belonging to the owner, in catalog
// insertion order for deterministic listings.
func (r *PostgresFolderRepository) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, path, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.UserID,
			&folder.Path,
			&folder.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// Delete removes the folder row. File rows must already be gone; a
// remaining reference surfaces as a conflict rather than a cascade.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("cannot delete folder with files: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// getByPath is the nil-on-miss lookup shared by FindOrCreate and GetByPath.
// Comparison is case-insensitive; stored paths are already lower-cased by
// the normalizer, lower() guards rows written before that invariant held.
func (r *PostgresFolderRepository) getByPath(ctx context.Context, userID, path string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, path, created_at
		FROM %s
		WHERE user_id = $1 AND lower(path) = lower($2)
	`, r.tables.Folders)

	var folder models.Folder
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID, path).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.Path,
		&folder.CreatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, fmt.Errorf("get folder by path: %w", err)
	}

	return &folder, nil
}
