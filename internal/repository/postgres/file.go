package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
)

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new file row
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, folder_id, user_id, filename, physical_path, revision)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING uploaded_at
	`, r.tables.Files)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		file.ID,
		file.FolderID,
		file.UserID,
		file.Filename,
		file.PhysicalPath,
		file.Revision,
	).Scan(&file.UploadedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("file '%s': %w", file.Filename, domain.ErrConflict)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// ListByFolder retrieves all file rows in a folder, oldest first
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, user_id, filename, physical_path, revision, uploaded_at
		FROM %s
		WHERE folder_id = $1
		ORDER BY uploaded_at ASC
	`, r.tables.Files)

	return r.queryFiles(ctx, query, folderID)
}

// GetByName retrieves a file row by its exact stored filename
func (r *PostgresFileRepository) GetByName(ctx context.Context, folderID, filename string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, user_id, filename, physical_path, revision, uploaded_at
		FROM %s
		WHERE folder_id = $1 AND filename = $2
	`, r.tables.Files)

	var file models.File
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID, filename).Scan(
		&file.ID,
		&file.FolderID,
		&file.UserID,
		&file.Filename,
		&file.PhysicalPath,
		&file.Revision,
		&file.UploadedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file '%s': %w", filename, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &file, nil
}

// ListVersioned retrieves rows whose stored filename looks like a
// versioned sibling of the base name (base_v<digits>ext). The LIKE match
// is a coarse filter; the version namer re-parses candidates with an
// exact pattern before using them.
func (r *PostgresFileRepository) ListVersioned(ctx context.Context, folderID, base, ext string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, user_id, filename, physical_path, revision, uploaded_at
		FROM %s
		WHERE folder_id = $1 AND filename LIKE $2 ESCAPE '\'
		ORDER BY uploaded_at ASC
	`, r.tables.Files)

	pattern := escapeLike(base) + `\_v%` + escapeLike(ext)
	return r.queryFiles(ctx, query, folderID, pattern)
}

// SearchByName retrieves rows whose stored filename contains the needle,
// optionally restricted to an exact revision.
func (r *PostgresFileRepository) SearchByName(ctx context.Context, folderID, needle string, revision *int) ([]models.File, error) {
	var query string
	var args []interface{}

	pattern := "%" + escapeLike(needle) + "%"
	if revision == nil {
		query = fmt.Sprintf(`
			SELECT id, folder_id, user_id, filename, physical_path, revision, uploaded_at
			FROM %s
			WHERE folder_id = $1 AND filename LIKE $2 ESCAPE '\'
			ORDER BY uploaded_at ASC
		`, r.tables.Files)
		args = append(args, folderID, pattern)
	} else {
		query = fmt.Sprintf(`
			SELECT id, folder_id, user_id, filename, physical_path, revision, uploaded_at
			FROM %s
			WHERE folder_id = $1 AND filename LIKE $2 ESCAPE '\' AND revision = $3
			ORDER BY uploaded_at ASC
		`, r.tables.Files)
		args = append(args, folderID, pattern, *revision)
	}

	return r.queryFiles(ctx, query, args...)
}

// Delete removes a file row
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Files)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresFileRepository) queryFiles(ctx context.Context, query string, args ...interface{}) ([]models.File, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	files, err := scanFiles(rows)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func scanFiles(rows pgx.Rows) ([]models.File, error) {
	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.FolderID,
			&file.UserID,
			&file.Filename,
			&file.PhysicalPath,
			&file.Revision,
			&file.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// escapeLike escapes LIKE metacharacters in a literal fragment
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
