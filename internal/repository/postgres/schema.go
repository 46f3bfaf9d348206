package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the catalog tables and indexes if they do not
// exist. The unique index on (user_id, path) is what closes the
// concurrent create-folder race: the losing insert fails with 23505 and
// the repository re-reads.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				username TEXT NOT NULL,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Users),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS ux_%s_email ON %s (email)`,
			tables.Users, tables.Users),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS ux_%s_username ON %s (username)`,
			tables.Users, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES %s (id),
				path TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Folders, tables.Users),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS ux_%s_user_path ON %s (user_id, path)`,
			tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				folder_id TEXT NOT NULL REFERENCES %s (id),
				user_id TEXT NOT NULL REFERENCES %s (id),
				filename TEXT NOT NULL,
				physical_path TEXT NOT NULL,
				revision INTEGER NOT NULL DEFAULT 0,
				uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Files, tables.Folders, tables.Users),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS ux_%s_folder_name ON %s (folder_id, filename)`,
			tables.Files, tables.Files),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
