package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
	"filevault/internal/storage"
	"filevault/internal/utils"
)

// maxNameAttempts bounds the rename-and-retry loop when concurrent
// uploads race for the same stored name.
const maxNameAttempts = 5

// storeFile runs the two-phase upload protocol shared by create-folder
// attachments and single-file uploads: assign a versioned name, stage the
// physical write (exclusive, never overwriting), then commit the catalog
// row; on catalog failure the orphaned blob is deleted. A concurrent
// writer grabbing the candidate name surfaces as fs.ErrExist from the
// exclusive write, after which the namer is consulted again.
func storeFile(
	ctx context.Context,
	fileRepo repositories.FileRepository,
	namer *VersionNamer,
	store *storage.DiskStore,
	logger *slog.Logger,
	owner *models.User,
	folder *models.Folder,
	upload services.Upload,
) (*models.File, error) {
	if err := utils.ValidateFilename(upload.Filename); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	dir, err := store.EnsureDir(owner.Email, folder.Path)
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(upload.Content)
	if err != nil {
		return nil, fmt.Errorf("read upload '%s': %w", upload.Filename, err)
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		stored, revision, err := namer.Assign(ctx, folder.ID, dir, upload.Filename)
		if err != nil {
			return nil, err
		}

		path, err := store.WriteBlob(dir, stored, bytes.NewReader(content))
		if errors.Is(err, fs.ErrExist) {
			// A concurrent upload took the name between the namer's disk
			// check and the write; recompute and try again.
			logger.Debug("stored name taken, retrying",
				"folder_id", folder.ID,
				"candidate", stored,
			)
			continue
		}
		if err != nil {
			return nil, err
		}

		file := &models.File{
			FolderID:     folder.ID,
			UserID:       owner.ID,
			Filename:     stored,
			PhysicalPath: path,
			Revision:     revision,
		}

		if err := fileRepo.Create(ctx, file); err != nil {
			// Catalog refused the row: remove the staged blob so the
			// tree does not drift from the catalog.
			if rmErr := store.RemoveBlob(path); rmErr != nil {
				logger.Error("failed to remove orphaned blob",
					"path", path,
					"error", rmErr,
				)
			}
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return nil, err
		}

		return file, nil
	}

	return nil, fmt.Errorf("could not assign a unique stored name for '%s'", upload.Filename)
}
