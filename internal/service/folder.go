package service

import (
	"context"
	"fmt"
	"log/slog"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
	"filevault/internal/storage"
	"filevault/internal/utils"
)

type folderService struct {
	userRepo   repositories.UserRepository
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	txManager  repositories.TransactionManager
	namer      *VersionNamer
	store      *storage.DiskStore
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	userRepo repositories.UserRepository,
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	txManager repositories.TransactionManager,
	namer *VersionNamer,
	store *storage.DiskStore,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		userRepo:   userRepo,
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		namer:      namer,
		store:      store,
		logger:     logger,
	}
}

// CreateFolder creates the folder for the raw path and accepts any
// attached uploads into it. A path that already exists is silently
// reused - no new row, but files are still accepted (final policy;
// earlier variants of the service rejected the duplicate instead).
func (s *folderService) CreateFolder(ctx context.Context, identity, rawPath string, uploads []services.Upload) (string, error) {
	owner, err := resolveOwner(ctx, s.userRepo, identity)
	if err != nil {
		return "", err
	}

	if err := utils.ValidateFolderPath(rawPath); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	path := utils.NormalizeFolderPath(rawPath)

	folder, created, err := s.folderRepo.FindOrCreate(ctx, owner.ID, path)
	if err != nil {
		return "", err
	}

	if _, err := s.store.EnsureDir(owner.Email, folder.Path); err != nil {
		return "", err
	}

	if created {
		s.logger.Info("folder created",
			"id", folder.ID,
			"path", folder.Path,
			"user_id", owner.ID,
		)
	}

	for _, upload := range uploads {
		file, err := storeFile(ctx, s.fileRepo, s.namer, s.store, s.logger, owner, folder, upload)
		if err != nil {
			return "", err
		}
		s.logger.Info("file uploaded",
			"folder_id", folder.ID,
			"filename", file.Filename,
			"revision", file.Revision,
		)
	}

	if len(uploads) == 0 {
		return "Folder created successfully!", nil
	}
	return "Files uploaded successfully!", nil
}

// ListFolders lists the owner's folders in catalog insertion order
func (s *folderService) ListFolders(ctx context.Context, identity string) ([]models.FolderSummary, error) {
	owner, err := resolveOwner(ctx, s.userRepo, identity)
	if err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.ListByUser(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.FolderSummary, 0, len(folders))
	for _, folder := range folders {
		summaries = append(summaries, models.FolderSummary{
			ID:   folder.ID,
			Path: folder.Path,
			Name: folder.Name(),
		})
	}

	return summaries, nil
}

// DeleteFolder cascades: file rows and the folder row go first (in one
// transaction), the physical blobs and subtree after. A crash
// mid-operation leaves at worst orphaned files on disk, never catalog
// rows pointing at nothing.
func (s *folderService) DeleteFolder(ctx context.Context, identity, rawPath string) (string, error) {
	owner, err := resolveOwner(ctx, s.userRepo, identity)
	if err != nil {
		return "", err
	}

	path := utils.NormalizeFolderPath(rawPath)
	folder, err := s.folderRepo.GetByPath(ctx, owner.ID, path)
	if err != nil {
		return "", err
	}

	files, err := s.fileRepo.ListByFolder(ctx, folder.ID)
	if err != nil {
		return "", err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, file := range files {
			if err := s.fileRepo.Delete(txCtx, file.ID); err != nil {
				return err
			}
		}
		return s.folderRepo.Delete(txCtx, folder.ID, owner.ID)
	})
	if err != nil {
		return "", err
	}

	// Blob removal failures are tolerated individually; the catalog is
	// already consistent and the subtree removal sweeps stragglers.
	for _, file := range files {
		blob := s.store.BlobPath(owner.Email, folder.Path, file.Filename)
		if err := s.store.RemoveBlob(blob); err != nil {
			s.logger.Warn("failed to remove blob",
				"path", blob,
				"error", err,
			)
		}
	}

	if err := s.store.RemoveTree(owner.Email, folder.Path); err != nil {
		s.logger.Warn("failed to remove folder tree",
			"path", folder.Path,
			"error", err,
		)
	}

	s.logger.Info("folder deleted",
		"id", folder.ID,
		"path", folder.Path,
		"files", len(files),
	)

	return fmt.Sprintf("Folder '%s' and its files were successfully deleted!", folder.Path), nil
}
