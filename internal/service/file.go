package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
	"filevault/internal/filetypes"
	"filevault/internal/storage"
	"filevault/internal/utils"
)

type fileService struct {
	userRepo   repositories.UserRepository
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	namer      *VersionNamer
	store      *storage.DiskStore
	types      *filetypes.Registry
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	userRepo repositories.UserRepository,
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	namer *VersionNamer,
	store *storage.DiskStore,
	types *filetypes.Registry,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		userRepo:   userRepo,
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		namer:      namer,
		store:      store,
		types:      types,
		logger:     logger,
	}
}

// Upload stores one file into an existing folder
func (s *fileService) Upload(ctx context.Context, identity, folderPath string, upload services.Upload) (*services.UploadResult, error) {
	owner, err := resolveOwner(ctx, s.userRepo, identity)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByPath(ctx, owner.ID, utils.NormalizeFolderPath(folderPath))
	if err != nil {
		return nil, err
	}

	file, err := storeFile(ctx, s.fileRepo, s.namer, s.store, s.logger, owner, folder, upload)
	if err != nil {
		return nil, err
	}

	s.logger.Info("file uploaded",
		"folder_id", folder.ID,
		"filename", file.Filename,
		"revision", file.Revision,
	)

	return &services.UploadResult{
		Message:  "File uploaded successfully",
		Filename: file.Filename,
		Revision: file.Revision,
	}, nil
}

// ListFiles lists the file rows in a folder. A folder the owner does not
// have (absent or someone else's) is reported as a permission problem,
// not a lookup miss.
func (s *fileService) ListFiles(ctx context.Context, identity, folderPath string) ([]models.FileSummary, error) {
	owner, err := resolveOwner(ctx, s.userRepo, identity)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByPath(ctx, owner.ID, utils.NormalizeFolderPath(folderPath))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("you don't have permission to access this folder: %w", domain.ErrForbidden)
		}
		return nil, err
	}

	files, err := s.fileRepo.ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.FileSummary, 0, len(files))
	for _, file := range files {
		summaries = append(summaries, models.FileSummary{
			ID:         file.ID,
			Filename:   file.Filename,
			FilePath:   file.PhysicalPath,
			UploadedAt: file.UploadedAt,
			Revision:   file.Revision,
		})
	}

	return summaries, nil
}

// DeleteFile removes a file row and its blob. The catalog lookup failing
// is a real miss; a blob that is already gone is tolerated since catalog
// consistency is restored regardless.
func (s *fileService) DeleteFile(ctx context.Context, identity, folderPath, filename string) (string, error) {
	owner, err := resolveOwner(ctx, s.userRepo, identity)
	if err != nil {
		return "", err
	}

	folder, err := s.folderRepo.GetByPath(ctx, owner.ID, utils.NormalizeFolderPath(folderPath))
	if err != nil {
		return "", err
	}

	file, err := s.fileRepo.GetByName(ctx, folder.ID, filename)
	if err != nil {
		return "", err
	}

	blob := s.store.BlobPath(owner.Email, folder.Path, file.Filename)
	if err := s.store.RemoveBlob(blob); err != nil {
		s.logger.Warn("failed to remove blob",
			"path", blob,
			"error", err,
		)
	}

	if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
		return "", err
	}

	s.logger.Info("file deleted",
		"folder_id", folder.ID,
		"filename", file.Filename,
	)

	return fmt.Sprintf("File '%s' successfully deleted!", filename), nil
}

// Preview resolves a file for inline viewing. Resolution goes through
// the catalog with a filename substring match, optionally filtered by
// exact revision; the first match wins. Download resolves by physical
// path instead - the asymmetry is inherited behavior, kept deliberately.
func (s *fileService) Preview(ctx context.Context, identity, folderPath, filename string, revision *int) (*services.PreviewResult, error) {
	owner, err := resolveOwner(ctx, s.userRepo, identity)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByPath(ctx, owner.ID, utils.NormalizeFolderPath(folderPath))
	if err != nil {
		return nil, err
	}

	matches, err := s.fileRepo.SearchByName(ctx, folder.ID, filename, revision)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("file '%s': %w", filename, domain.ErrNotFound)
	}
	file := matches[0]

	path := s.store.BlobPath(owner.Email, folder.Path, file.Filename)

	return &services.PreviewResult{
		Filename:     file.Filename,
		PhysicalPath: path,
		ContentType:  s.types.Lookup(file.Filename),
	}, nil
}

// Download resolves a file for attachment download by computing the
// physical path directly from (owner, folder path, filename).
func (s *fileService) Download(ctx context.Context, identity, folderPath, filename string) (*services.PreviewResult, error) {
	owner, err := resolveOwner(ctx, s.userRepo, identity)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByPath(ctx, owner.ID, utils.NormalizeFolderPath(folderPath))
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateFilename(filename); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	dir := s.store.FolderDir(owner.Email, folder.Path)
	if !s.store.Exists(dir, filename) {
		return nil, fmt.Errorf("file '%s': %w", filename, domain.ErrNotFound)
	}

	return &services.PreviewResult{
		Filename:     filename,
		PhysicalPath: s.store.BlobPath(owner.Email, folder.Path, filename),
		ContentType:  s.types.Lookup(filename),
	}, nil
}
