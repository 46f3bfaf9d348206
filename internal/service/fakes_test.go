package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
)

// In-memory repository fakes mirroring the postgres implementations'
// error contracts.

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users []*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return &domain.ConflictError{Message: "email or username already registered", ResourceType: "user"}
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	copied := *user
	r.users = append(r.users, &copied)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id }, id)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email }, email)
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username }, username)
}

func (r *fakeUserRepo) find(match func(*models.User) bool, key string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", key, domain.ErrNotFound)
}

type fakeFolderRepo struct {
	mu      sync.Mutex
	seq     int
	folders []*models.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{}
}

func (r *fakeFolderRepo) FindOrCreate(ctx context.Context, userID, path string) (*models.Folder, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.UserID == userID && strings.EqualFold(f.Path, path) {
			copied := *f
			return &copied, false, nil
		}
	}
	r.seq++
	folder := &models.Folder{
		ID:        fmt.Sprintf("folder-%d", r.seq),
		UserID:    userID,
		Path:      path,
		CreatedAt: time.Now(),
	}
	r.folders = append(r.folders, folder)
	copied := *folder
	return &copied, true, nil
}

func (r *fakeFolderRepo) GetByPath(ctx context.Context, userID, path string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.UserID == userID && strings.EqualFold(f.Path, path) {
			copied := *f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("folder '%s': %w", path, domain.ErrNotFound)
}

func (r *fakeFolderRepo) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, f := range r.folders {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.folders {
		if f.ID == id && f.UserID == userID {
			r.folders = append(r.folders[:i], r.folders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
}

type fakeFileRepo struct {
	mu    sync.Mutex
	seq   int
	files []*models.File
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{}
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.FolderID == file.FolderID && f.Filename == file.Filename {
			return fmt.Errorf("file '%s': %w", file.Filename, domain.ErrConflict)
		}
	}
	r.seq++
	file.ID = fmt.Sprintf("file-%d", r.seq)
	file.UploadedAt = time.Now()
	copied := *file
	r.files = append(r.files, &copied)
	return nil
}

func (r *fakeFileRepo) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if f.FolderID == folderID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) GetByName(ctx context.Context, folderID, filename string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.FolderID == folderID && f.Filename == filename {
			copied := *f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("file '%s': %w", filename, domain.ErrNotFound)
}

func (r *fakeFileRepo) ListVersioned(ctx context.Context, folderID, base, ext string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if f.FolderID == folderID &&
			strings.HasPrefix(f.Filename, base+"_v") &&
			strings.HasSuffix(f.Filename, ext) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) SearchByName(ctx context.Context, folderID, needle string, revision *int) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if f.FolderID != folderID || !strings.Contains(f.Filename, needle) {
			continue
		}
		if revision != nil && f.Revision != *revision {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

func (r *fakeFileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.files {
		if f.ID == id {
			r.files = append(r.files[:i], r.files[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
}

// fakeTxManager runs the function without a real transaction
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
