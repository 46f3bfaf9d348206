package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"filevault/internal/auth"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
	"filevault/internal/filetypes"
	"filevault/internal/storage"
)

// testEnv wires the services against in-memory repositories and a
// temp-dir disk store.
type testEnv struct {
	users   *fakeUserRepo
	folders *fakeFolderRepo
	files   *fakeFileRepo
	store   *storage.DiskStore
	namer   *VersionNamer
	issuer  *auth.HS256Authenticator

	userSvc   services.UserService
	folderSvc services.FolderService
	fileSvc   services.FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := newFakeUserRepo()
	folders := newFakeFolderRepo()
	files := newFakeFileRepo()
	store := storage.NewDiskStore(t.TempDir(), logger)

	registry, err := filetypes.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	issuer, err := auth.NewHS256Authenticator("test-secret", 30*time.Minute, logger)
	if err != nil {
		t.Fatalf("NewHS256Authenticator failed: %v", err)
	}

	namer := NewVersionNamer(files, store)

	return &testEnv{
		users:     users,
		folders:   folders,
		files:     files,
		store:     store,
		namer:     namer,
		issuer:    issuer,
		userSvc:   NewUserService(users, issuer, 30*time.Minute, logger),
		folderSvc: NewFolderService(users, folders, files, fakeTxManager{}, namer, store, logger),
		fileSvc:   NewFileService(users, folders, files, namer, store, registry, logger),
	}
}

// addOwner seeds a user row directly, bypassing registration
func (e *testEnv) addOwner(t *testing.T, username, email string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "irrelevant",
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func textUpload(filename, content string) services.Upload {
	return services.Upload{
		Filename: filename,
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	}
}
