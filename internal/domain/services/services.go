package services

import (
	"context"
	"io"
	"time"

	"filevault/internal/domain/models"
)

// Upload is one inbound file attachment.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UploadResult reports the stored name and revision assigned to an upload.
type UploadResult struct {
	Message  string `json:"message"`
	Filename string `json:"file"`
	Revision int    `json:"revision"`
}

// Session is an issued session token with its expiry.
type Session struct {
	Token     string
	User      *models.User
	ExpiresAt time.Time
}

// UserService handles registration, login and owner resolution.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*Session, error)
	Login(ctx context.Context, req *models.LoginRequest) (*Session, error)
	// ResolveOwner maps the authenticated identity (an email) to its user
	// row. Every protected operation starts here.
	ResolveOwner(ctx context.Context, identity string) (*models.User, error)
}

// FolderService orchestrates the folder catalog and the on-disk tree.
type FolderService interface {
	// CreateFolder creates (or silently reuses) the folder for the raw
	// path and accepts any attached uploads into it.
	CreateFolder(ctx context.Context, identity, rawPath string, uploads []Upload) (string, error)
	ListFolders(ctx context.Context, identity string) ([]models.FolderSummary, error)
	// DeleteFolder cascades: file rows, folder row, then the physical
	// subtree with empty-parent pruning.
	DeleteFolder(ctx context.Context, identity, rawPath string) (string, error)
}

// ChatService answers assistant messages: a canned guided-help flow, or
// free-form chat delegated to a language-model provider when one is
// configured.
type ChatService interface {
	Chat(ctx context.Context, req *models.ChatRequest) (string, error)
}

// PreviewResult carries what the handler needs to stream a blob inline.
type PreviewResult struct {
	Filename     string
	PhysicalPath string
	ContentType  string
}

// FileService orchestrates uploads and reads of individual files.
type FileService interface {
	Upload(ctx context.Context, identity, folderPath string, upload Upload) (*UploadResult, error)
	ListFiles(ctx context.Context, identity, folderPath string) ([]models.FileSummary, error)
	DeleteFile(ctx context.Context, identity, folderPath, filename string) (string, error)
	// Preview resolves by filename substring match against the catalog,
	// optionally filtered by exact revision. Download instead computes
	// the physical path directly from the request; the asymmetry is
	// inherited behavior.
	Preview(ctx context.Context, identity, folderPath, filename string, revision *int) (*PreviewResult, error)
	Download(ctx context.Context, identity, folderPath, filename string) (*PreviewResult, error)
}
