package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authed attaches an owner identity the way the auth middleware would
func authed(r *http.Request) *http.Request {
	return httputil.WithIdentity(r, "alice@example.com")
}

// Service stubs

type stubUserService struct {
	session *services.Session
	owner   *models.User
	err     error
}

func (s *stubUserService) Register(ctx context.Context, req *models.RegisterRequest) (*services.Session, error) {
	return s.session, s.err
}

func (s *stubUserService) Login(ctx context.Context, req *models.LoginRequest) (*services.Session, error) {
	return s.session, s.err
}

func (s *stubUserService) ResolveOwner(ctx context.Context, identity string) (*models.User, error) {
	return s.owner, s.err
}

type stubFolderService struct {
	msg     string
	folders []models.FolderSummary
	err     error

	gotPath    string
	gotUploads int
}

func (s *stubFolderService) CreateFolder(ctx context.Context, identity, rawPath string, uploads []services.Upload) (string, error) {
	s.gotPath = rawPath
	s.gotUploads = len(uploads)
	return s.msg, s.err
}

func (s *stubFolderService) ListFolders(ctx context.Context, identity string) ([]models.FolderSummary, error) {
	return s.folders, s.err
}

func (s *stubFolderService) DeleteFolder(ctx context.Context, identity, rawPath string) (string, error) {
	s.gotPath = rawPath
	return s.msg, s.err
}

type stubFileService struct {
	result  *services.UploadResult
	files   []models.FileSummary
	preview *services.PreviewResult
	msg     string
	err     error

	gotRevision *int
}

func (s *stubFileService) Upload(ctx context.Context, identity, folderPath string, upload services.Upload) (*services.UploadResult, error) {
	return s.result, s.err
}

func (s *stubFileService) ListFiles(ctx context.Context, identity, folderPath string) ([]models.FileSummary, error) {
	return s.files, s.err
}

func (s *stubFileService) DeleteFile(ctx context.Context, identity, folderPath, filename string) (string, error) {
	return s.msg, s.err
}

func (s *stubFileService) Preview(ctx context.Context, identity, folderPath, filename string, revision *int) (*services.PreviewResult, error) {
	s.gotRevision = revision
	return s.preview, s.err
}

func (s *stubFileService) Download(ctx context.Context, identity, folderPath, filename string) (*services.PreviewResult, error) {
	return s.preview, s.err
}

type stubChatService struct {
	reply string
	err   error

	gotMessage string
	gotMode    string
}

func (s *stubChatService) Chat(ctx context.Context, req *models.ChatRequest) (string, error) {
	s.gotMessage = req.Message
	s.gotMode = req.Mode
	return s.reply, s.err
}

func TestListFoldersRequiresIdentity(t *testing.T) {
	h := NewFolderHandler(&stubFolderService{}, testLogger())

	w := httptest.NewRecorder()
	h.ListFolders(w, httptest.NewRequest(http.MethodGet, "/folders/", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
}

func TestListFolders(t *testing.T) {
	h := NewFolderHandler(&stubFolderService{
		folders: []models.FolderSummary{
			{ID: "folder-1", Path: "docs/reports", Name: "reports"},
		},
	}, testLogger())

	w := httptest.NewRecorder()
	h.ListFolders(w, authed(httptest.NewRequest(http.MethodGet, "/folders/", nil)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got []models.FolderSummary
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Name != "reports" {
		t.Errorf("response = %+v", got)
	}
}

func TestCreateFolderMultipart(t *testing.T) {
	svc := &stubFolderService{msg: "Files uploaded successfully!"}
	h := NewFolderHandler(svc, testLogger())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("folder_path", "docs/reports"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	for _, name := range []string{"report.pdf", "notes.txt"} {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fmt.Fprint(part, "content of ", name)
	}
	mw.Close()

	r := authed(httptest.NewRequest(http.MethodPost, "/create_folder/", &body))
	r.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	h.CreateFolder(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if svc.gotPath != "docs/reports" {
		t.Errorf("service received path %q", svc.gotPath)
	}
	if svc.gotUploads != 2 {
		t.Errorf("service received %d uploads, want 2", svc.gotUploads)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Files uploaded successfully!" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestCreateFolderRejectsNonMultipart(t *testing.T) {
	h := NewFolderHandler(&stubFolderService{}, testLogger())

	r := authed(httptest.NewRequest(http.MethodPost, "/create_folder/", strings.NewReader("{}")))
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.CreateFolder(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestDeleteFolderErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: bad path", domain.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("folder 'x': %w", domain.ErrNotFound), http.StatusNotFound},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("no: %w", domain.ErrForbidden), http.StatusForbidden},
		{"conflict sentinel", fmt.Errorf("dup: %w", domain.ErrConflict), http.StatusConflict},
		{"conflict typed", &domain.ConflictError{Message: "dup", ResourceType: "folder"}, http.StatusConflict},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewFolderHandler(&stubFolderService{err: tt.err}, testLogger())

			r := authed(httptest.NewRequest(http.MethodDelete, "/delete_folder/docs", nil))
			r.SetPathValue("folder_path", "docs")

			w := httptest.NewRecorder()
			h.DeleteFolder(w, r)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestUploadRequiresFilePart(t *testing.T) {
	h := NewFileHandler(&stubFileService{}, testLogger())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()

	r := authed(httptest.NewRequest(http.MethodPost, "/upload/docs", &body))
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.SetPathValue("folder_path", "docs")

	w := httptest.NewRecorder()
	h.Upload(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpload(t *testing.T) {
	h := NewFileHandler(&stubFileService{
		result: &services.UploadResult{
			Message:  "File uploaded successfully",
			Filename: "report_v1.pdf",
			Revision: 1,
		},
	}, testLogger())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "report.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fmt.Fprint(part, "pdf bytes")
	mw.Close()

	r := authed(httptest.NewRequest(http.MethodPost, "/upload/docs", &body))
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.SetPathValue("folder_path", "docs")

	w := httptest.NewRecorder()
	h.Upload(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp services.UploadResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Filename != "report_v1.pdf" || resp.Revision != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestPreviewRevisionParam(t *testing.T) {
	svc := &stubFileService{err: domain.ErrNotFound}
	h := NewFileHandler(svc, testLogger())

	// Malformed revision values never reach the service.
	for _, raw := range []string{"abc", "-1", "1.5"} {
		r := authed(httptest.NewRequest(http.MethodGet, "/folder/docs/report.pdf?revision="+raw, nil))
		r.SetPathValue("folder_path", "docs")
		r.SetPathValue("filename", "report.pdf")

		w := httptest.NewRecorder()
		h.Preview(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("revision=%q: status = %d, want %d", raw, w.Code, http.StatusBadRequest)
		}
	}

	// A well-formed revision is forwarded as a pin.
	r := authed(httptest.NewRequest(http.MethodGet, "/folder/docs/report.pdf?revision=2", nil))
	r.SetPathValue("folder_path", "docs")
	r.SetPathValue("filename", "report.pdf")
	h.Preview(httptest.NewRecorder(), r)

	if svc.gotRevision == nil || *svc.gotRevision != 2 {
		t.Errorf("service received revision %v, want 2", svc.gotRevision)
	}
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		session: &services.Session{
			Token:     "signed-token",
			User:      &models.User{ID: "user-1", Username: "alice", Email: "alice@example.com"},
			ExpiresAt: time.Now().Add(30 * time.Minute),
		},
	}, testLogger())

	body := strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"s3cret-enough"}`)
	r := httptest.NewRequest(http.MethodPost, "/register/", body)
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.Register(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	cookies := w.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == "access_token" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no access_token cookie set")
	}
	if session.Value != "signed-token" {
		t.Errorf("cookie value = %q", session.Value)
	}
	if !session.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
}

func TestRegisterRejectsBadBody(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/register/", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h.Register(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLogoutClearsSessionCookie(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, testLogger())

	// No identity attached: logging out must work for stale sessions too.
	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodPost, "/logout/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "access_token" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no access_token cookie set")
	}
	if session.Value != "" {
		t.Errorf("cookie value = %q, want empty", session.Value)
	}
	if session.MaxAge >= 0 {
		t.Errorf("cookie MaxAge = %d, want negative to expire it", session.MaxAge)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Logout successful" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestChatbotReply(t *testing.T) {
	svc := &stubChatService{reply: "Type <b>1</b> to see the usage guide or <b>2</b> to exit."}
	h := NewChatHandler(svc, testLogger())

	body := strings.NewReader(`{"message":"hi","chatMode":"help"}`)
	r := httptest.NewRequest(http.MethodPost, "/chatbot", body)
	r.Header.Set("Content-Type", "application/json")

	// No identity attached: the assistant is reachable before login.
	w := httptest.NewRecorder()
	h.Chat(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if svc.gotMessage != "hi" || svc.gotMode != "help" {
		t.Errorf("service received message %q mode %q", svc.gotMessage, svc.gotMode)
	}

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != svc.reply {
		t.Errorf("reply = %q", resp.Reply)
	}
}

func TestChatbotRejectsBadBody(t *testing.T) {
	h := NewChatHandler(&stubChatService{}, testLogger())

	r := httptest.NewRequest(http.MethodPost, "/chatbot", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h.Chat(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestChatbotInvalidMode(t *testing.T) {
	h := NewChatHandler(&stubChatService{
		err: fmt.Errorf("%w: mode must be help or free", domain.ErrValidation),
	}, testLogger())

	body := strings.NewReader(`{"message":"hi","chatMode":"banter"}`)
	r := httptest.NewRequest(http.MethodPost, "/chatbot", body)
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.Chat(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHome(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		owner: &models.User{ID: "user-1", Username: "alice", Email: "alice@example.com"},
	}, testLogger())

	w := httptest.NewRecorder()
	h.Home(w, authed(httptest.NewRequest(http.MethodGet, "/home/", nil)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Welcome, alice!" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
