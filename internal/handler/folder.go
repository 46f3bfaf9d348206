package handler

import (
	"log/slog"
	"net/http"

	"filevault/internal/config"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// CreateFolder creates a folder, optionally accepting file attachments
// into it in the same request
// POST /create_folder/  (multipart: folder_path field + files)
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentity(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxMultipartMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	folderPath := r.FormValue("folder_path")

	uploads := make([]services.Upload, 0, len(r.MultipartForm.File["files"]))
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "unreadable file attachment")
			return
		}
		defer f.Close()
		uploads = append(uploads, services.Upload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  f,
		})
	}

	msg, err := h.folderService.CreateFolder(r.Context(), identity, folderPath, uploads)
	if err != nil {
		handleError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, msg)
}

// ListFolders lists the owner's folders
// GET /folders/
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentity(w, r)
	if !ok {
		return
	}

	folders, err := h.folderService.ListFolders(r.Context(), identity)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// DeleteFolder cascade-deletes a folder, its files and its subtree
// DELETE /delete_folder/{folder_path}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentity(w, r)
	if !ok {
		return
	}

	folderPath := r.PathValue("folder_path")
	if folderPath == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder path is required")
		return
	}

	msg, err := h.folderService.DeleteFolder(r.Context(), identity, folderPath)
	if err != nil {
		handleError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, msg)
}
