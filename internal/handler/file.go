package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"filevault/internal/config"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService services.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService services.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// Upload stores one file into an existing folder
// POST /upload/{folder_path}  (multipart: file)
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentity(w, r)
	if !ok {
		return
	}

	folderPath := r.PathValue("folder_path")
	if folderPath == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder path is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxMultipartMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file attachment is required")
		return
	}
	defer file.Close()

	result, err := h.fileService.Upload(r.Context(), identity, folderPath, services.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListFiles lists the files in a folder
// GET /folder/{folder_path}/files/
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentity(w, r)
	if !ok {
		return
	}

	files, err := h.fileService.ListFiles(r.Context(), identity, r.PathValue("folder_path"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// DeleteFile removes a single file
// DELETE /delete_file/{folder_path}/{filename}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentity(w, r)
	if !ok {
		return
	}

	msg, err := h.fileService.DeleteFile(r.Context(), identity,
		r.PathValue("folder_path"), r.PathValue("filename"))
	if err != nil {
		handleError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, msg)
}

// Preview streams a file inline with its inferred content type,
// optionally pinned to an exact revision
// GET /folder/{folder_path}/{filename}?revision=N
func (h *FileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentity(w, r)
	if !ok {
		return
	}

	var revision *int
	if raw := r.URL.Query().Get("revision"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "revision must be a non-negative integer")
			return
		}
		revision = &n
	}

	result, err := h.fileService.Preview(r.Context(), identity,
		r.PathValue("folder_path"), r.PathValue("filename"), revision)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	http.ServeFile(w, r, result.PhysicalPath)
}

// Download streams a file as an attachment
// GET /download/{folder_path}/{filename}
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentity(w, r)
	if !ok {
		return
	}

	result, err := h.fileService.Download(r.Context(), identity,
		r.PathValue("folder_path"), r.PathValue("filename"))
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Type", result.ContentType)
	http.ServeFile(w, r, result.PhysicalPath)
}
