package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/frameweavers/showreel/internal/model"
	"github.com/frameweavers/showreel/internal/service"
	"github.com/frameweavers/showreel/internal/validation"
)

// CatalogWriter is the mutating side of the catalog. Static deployments
// have none.
type CatalogWriter interface {
	Create(ctx context.Context, in service.CreateInput) (*model.CatalogEntry, error)
	Delete(ctx context.Context, ref string) (*service.DeleteReport, error)
	Reorder(ctx context.Context, index int, direction service.Direction) (bool, error)
}

type PortfolioHandler struct {
	catalog service.Catalog
	writer  CatalogWriter
	images  validation.FileConstraints
	videos  validation.FileConstraints
	maxBody int64
}

func NewPortfolioHandler(catalog service.Catalog, writer CatalogWriter, maxUploadSize int64) *PortfolioHandler {
	return &PortfolioHandler{
		catalog: catalog,
		writer:  writer,
		images:  validation.ImageConstraints,
		videos:  validation.VideoConstraints.WithMaxSize(maxUploadSize),
		// Both files plus form fields
		maxBody: maxUploadSize + validation.ImageConstraints.MaxSize + 1<<20,
	}
}

type envelope struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message,omitempty"`
	Item     *model.CatalogEntry `json:"item,omitempty"`
	Moved    *bool               `json:"moved,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`
}

type reorderRequest struct {
	Index     *int   `json:"index"`
	Direction string `json:"direction"`
}

// List returns every entry in display order as a bare JSON array.
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list portfolio", "error", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, envelope{Message: "Upload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Invalid form data"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := service.CreateInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Description: strings.TrimSpace(r.FormValue("description")),
		VideoURL:    strings.TrimSpace(r.FormValue("videoUrl")),
		ImageURL:    strings.TrimSpace(r.FormValue("imageUrl")),
	}
	if in.Title == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Title is required"})
		return
	}

	thumbnail, closeThumb, err := h.formFile(r, "thumbnail", h.images)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Thumbnail: " + err.Error()})
		return
	}
	defer closeThumb()
	in.Thumbnail = thumbnail

	video, closeVideo, err := h.formFile(r, "videoFile", h.videos)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Video: " + err.Error()})
		return
	}
	defer closeVideo()
	in.Video = video

	entry, err := h.writer.Create(r.Context(), in)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create portfolio entry", "title", in.Title, "error", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Success: true, Item: entry})
}

func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")

	report, err := h.writer.Delete(r.Context(), ref)
	if errors.Is(err, service.ErrNotFound) {
		writeJSON(w, http.StatusOK, envelope{Message: "Not found"})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to delete portfolio entry", "ref", ref, "error", err)
		writeFailure(w, err)
		return
	}

	resp := envelope{Success: true}
	for _, handle := range report.Failed {
		resp.Warnings = append(resp.Warnings, "media not released: "+handle)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PortfolioHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req)
	if err != nil || req.Index == nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Expected {index, direction}"})
		return
	}

	direction, err := service.ParseDirection(req.Direction)
	if err != nil {
		writeJSON(w, http.StatusOK, envelope{Message: err.Error()})
		return
	}

	moved, err := h.writer.Reorder(r.Context(), *req.Index, direction)
	if errors.Is(err, service.ErrIndexOutOfRange) {
		writeJSON(w, http.StatusOK, envelope{Message: "Index out of range"})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to reorder portfolio", "index", *req.Index, "direction", direction, "error", err)
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Moved: &moved})
}

// formFile validates an optional upload. The returned closer is always safe
// to call.
func (h *PortfolioHandler) formFile(r *http.Request, field string, constraints validation.FileConstraints) (*service.MediaFile, func(), error) {
	noop := func() {}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	err = validation.ValidateFile(header, constraints)
	if err != nil {
		_ = file.Close()
		return nil, noop, err
	}

	return &service.MediaFile{Filename: header.Filename, Body: file}, closer(file), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

// writeFailure maps unexpected service errors to a status code. Timeouts
// are transient and worth a retry.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, envelope{Message: "Service temporarily unavailable, please retry"})
	case errors.Is(err, service.ErrUpload):
		writeJSON(w, http.StatusBadGateway, envelope{Message: "Media upload failed"})
	default:
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
