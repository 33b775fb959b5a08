package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"artspace/internal/httputil"
	"artspace/internal/model"
	"artspace/internal/service"
	"artspace/internal/transport/http/middleware"
)

// ArtworkHandler serves artwork CRUD, explore and like endpoints.
type ArtworkHandler struct {
	artworkService *service.ArtworkService
	mediaService   *service.MediaService
}

func NewArtworkHandler(artworkService *service.ArtworkService, mediaService *service.MediaService) *ArtworkHandler {
	return &ArtworkHandler{
		artworkService: artworkService,
		mediaService:   mediaService,
	}
}

// Create publishes a new artwork via multipart form
// POST /artworks
func (h *ArtworkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequest(w, "Image exceeds 10MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	title := r.FormValue("title")
	var description *string
	if desc, present := r.Form["description"]; present && len(desc) > 0 {
		description = &desc[0]
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			httputil.WriteBadRequest(w, "Image is required")
			return
		}
		httputil.WriteBadRequest(w, "Invalid image upload")
		return
	}
	defer file.Close()

	artwork, err := h.artworkService.Create(r.Context(), userID, title, description, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title must be at most 120 characters")
		case errors.Is(err, model.ErrDescriptionTooLong):
			httputil.WriteBadRequest(w, "Description must be at most 2200 characters")
		case errors.Is(err, model.ErrFileTooLarge), errors.Is(err, model.ErrInvalidImageType):
			writeUploadError(w, err)
		default:
			log.Printf("[ERROR] Create artwork handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create artwork")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, artwork)
}

// Explore lists all artworks newest first
// GET /artworks
func (h *ArtworkHandler) Explore(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.ViewerID(r.Context())

	artworks, err := h.artworkService.Explore(r.Context(), viewerID)
	if err != nil {
		log.Printf("[ERROR] Explore handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list artworks")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, artworks)
}

// ListByUser returns a user's artworks, newest first
// GET /users/{id}/artworks
func (h *ArtworkHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	viewerID := middleware.ViewerID(r.Context())

	artworks, err := h.artworkService.ListByUser(r.Context(), userID, viewerID)
	if err != nil {
		log.Printf("[ERROR] ListByUser handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list artworks")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, artworks)
}

// Get returns one artwork
// GET /artworks/{id}
func (h *ArtworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	artworkID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid artwork ID")
		return
	}

	viewerID := middleware.ViewerID(r.Context())

	artwork, err := h.artworkService.Get(r.Context(), artworkID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrArtworkNotFound) {
			httputil.WriteNotFound(w, "Artwork not found")
			return
		}
		log.Printf("[ERROR] Get artwork handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get artwork")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, artwork)
}

// Edit updates title/description and optionally replaces the image
// PUT /artworks/{id}
func (h *ArtworkHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	artworkID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid artwork ID")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequest(w, "Image exceeds 10MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	var req model.EditArtworkRequest
	if title, present := r.Form["title"]; present && len(title) > 0 {
		req.Title = &title[0]
	}
	if desc, present := r.Form["description"]; present && len(desc) > 0 {
		req.Description = &desc[0]
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		upload, uploadErr := h.mediaService.UploadArtwork(r.Context(), file, header)
		if uploadErr != nil {
			writeUploadError(w, uploadErr)
			return
		}
		req.ImageURL = &upload.URL
		req.ImageKey = &upload.Key
	} else if err != http.ErrMissingFile {
		httputil.WriteBadRequest(w, "Invalid image upload")
		return
	}

	artwork, err := h.artworkService.Edit(r.Context(), artworkID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrArtworkNotFound):
			httputil.WriteNotFound(w, "Artwork not found")
		case errors.Is(err, model.ErrNotArtworkOwner):
			httputil.WriteForbidden(w, "Only the artist can edit this artwork")
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title must be at most 120 characters")
		case errors.Is(err, model.ErrDescriptionTooLong):
			httputil.WriteBadRequest(w, "Description must be at most 2200 characters")
		default:
			log.Printf("[ERROR] Edit artwork handler: %v", err)
			httputil.WriteInternalError(w, "Failed to edit artwork")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, artwork)
}

// Delete removes an artwork
// DELETE /artworks/{id}
func (h *ArtworkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	artworkID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid artwork ID")
		return
	}

	if err := h.artworkService.Delete(r.Context(), artworkID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrArtworkNotFound):
			httputil.WriteNotFound(w, "Artwork not found")
		case errors.Is(err, model.ErrNotArtworkOwner):
			httputil.WriteForbidden(w, "Only the artist can delete this artwork")
		default:
			log.Printf("[ERROR] Delete artwork handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete artwork")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Artwork deleted",
	})
}

// ToggleLike flips the viewer's like on an artwork
// POST /artworks/{id}/like
func (h *ArtworkHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	artworkID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid artwork ID")
		return
	}

	result, err := h.artworkService.ToggleLike(r.Context(), artworkID, userID)
	if err != nil {
		if errors.Is(err, model.ErrArtworkNotFound) {
			httputil.WriteNotFound(w, "Artwork not found")
			return
		}
		log.Printf("[ERROR] ToggleLike handler: %v", err)
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
