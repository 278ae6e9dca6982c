package web

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sahilk/bollyfun/internal/config"
	"github.com/sahilk/bollyfun/internal/database/models"
)

// adminOnly guards the catalog management endpoints with a shared
// secret. With no secret configured the endpoints are disabled outright.
func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if config.AdminSecret == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		got := r.Header.Get("X-Admin-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(config.AdminSecret)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createMovieRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	SizeMB      string `json:"size_mb"`
	DP          string `json:"dp"`
	Screenshot1 string `json:"screenshot1"`
	Screenshot2 string `json:"screenshot2"`
}

// CreateMovie adds a catalog entry. Files are attached afterwards via
// the upload endpoint.
func (h *Handlers) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req createMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Type == "" {
		req.Type = models.CategoryMovies
	}
	if !models.ValidCategory(req.Type) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	movie := &models.Movie{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        req.Type,
		SizeMB:      req.SizeMB,
		DP:          req.DP,
		Screenshot1: req.Screenshot1,
		Screenshot2: req.Screenshot2,
	}
	if err := h.movies.Create(movie); err != nil {
		log.Printf("[ADMIN] Failed to create movie: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("[ADMIN] Created movie %d (%s)", movie.ID, movie.Slug)
	writeJSON(w, http.StatusCreated, toMovieJSON(movie))
}

// UploadMovieFile uploads one quality variant to the storage channel
// and records the resulting file_id on the movie
func (h *Handlers) UploadMovieFile(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		log.Printf("[ADMIN] Failed to get movie: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if movie == nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	quality := strings.ToUpper(r.FormValue("quality"))
	if !models.ValidQuality(quality) {
		writeError(w, http.StatusBadRequest, "unknown quality")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	caption := fmt.Sprintf("%s (%s)", movie.Title, quality)
	fileID, messageID, err := h.uploader.UploadDocument(header.Filename, file, caption)
	if err != nil {
		log.Printf("[ADMIN] Upload failed for movie %d: %v", movie.ID, err)
		writeError(w, http.StatusBadGateway, "upload to storage channel failed")
		return
	}

	if err := h.movies.SetFile(movie.ID, quality, fileID, messageID); err != nil {
		log.Printf("[ADMIN] Failed to store file_id: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("[ADMIN] Attached %s file to movie %d (message %d)", quality, movie.ID, messageID)
	writeJSON(w, http.StatusOK, map[string]any{
		"slug":       movie.Slug,
		"quality":    quality,
		"message_id": messageID,
	})
}

// MovieStats reports how many delivered copies are still awaiting cleanup
func (h *Handlers) MovieStats(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		log.Printf("[ADMIN] Failed to get movie: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if movie == nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	tracked, err := h.sent.CountForMovie(movie.ID)
	if err != nil {
		log.Printf("[ADMIN] Failed to count deliveries: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"slug":               movie.Slug,
		"tracked_deliveries": tracked,
	})
}
