package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sahilk/bollyfun/internal/bot"
	"github.com/sahilk/bollyfun/internal/config"
	"github.com/sahilk/bollyfun/internal/database/models"
	"github.com/sahilk/bollyfun/internal/database/repository"
	"github.com/sahilk/bollyfun/internal/download"
	"github.com/sahilk/bollyfun/internal/shortener"
)

// Handlers carries the dependencies of the HTTP surface
type Handlers struct {
	movies    *repository.MovieRepository
	sent      *repository.SentFileRepository
	downloads *download.Service
	shortener *shortener.Client
	bot       *bot.Bot
	uploader  Uploader
}

// Uploader is the slice of the Telegram client the admin API needs
type Uploader interface {
	UploadDocument(name string, data io.Reader, caption string) (string, int, error)
}

// NewHandlers creates the HTTP handler set
func NewHandlers(
	movies *repository.MovieRepository,
	sent *repository.SentFileRepository,
	downloads *download.Service,
	short *shortener.Client,
	b *bot.Bot,
	uploader Uploader,
) *Handlers {
	return &Handlers{
		movies:    movies,
		sent:      sent,
		downloads: downloads,
		shortener: short,
		bot:       b,
		uploader:  uploader,
	}
}

// Routes mounts every endpoint on the router
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Get("/api/movies", h.ListMovies)
	r.Get("/api/movies/{slug}", h.GetMovie)
	r.Get("/api/category/{category}", h.ListCategory)

	r.Get("/download/{quality}/{slug}", h.IssueDownload)
	r.Get("/dl/{token}", h.ValidateDownload)

	r.Get("/telegram/webhook", h.WebhookStatus)
	r.Post("/telegram/webhook", h.Webhook)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/movies", h.CreateMovie)
		r.Post("/movies/{slug}/upload", h.UploadMovieFile)
		r.Get("/movies/{slug}/stats", h.MovieStats)
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// movieJSON is the public shape of a catalog entry. Download URLs point
// at the issuance endpoint and exist only for uploaded variants.
type movieJSON struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	SizeMB        string `json:"size_mb"`
	DP            string `json:"dp"`
	Screenshot1   string `json:"screenshot1"`
	Screenshot2   string `json:"screenshot2"`
	Slug          string `json:"slug"`
	UploadDate    string `json:"upload_date"`
	SDDownloadURL string `json:"sd_download_url,omitempty"`
	HDDownloadURL string `json:"hd_download_url,omitempty"`
}

func toMovieJSON(m *models.Movie) movieJSON {
	out := movieJSON{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Type:        m.Type,
		SizeMB:      m.SizeMB,
		DP:          m.DP,
		Screenshot1: m.Screenshot1,
		Screenshot2: m.Screenshot2,
		Slug:        m.Slug,
		UploadDate:  m.UploadDate.Format("2006-01-02"),
	}
	if m.SDFileID != "" {
		out.SDDownloadURL = fmt.Sprintf("%s/download/sd/%s", config.PublicBaseURL, m.Slug)
	}
	if m.HDFileID != "" {
		out.HDDownloadURL = fmt.Sprintf("%s/download/hd/%s", config.PublicBaseURL, m.Slug)
	}
	return out
}

type listResponse struct {
	Movies     []movieJSON `json:"movies"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Total      int64       `json:"total"`
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request, category string) {
	q := r.URL.Query().Get("q")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	movies, total, err := h.movies.List(category, q, page, config.PageSize)
	if err != nil {
		log.Printf("[WEB] Failed to list movies: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := listResponse{
		Movies:     make([]movieJSON, 0, len(movies)),
		Page:       page,
		TotalPages: int((total + config.PageSize - 1) / config.PageSize),
		Total:      total,
	}
	for _, m := range movies {
		resp.Movies = append(resp.Movies, toMovieJSON(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ListMovies(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

func (h *Handlers) ListCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if !models.ValidCategory(category) {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}
	h.list(w, r, category)
}

func (h *Handlers) GetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		log.Printf("[WEB] Failed to get movie: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if movie == nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, toMovieJSON(movie))
}

// IssueDownload mints (or reuses) a download token and redirects the
// visitor to the validation URL, shortened for monetization when a
// shortener key is configured
func (h *Handlers) IssueDownload(w http.ResponseWriter, r *http.Request) {
	quality := strings.ToUpper(chi.URLParam(r, "quality"))
	if !models.ValidQuality(quality) {
		writeError(w, http.StatusBadRequest, "unknown quality")
		return
	}

	movie, err := h.movies.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		log.Printf("[WEB] Failed to get movie: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if movie == nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	token, err := h.downloads.IssueToken(movie, quality)
	if errors.Is(err, download.ErrVariantUnavailable) {
		writeError(w, http.StatusForbidden, "Download link is not available for this quality.")
		return
	}
	if err != nil {
		log.Printf("[WEB] Failed to issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	validateURL := fmt.Sprintf("%s/dl/%s", config.PublicBaseURL, token.Token)
	target, err := h.shortener.Shorten(validateURL)
	if err != nil {
		// Shorten falls back to the direct link; monetization is best effort
		log.Printf("[WEB] Shortener unavailable: %v", err)
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// ValidateDownload checks the token and hands the visitor to the bot
// via a t.me deep link. The token is NOT consumed here — the bot
// deletes it after the file is actually delivered.
func (h *Handlers) ValidateDownload(w http.ResponseWriter, r *http.Request) {
	token, err := h.downloads.Validate(chi.URLParam(r, "token"))
	if errors.Is(err, download.ErrTokenNotFound) {
		writeError(w, http.StatusForbidden, "Invalid download token.")
		return
	}
	if errors.Is(err, download.ErrTokenExpired) {
		writeError(w, http.StatusForbidden, "Download link has expired. Please go back to the movie page to get a new link.")
		return
	}
	if err != nil {
		log.Printf("[WEB] Failed to validate token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	deepLink := fmt.Sprintf("https://t.me/%s?start=%s", config.BotUsername, token.Token)
	http.Redirect(w, r, deepLink, http.StatusFound)
}

func (h *Handlers) WebhookStatus(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Telegram Webhook is Active")
}

// Webhook receives updates from Telegram. It always answers quickly:
// 200 once the update is dispatched, 500 on a malformed payload so the
// transport's retry loop stays bounded.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("[WEB] Failed to decode webhook update: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.bot.HandleUpdate(update)
	w.WriteHeader(http.StatusOK)
}
