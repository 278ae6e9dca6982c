package repository

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"

	"github.com/sahilk/bollyfun/internal/database/models"
)

// MovieRepository handles catalog persistence
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL-safe slug
func Slugify(title string) string {
	s := unidecode.Unidecode(title)
	s = strings.ToLower(s)
	s = slugStrip.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "movie"
	}
	return s
}

// Create inserts a new movie, generating a unique slug from the title
func (r *MovieRepository) Create(movie *models.Movie) error {
	slug, err := r.uniqueSlug(Slugify(movie.Title))
	if err != nil {
		return err
	}
	movie.Slug = slug

	now := time.Now()
	movie.UploadDate = now
	movie.CreatedAt = now

	query := `
		INSERT INTO movies
		(title, description, type, size_mb, dp, screenshot1, screenshot2, slug, upload_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Exec(query,
		movie.Title,
		movie.Description,
		movie.Type,
		movie.SizeMB,
		movie.DP,
		movie.Screenshot1,
		movie.Screenshot2,
		movie.Slug,
		movie.UploadDate,
		movie.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create movie: %w", err)
	}

	movie.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get movie id: %w", err)
	}
	return nil
}

// uniqueSlug appends a numeric suffix until the slug is free
func (r *MovieRepository) uniqueSlug(base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		var exists int
		err := r.db.QueryRow("SELECT COUNT(*) FROM movies WHERE slug = ?", slug).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if exists == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

const movieColumns = `id, title, description, type, size_mb, dp, screenshot1, screenshot2,
	sd_file_id, hd_file_id, sd_message_id, hd_message_id, slug, upload_date, created_at`

func scanMovie(row interface{ Scan(dest ...any) error }) (*models.Movie, error) {
	movie := &models.Movie{}
	var sdFileID, hdFileID sql.NullString
	var sdMessageID, hdMessageID sql.NullInt64

	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Type,
		&movie.SizeMB,
		&movie.DP,
		&movie.Screenshot1,
		&movie.Screenshot2,
		&sdFileID,
		&hdFileID,
		&sdMessageID,
		&hdMessageID,
		&movie.Slug,
		&movie.UploadDate,
		&movie.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	movie.SDFileID = sdFileID.String
	movie.HDFileID = hdFileID.String
	movie.SDMessageID = sdMessageID.Int64
	movie.HDMessageID = hdMessageID.Int64

	return movie, nil
}

// GetBySlug retrieves a movie by slug, or nil when absent
func (r *MovieRepository) GetBySlug(slug string) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE slug = ?`

	movie, err := scanMovie(r.db.QueryRow(query, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return movie, nil
}

// GetByID retrieves a movie by id, or nil when absent
func (r *MovieRepository) GetByID(id int64) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`

	movie, err := scanMovie(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return movie, nil
}

// List returns one page of the catalog, newest first. An empty category
// means all categories; a non-empty q filters titles by substring match.
func (r *MovieRepository) List(category, q string, page, pageSize int) ([]*models.Movie, int64, error) {
	if page < 1 {
		page = 1
	}

	where := "WHERE 1=1"
	args := []any{}
	if category != "" {
		where += " AND type = ?"
		args = append(args, category)
	}
	if q != "" {
		where += " AND title LIKE ?"
		args = append(args, "%"+q+"%")
	}

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM movies "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	query := `SELECT ` + movieColumns + ` FROM movies ` + where + `
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, movie)
	}

	return movies, total, rows.Err()
}

// SetFile stores the Telegram file_id and channel message_id for a quality
func (r *MovieRepository) SetFile(movieID int64, quality, fileID string, messageID int) error {
	var query string
	switch quality {
	case models.QualitySD:
		query = `UPDATE movies SET sd_file_id = ?, sd_message_id = ? WHERE id = ?`
	case models.QualityHD:
		query = `UPDATE movies SET hd_file_id = ?, hd_message_id = ? WHERE id = ?`
	default:
		return fmt.Errorf("unknown quality %q", quality)
	}

	if _, err := r.db.Exec(query, fileID, messageID, movieID); err != nil {
		return fmt.Errorf("failed to set %s file: %w", quality, err)
	}
	return nil
}
