package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sahilk/bollyfun/internal/database/models"
)

// TokenRepository handles download token persistence
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a fresh token for the given movie/quality pair,
// copying fileID and fixing the expiry at creation time
func (r *TokenRepository) Create(movieID int64, quality, fileID string, lifetime time.Duration) (*models.DownloadToken, error) {
	now := time.Now()
	token := &models.DownloadToken{
		Token:     uuid.NewString(),
		MovieID:   movieID,
		Quality:   quality,
		FileID:    fileID,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}

	query := `
		INSERT INTO download_tokens (token, movie_id, quality, file_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Exec(query,
		token.Token,
		token.MovieID,
		token.Quality,
		token.FileID,
		token.CreatedAt,
		token.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	token.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get token id: %w", err)
	}
	return token, nil
}

const tokenColumns = `id, token, movie_id, quality, file_id, created_at, expires_at`

func scanToken(row interface{ Scan(dest ...any) error }) (*models.DownloadToken, error) {
	token := &models.DownloadToken{}
	err := row.Scan(
		&token.ID,
		&token.Token,
		&token.MovieID,
		&token.Quality,
		&token.FileID,
		&token.CreatedAt,
		&token.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// GetByToken retrieves a token by its identifier, or nil when absent
func (r *TokenRepository) GetByToken(tokenStr string) (*models.DownloadToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM download_tokens WHERE token = ?`

	token, err := scanToken(r.db.QueryRow(query, tokenStr))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return token, nil
}

// GetValidForMovie returns an outstanding non-expired token for the
// movie/quality pair, or nil when none exists
func (r *TokenRepository) GetValidForMovie(movieID int64, quality string) (*models.DownloadToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM download_tokens
		WHERE movie_id = ? AND quality = ? AND expires_at > ?
		ORDER BY expires_at DESC LIMIT 1`

	token, err := scanToken(r.db.QueryRow(query, movieID, quality, time.Now()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get valid token: %w", err)
	}
	return token, nil
}

// Delete removes a token by its identifier
func (r *TokenRepository) Delete(tokenStr string) error {
	if _, err := r.db.Exec("DELETE FROM download_tokens WHERE token = ?", tokenStr); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// DeleteExpired removes every token past its expiry and returns how many
func (r *TokenRepository) DeleteExpired() (int64, error) {
	res, err := r.db.Exec("DELETE FROM download_tokens WHERE expires_at <= ?", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return res.RowsAffected()
}
