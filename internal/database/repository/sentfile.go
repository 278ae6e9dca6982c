package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sahilk/bollyfun/internal/database/models"
)

// SentFileRepository handles delivered-message tracking persistence
type SentFileRepository struct {
	db *sql.DB
}

// NewSentFileRepository creates a new SentFileRepository
func NewSentFileRepository(db *sql.DB) *SentFileRepository {
	return &SentFileRepository{db: db}
}

// Create records a delivered message with its deletion deadline
func (r *SentFileRepository) Create(sent *models.SentFile) error {
	if sent.SentAt.IsZero() {
		sent.SentAt = time.Now()
	}

	query := `
		INSERT INTO sent_files (chat_id, message_id, movie_id, quality, sent_at, delete_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Exec(query,
		sent.ChatID,
		sent.MessageID,
		sent.MovieID,
		sent.Quality,
		sent.SentAt,
		sent.DeleteAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record sent file: %w", err)
	}

	sent.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get sent file id: %w", err)
	}
	return nil
}

// ListDue returns every record whose deletion deadline has passed
func (r *SentFileRepository) ListDue(now time.Time) ([]*models.SentFile, error) {
	query := `
		SELECT id, chat_id, message_id, movie_id, quality, sent_at, delete_at
		FROM sent_files
		WHERE delete_at <= ?
		ORDER BY delete_at
	`

	rows, err := r.db.Query(query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due sent files: %w", err)
	}
	defer rows.Close()

	var due []*models.SentFile
	for rows.Next() {
		sent := &models.SentFile{}
		if err := rows.Scan(
			&sent.ID,
			&sent.ChatID,
			&sent.MessageID,
			&sent.MovieID,
			&sent.Quality,
			&sent.SentAt,
			&sent.DeleteAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sent file: %w", err)
		}
		due = append(due, sent)
	}

	return due, rows.Err()
}

// Delete removes a tracking record by id
func (r *SentFileRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM sent_files WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete sent file: %w", err)
	}
	return nil
}

// CountForMovie returns how many delivered messages are still tracked
// for a movie (used by the admin API)
func (r *SentFileRepository) CountForMovie(movieID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM sent_files WHERE movie_id = ?", movieID).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return count, nil
}
