package download

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sahilk/bollyfun/internal/config"
	"github.com/sahilk/bollyfun/internal/database/models"
	"github.com/sahilk/bollyfun/internal/database/repository"
)

var (
	// ErrVariantUnavailable means the movie has no file for the requested quality
	ErrVariantUnavailable = errors.New("variant unavailable")
	// ErrTokenNotFound means no token exists for the presented identifier
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenExpired means the token existed but its validity window has passed
	ErrTokenExpired = errors.New("token expired")
	// ErrDeliveryFailed means Telegram rejected the document transfer;
	// the token stays valid for another attempt
	ErrDeliveryFailed = errors.New("delivery failed")
)

// DocumentSender is the slice of the Telegram client the redeemer needs
type DocumentSender interface {
	SendDocument(chatID int64, fileID, caption string) (int, error)
}

// Service implements token issuance and redemption
type Service struct {
	movies *repository.MovieRepository
	tokens *repository.TokenRepository
	sent   *repository.SentFileRepository
	sender DocumentSender
}

// NewService creates a download Service
func NewService(
	movies *repository.MovieRepository,
	tokens *repository.TokenRepository,
	sent *repository.SentFileRepository,
	sender DocumentSender,
) *Service {
	return &Service{
		movies: movies,
		tokens: tokens,
		sent:   sent,
		sender: sender,
	}
}

// IssueToken returns a redeemable token for the movie/quality pair.
// An outstanding valid token is reused so repeated clicks do not pile
// up rows; otherwise a fresh one-hour token is minted with the
// movie's current file_id copied in.
func (s *Service) IssueToken(movie *models.Movie, quality string) (*models.DownloadToken, error) {
	fileID := movie.FileID(quality)
	if fileID == "" {
		return nil, ErrVariantUnavailable
	}

	existing, err := s.tokens.GetValidForMovie(movie.ID, quality)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	token, err := s.tokens.Create(movie.ID, quality, fileID, config.TokenLifetime)
	if err != nil {
		return nil, err
	}

	log.Printf("[DOWNLOAD] Issued token for movie %d (%s), expires %s",
		movie.ID, quality, token.ExpiresAt.Format("15:04:05"))
	return token, nil
}

// Validate checks a token for the web redirect step. It does NOT delete
// a valid token; only the bot consumes it, after delivery. An expired
// token is deleted on sight so the identifier cannot be probed again.
func (s *Service) Validate(tokenStr string) (*models.DownloadToken, error) {
	token, err := s.tokens.GetByToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrTokenNotFound
	}
	if !token.IsValid() {
		if err := s.tokens.Delete(token.Token); err != nil {
			log.Printf("[DOWNLOAD] Failed to delete expired token: %v", err)
		}
		return nil, ErrTokenExpired
	}
	return token, nil
}

// Delivery describes a completed redemption
type Delivery struct {
	Movie     *models.Movie
	Quality   string
	MessageID int
}

// Redeem authorizes exactly one delivery for the token and performs it:
// send the document, record the sent file for cleanup, then delete the
// token. The token is deleted only after the transfer succeeds, so a
// failure mid-delivery leaves it redeemable again.
func (s *Service) Redeem(tokenStr string, chatID int64) (*Delivery, error) {
	token, err := s.Validate(tokenStr)
	if err != nil {
		return nil, err
	}

	movie, err := s.movies.GetByID(token.MovieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		// Catalog entry removed after issuance; the grant is void
		if err := s.tokens.Delete(token.Token); err != nil {
			log.Printf("[DOWNLOAD] Failed to delete orphaned token: %v", err)
		}
		return nil, ErrTokenNotFound
	}

	caption := fmt.Sprintf("🎬 %s (%s)\n\n⚠️ Auto-deletes in 24h", movie.Title, token.Quality)
	messageID, err := s.sender.SendDocument(chatID, token.FileID, caption)
	if err != nil {
		log.Printf("[DOWNLOAD] Delivery failed for movie %d (%s): %v", movie.ID, token.Quality, err)
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	now := time.Now()
	sent := &models.SentFile{
		ChatID:    chatID,
		MessageID: messageID,
		MovieID:   movie.ID,
		Quality:   token.Quality,
		SentAt:    now,
		DeleteAt:  now.Add(config.SentFileRetention),
	}
	if err := s.sent.Create(sent); err != nil {
		// Delivery already happened; do not fail the user over tracking
		log.Printf("[DOWNLOAD] Failed to record sent file: %v", err)
	}

	if err := s.tokens.Delete(token.Token); err != nil {
		log.Printf("[DOWNLOAD] Failed to delete redeemed token: %v", err)
	}

	log.Printf("[DOWNLOAD] Delivered movie %d (%s) to chat %d as message %d",
		movie.ID, token.Quality, chatID, messageID)

	return &Delivery{Movie: movie, Quality: token.Quality, MessageID: messageID}, nil
}
