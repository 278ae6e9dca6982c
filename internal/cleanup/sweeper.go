package cleanup

import (
	"errors"
	"log"
	"time"

	"github.com/sahilk/bollyfun/internal/database/repository"
	"github.com/sahilk/bollyfun/internal/telegram"
)

// MessageDeleter is the slice of the Telegram client the sweeper needs
type MessageDeleter interface {
	DeleteMessage(chatID int64, messageID int) error
}

// Sweeper removes delivered messages past their retention deadline and
// purges expired download tokens. It is idempotent and safe to run on
// any schedule; a run with nothing due does no work.
type Sweeper struct {
	sent    *repository.SentFileRepository
	tokens  *repository.TokenRepository
	deleter MessageDeleter
}

// NewSweeper creates a Sweeper
func NewSweeper(sent *repository.SentFileRepository, tokens *repository.TokenRepository, deleter MessageDeleter) *Sweeper {
	return &Sweeper{sent: sent, tokens: tokens, deleter: deleter}
}

// Stats summarizes one sweep run
type Stats struct {
	Deleted      int // messages deleted on Telegram
	AlreadyGone  int // messages Telegram no longer had
	Failed       int // remote deletions that failed for another reason
	TokensPurged int64
}

// Sweep processes every tracking record whose delete_at has passed.
// The local record is always removed: a remote failure is logged but
// never retried, because leaking tracking rows is worse than leaving
// one message behind.
func (s *Sweeper) Sweep(now time.Time) (Stats, error) {
	var stats Stats

	due, err := s.sent.ListDue(now)
	if err != nil {
		return stats, err
	}
	if len(due) == 0 {
		return stats, nil
	}

	log.Printf("[CLEANUP] Found %d messages to delete", len(due))

	for _, record := range due {
		err := s.deleter.DeleteMessage(record.ChatID, record.MessageID)
		switch {
		case err == nil:
			stats.Deleted++
		case errors.Is(err, telegram.ErrMessageNotFound):
			// Expected terminal state: the user or Telegram removed it first
			stats.AlreadyGone++
		default:
			stats.Failed++
			log.Printf("[CLEANUP] Failed to delete message %d in chat %d: %v",
				record.MessageID, record.ChatID, err)
		}

		if err := s.sent.Delete(record.ID); err != nil {
			log.Printf("[CLEANUP] Failed to delete record %d: %v", record.ID, err)
		}
	}

	log.Printf("[CLEANUP] Sweep complete: %d deleted, %d already gone, %d failed",
		stats.Deleted, stats.AlreadyGone, stats.Failed)
	return stats, nil
}

// PurgeExpiredTokens removes tokens that expired without being redeemed,
// bounding token table growth
func (s *Sweeper) PurgeExpiredTokens() (int64, error) {
	purged, err := s.tokens.DeleteExpired()
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		log.Printf("[CLEANUP] Purged %d expired tokens", purged)
	}
	return purged, nil
}

// Run performs a full cleanup pass: message sweep plus token purge
func (s *Sweeper) Run() (Stats, error) {
	stats, err := s.Sweep(time.Now())
	if err != nil {
		return stats, err
	}
	stats.TokensPurged, err = s.PurgeExpiredTokens()
	return stats, err
}
