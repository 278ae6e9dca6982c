package download_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sahilk/bollyfun/internal/database"
	"github.com/sahilk/bollyfun/internal/database/models"
	"github.com/sahilk/bollyfun/internal/database/repository"
	"github.com/sahilk/bollyfun/internal/download"

	_ "modernc.org/sqlite"
)

// fakeSender implements download.DocumentSender for tests
type fakeSender struct {
	sent     []sentDoc
	nextID   int
	failWith error
}

type sentDoc struct {
	chatID  int64
	fileID  string
	caption string
}

func (f *fakeSender) SendDocument(chatID int64, fileID, caption string) (int, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.nextID++
	f.sent = append(f.sent, sentDoc{chatID: chatID, fileID: fileID, caption: caption})
	return f.nextID, nil
}

type fixture struct {
	db      *sql.DB
	movies  *repository.MovieRepository
	tokens  *repository.TokenRepository
	sent    *repository.SentFileRepository
	sender  *fakeSender
	service *download.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	dbWrapper := &database.DB{DB: db}
	if err := dbWrapper.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	movies := repository.NewMovieRepository(db)
	tokens := repository.NewTokenRepository(db)
	sent := repository.NewSentFileRepository(db)
	sender := &fakeSender{}

	return &fixture{
		db:      db,
		movies:  movies,
		tokens:  tokens,
		sent:    sent,
		sender:  sender,
		service: download.NewService(movies, tokens, sent, sender),
	}
}

func (f *fixture) createMovie(t *testing.T, title, sdFileID, hdFileID string) *models.Movie {
	t.Helper()

	movie := &models.Movie{Title: title, Type: models.CategoryMovies}
	if err := f.movies.Create(movie); err != nil {
		t.Fatalf("Failed to create movie: %v", err)
	}
	if sdFileID != "" {
		if err := f.movies.SetFile(movie.ID, models.QualitySD, sdFileID, 11); err != nil {
			t.Fatalf("Failed to set SD file: %v", err)
		}
	}
	if hdFileID != "" {
		if err := f.movies.SetFile(movie.ID, models.QualityHD, hdFileID, 12); err != nil {
			t.Fatalf("Failed to set HD file: %v", err)
		}
	}
	movie, err := f.movies.GetByID(movie.ID)
	if err != nil {
		t.Fatalf("Failed to reload movie: %v", err)
	}
	return movie
}

func TestIssueToken_UnavailableVariant(t *testing.T) {
	f := setup(t)
	movie := f.createMovie(t, "SD Only", "file-sd", "")

	_, err := f.service.IssueToken(movie, models.QualityHD)
	if !errors.Is(err, download.ErrVariantUnavailable) {
		t.Fatalf("Expected ErrVariantUnavailable, got %v", err)
	}
}

func TestIssueToken_ReusesValidToken(t *testing.T) {
	f := setup(t)
	movie := f.createMovie(t, "Reuse", "file-sd", "file-hd")

	first, err := f.service.IssueToken(movie, models.QualitySD)
	if err != nil {
		t.Fatalf("Failed to issue: %v", err)
	}
	second, err := f.service.IssueToken(movie, models.QualitySD)
	if err != nil {
		t.Fatalf("Failed to issue again: %v", err)
	}
	if first.Token != second.Token {
		t.Errorf("Expected same token on reissue, got %q and %q", first.Token, second.Token)
	}

	// Different quality gets its own token
	hd, err := f.service.IssueToken(movie, models.QualityHD)
	if err != nil {
		t.Fatalf("Failed to issue HD: %v", err)
	}
	if hd.Token == first.Token {
		t.Error("HD and SD must not share a token")
	}
}

func TestIssueToken_CopiesFileIDAtIssuance(t *testing.T) {
	f := setup(t)
	movie := f.createMovie(t, "Frozen File", "file-v1", "")

	token, err := f.service.IssueToken(movie, models.QualitySD)
	if err != nil {
		t.Fatalf("Failed to issue: %v", err)
	}

	// Re-uploading the file must not change what the token delivers
	if err := f.movies.SetFile(movie.ID, models.QualitySD, "file-v2", 99); err != nil {
		t.Fatalf("Failed to update file: %v", err)
	}

	fetched, err := f.tokens.GetByToken(token.Token)
	if err != nil {
		t.Fatalf("Failed to fetch token: %v", err)
	}
	if fetched.FileID != "file-v1" {
		t.Errorf("Expected file-v1 frozen into the token, got %q", fetched.FileID)
	}
}

func TestValidate_NotFound(t *testing.T) {
	f := setup(t)

	_, err := f.service.Validate("4f5a9e58-0000-0000-0000-000000000000")
	if !errors.Is(err, download.ErrTokenNotFound) {
		t.Fatalf("Expected ErrTokenNotFound, got %v", err)
	}
}

func TestValidate_ExpiredDeletesToken(t *testing.T) {
	f := setup(t)
	movie := f.createMovie(t, "Expired", "file-sd", "")

	token, err := f.tokens.Create(movie.ID, models.QualitySD, "file-sd", -time.Minute)
	if err != nil {
		t.Fatalf("Failed to create token: %v", err)
	}

	_, err = f.service.Validate(token.Token)
	if !errors.Is(err, download.ErrTokenExpired) {
		t.Fatalf("Expected ErrTokenExpired, got %v", err)
	}

	// Second presentation: the row is gone, so not-found rather than expired
	_, err = f.service.Validate(token.Token)
	if !errors.Is(err, download.ErrTokenNotFound) {
		t.Fatalf("Expected ErrTokenNotFound after expiry cleanup, got %v", err)
	}
}

func TestRedeem_DeliversAndConsumesToken(t *testing.T) {
	f := setup(t)
	movie := f.createMovie(t, "Deliver Me", "file-sd", "")

	token, err := f.service.IssueToken(movie, models.QualitySD)
	if err != nil {
		t.Fatalf("Failed to issue: %v", err)
	}

	before := time.Now()
	delivery, err := f.service.Redeem(token.Token, 777)
	if err != nil {
		t.Fatalf("Failed to redeem: %v", err)
	}
	if delivery.Movie.ID != movie.ID {
		t.Errorf("Expected movie %d, got %d", movie.ID, delivery.Movie.ID)
	}
	if delivery.Quality != models.QualitySD {
		t.Errorf("Expected SD delivery, got %q", delivery.Quality)
	}

	if len(f.sender.sent) != 1 {
		t.Fatalf("Expected 1 document sent, got %d", len(f.sender.sent))
	}
	if f.sender.sent[0].chatID != 777 || f.sender.sent[0].fileID != "file-sd" {
		t.Errorf("Wrong document sent: %+v", f.sender.sent[0])
	}

	// Exactly one tracking record with delete_at = sent_at + 24h
	records, err := f.sent.ListDue(before.Add(25 * time.Hour))
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 sent file record, got %d", len(records))
	}
	rec := records[0]
	if rec.MessageID != delivery.MessageID {
		t.Errorf("Expected message id %d, got %d", delivery.MessageID, rec.MessageID)
	}
	gap := rec.DeleteAt.Sub(rec.SentAt)
	if gap < 24*time.Hour-time.Second || gap > 24*time.Hour+time.Second {
		t.Errorf("Expected delete_at = sent_at + 24h, got %v", gap)
	}

	// Token is consumed: another redemption is not-found
	_, err = f.service.Redeem(token.Token, 777)
	if !errors.Is(err, download.ErrTokenNotFound) {
		t.Fatalf("Expected ErrTokenNotFound after redemption, got %v", err)
	}
}

func TestRedeem_DeliveryFailureKeepsToken(t *testing.T) {
	f := setup(t)
	movie := f.createMovie(t, "Flaky", "file-sd", "")

	token, err := f.service.IssueToken(movie, models.QualitySD)
	if err != nil {
		t.Fatalf("Failed to issue: %v", err)
	}

	f.sender.failWith = errors.New("telegram unreachable")
	_, err = f.service.Redeem(token.Token, 555)
	if !errors.Is(err, download.ErrDeliveryFailed) {
		t.Fatalf("Expected ErrDeliveryFailed, got %v", err)
	}

	// No tracking row was written
	records, err := f.sent.ListDue(time.Now().Add(48 * time.Hour))
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no sent file records, got %d", len(records))
	}

	// Token survived for a retry
	f.sender.failWith = nil
	if _, err := f.service.Redeem(token.Token, 555); err != nil {
		t.Fatalf("Retry after transient failure should succeed: %v", err)
	}
}

func TestRedeem_MovieRemovedAfterIssuance(t *testing.T) {
	f := setup(t)
	movie := f.createMovie(t, "Doomed", "file-sd", "")

	token, err := f.service.IssueToken(movie, models.QualitySD)
	if err != nil {
		t.Fatalf("Failed to issue: %v", err)
	}

	if _, err := f.db.Exec("DELETE FROM movies WHERE id = ?", movie.ID); err != nil {
		t.Fatalf("Failed to delete movie: %v", err)
	}

	_, err = f.service.Redeem(token.Token, 1)
	if !errors.Is(err, download.ErrTokenNotFound) {
		t.Fatalf("Expected ErrTokenNotFound for orphaned token, got %v", err)
	}
}

// The end-to-end scenario: movie with only an SD file
func TestScenario_SDOnlyMovie(t *testing.T) {
	f := setup(t)
	m1 := f.createMovie(t, "m1", "file-sd-m1", "")

	// HD issuance is refused
	_, err := f.service.IssueToken(m1, models.QualityHD)
	if !errors.Is(err, download.ErrVariantUnavailable) {
		t.Fatalf("Expected ErrVariantUnavailable for HD, got %v", err)
	}

	// SD issuance works
	t1, err := f.service.IssueToken(m1, models.QualitySD)
	if err != nil {
		t.Fatalf("Failed to issue SD token: %v", err)
	}

	// Redemption within the hour succeeds and leaves one delivery record
	delivery, err := f.service.Redeem(t1.Token, 42)
	if err != nil {
		t.Fatalf("Failed to redeem: %v", err)
	}
	records, err := f.sent.ListDue(time.Now().Add(25 * time.Hour))
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 delivery record, got %d", len(records))
	}
	if records[0].MessageID != delivery.MessageID {
		t.Errorf("Record message id %d != delivery %d", records[0].MessageID, delivery.MessageID)
	}

	// Redeeming again after deletion fails with not-found
	_, err = f.service.Redeem(t1.Token, 42)
	if !errors.Is(err, download.ErrTokenNotFound) {
		t.Fatalf("Expected ErrTokenNotFound, got %v", err)
	}
}
