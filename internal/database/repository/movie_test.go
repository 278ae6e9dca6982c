package repository_test

import (
	"database/sql"
	"testing"

	"github.com/sahilk/bollyfun/internal/database"
	"github.com/sahilk/bollyfun/internal/database/models"
	"github.com/sahilk/bollyfun/internal/database/repository"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	dbWrapper := &database.DB{DB: db}
	if err := dbWrapper.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func createTestMovie(t *testing.T, repo *repository.MovieRepository, title string) *models.Movie {
	t.Helper()

	movie := &models.Movie{
		Title:       title,
		Description: "Test description",
		Type:        models.CategoryMovies,
		SizeMB:      "700",
		DP:          "https://example.com/poster.jpg",
	}
	if err := repo.Create(movie); err != nil {
		t.Fatalf("Failed to create movie: %v", err)
	}
	return movie
}

func TestMovieRepository_CreateGeneratesSlug(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repository.NewMovieRepository(db)

	movie := createTestMovie(t, repo, "The Great Escape")
	if movie.Slug != "the-great-escape" {
		t.Errorf("Expected slug 'the-great-escape', got %q", movie.Slug)
	}
	if movie.ID == 0 {
		t.Error("Expected non-zero movie ID")
	}
}

func TestMovieRepository_DuplicateTitlesGetUniqueSlugs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repository.NewMovieRepository(db)

	first := createTestMovie(t, repo, "Sholay")
	second := createTestMovie(t, repo, "Sholay")
	third := createTestMovie(t, repo, "Sholay")

	if first.Slug != "sholay" {
		t.Errorf("Expected slug 'sholay', got %q", first.Slug)
	}
	if second.Slug != "sholay-2" {
		t.Errorf("Expected slug 'sholay-2', got %q", second.Slug)
	}
	if third.Slug != "sholay-3" {
		t.Errorf("Expected slug 'sholay-3', got %q", third.Slug)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "simple title",
			title:    "Dilwale Dulhania Le Jayenge",
			expected: "dilwale-dulhania-le-jayenge",
		},
		{
			name:     "punctuation stripped",
			title:    "3 Idiots (2009)!",
			expected: "3-idiots-2009",
		},
		{
			name:     "non-latin transliterated",
			title:    "Жил-был пёс",
			expected: "zhil-byl-pios",
		},
		{
			name:     "empty falls back",
			title:    "!!!",
			expected: "movie",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := repository.Slugify(tt.title)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, result, tt.expected)
			}
		})
	}
}

func TestMovieRepository_GetBySlug(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repository.NewMovieRepository(db)
	created := createTestMovie(t, repo, "Lagaan")

	movie, err := repo.GetBySlug("lagaan")
	if err != nil {
		t.Fatalf("Failed to get movie: %v", err)
	}
	if movie == nil {
		t.Fatal("Expected movie, got nil")
	}
	if movie.ID != created.ID {
		t.Errorf("Expected ID %d, got %d", created.ID, movie.ID)
	}
	if movie.Title != "Lagaan" {
		t.Errorf("Expected title 'Lagaan', got %q", movie.Title)
	}

	// Missing slug returns nil, not an error
	missing, err := repo.GetBySlug("does-not-exist")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing slug")
	}
}

func TestMovieRepository_SetFile(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repository.NewMovieRepository(db)
	created := createTestMovie(t, repo, "Swades")

	if err := repo.SetFile(created.ID, models.QualitySD, "BAACAgQ-sd", 101); err != nil {
		t.Fatalf("Failed to set SD file: %v", err)
	}
	if err := repo.SetFile(created.ID, models.QualityHD, "BAACAgQ-hd", 102); err != nil {
		t.Fatalf("Failed to set HD file: %v", err)
	}

	movie, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("Failed to get movie: %v", err)
	}
	if movie.SDFileID != "BAACAgQ-sd" || movie.SDMessageID != 101 {
		t.Errorf("SD file not stored: %q / %d", movie.SDFileID, movie.SDMessageID)
	}
	if movie.HDFileID != "BAACAgQ-hd" || movie.HDMessageID != 102 {
		t.Errorf("HD file not stored: %q / %d", movie.HDFileID, movie.HDMessageID)
	}

	if movie.FileID(models.QualitySD) != "BAACAgQ-sd" {
		t.Errorf("FileID(SD) = %q", movie.FileID(models.QualitySD))
	}
	if movie.FileID(models.QualityHD) != "BAACAgQ-hd" {
		t.Errorf("FileID(HD) = %q", movie.FileID(models.QualityHD))
	}

	if err := repo.SetFile(created.ID, "4K", "x", 1); err == nil {
		t.Error("Expected error for unknown quality")
	}
}

func TestMovieRepository_ListPaginationAndSearch(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repository.NewMovieRepository(db)

	for i := 0; i < 15; i++ {
		createTestMovie(t, repo, "Bulk Movie "+string(rune('A'+i)))
	}

	page1, total, err := repo.List("", "", 1, 12)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if total != 15 {
		t.Errorf("Expected total 15, got %d", total)
	}
	if len(page1) != 12 {
		t.Errorf("Expected 12 on page 1, got %d", len(page1))
	}

	page2, _, err := repo.List("", "", 2, 12)
	if err != nil {
		t.Fatalf("Failed to list page 2: %v", err)
	}
	if len(page2) != 3 {
		t.Errorf("Expected 3 on page 2, got %d", len(page2))
	}

	// Search filters by title substring
	createTestMovie(t, repo, "Andhadhun")
	found, total, err := repo.List("", "dhadh", 1, 12)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if total != 1 || len(found) != 1 {
		t.Fatalf("Expected 1 search result, got total=%d len=%d", total, len(found))
	}
	if found[0].Title != "Andhadhun" {
		t.Errorf("Expected 'Andhadhun', got %q", found[0].Title)
	}
}

func TestMovieRepository_ListByCategory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := repository.NewMovieRepository(db)

	createTestMovie(t, repo, "A Film")
	anime := &models.Movie{Title: "An Anime", Type: models.CategoryAnime}
	if err := repo.Create(anime); err != nil {
		t.Fatalf("Failed to create anime: %v", err)
	}

	got, total, err := repo.List(models.CategoryAnime, "", 1, 12)
	if err != nil {
		t.Fatalf("Failed to list category: %v", err)
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("Expected 1 anime, got total=%d len=%d", total, len(got))
	}
	if got[0].Title != "An Anime" {
		t.Errorf("Expected 'An Anime', got %q", got[0].Title)
	}
}
