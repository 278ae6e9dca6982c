package models

import "time"

// Catalog categories
const (
	CategoryMovies = "movies"
	CategoryTV     = "tv"
	CategoryAnime  = "anime"
)

// Quality selectors for a movie file
const (
	QualitySD = "SD"
	QualityHD = "HD"
)

// ValidCategory reports whether c is a known catalog category
func ValidCategory(c string) bool {
	return c == CategoryMovies || c == CategoryTV || c == CategoryAnime
}

// ValidQuality reports whether q is a known quality selector
func ValidQuality(q string) bool {
	return q == QualitySD || q == QualityHD
}

// Movie represents a catalog entry
type Movie struct {
	ID          int64
	Title       string
	Description string
	Type        string
	SizeMB      string
	DP          string
	Screenshot1 string
	Screenshot2 string
	SDFileID    string
	HDFileID    string
	SDMessageID int64
	HDMessageID int64
	Slug        string
	UploadDate  time.Time
	CreatedAt   time.Time
}

// FileID returns the Telegram file identifier for the requested quality,
// or "" when that variant was never uploaded
func (m *Movie) FileID(quality string) string {
	switch quality {
	case QualitySD:
		return m.SDFileID
	case QualityHD:
		return m.HDFileID
	}
	return ""
}
