package models

import "time"

// DownloadToken is a single-use, time-limited grant to download one file variant.
// The file_id is copied from the movie at issuance so later edits to the
// catalog entry cannot invalidate an already issued link.
type DownloadToken struct {
	ID        int64
	Token     string
	MovieID   int64
	Quality   string
	FileID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsValid reports whether the token can still be redeemed
func (t *DownloadToken) IsValid() bool {
	return time.Now().Before(t.ExpiresAt)
}
