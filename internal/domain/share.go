package domain

import "time"

// ShareLink maps a human-readable slug to a board id. Slugs are unique
// among active links; expired rows may be reclaimed by a new claim.
type ShareLink struct {
	Slug        string    `json:"slug"`
	BoardId     string    `json:"boardId"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	AccessCount int64     `json:"accessCount"`
}

// Active reports whether the link is still valid at the given instant.
func (l *ShareLink) Active(now time.Time) bool {
	return l.ExpiresAt.After(now)
}
