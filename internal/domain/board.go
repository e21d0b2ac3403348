package domain

import "time"

// Board is the shareable unit: free-form text plus an ordered media list.
// Media order is insertion order and is significant for positional deletion.
type Board struct {
	Id           string      `json:"id"`
	Text         string      `json:"text"`
	Media        []MediaItem `json:"media"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastModified time.Time   `json:"lastModified"`
}

// MediaItem is the metadata record for one uploaded file attached to a board.
// A media item belongs to exactly one board.
type MediaItem struct {
	Id         string    `json:"id"`
	Url        string    `json:"url"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// BoardPatch carries the caller-supplied fields of a board update.
// Nil fields are left untouched by the merge; non-nil fields replace
// the stored value wholesale (shallow field overwrite).
type BoardPatch struct {
	Text      *string      `json:"text"`
	Media     *[]MediaItem `json:"media"`
	CreatedAt *time.Time   `json:"createdAt"`
}
