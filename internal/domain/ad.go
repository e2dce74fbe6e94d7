package domain

import "time"

// PlaceholderTitle is persisted for ads created through a degraded
// resolution, when the source page could not be fetched or parsed.
const PlaceholderTitle = "Avito listing (details unavailable)"

// Ad represents a resolved Avito listing.
type Ad struct {
	ID          string     `db:"id"          json:"id"`
	URL         string     `db:"url"         json:"url"`
	Title       string     `db:"title"       json:"title"`
	Image       *string    `db:"image"       json:"image,omitempty"`
	Views       int64      `db:"views"       json:"views"`
	Approximate bool       `db:"approximate" json:"approximate"`
	CreatedAt   time.Time  `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"  json:"updated_at"`
}

// AdUpdate describes a partial update to an existing ad. Nil fields are
// left untouched.
type AdUpdate struct {
	Title       *string
	Image       *string
	Approximate *bool
}

// IsZero reports whether the update would change nothing.
func (u AdUpdate) IsZero() bool {
	return u.Title == nil && u.Image == nil && u.Approximate == nil
}
