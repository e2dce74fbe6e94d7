package domain

import "time"

// Comment sort directions for listing.
const (
	CommentSortAsc  = "ASC"
	CommentSortDesc = "DESC"
)

// Comment is a user comment attached to an ad.
type Comment struct {
	ID        string    `db:"id"         json:"id"`
	AdID      string    `db:"ad_id"      json:"ad_id"`
	Author    string    `db:"author"     json:"author"`
	Text      string    `db:"text"       json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
