package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Post is a single authored text entry, optionally tagged with a group.
//
// AuthorID and PubDate are set once when the post is created. Only Text and
// GroupID change afterwards. AuthorUsername, GroupSlug and GroupTitle are
// filled in by the storage layer on reads.
type Post struct {
	ID       int64     `json:"id" db:"id"`
	Text     string    `json:"text" db:"text"`
	PubDate  time.Time `json:"pub_date" db:"pub_date"`
	AuthorID int64     `json:"author_id" db:"author_id"`
	GroupID  *int64    `json:"group_id,omitempty" db:"group_id"`

	AuthorUsername string  `json:"author" db:"author_username"`
	GroupSlug      *string `json:"group_slug,omitempty" db:"group_slug"`
	GroupTitle     *string `json:"group_title,omitempty" db:"group_title"`
}

func (p *Post) String() string {
	return p.Text
}

// IsAuthoredBy reports whether the identity owns the post.
func (p *Post) IsAuthoredBy(id Identity) bool {
	return id.Authenticated() && p.AuthorID == id.UserID
}

// HasGroup reports whether the post is assigned to a group.
func (p *Post) HasGroup() bool {
	return p.GroupID != nil
}

// Excerpt returns at most n runes of the text, cut at a word boundary.
func (p *Post) Excerpt(n int) string {
	if utf8.RuneCountInString(p.Text) <= n {
		return p.Text
	}
	runes := []rune(p.Text)
	cut := string(runes[:n])
	if i := strings.LastIndexAny(cut, " \n\t"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}

// PostInput carries the user-editable fields of a post.
type PostInput struct {
	Text    string `json:"text"`
	GroupID *int64 `json:"group_id,omitempty"`
}
