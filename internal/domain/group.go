package domain

// Group is a named category posts may belong to.
// The slug is unique and never changes once created, since URLs are built from it.
type Group struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
}

func (g *Group) String() string {
	return g.Title
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	Title       string `json:"title" yaml:"title"`
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description" yaml:"description"`
}

// UpdateGroupRequest is the request body for updating a group.
// Nil fields are left untouched; the slug cannot be changed.
type UpdateGroupRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}
