package storage

import (
	"context"

	"github.com/bcnelson/yatube/internal/domain"
)

// PostFilter narrows a post listing. Nil fields do not filter.
type PostFilter struct {
	GroupID  *int64
	AuthorID *int64
}

// ByGroup returns a filter for posts in the given group.
func ByGroup(groupID int64) PostFilter {
	return PostFilter{GroupID: &groupID}
}

// ByAuthor returns a filter for posts written by the given user.
func ByAuthor(authorID int64) PostFilter {
	return PostFilter{AuthorID: &authorID}
}

// GroupRepository persists groups.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *domain.Group) error
	GetGroup(ctx context.Context, id int64) (*domain.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error)
	ListGroups(ctx context.Context) ([]*domain.Group, error)
	// UpdateGroup updates title and description; the slug is immutable.
	UpdateGroup(ctx context.Context, group *domain.Group) error
	// DeleteGroup removes a group. Its posts remain, with no group.
	DeleteGroup(ctx context.Context, id int64) error
}

// PostRepository persists posts.
// Listings are ordered newest first, ties broken by descending id.
type PostRepository interface {
	// CreatePost inserts the post and sets its ID.
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	ListPosts(ctx context.Context, filter PostFilter, limit, offset int) ([]*domain.Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int, error)
	// UpdatePost writes text and group; author and pub_date are never changed.
	UpdatePost(ctx context.Context, post *domain.Post) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	// CreateUser inserts the user and sets its ID.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// DeleteUser removes a user together with their posts.
	DeleteUser(ctx context.Context, id int64) error
}

// APIKeyRepository persists admin API keys.
type APIKeyRepository interface {
	CreateAPIKey(ctx context.Context, key *domain.APIKey) error
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error)
	DeleteAPIKey(ctx context.Context, id string) error
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
	CountAPIKeys(ctx context.Context) (int, error)
}

// Storage defines the interface for the storage layer.
// Implementations must be safe for concurrent use.
type Storage interface {
	GroupRepository
	PostRepository
	UserRepository
	APIKeyRepository

	// Close closes the storage connection.
	Close() error

	// BeginTx starts a unit of work spanning several repository calls.
	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Storage
	Commit() error
	Rollback() error
}
