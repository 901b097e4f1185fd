package service

import (
	"context"
	"fmt"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/pagination"
	"github.com/bcnelson/yatube/internal/storage"
)

// PostPage is one page of a post listing.
type PostPage = pagination.Page[*domain.Post]

// ListingService answers the read-only post queries behind the public pages.
type ListingService struct {
	store     storage.Storage
	paginator pagination.Paginator
}

// NewListingService creates a ListingService that pages with pageSize.
func NewListingService(store storage.Storage, pageSize int) *ListingService {
	return &ListingService{
		store:     store,
		paginator: pagination.New(pageSize),
	}
}

// PageSize returns the configured page size.
func (s *ListingService) PageSize() int {
	return s.paginator.PageSize
}

// ListAll returns the requested page of all posts, newest first.
func (s *ListingService) ListAll(ctx context.Context, page string) (*PostPage, error) {
	return s.list(ctx, storage.PostFilter{}, page)
}

// ListByGroup returns the group with the given slug and the requested page
// of its posts.
func (s *ListingService) ListByGroup(ctx context.Context, slug, page string) (*domain.Group, *PostPage, error) {
	group, err := s.store.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, nil, fmt.Errorf("group %q: %w", slug, err)
	}
	posts, err := s.list(ctx, storage.ByGroup(group.ID), page)
	if err != nil {
		return nil, nil, err
	}
	return group, posts, nil
}

// ListByAuthor returns the user with the given username and the requested
// page of their posts.
func (s *ListingService) ListByAuthor(ctx context.Context, username, page string) (*domain.User, *PostPage, error) {
	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("profile %q: %w", username, err)
	}
	posts, err := s.list(ctx, storage.ByAuthor(author.ID), page)
	if err != nil {
		return nil, nil, err
	}
	return author, posts, nil
}

// GetOne returns a single post.
func (s *ListingService) GetOne(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	return post, nil
}

// CountByAuthor returns how many posts a user has written.
func (s *ListingService) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	return s.store.CountPosts(ctx, storage.ByAuthor(authorID))
}

func (s *ListingService) list(ctx context.Context, filter storage.PostFilter, page string) (*PostPage, error) {
	total, err := s.store.CountPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	w := s.paginator.Window(total, page)
	posts, err := s.store.ListPosts(ctx, filter, w.Limit(), w.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return pagination.NewPage(w, posts), nil
}
