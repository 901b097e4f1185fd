package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/validation"
	"go.uber.org/zap"
)

// PostService creates and edits posts on behalf of an explicit identity.
type PostService struct {
	store  storage.Storage
	logger *zap.Logger
	now    func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(store storage.Storage, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to stamp new posts.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// Create publishes a new post authored by who. The author and publication
// date are fixed here and never change afterwards.
func (s *PostService) Create(ctx context.Context, who domain.Identity, in domain.PostInput) (*domain.Post, error) {
	if !who.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	if err := validatePostInput(ctx, s.store, in); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Text:     in.Text,
		PubDate:  s.now().UTC().Truncate(time.Microsecond),
		AuthorID: who.UserID,
		GroupID:  in.GroupID,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	s.logger.Info("post created",
		zap.Int64("post_id", post.ID),
		zap.String("author", who.Username),
	)

	return s.store.GetPost(ctx, post.ID)
}

// Update replaces the text and group of a post. Only the author may edit:
// anyone else gets domain.ErrForbidden together with the unchanged post, so
// the caller can send them back to it. Nothing is written in that case.
func (s *PostService) Update(ctx context.Context, postID int64, who domain.Identity, in domain.PostInput) (*domain.Post, error) {
	if !who.Authenticated() {
		return nil, domain.ErrUnauthorized
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	post, err := tx.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	if !post.IsAuthoredBy(who) {
		s.logger.Debug("edit refused",
			zap.Int64("post_id", postID),
			zap.String("requester", who.Username),
		)
		return post, domain.ErrForbidden
	}

	if err := validatePostInput(ctx, tx, in); err != nil {
		return post, err
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	if err := tx.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Info("post updated", zap.Int64("post_id", postID), zap.String("author", who.Username))

	return s.store.GetPost(ctx, postID)
}

// Authorize returns the post if who may edit it. A non-author gets
// domain.ErrForbidden together with the post.
func (s *PostService) Authorize(ctx context.Context, postID int64, who domain.Identity) (*domain.Post, error) {
	if !who.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	if !post.IsAuthoredBy(who) {
		return post, domain.ErrForbidden
	}
	return post, nil
}

// validatePostInput checks the text and, when set, that the group exists.
func validatePostInput(ctx context.Context, groups storage.GroupRepository, in domain.PostInput) error {
	var errs validation.ValidationErrors
	if err := validation.ValidatePostText(in.Text); err != nil {
		errs.Add("text", in.Text, err.Error())
	}
	if in.GroupID != nil {
		value := strconv.FormatInt(*in.GroupID, 10)
		if _, err := groups.GetGroup(ctx, *in.GroupID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("failed to look up group: %w", err)
			}
			errs.AddCause("group", value, validation.MsgInvalidChoice, domain.ErrNotFound)
		}
	}
	return errs.Err()
}
