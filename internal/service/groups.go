package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// GroupService manages groups. Groups are created administratively, never
// from the public site.
type GroupService struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Storage, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{store: store, logger: logger}
}

// List returns all groups ordered by title.
func (s *GroupService) List(ctx context.Context) ([]*domain.Group, error) {
	return s.store.ListGroups(ctx)
}

// Get returns the group with the given slug.
func (s *GroupService) Get(ctx context.Context, slug string) (*domain.Group, error) {
	group, err := s.store.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", slug, err)
	}
	return group, nil
}

// Create validates and stores a new group.
func (s *GroupService) Create(ctx context.Context, req *domain.CreateGroupRequest) (*domain.Group, error) {
	group := &domain.Group{
		Title:       strings.TrimSpace(req.Title),
		Slug:        strings.TrimSpace(req.Slug),
		Description: req.Description,
	}
	var errs validation.ValidationErrors
	if err := validation.ValidateGroupTitle(group.Title); err != nil {
		errs.Add("title", group.Title, err.Error())
	}
	if err := validation.ValidateSlug(group.Slug); err != nil {
		errs.Add("slug", group.Slug, err.Error())
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("group with slug %q: %w", group.Slug, err)
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	s.logger.Info("group created", zap.String("slug", group.Slug))
	return group, nil
}

// Update changes the title and/or description of a group.
func (s *GroupService) Update(ctx context.Context, slug string, req *domain.UpdateGroupRequest) (*domain.Group, error) {
	group, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validation.ValidateGroupTitle(title); err != nil {
			var errs validation.ValidationErrors
			errs.Add("title", title, err.Error())
			return nil, errs
		}
		group.Title = title
	}
	if req.Description != nil {
		group.Description = *req.Description
	}
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	s.logger.Info("group updated", zap.String("slug", slug))
	return group, nil
}

// GroupFile is the YAML document accepted by Import.
//
//	groups:
//	  - title: Cats
//	    slug: cats
//	    description: Everything about cats
type GroupFile struct {
	Groups []domain.CreateGroupRequest `yaml:"groups"`
}

// ImportResult summarises an import.
type ImportResult struct {
	Created int
	Updated int
}

// Import creates the groups listed in a YAML document. Groups whose slug
// already exists get their title and description replaced. The import runs
// in a single transaction and stops at the first invalid entry.
func (s *GroupService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var file GroupFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &ImportResult{}, nil
		}
		return nil, fmt.Errorf("failed to parse group file: %w", err)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txSvc := &GroupService{store: tx, logger: s.logger}
	result := &ImportResult{}
	for i := range file.Groups {
		req := &file.Groups[i]
		_, err := tx.GetGroupBySlug(ctx, strings.TrimSpace(req.Slug))
		switch {
		case err == nil:
			title, desc := req.Title, req.Description
			if _, err := txSvc.Update(ctx, strings.TrimSpace(req.Slug), &domain.UpdateGroupRequest{Title: &title, Description: &desc}); err != nil {
				return nil, fmt.Errorf("group #%d: %w", i+1, err)
			}
			result.Updated++
		case errors.Is(err, domain.ErrNotFound):
			if _, err := txSvc.Create(ctx, req); err != nil {
				return nil, fmt.Errorf("group #%d: %w", i+1, err)
			}
			result.Created++
		default:
			return nil, fmt.Errorf("group #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}
