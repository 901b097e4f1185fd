package sql

import (
	"context"

	"github.com/bcnelson/yatube/internal/domain"
)

const groupColumns = `id, title, slug, description`

func createGroup(ctx context.Context, db dbInterface, group *domain.Group) error {
	err := db.GetContext(ctx, &group.ID, db.Rebind(
		`INSERT INTO blog_groups (title, slug, description) VALUES (?, ?, ?) RETURNING id`),
		group.Title, group.Slug, group.Description)
	return wrapWriteError(err)
}

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	return createGroup(ctx, s.db, group)
}

func (t *Tx) CreateGroup(ctx context.Context, group *domain.Group) error {
	return createGroup(ctx, t.tx, group)
}

func getGroup(ctx context.Context, db dbInterface, id int64) (*domain.Group, error) {
	var group domain.Group
	err := db.GetContext(ctx, &group, db.Rebind(
		`SELECT `+groupColumns+` FROM blog_groups WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (s *Store) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	return getGroup(ctx, s.db, id)
}

func (t *Tx) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	return getGroup(ctx, t.tx, id)
}

func getGroupBySlug(ctx context.Context, db dbInterface, slug string) (*domain.Group, error) {
	var group domain.Group
	err := db.GetContext(ctx, &group, db.Rebind(
		`SELECT `+groupColumns+` FROM blog_groups WHERE slug = ?`), slug)
	if err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	return getGroupBySlug(ctx, s.db, slug)
}

func (t *Tx) GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	return getGroupBySlug(ctx, t.tx, slug)
}

func listGroups(ctx context.Context, db dbInterface) ([]*domain.Group, error) {
	groups := []*domain.Group{}
	err := db.SelectContext(ctx, &groups,
		`SELECT `+groupColumns+` FROM blog_groups ORDER BY title, id`)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	return listGroups(ctx, s.db)
}

func (t *Tx) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	return listGroups(ctx, t.tx)
}

func updateGroup(ctx context.Context, db dbInterface, group *domain.Group) error {
	return execAffecting(ctx, db,
		`UPDATE blog_groups SET title = ?, description = ? WHERE id = ?`,
		group.Title, group.Description, group.ID)
}

func (s *Store) UpdateGroup(ctx context.Context, group *domain.Group) error {
	return updateGroup(ctx, s.db, group)
}

func (t *Tx) UpdateGroup(ctx context.Context, group *domain.Group) error {
	return updateGroup(ctx, t.tx, group)
}

func deleteGroup(ctx context.Context, db dbInterface, id int64) error {
	return execAffecting(ctx, db, `DELETE FROM blog_groups WHERE id = ?`, id)
}

func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	return deleteGroup(ctx, s.db, id)
}

func (t *Tx) DeleteGroup(ctx context.Context, id int64) error {
	return deleteGroup(ctx, t.tx, id)
}
