package sql

import (
	"context"
	"strings"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage"
)

const selectPosts = `SELECT p.id, p.text, p.pub_date, p.author_id, p.group_id,
       u.username AS author_username, g.slug AS group_slug, g.title AS group_title
  FROM posts p
  JOIN users u ON u.id = p.author_id
  LEFT JOIN blog_groups g ON g.id = p.group_id`

// postWhere renders the filter as a WHERE clause with ? placeholders.
func postWhere(filter storage.PostFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.GroupID != nil {
		conds = append(conds, "p.group_id = ?")
		args = append(args, *filter.GroupID)
	}
	if filter.AuthorID != nil {
		conds = append(conds, "p.author_id = ?")
		args = append(args, *filter.AuthorID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func createPost(ctx context.Context, db dbInterface, post *domain.Post) error {
	err := db.GetContext(ctx, &post.ID, db.Rebind(
		`INSERT INTO posts (text, pub_date, author_id, group_id) VALUES (?, ?, ?, ?) RETURNING id`),
		post.Text, post.PubDate, post.AuthorID, post.GroupID)
	return wrapWriteError(err)
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	return createPost(ctx, s.db, post)
}

func (t *Tx) CreatePost(ctx context.Context, post *domain.Post) error {
	return createPost(ctx, t.tx, post)
}

func getPost(ctx context.Context, db dbInterface, id int64) (*domain.Post, error) {
	var post domain.Post
	err := db.GetContext(ctx, &post, db.Rebind(selectPosts+` WHERE p.id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	return getPost(ctx, s.db, id)
}

func (t *Tx) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	return getPost(ctx, t.tx, id)
}

func listPosts(ctx context.Context, db dbInterface, filter storage.PostFilter, limit, offset int) ([]*domain.Post, error) {
	where, args := postWhere(filter)
	args = append(args, limit, offset)
	posts := []*domain.Post{}
	err := db.SelectContext(ctx, &posts, db.Rebind(
		selectPosts+where+` ORDER BY p.pub_date DESC, p.id DESC LIMIT ? OFFSET ?`), args...)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, limit, offset int) ([]*domain.Post, error) {
	return listPosts(ctx, s.db, filter, limit, offset)
}

func (t *Tx) ListPosts(ctx context.Context, filter storage.PostFilter, limit, offset int) ([]*domain.Post, error) {
	return listPosts(ctx, t.tx, filter, limit, offset)
}

func countPosts(ctx context.Context, db dbInterface, filter storage.PostFilter) (int, error) {
	where, args := postWhere(filter)
	var count int
	err := db.GetContext(ctx, &count, db.Rebind(`SELECT COUNT(*) FROM posts p`+where), args...)
	return count, err
}

func (s *Store) CountPosts(ctx context.Context, filter storage.PostFilter) (int, error) {
	return countPosts(ctx, s.db, filter)
}

func (t *Tx) CountPosts(ctx context.Context, filter storage.PostFilter) (int, error) {
	return countPosts(ctx, t.tx, filter)
}

func updatePost(ctx context.Context, db dbInterface, post *domain.Post) error {
	return execAffecting(ctx, db,
		`UPDATE posts SET text = ?, group_id = ? WHERE id = ?`,
		post.Text, post.GroupID, post.ID)
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) error {
	return updatePost(ctx, s.db, post)
}

func (t *Tx) UpdatePost(ctx context.Context, post *domain.Post) error {
	return updatePost(ctx, t.tx, post)
}
