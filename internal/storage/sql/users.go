package sql

import (
	"context"

	"github.com/bcnelson/yatube/internal/domain"
)

const userColumns = `id, username, COALESCE(email, '') AS email, password_hash, created_at`

func createUser(ctx context.Context, db dbInterface, user *domain.User) error {
	err := db.GetContext(ctx, &user.ID, db.Rebind(
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	return wrapWriteError(err)
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return createUser(ctx, s.db, user)
}

func (t *Tx) CreateUser(ctx context.Context, user *domain.User) error {
	return createUser(ctx, t.tx, user)
}

func getUserWhere(ctx context.Context, db dbInterface, cond string, arg any) (*domain.User, error) {
	var user domain.User
	err := db.GetContext(ctx, &user, db.Rebind(`SELECT `+userColumns+` FROM users WHERE `+cond), arg)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return getUserWhere(ctx, s.db, "id = ?", id)
}

func (t *Tx) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return getUserWhere(ctx, t.tx, "id = ?", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return getUserWhere(ctx, s.db, "username = ?", username)
}

func (t *Tx) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return getUserWhere(ctx, t.tx, "username = ?", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrNotFound
	}
	return getUserWhere(ctx, s.db, "email = ?", email)
}

func (t *Tx) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrNotFound
	}
	return getUserWhere(ctx, t.tx, "email = ?", email)
}

func deleteUser(ctx context.Context, db dbInterface, id int64) error {
	return execAffecting(ctx, db, `DELETE FROM users WHERE id = ?`, id)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return deleteUser(ctx, s.db, id)
}

func (t *Tx) DeleteUser(ctx context.Context, id int64) error {
	return deleteUser(ctx, t.tx, id)
}
