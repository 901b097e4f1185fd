package domain

import "time"

// User is an author account. Deleting a user deletes their posts.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email,omitempty" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (u *User) String() string {
	return u.Username
}

// Identity is the authenticated caller of a request. The zero value is anonymous.
type Identity struct {
	UserID   int64
	Username string
}

// Authenticated reports whether the identity refers to a user.
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// IdentityOf returns the identity for a stored user.
func IdentityOf(u *User) Identity {
	return Identity{UserID: u.ID, Username: u.Username}
}

// APIKey is a credential for the admin API.
// Only the SHA-256 hash is stored; the key itself is shown once on creation.
type APIKey struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	KeyHash    string     `json:"-" db:"key_hash"`
	KeyPrefix  string     `json:"key_prefix" db:"key_prefix"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// CreateAPIKeyRequest is the request body for creating an API key.
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

// CreateAPIKeyResponse is returned once when an API key is created.
type CreateAPIKeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	KeyPrefix string    `json:"key_prefix"`
	CreatedAt time.Time `json:"created_at"`
}
