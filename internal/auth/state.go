package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	// StateCookieName is the name of the state cookie.
	StateCookieName = "yatube_oidc_state"
	// StateCookieMaxAge is how long the state cookie is valid (5 minutes).
	StateCookieMaxAge = 5 * 60
)

// StateStore manages state and nonce for OIDC CSRF protection.
type StateStore struct {
	store  *sessions.CookieStore
	secure bool
}

// StateData holds the state and nonce for an OIDC request, and the local
// path to return to once the login completes.
type StateData struct {
	State     string
	Nonce     string
	Next      string
	ExpiresAt time.Time
}

// NewStateStore creates a new state store. The secret must be at least 32 bytes.
func NewStateStore(secret []byte, secure bool) (*StateStore, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("state store secret must be at least 32 bytes, got %d", len(secret))
	}
	return &StateStore{
		store:  newCookieStore(secret, StateCookieMaxAge, secure),
		secure: secure,
	}, nil
}

// Generate creates a new state/nonce pair and stores it in an encrypted cookie.
func (ss *StateStore) Generate(w http.ResponseWriter, r *http.Request, next string) (*StateData, error) {
	state, err := GenerateSecureString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	nonce, err := GenerateSecureString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	data := &StateData{
		State:     state,
		Nonce:     nonce,
		Next:      next,
		ExpiresAt: time.Now().Add(StateCookieMaxAge * time.Second),
	}

	session, _ := ss.store.New(r, StateCookieName)
	session.Values["state"] = data.State
	session.Values["nonce"] = data.Nonce
	session.Values["next"] = data.Next
	session.Values["exp"] = data.ExpiresAt.Unix()
	if err := session.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}

	return data, nil
}

// Validate retrieves and validates the state from the cookie.
func (ss *StateStore) Validate(r *http.Request, state string) (*StateData, error) {
	if _, err := r.Cookie(StateCookieName); err != nil {
		return nil, fmt.Errorf("state cookie not found: %w", err)
	}
	session, err := ss.store.Get(r, StateCookieName)
	if err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}

	data := &StateData{}
	data.State, _ = session.Values["state"].(string)
	data.Nonce, _ = session.Values["nonce"].(string)
	data.Next, _ = session.Values["next"].(string)
	exp, _ := session.Values["exp"].(int64)
	data.ExpiresAt = time.Unix(exp, 0)

	// Check expiration
	if time.Now().After(data.ExpiresAt) {
		return nil, fmt.Errorf("state expired")
	}

	// Validate state matches (constant-time comparison)
	if data.State == "" || !ConstantTimeCompare(data.State, state) {
		return nil, fmt.Errorf("state mismatch")
	}

	return data, nil
}

// Clear clears the state cookie.
func (ss *StateStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   ss.secure,
	})
}
