package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/gorilla/sessions"
)

const (
	// SessionCookieName is the name of the login session cookie.
	SessionCookieName = "yatube_session"

	keyUserID    = "uid"
	keyUsername  = "username"
	keyExpiresAt = "exp"
)

// SessionManager handles signed and encrypted session cookies.
type SessionManager struct {
	store    *sessions.CookieStore
	duration time.Duration
	secure   bool // Use Secure flag on cookies (for HTTPS)
}

// UserSession is the data carried by the login cookie.
type UserSession struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// Identity returns the authenticated identity for the session.
func (s *UserSession) Identity() domain.Identity {
	return domain.Identity{UserID: s.UserID, Username: s.Username}
}

// deriveKeys splits one secret into the HMAC and AES keys securecookie needs.
func deriveKeys(secret []byte) (hashKey, blockKey []byte) {
	h := sha256.Sum256(append([]byte("yatube-session-hash:"), secret...))
	b := sha256.Sum256(append([]byte("yatube-session-block:"), secret...))
	return h[:], b[:]
}

func newCookieStore(secret []byte, maxAge int, secure bool) *sessions.CookieStore {
	hashKey, blockKey := deriveKeys(secret)
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// NewSessionManager creates a new session manager with the given secret.
// The secret must be at least 32 bytes.
func NewSessionManager(secret []byte, duration time.Duration, secure bool) (*SessionManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes, got %d", len(secret))
	}
	return &SessionManager{
		store:    newCookieStore(secret, int(duration.Seconds()), secure),
		duration: duration,
		secure:   secure,
	}, nil
}

// Create writes a session cookie for the user.
func (sm *SessionManager) Create(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	session, _ := sm.store.New(r, SessionCookieName)
	session.Values[keyUserID] = user.ID
	session.Values[keyUsername] = user.Username
	session.Values[keyExpiresAt] = time.Now().Add(sm.duration).Unix()
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves and validates the session from the cookie.
func (sm *SessionManager) Get(r *http.Request) (*UserSession, error) {
	if _, err := r.Cookie(SessionCookieName); err != nil {
		return nil, fmt.Errorf("session cookie not found: %w", err)
	}
	session, err := sm.store.Get(r, SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	userID, ok := session.Values[keyUserID].(int64)
	if !ok || userID == 0 {
		return nil, fmt.Errorf("invalid session data")
	}
	username, _ := session.Values[keyUsername].(string)
	exp, _ := session.Values[keyExpiresAt].(int64)

	expiresAt := time.Unix(exp, 0)
	if time.Now().After(expiresAt) {
		return nil, fmt.Errorf("session expired")
	}

	return &UserSession{UserID: userID, Username: username, ExpiresAt: expiresAt}, nil
}

// Clear clears the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   sm.secure,
	})
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
