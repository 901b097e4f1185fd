package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/domain"
	"go.uber.org/zap"
)

const loginPath = "/auth/login/"

// identity resolves the session cookie into a domain.Identity on the
// request context. Requests without a valid session are anonymous.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		// The account may have been deleted since the cookie was issued.
		user, err := s.users.Get(r.Context(), sess.UserID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Error("failed to load session user", zap.Int64("user_id", sess.UserID), zap.Error(err))
			}
			s.sessions.Clear(w, r)
			next.ServeHTTP(w, r)
			return
		}

		ctx := auth.WithIdentity(r.Context(), domain.IdentityOf(user))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireLogin redirects anonymous requests to the login page, carrying
// the requested path in the next parameter.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IdentityFrom(r.Context()).Authenticated() {
			http.Redirect(w, r, loginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loginURL builds the login redirect for next, leaving slashes unescaped.
func loginURL(next string) string {
	return loginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// safeNext returns next when it is a local path, and "/" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
