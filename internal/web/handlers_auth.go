package web

import (
	"errors"
	"net/http"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/service"
	"go.uber.org/zap"
)

const msgBadCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// AuthFormData holds data for the login and signup forms.
type AuthFormData struct {
	Username string
	Email    string
	Next     string
	Errors   map[string][]string
}

// handleLoginPage renders the login page.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		Title:   "Log in",
		Active:  "login",
		Content: AuthFormData{Next: r.URL.Query().Get("next")},
	}

	// Check for flash message in query params
	if msg := r.URL.Query().Get("error"); msg != "" {
		data.Flash = &FlashMessage{Type: "error", Message: msg}
	}

	s.render(w, r, http.StatusOK, "login", data)
}

// handleLogin processes the login form.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	form := AuthFormData{Username: r.FormValue("username"), Next: r.FormValue("next")}
	user, err := s.users.Authenticate(r.Context(), form.Username, r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			s.handleServiceError(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, "login", PageData{
			Title:   "Log in",
			Active:  "login",
			Flash:   &FlashMessage{Type: "error", Message: msgBadCredentials},
			Content: form,
		})
		return
	}

	s.startSession(w, r, user, form.Next)
}

// handleLogout clears the session and redirects to the index.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleSignupPage renders the signup page.
func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup", PageData{
		Title:   "Sign up",
		Active:  "signup",
		Content: AuthFormData{Next: r.URL.Query().Get("next")},
	})
}

// handleSignup creates a local account and logs it in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	form := AuthFormData{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Next:     r.FormValue("next"),
	}
	if r.FormValue("password") != r.FormValue("password_confirm") {
		form.Errors = map[string][]string{"password_confirm": {"The two password fields didn't match."}}
		s.render(w, r, http.StatusOK, "signup", PageData{Title: "Sign up", Active: "signup", Content: form})
		return
	}

	user, err := s.users.Register(r.Context(), service.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: r.FormValue("password"),
	})
	if err != nil {
		if errs, ok := fieldErrors(err); ok {
			form.Errors = errs
			s.render(w, r, http.StatusOK, "signup", PageData{Title: "Sign up", Active: "signup", Content: form})
			return
		}
		s.handleServiceError(w, r, err)
		return
	}

	s.startSession(w, r, user, form.Next)
}

// startSession sets the session cookie and redirects to next.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *domain.User, next string) {
	if err := s.sessions.Create(w, r, user); err != nil {
		s.logger.Error("failed to create session", zap.String("username", user.Username), zap.Error(err))
		s.renderError(w, r, http.StatusInternalServerError, "Failed to create session")
		return
	}
	http.Redirect(w, r, safeNext(next), http.StatusFound)
}
