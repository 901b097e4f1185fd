package web

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// handleOIDCLogin initiates the OIDC login flow.
func (s *Server) handleOIDCLogin(w http.ResponseWriter, r *http.Request) {
	if s.oidc == nil {
		s.handleNotFound(w, r)
		return
	}

	// Generate state and nonce
	stateData, err := s.state.Generate(w, r, safeNext(r.URL.Query().Get("next")))
	if err != nil {
		s.logger.Error("failed to generate OIDC state", zap.Error(err))
		http.Redirect(w, r, loginPath+"?error="+url.QueryEscape("Failed to initiate login"), http.StatusSeeOther)
		return
	}

	// Redirect to OIDC provider
	http.Redirect(w, r, s.oidc.AuthCodeURL(stateData.State, stateData.Nonce), http.StatusSeeOther)
}

// handleOIDCCallback handles the OIDC callback after authentication.
func (s *Server) handleOIDCCallback(w http.ResponseWriter, r *http.Request) {
	if s.oidc == nil {
		s.handleNotFound(w, r)
		return
	}

	ctx := r.Context()
	query := r.URL.Query()

	// Check for error from provider
	if errParam := query.Get("error"); errParam != "" {
		errDesc := query.Get("error_description")
		if errDesc == "" {
			errDesc = errParam
		}
		s.logger.Warn("OIDC provider returned error", zap.String("error", errParam), zap.String("description", errDesc))
		http.Redirect(w, r, loginPath+"?error="+url.QueryEscape(errDesc), http.StatusSeeOther)
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Redirect(w, r, loginPath+"?error="+url.QueryEscape("No authorization code received"), http.StatusSeeOther)
		return
	}

	stateData, err := s.state.Validate(r, query.Get("state"))
	if err != nil {
		s.logger.Warn("OIDC state validation failed", zap.Error(err))
		http.Redirect(w, r, loginPath+"?error="+url.QueryEscape("Invalid state parameter"), http.StatusSeeOther)
		return
	}
	s.state.Clear(w)

	// Exchange code for tokens; claims are validated by the provider.
	claims, err := s.oidc.Exchange(ctx, code, stateData.Nonce)
	if err != nil {
		s.logger.Warn("OIDC token exchange failed", zap.Error(err))
		http.Redirect(w, r, loginPath+"?error="+url.QueryEscape("Failed to complete authentication"), http.StatusSeeOther)
		return
	}

	user, err := s.users.ProvisionOIDC(ctx, claims)
	if err != nil {
		s.logger.Error("failed to provision OIDC user", zap.String("email", claims.Email), zap.Error(err))
		http.Redirect(w, r, loginPath+"?error="+url.QueryEscape("Failed to create account"), http.StatusSeeOther)
		return
	}

	s.startSession(w, r, user, stateData.Next)
}
