package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/validation"
	"go.uber.org/zap"
)

// maxUsernameAttempts bounds the suffixes tried when deriving a username.
const maxUsernameAttempts = 100

// UserService registers and authenticates accounts.
type UserService struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Storage, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, logger: logger}
}

// RegisterRequest holds the signup form fields.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Register creates a local account with an argon2id password hash.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	var errs validation.ValidationErrors
	if err := validation.ValidateUsername(username); err != nil {
		errs.Add("username", username, err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		errs.Add("email", email, err.Error())
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		errs.Add("password", "", err.Error())
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			errs.AddCause("username", username, "A user with that username already exists.", err)
			return nil, errs
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user registered", zap.String("username", username))
	return user, nil
}

// Authenticate checks a username and password. Any mismatch, including an
// unknown username, is reported as domain.ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.store.GetUser(ctx, id)
}

// ProvisionOIDC returns the account linked to the claims' email, creating
// one on first login. The username comes from the preferred_username claim
// or the email's local part, suffixed with a number while it is taken.
func (s *UserService) ProvisionOIDC(ctx context.Context, claims *auth.OIDCClaims) (*domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, claims.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	base := sanitizeUsername(claims.UsernameHint())
	for i := 0; i < maxUsernameAttempts; i++ {
		candidate := base
		if i > 0 {
			suffix := strconv.Itoa(i + 1)
			candidate = truncateRunes(candidate, validation.MaxUsernameLength-len(suffix)) + suffix
		}
		user := &domain.User{
			Username:  candidate,
			Email:     claims.Email,
			CreatedAt: time.Now().UTC(),
		}
		err := s.store.CreateUser(ctx, user)
		if err == nil {
			s.logger.Info("user provisioned via OIDC",
				zap.String("username", user.Username),
				zap.String("email", user.Email),
			)
			return user, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		// A concurrent login may have created the account by email.
		if existing, err := s.store.GetUserByEmail(ctx, claims.Email); err == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("no free username for %q: %w", base, domain.ErrAlreadyExists)
}

// sanitizeUsername keeps the characters usernames allow, falling back to "user".
func sanitizeUsername(hint string) string {
	var b strings.Builder
	for _, r := range hint {
		if validation.ValidateUsername(string(r)) == nil {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return truncateRunes(b.String(), validation.MaxUsernameLength)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
