package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tallyhq/tally/internal/apperror"
	"github.com/tallyhq/tally/internal/session"
)

// Service defines the business logic contract for user operations.
// Handlers call these methods -- they never touch the repository directly.
type Service interface {
	// Register creates an account and immediately runs the login flow
	// against the caller's current session.
	Register(ctx context.Context, name, password, token string) (*User, error)

	// Login verifies credentials and authenticates the caller's current
	// session row in place. No new token is issued.
	Login(ctx context.Context, name, password, token string) (*User, error)

	// List returns all users. Requires an authenticated session.
	List(ctx context.Context, token string) ([]User, error)

	// Delete removes the target user. Requires an authenticated session
	// whose bound user carries the admin role.
	Delete(ctx context.Context, token string, targetID int64) error
}

// service implements Service with argon2id hashing. Session state is
// delegated to the session service so login can flip the existing row.
type service struct {
	repo     Repository
	sessions session.Service
}

// NewService creates a user service with the given dependencies.
func NewService(repo Repository, sessions session.Service) Service {
	return &service{repo: repo, sessions: sessions}
}

// Register creates a new user account. It validates uniqueness, hashes the
// password with argon2id, persists the user, and then logs the caller in
// against their current session.
func (s *service) Register(ctx context.Context, name, password, token string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewBadRequest("name is required")
	}
	if password == "" {
		return nil, apperror.NewBadRequest("password is required")
	}

	// Check if the name is already taken before doing expensive hashing.
	exists, err := s.repo.NameExists(ctx, name)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking name: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("an account with this name already exists")
	}

	// Hash the password with argon2id (memory-hard, GPU-resistant).
	hash, err := hashPassword(password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	u := &User{
		Name:         name,
		PasswordHash: hash,
		Role:         RoleNormal,
		CreatedAt:    time.Now().UTC(),
	}

	// Create maps the unique key race to Conflict itself -- two concurrent
	// registrations can both pass the NameExists check above.
	if err := s.repo.Create(ctx, u); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.Int64("user_id", u.ID),
		slog.String("name", u.Name),
	)

	// Auto-login against the same session the registration arrived on.
	return s.Login(ctx, name, password, token)
}

// Login authenticates a user by name and password. On success the caller's
// existing session row is flipped to authenticated -- same id, is_auth true,
// user bound, display name copied from the account.
func (s *service) Login(ctx context.Context, name, password, token string) (*User, error) {
	u, err := s.repo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		// Don't reveal whether the name exists -- use a generic message.
		return nil, apperror.NewUnauthorized("invalid name or password")
	}

	if !verifyPassword(password, u.PasswordHash) {
		return nil, apperror.NewUnauthorized("invalid name or password")
	}

	if err := s.sessions.Authenticate(ctx, token, u.ID, u.Name); err != nil {
		return nil, err
	}

	slog.Info("user logged in",
		slog.Int64("user_id", u.ID),
		slog.String("name", u.Name),
	)

	return u, nil
}

// List returns all users for an authenticated caller.
func (s *service) List(ctx context.Context, token string) ([]User, error) {
	if _, err := s.requireAuthenticated(ctx, token); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing users: %w", err))
	}
	return users, nil
}

// Delete removes the target user. The caller must be authenticated and the
// bound account must carry the admin role; an authenticated non-admin gets
// Forbidden, never Unauthorized -- the two failures stay distinguishable.
func (s *service) Delete(ctx context.Context, token string, targetID int64) error {
	caller, err := s.requireAuthenticated(ctx, token)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return apperror.NewForbidden("admin role required")
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}

	slog.Info("user deleted",
		slog.Int64("target_id", targetID),
		slog.Int64("deleted_by", caller.ID),
	)

	return nil
}

// requireAuthenticated resolves the caller's session and loads the bound
// user. Anonymous sessions get Unauthorized.
func (s *service) requireAuthenticated(ctx context.Context, token string) (*User, error) {
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !sess.IsAuth || sess.UserID == nil {
		return nil, apperror.NewUnauthorized("login required")
	}

	u, err := s.repo.FindByID(ctx, *sess.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("login required")
	}
	return u, nil
}
