package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tallyhq/tally/internal/apperror"
)

// tokenBytes is the number of random bytes in a session token.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const tokenBytes = 32

// Service defines the business logic contract for sessions. Handlers and
// the other feature services call these methods -- they never touch the
// repository or cache directly.
type Service interface {
	// Resolve loads the session for a token, cache first. Returns
	// apperror.Unauthorized if no session row matches.
	Resolve(ctx context.Context, token string) (*Session, error)

	// Issue mints a fresh anonymous session: random token, generated
	// display name, no bound user.
	Issue(ctx context.Context) (*Session, error)

	// Authenticate binds a user to the caller's current session row.
	Authenticate(ctx context.Context, token string, userID int64, name string) error

	// Deauthenticate reverts the caller's session to anonymous.
	Deauthenticate(ctx context.Context, token string) error
}

// service implements Service over the MariaDB repository with a Redis
// read-through cache.
type service struct {
	repo  Repository
	cache *Cache
}

// NewService creates a session service. The cache may be nil, in which case
// every resolve hits the database.
func NewService(repo Repository, cache *Cache) Service {
	return &service{repo: repo, cache: cache}
}

// Resolve looks up the session for a token. Cache hits skip the database;
// misses are filled on the way out.
func (s *service) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperror.NewUnauthorized("no session")
	}

	if s.cache != nil {
		if cached := s.cache.Get(ctx, token); cached != nil {
			return cached, nil
		}
	}

	sess, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == http.StatusNotFound {
			return nil, apperror.NewUnauthorized("session not found")
		}
		return nil, apperror.NewInternal(fmt.Errorf("resolving session: %w", err))
	}

	if s.cache != nil {
		s.cache.Put(ctx, sess)
	}

	return sess, nil
}

// Issue creates a new anonymous session row and returns it.
func (s *service) Issue(ctx context.Context) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generating session token: %w", err))
	}

	sess := &Session{
		Hash:      token,
		IsAuth:    false,
		UserID:    nil,
		Name:      randomDisplayName(),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}

	slog.Info("session issued",
		slog.Int64("session_id", sess.ID),
		slog.String("name", sess.Name),
	)

	return sess, nil
}

// Authenticate flips the session row to authenticated and invalidates the
// cached anonymous copy.
func (s *service) Authenticate(ctx context.Context, token string, userID int64, name string) error {
	if err := s.repo.Authenticate(ctx, token, userID, name); err != nil {
		return err
	}
	s.invalidate(ctx, token)
	return nil
}

// Deauthenticate reverts the session row to anonymous and invalidates the
// cached authenticated copy.
func (s *service) Deauthenticate(ctx context.Context, token string) error {
	if err := s.repo.Deauthenticate(ctx, token); err != nil {
		return err
	}
	s.invalidate(ctx, token)
	return nil
}

// invalidate drops the cached entry; failures are logged, not fatal, because
// the TTL bounds how long a stale copy can live.
func (s *service) invalidate(ctx context.Context, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, token); err != nil {
		slog.Warn("session cache invalidation failed", slog.Any("error", err))
	}
}

// generateToken creates a cryptographically random hex-encoded token.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
