package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tallyhq/tally/internal/apperror"
)

// --- Mock Repository ---

// mockRepo implements Repository for testing.
type mockRepo struct {
	createFn         func(ctx context.Context, s *Session) error
	findByTokenFn    func(ctx context.Context, token string) (*Session, error)
	authenticateFn   func(ctx context.Context, token string, userID int64, name string) error
	deauthenticateFn func(ctx context.Context, token string) error
}

func (m *mockRepo) Create(ctx context.Context, s *Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	s.ID = 1
	return nil
}

func (m *mockRepo) FindByToken(ctx context.Context, token string) (*Session, error) {
	if m.findByTokenFn != nil {
		return m.findByTokenFn(ctx, token)
	}
	return nil, apperror.NewNotFound("session not found")
}

func (m *mockRepo) Authenticate(ctx context.Context, token string, userID int64, name string) error {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, token, userID, name)
	}
	return nil
}

func (m *mockRepo) Deauthenticate(ctx context.Context, token string) error {
	if m.deauthenticateFn != nil {
		return m.deauthenticateFn(ctx, token)
	}
	return nil
}

// --- Test Helpers ---

// newTestCache spins up a miniredis instance and returns a Cache backed by it.
func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCache(rdb, time.Minute)
}

// --- Issue Tests ---

func TestIssue_MintsAnonymousSession(t *testing.T) {
	var created *Session
	repo := &mockRepo{
		createFn: func(ctx context.Context, s *Session) error {
			created = s
			s.ID = 5
			return nil
		},
	}

	svc := NewService(repo, nil)
	sess, err := svc.Issue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected a session row to be created")
	}
	if sess.IsAuth {
		t.Error("expected fresh session to be unauthenticated")
	}
	if sess.UserID != nil {
		t.Error("expected fresh session to have no bound user")
	}
	if len(sess.Hash) != 64 {
		t.Errorf("expected 64-char hex token, got %d chars", len(sess.Hash))
	}
	if !strings.Contains(sess.Name, "-") {
		t.Errorf("expected word-suffix display name, got %q", sess.Name)
	}
}

func TestIssue_UniqueTokens(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)

	a, err := svc.Issue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.Issue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Hash == b.Hash {
		t.Error("expected distinct tokens for distinct sessions")
	}
}

// --- Resolve Tests ---

func TestResolve_EmptyToken(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)
	_, err := svc.Resolve(context.Background(), "")
	assertAppError(t, err, 401)
}

func TestResolve_UnknownToken(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)
	_, err := svc.Resolve(context.Background(), "bogus")
	assertAppError(t, err, 401)
}

func TestResolve_FillsCache(t *testing.T) {
	calls := 0
	repo := &mockRepo{
		findByTokenFn: func(ctx context.Context, token string) (*Session, error) {
			calls++
			return &Session{ID: 2, Hash: token, Name: "Lynx-007"}, nil
		},
	}

	svc := NewService(repo, newTestCache(t))

	for i := 0; i < 3; i++ {
		sess, err := svc.Resolve(context.Background(), "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sess.ID != 2 {
			t.Errorf("expected session id 2, got %d", sess.ID)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 database lookup, got %d", calls)
	}
}

// --- Authenticate / Deauthenticate Tests ---

func TestAuthenticate_InvalidatesCachedAnonymousCopy(t *testing.T) {
	authed := false
	repo := &mockRepo{
		findByTokenFn: func(ctx context.Context, token string) (*Session, error) {
			s := &Session{ID: 2, Hash: token, Name: "Lynx-007"}
			if authed {
				uid := int64(9)
				s.IsAuth = true
				s.UserID = &uid
				s.Name = "ana"
			}
			return s, nil
		},
	}

	svc := NewService(repo, newTestCache(t))

	// Prime the cache with the anonymous row.
	if _, err := svc.Resolve(context.Background(), "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	authed = true
	if err := svc.Authenticate(context.Background(), "tok", 9, "ana"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The stale anonymous copy must not be served after login.
	sess, err := svc.Resolve(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sess.IsAuth {
		t.Error("expected authenticated session after login")
	}
	if sess.ID != 2 {
		t.Errorf("expected the same session id across login, got %d", sess.ID)
	}
	if sess.UserID == nil || *sess.UserID != 9 {
		t.Errorf("expected bound user 9, got %v", sess.UserID)
	}
}

func TestAuthenticate_UnknownSession(t *testing.T) {
	repo := &mockRepo{
		authenticateFn: func(ctx context.Context, token string, userID int64, name string) error {
			return apperror.NewNotFound("session not found")
		},
	}
	svc := NewService(repo, nil)
	err := svc.Authenticate(context.Background(), "bogus", 1, "ana")
	assertAppError(t, err, 404)
}

func TestDeauthenticate_RevertsSession(t *testing.T) {
	var gotToken string
	repo := &mockRepo{
		deauthenticateFn: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	}
	svc := NewService(repo, newTestCache(t))
	if err := svc.Deauthenticate(context.Background(), "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotToken != "tok" {
		t.Errorf("expected deauthenticate on token %q, got %q", "tok", gotToken)
	}
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	appErr, ok := err.(*apperror.AppError)
	if !ok {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}
