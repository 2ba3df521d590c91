package user

import (
	"context"
	"testing"
	"time"

	"github.com/tallyhq/tally/internal/apperror"
	"github.com/tallyhq/tally/internal/session"
)

// --- Mock Repository ---

// mockRepo implements Repository for testing.
type mockRepo struct {
	createFn     func(ctx context.Context, u *User) error
	findByIDFn   func(ctx context.Context, id int64) (*User, error)
	findByNameFn func(ctx context.Context, name string) (*User, error)
	nameExistsFn func(ctx context.Context, name string) (bool, error)
	listFn       func(ctx context.Context) ([]User, error)
	deleteFn     func(ctx context.Context, id int64) error
}

func (m *mockRepo) Create(ctx context.Context, u *User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = 1
	return nil
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockRepo) FindByName(ctx context.Context, name string) (*User, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockRepo) NameExists(ctx context.Context, name string) (bool, error) {
	if m.nameExistsFn != nil {
		return m.nameExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockRepo) List(ctx context.Context) ([]User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock Session Service ---

// mockSessions implements session.Service for testing. It records
// Authenticate calls so tests can assert the login flow mutates the
// caller's existing session.
type mockSessions struct {
	resolveFn func(ctx context.Context, token string) (*session.Session, error)

	authCalls      int
	authToken      string
	authUserID     int64
	authName       string
	authenticateFn func(ctx context.Context, token string, userID int64, name string) error
}

func (m *mockSessions) Resolve(ctx context.Context, token string) (*session.Session, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, token)
	}
	return nil, apperror.NewUnauthorized("session not found")
}

func (m *mockSessions) Issue(ctx context.Context) (*session.Session, error) {
	return nil, nil
}

func (m *mockSessions) Authenticate(ctx context.Context, token string, userID int64, name string) error {
	m.authCalls++
	m.authToken = token
	m.authUserID = userID
	m.authName = name
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, token, userID, name)
	}
	return nil
}

func (m *mockSessions) Deauthenticate(ctx context.Context, token string) error {
	return nil
}

// --- Test Helpers ---

func authenticatedResolve(userID int64) func(ctx context.Context, token string) (*session.Session, error) {
	return func(ctx context.Context, token string) (*session.Session, error) {
		uid := userID
		return &session.Session{ID: 1, Hash: token, IsAuth: true, UserID: &uid, Name: "caller"}, nil
	}
}

func anonymousResolve() func(ctx context.Context, token string) (*session.Session, error) {
	return func(ctx context.Context, token string) (*session.Session, error) {
		return &session.Session{ID: 1, Hash: token, IsAuth: false, Name: "Gecko-311"}, nil
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

// --- Register Tests ---

func TestRegister_SuccessLogsCallerIn(t *testing.T) {
	var stored *User
	repo := &mockRepo{
		createFn: func(ctx context.Context, u *User) error {
			stored = u
			u.ID = 4
			return nil
		},
		findByNameFn: func(ctx context.Context, name string) (*User, error) {
			return stored, nil
		},
	}
	sessions := &mockSessions{}

	svc := NewService(repo, sessions)
	u, err := svc.Register(context.Background(), "ana", "x", "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if u.Role != RoleNormal {
		t.Errorf("expected default role %q, got %q", RoleNormal, u.Role)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "x" {
		t.Error("expected a real password hash, not the plaintext")
	}

	// Registration ends with the login flow against the same session.
	if sessions.authCalls != 1 {
		t.Fatalf("expected 1 session authentication, got %d", sessions.authCalls)
	}
	if sessions.authToken != "tok" {
		t.Errorf("expected login against token %q, got %q", "tok", sessions.authToken)
	}
	if sessions.authUserID != 4 || sessions.authName != "ana" {
		t.Errorf("expected session bound to user 4/ana, got %d/%s", sessions.authUserID, sessions.authName)
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	repo := &mockRepo{
		nameExistsFn: func(ctx context.Context, name string) (bool, error) {
			return true, nil
		},
	}

	svc := NewService(repo, &mockSessions{})
	_, err := svc.Register(context.Background(), "ana", "x", "tok")
	assertAppError(t, err, 409)
}

// Two concurrent registrations can both pass the NameExists check; the loser
// of the insert race must still see a 409, not a 500.
func TestRegister_DuplicateNameInsertRace(t *testing.T) {
	repo := &mockRepo{
		nameExistsFn: func(ctx context.Context, name string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, u *User) error {
			return apperror.NewConflict("an account with this name already exists")
		},
	}
	sessions := &mockSessions{}

	svc := NewService(repo, sessions)
	_, err := svc.Register(context.Background(), "ana", "x", "tok")
	assertAppError(t, err, 409)
	if sessions.authCalls != 0 {
		t.Error("a failed registration must not authenticate the session")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := NewService(&mockRepo{}, &mockSessions{})

	if _, err := svc.Register(context.Background(), "", "x", "tok"); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := svc.Register(context.Background(), "ana", "", "tok"); err == nil {
		t.Error("expected error for empty password")
	}
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	hash, err := hashPassword("x")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	repo := &mockRepo{
		findByNameFn: func(ctx context.Context, name string) (*User, error) {
			return &User{ID: 4, Name: "ana", PasswordHash: hash, Role: RoleNormal}, nil
		},
	}
	sessions := &mockSessions{}

	svc := NewService(repo, sessions)
	u, err := svc.Login(context.Background(), "ana", "x", "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 4 {
		t.Errorf("expected user 4, got %d", u.ID)
	}
	if sessions.authCalls != 1 || sessions.authToken != "tok" {
		t.Error("expected the caller's current session to be authenticated in place")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := hashPassword("right")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	repo := &mockRepo{
		findByNameFn: func(ctx context.Context, name string) (*User, error) {
			return &User{ID: 4, Name: "ana", PasswordHash: hash}, nil
		},
	}
	sessions := &mockSessions{}

	svc := NewService(repo, sessions)
	_, err = svc.Login(context.Background(), "ana", "wrong", "tok")
	assertAppError(t, err, 401)
	if sessions.authCalls != 0 {
		t.Error("failed login must not touch the session")
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := NewService(&mockRepo{}, &mockSessions{})
	_, err := svc.Login(context.Background(), "ghost", "x", "tok")
	assertAppError(t, err, 401)
}

// --- List Tests ---

func TestList_RequiresAuthentication(t *testing.T) {
	sessions := &mockSessions{resolveFn: anonymousResolve()}
	svc := NewService(&mockRepo{}, sessions)
	_, err := svc.List(context.Background(), "tok")
	assertAppError(t, err, 401)
}

func TestList_Authenticated(t *testing.T) {
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id int64) (*User, error) {
			return &User{ID: id, Name: "caller", Role: RoleNormal}, nil
		},
		listFn: func(ctx context.Context) ([]User, error) {
			return []User{
				{ID: 1, Name: "ana", Role: RoleAdmin, CreatedAt: time.Now()},
				{ID: 2, Name: "bob", Role: RoleNormal, CreatedAt: time.Now()},
			}, nil
		},
	}
	sessions := &mockSessions{resolveFn: authenticatedResolve(2)}

	svc := NewService(repo, sessions)
	users, err := svc.List(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

// --- Delete Tests ---

func TestDelete_AnonymousCaller(t *testing.T) {
	sessions := &mockSessions{resolveFn: anonymousResolve()}
	svc := NewService(&mockRepo{}, sessions)
	err := svc.Delete(context.Background(), "tok", 9)
	assertAppError(t, err, 401)
}

func TestDelete_NonAdminForbidden(t *testing.T) {
	deleted := false
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id int64) (*User, error) {
			return &User{ID: id, Name: "caller", Role: RoleNormal}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	sessions := &mockSessions{resolveFn: authenticatedResolve(2)}

	svc := NewService(repo, sessions)
	err := svc.Delete(context.Background(), "tok", 9)
	assertAppError(t, err, 403)
	if deleted {
		t.Error("non-admin delete must leave the target row untouched")
	}
}

func TestDelete_AdminSucceeds(t *testing.T) {
	var deletedID int64
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id int64) (*User, error) {
			return &User{ID: id, Name: "root", Role: RoleAdmin}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}
	sessions := &mockSessions{resolveFn: authenticatedResolve(1)}

	svc := NewService(repo, sessions)
	if err := svc.Delete(context.Background(), "tok", 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedID != 9 {
		t.Errorf("expected user 9 deleted, got %d", deletedID)
	}
}
