package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/users"
	pkgAuth "github.com/sathwikmerugu45/E-Commerce-Website/pkg/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/auth/session"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "shophub",
	ExpirationMinutes: 30,
}

var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func buildTestService(t *testing.T, repo *stubUserRepo, hooks ...SignOutHook) (Service, *stubSessionManager) {
	t.Helper()
	sessions := &stubSessionManager{active: map[string]session.Owner{}}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPasswordCfg,
		SignOutHooks:   hooks,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordCfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestServiceLoginIssuesResolvableSession(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: mustHashPassword(t, "correct-horse"), IsActive: true}
	svc, _ := buildTestService(t, &stubUserRepo{users: []*models.User{user}})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ADA@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.RefreshToken == "" || resp.AccessToken == "" {
		t.Fatalf("expected tokens, got %+v", resp)
	}
	if resp.User == nil || resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}

	sess, err := svc.Resolve(context.Background(), resp.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sess.UserID != user.ID || sess.Email != user.Email {
		t.Fatalf("unexpected session %+v", sess)
	}
	if sess.AccessToken != resp.AccessToken {
		t.Fatalf("session should carry the bearer token")
	}
	if sess.Expired(time.Now()) {
		t.Fatalf("fresh session should not be expired")
	}
}

func TestServiceLoginRejectsBadPassword(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: mustHashPassword(t, "correct-horse"), IsActive: true}
	svc, _ := buildTestService(t, &stubUserRepo{users: []*models.User{user}})

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong-horse"})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestServiceLoginUpgradesWeakHash(t *testing.T) {
	weak := testPasswordCfg
	weak.ArgonMemoryKB = 4096
	oldHash, err := security.HashPassword("correct-horse", weak)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: oldHash, IsActive: true}
	svc, _ := buildTestService(t, &stubUserRepo{users: []*models.User{user}})

	if _, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct-horse"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.PasswordHash == oldHash {
		t.Fatalf("expected hash to be upgraded")
	}
	if security.NeedsRehash(user.PasswordHash, testPasswordCfg) {
		t.Fatalf("upgraded hash should match current params")
	}
}

func TestServiceLogoutRevokesAndRunsHooks(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: mustHashPassword(t, "correct-horse"), IsActive: true}
	var dropped []uuid.UUID
	hook := func(ctx context.Context, userID uuid.UUID) { dropped = append(dropped, userID) }
	svc, _ := buildTestService(t, &stubUserRepo{users: []*models.User{user}}, hook)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), resp.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(dropped) != 1 || dropped[0] != user.ID {
		t.Fatalf("expected sign-out hook for %s, got %v", user.ID, dropped)
	}

	_, err = svc.Resolve(context.Background(), resp.AccessToken)
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("revoked session must not resolve, got %v", err)
	}
}

func TestServiceRefreshRotatesTokens(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: mustHashPassword(t, "correct-horse"), IsActive: true}
	svc, _ := buildTestService(t, &stubUserRepo{users: []*models.User{user}})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), resp.AccessToken, "not-the-token"); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for wrong refresh token, got %v", err)
	}

	pair, err := svc.Refresh(context.Background(), resp.AccessToken, resp.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("refreshed token lost identity: %+v", claims)
	}
	if _, err := svc.Resolve(context.Background(), resp.AccessToken); err == nil {
		t.Fatalf("old access token should no longer resolve")
	}
}

func TestServiceRegister(t *testing.T) {
	repo := &stubUserRepo{}
	svc, _ := buildTestService(t, repo)

	dto, err := svc.Register(context.Background(), RegisterRequest{Email: " New@Example.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Email != "new@example.com" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}
	if len(repo.users) != 1 || strings.Contains(repo.users[0].PasswordHash, "long-enough") {
		t.Fatalf("expected a single user with hashed password")
	}

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "new@example.com", Password: "long-enough"})
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "short@example.com", Password: "short"})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestRequireSession(t *testing.T) {
	now := time.Now()
	if err := RequireSession(nil, now); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for nil session, got %v", err)
	}
	expired := &Session{UserID: uuid.New(), ExpiresAt: now.Add(-time.Minute)}
	if err := RequireSession(expired, now); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for expired session, got %v", err)
	}
	live := &Session{UserID: uuid.New(), ExpiresAt: now.Add(time.Minute)}
	if err := RequireSession(live, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := WithSession(context.Background(), live)
	got, ok := SessionFromContext(ctx)
	if !ok || got != live {
		t.Fatalf("expected session from context")
	}
	if _, ok := SessionFromContext(context.Background()); ok {
		t.Fatalf("expected no session on bare context")
	}
}

type stubUserRepo struct {
	users []*models.User
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	s.users = append(s.users, user)
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, u := range s.users {
		if u.ID == id {
			u.LastLoginAt = &at
			return nil
		}
	}
	return errors.New("user not found")
}

func (s *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	for _, u := range s.users {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return errors.New("user not found")
}

type stubSessionManager struct {
	active map[string]session.Owner
	tokens map[string]string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string, owner session.Owner) (string, error) {
	if s.tokens == nil {
		s.tokens = map[string]string{}
	}
	token := "refresh-" + accessID
	s.active[accessID] = owner
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, session.Owner, error) {
	owner, ok := s.active[oldAccessID]
	if !ok || s.tokens[oldAccessID] != provided {
		return "", "", session.Owner{}, session.ErrInvalidRefreshToken
	}
	delete(s.active, oldAccessID)
	newID := session.NewAccessID()
	token, _ := s.Generate(ctx, newID, owner)
	return newID, token, owner, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.active, accessID)
	return nil
}

func (s *stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	_, ok := s.active[accessID]
	return ok, nil
}
