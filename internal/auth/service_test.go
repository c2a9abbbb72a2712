package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/lebraggaa/spool-tracker/pkg/auth"
	"github.com/lebraggaa/spool-tracker/pkg/auth/session"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
	pkgerrors "github.com/lebraggaa/spool-tracker/pkg/errors"
	"github.com/lebraggaa/spool-tracker/pkg/security"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	user        *models.User
	lastLoginAt *time.Time
}

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.user
	return &copy, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ uint, at time.Time) error {
	s.lastLoginAt = &at
	return nil
}

type stubSessionManager struct {
	refreshToken  string
	generatedFor  string
	rotatedFrom   string
	revokedID     string
	rotateFailure error
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	s.generatedFor = accessID
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateFailure != nil {
		return "", "", s.rotateFailure
	}
	if provided != s.refreshToken {
		return "", "", session.ErrInvalidRefreshToken
	}
	s.rotatedFrom = oldAccessID
	return "rotated-access-id", "rotated-refresh-token", nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revokedID = accessID
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "spool-tracker",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func buildTestService(t *testing.T, user *models.User) (Service, *stubUserRepo, *stubSessionManager) {
	t.Helper()
	userRepo := &stubUserRepo{user: user}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, userRepo, sessionMgr
}

func TestServiceLoginSuccess(t *testing.T) {
	password := "operator-secret"
	user := &models.User{
		ID:           4,
		Username:     "operator1",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleOperator,
	}
	svc, userRepo, sessionMgr := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "operator1", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 4 || claims.Role != enums.UserRoleOperator {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID != sessionMgr.generatedFor {
		t.Fatalf("jti %q does not match session access id %q", claims.ID, sessionMgr.generatedFor)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if resp.User == nil || resp.User.Username != "operator1" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if userRepo.lastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           1,
		Username:     "operator1",
		PasswordHash: mustHashPassword(t, "right"),
		Role:         enums.UserRoleOperator,
	}
	svc, _, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "operator1", Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginRejectsUnknownUser(t *testing.T) {
	svc, _, _ := buildTestService(t, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "whatever"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	password := "operator-secret"
	user := &models.User{
		ID:           4,
		Username:     "operator1",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleOperator,
	}
	svc, _, sessionMgr := buildTestService(t, user)

	login, err := svc.Login(context.Background(), LoginRequest{Username: "operator1", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID != "rotated-access-id" {
		t.Fatalf("expected rotated jti, got %q", claims.ID)
	}
	if claims.UserID != 4 || claims.Username != "operator1" {
		t.Fatalf("rotated claims lost identity: %+v", claims)
	}
	if resp.RefreshToken != "rotated-refresh-token" {
		t.Fatalf("unexpected rotated refresh token %q", resp.RefreshToken)
	}
	if sessionMgr.rotatedFrom != sessionMgr.generatedFor {
		t.Fatalf("rotation used wrong access id: %q vs %q", sessionMgr.rotatedFrom, sessionMgr.generatedFor)
	}
}

func TestServiceRefreshRejectsBadRefreshToken(t *testing.T) {
	password := "operator-secret"
	user := &models.User{
		ID:           4,
		Username:     "operator1",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleOperator,
	}
	svc, _, _ := buildTestService(t, user)

	login, err := svc.Login(context.Background(), LoginRequest{Username: "operator1", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "stolen",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	svc, _, sessionMgr := buildTestService(t, &models.User{ID: 1, Username: "x", PasswordHash: "h", Role: enums.UserRoleAdmin})

	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessionMgr.revokedID != "access-1" {
		t.Fatalf("expected access-1 to be revoked, got %q", sessionMgr.revokedID)
	}

	if err := svc.Logout(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}
