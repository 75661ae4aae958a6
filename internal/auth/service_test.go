package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/kerbside-app/kerbside-backend/pkg/auth"
	"github.com/kerbside-app/kerbside-backend/pkg/auth/session"
	"github.com/kerbside-app/kerbside-backend/pkg/config"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "kerbside",
	ExpirationMinutes: 15,
}

type stubUserRepo struct {
	user       *models.User
	lastLogins int
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if r.user == nil || r.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return r.user, nil
}

func (r *stubUserRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error {
	r.lastLogins++
	return nil
}

type stubSessionManager struct {
	generated int
	revoked   []string
	rotateErr error
}

func (m *stubSessionManager) Generate(context.Context, string) (string, error) {
	m.generated++
	return "refresh-token", nil
}

func (m *stubSessionManager) Rotate(_ context.Context, _, _ string) (string, string, error) {
	if m.rotateErr != nil {
		return "", "", m.rotateErr
	}
	return session.NewAccessID(), "rotated-refresh-token", nil
}

func (m *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	m.revoked = append(m.revoked, accessID)
	return nil
}

func seedUser(t *testing.T, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        "rider@example.com",
		PasswordHash: hash,
		FirstName:    "Robin",
		LastName:     "Doe",
		Role:         enums.UserRoleCustomer,
		IsActive:     active,
	}
}

func newTestAuthService(t *testing.T, repo *stubUserRepo, mgr *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: mgr,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLogin(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{user: seedUser(t, "hunter2hunter2", true)}
	mgr := &stubSessionManager{}
	svc := newTestAuthService(t, repo, mgr)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Rider@Example.com ",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if result.User == nil || result.User.Email != "rider@example.com" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if repo.lastLogins != 1 {
		t.Fatalf("expected last login recorded once, got %d", repo.lastLogins)
	}
	if mgr.generated != 1 {
		t.Fatalf("expected one refresh session, got %d", mgr.generated)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, result.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != repo.user.ID || claims.Role != enums.UserRoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("expected session id in claims")
	}
}

func TestLoginRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		user     *models.User
		email    string
		password string
	}{
		{"unknown email", seedUser(t, "hunter2hunter2", true), "other@example.com", "hunter2hunter2"},
		{"wrong password", seedUser(t, "hunter2hunter2", true), "rider@example.com", "wrong-password"},
		{"inactive account", seedUser(t, "hunter2hunter2", false), "rider@example.com", "hunter2hunter2"},
		{"blank email", seedUser(t, "hunter2hunter2", true), "  ", "hunter2hunter2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestAuthService(t, &stubUserRepo{user: tc.user}, &stubSessionManager{})
			_, err := svc.Login(context.Background(), LoginRequest{Email: tc.email, Password: tc.password})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if typed.Message() != "invalid credentials" {
				t.Fatalf("credential failures must not leak detail, got %q", typed.Message())
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{user: seedUser(t, "hunter2hunter2", true)}
	mgr := &stubSessionManager{}
	svc := newTestAuthService(t, repo, mgr)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken != "rotated-refresh-token" {
		t.Fatalf("unexpected refresh result: %+v", refreshed)
	}
}

func TestRefreshInvalid(t *testing.T) {
	t.Parallel()

	repo := &stubUserRepo{user: seedUser(t, "hunter2hunter2", true)}

	t.Run("garbage access token", func(t *testing.T) {
		svc := newTestAuthService(t, repo, &stubSessionManager{})
		_, err := svc.Refresh(context.Background(), RefreshRequest{
			AccessToken:  "not-a-jwt",
			RefreshToken: "whatever",
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("rejected rotation", func(t *testing.T) {
		mgr := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
		svc := newTestAuthService(t, repo, mgr)

		login, err := svc.Login(context.Background(), LoginRequest{
			Email:    "rider@example.com",
			Password: "hunter2hunter2",
		})
		if err != nil {
			t.Fatalf("login: %v", err)
		}

		_, err = svc.Refresh(context.Background(), RefreshRequest{
			AccessToken:  login.AccessToken,
			RefreshToken: "stolen",
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	mgr := &stubSessionManager{}
	svc := newTestAuthService(t, &stubUserRepo{}, mgr)

	if err := svc.Logout(context.Background(), "session-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(mgr.revoked) != 1 || mgr.revoked[0] != "session-1" {
		t.Fatalf("unexpected revocations: %v", mgr.revoked)
	}

	err := svc.Logout(context.Background(), " ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
