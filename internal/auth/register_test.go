package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/pkg/config"
	"github.com/kerbside-app/kerbside-backend/pkg/db"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/security"
)

func newRegisterService(t *testing.T) RegisterService {
	t.Helper()
	dsn := "file:register_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewRegisterService(RegisterServiceParams{
		DB: db.NewWithConn(conn),
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc := newRegisterService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Robin",
		LastName:  "Doe",
		Email:     "Robin.Doe@Example.COM",
		Password:  "a-long-password",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User == nil {
		t.Fatal("expected created user")
	}
	if result.User.Email != "robin.doe@example.com" {
		t.Fatalf("expected lowercased email, got %q", result.User.Email)
	}
	if result.User.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", result.User.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newRegisterService(t)
	ctx := context.Background()

	req := RegisterRequest{
		FirstName: "Robin",
		LastName:  "Doe",
		Email:     "robin@example.com",
		Password:  "a-long-password",
	}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	// Same address with different casing is still a duplicate.
	req.Email = "ROBIN@example.com"
	_, err := svc.Register(ctx, req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDuplicate {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc := newRegisterService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"blank email", RegisterRequest{FirstName: "A", LastName: "B", Password: "a-long-password"}},
		{"blank names", RegisterRequest{Email: "x@example.com", Password: "a-long-password"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisteredPasswordVerifies(t *testing.T) {
	t.Parallel()

	dsn := "file:register_verify_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewRegisterService(RegisterServiceParams{
		DB: db.NewWithConn(conn),
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Robin",
		LastName:  "Doe",
		Email:     "robin@example.com",
		Password:  "a-long-password",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	var stored models.User
	if err := conn.First(&stored, "email = ?", "robin@example.com").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	ok, err := security.VerifyPassword("a-long-password", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
}
