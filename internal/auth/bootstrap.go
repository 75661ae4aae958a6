package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kerbside-app/kerbside-backend/internal/users"
	"github.com/kerbside-app/kerbside-backend/pkg/config"
	"github.com/kerbside-app/kerbside-backend/pkg/db"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
	"github.com/kerbside-app/kerbside-backend/pkg/enums"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/security"
)

// EnsureAdmin seeds the administrator account when bootstrap credentials are
// configured. An existing account under the configured email is promoted back
// to admin and reactivated, so the seeded admin cannot lose its role.
func EnsureAdmin(ctx context.Context, client *db.Client, cfg config.BootstrapConfig, passwordCfg config.PasswordConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}

	return client.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		existing, err := userRepo.FindByEmail(ctx, email)
		if err == nil {
			if existing.Role == enums.UserRoleAdmin && existing.IsActive {
				return nil
			}
			return tx.WithContext(ctx).
				Model(&models.User{}).
				Where("id = ?", existing.ID).
				Updates(map[string]any{"role": enums.UserRoleAdmin, "is_active": true}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check admin account")
		}

		hash, err := security.HashPassword(cfg.AdminPassword, passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
		}
		if _, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: hash,
			FirstName:    "Kerbside",
			LastName:     "Admin",
			Role:         enums.UserRoleAdmin,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin account")
		}
		return nil
	})
}
