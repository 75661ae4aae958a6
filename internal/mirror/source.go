package mirror

import (
	"context"

	"github.com/kerbside-app/kerbside-backend/internal/inventory"
	"github.com/kerbside-app/kerbside-backend/internal/reservations"
	"github.com/kerbside-app/kerbside-backend/internal/users"
	"github.com/kerbside-app/kerbside-backend/pkg/db/models"
)

// RepoSource adapts the domain repositories to the snapshot surface.
type RepoSource struct {
	Reservations *reservations.Repository
	Items        *inventory.Repository
	Users        *users.Repository
}

func (s RepoSource) ListAllReservations(ctx context.Context) ([]models.Reservation, error) {
	return s.Reservations.ListAll(ctx)
}

func (s RepoSource) ListAllItems(ctx context.Context) ([]models.Item, error) {
	return s.Items.ListAll(ctx)
}

func (s RepoSource) ListAllUsers(ctx context.Context) ([]models.User, error) {
	return s.Users.List(ctx)
}
