package repository

import (
	"context"
	"errors"

	"github.com/motormarket/user-service/internal/domain/entity"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateFavorite is returned by AddFavorite when the car is already in
// the user's favorites. The store reports this atomically so concurrent adds
// of the same car cannot both succeed.
var ErrDuplicateFavorite = errors.New("duplicate favorite")

// ErrEmailTaken is returned by Create and Update when the email unique
// constraint is violated. Services pre-check for a friendlier message; this
// covers the race between check and write.
var ErrEmailTaken = errors.New("email taken")

// UserRepository defines user persistence. GetByID loads the favorites
// relation (ids only, insertion order).
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	AddFavorite(ctx context.Context, userID, carID string) error
	RemoveFavorite(ctx context.Context, userID, carID string) error
}

// CarRepository resolves car references for favorites and ownership reads.
type CarRepository interface {
	// GetByIDs returns the cars for ids, preserving the order of ids.
	// Ids without a matching record are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]entity.Car, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Car, error)
}
