package application

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/motormarket/user-service/internal/domain/entity"
	repo "github.com/motormarket/user-service/internal/domain/repository"
)

// FavoritesService manages the per-user set of bookmarked cars and the
// read-only view of owned listings. Redis is optional; when present it is
// used to invalidate the cached profile view, since favorites are part of it.
type FavoritesService struct {
	Users  repo.UserRepository
	Cars   repo.CarRepository
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewFavoritesService(users repo.UserRepository, cars repo.CarRepository, logger *logrus.Logger) *FavoritesService {
	return &FavoritesService{Users: users, Cars: cars, Logger: logger}
}

// AddFavorite appends carID to the user's favorites. A duplicate add is
// rejected, not absorbed; the store enforces this atomically, so two
// concurrent adds of the same car cannot both succeed.
func (s *FavoritesService) AddFavorite(ctx context.Context, userID, carID string) *Error {
	if appErr := s.requireUser(ctx, userID); appErr != nil {
		return appErr
	}
	if err := s.Users.AddFavorite(ctx, userID, carID); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateFavorite):
			return Conflict("Car is already in favorites")
		case errors.Is(err, repo.ErrNotFound):
			return NotFound("Car not found")
		default:
			s.logErr(err, "add favorite failed")
			return Internal(err)
		}
	}
	invalidateProfile(ctx, s.Redis, s.Logger, userID)
	return nil
}

// RemoveFavorite removes carID from the user's favorites. An empty set and a
// set that lacks carID fail with distinct messages.
func (s *FavoritesService) RemoveFavorite(ctx context.Context, userID, carID string) *Error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("User not found")
		}
		s.logErr(err, "remove favorite: lookup failed")
		return Internal(err)
	}
	if len(u.Favorites) == 0 {
		return Conflict("No favorites to remove")
	}
	if !contains(u.Favorites, carID) {
		return Conflict("Car is not in favorites")
	}
	if err := s.Users.RemoveFavorite(ctx, userID, carID); err != nil {
		s.logErr(err, "remove favorite failed")
		return Internal(err)
	}
	invalidateProfile(ctx, s.Redis, s.Logger, userID)
	return nil
}

// ListFavorites resolves the user's favorite car ids to full records,
// preserving insertion order.
func (s *FavoritesService) ListFavorites(ctx context.Context, userID string) ([]entity.Car, *Error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFound("User not found")
		}
		s.logErr(err, "list favorites: lookup failed")
		return nil, Internal(err)
	}
	cars, err := s.Cars.GetByIDs(ctx, u.Favorites)
	if err != nil {
		s.logErr(err, "list favorites: resolve failed")
		return nil, Internal(err)
	}
	return cars, nil
}

// ListOwnedCars returns the listings owned by the user.
func (s *FavoritesService) ListOwnedCars(ctx context.Context, userID string) ([]entity.Car, *Error) {
	if appErr := s.requireUser(ctx, userID); appErr != nil {
		return nil, appErr
	}
	cars, err := s.Cars.ListByOwner(ctx, userID)
	if err != nil {
		s.logErr(err, "list owned cars failed")
		return nil, Internal(err)
	}
	return cars, nil
}

func (s *FavoritesService) requireUser(ctx context.Context, userID string) *Error {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("User not found")
		}
		s.logErr(err, "user lookup failed")
		return Internal(err)
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *FavoritesService) logErr(err error, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).Error(msg)
	}
}
