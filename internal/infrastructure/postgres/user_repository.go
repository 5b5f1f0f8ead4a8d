package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/motormarket/user-service/internal/domain/entity"
	"github.com/motormarket/user-service/internal/domain/repository"
)

const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, type, phone, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.Type, u.Phone, u.AvatarURL)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isPGCode(err, pgUniqueViolation) {
			return repository.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, type, phone, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Type, &u.Phone,
		&u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	favs, err := r.favoriteIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Favorites = favs
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, type, phone, avatar_url, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Type, &u.Phone,
		&u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, type = $4, phone = $5, avatar_url = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.Password, u.Name, u.Type, u.Phone, u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		if isPGCode(err, pgUniqueViolation) {
			return repository.ErrEmailTaken
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddFavorite is a single conditional insert; the composite primary key on
// (user_id, car_id) makes the duplicate check and the append one atomic step.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, carID string) error {
	res, err := r.pool.Exec(ctx, `
		INSERT INTO user_favorites (user_id, car_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, car_id) DO NOTHING
	`, userID, carID)
	if err != nil {
		if isPGCode(err, pgFKViolation) {
			return repository.ErrNotFound
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrDuplicateFavorite
	}
	return nil
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, carID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM user_favorites
		WHERE user_id = $1 AND car_id = $2
	`, userID, carID)
	return err
}

// favoriteIDs returns the user's favorite car ids in insertion order.
func (r *UserRepository) favoriteIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT car_id
		FROM user_favorites
		WHERE user_id = $1
		ORDER BY seq
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func isPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

var _ repository.UserRepository = (*UserRepository)(nil)
