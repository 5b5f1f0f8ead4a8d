package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/motormarket/user-service/internal/domain/entity"
	"github.com/motormarket/user-service/internal/domain/repository"
)

type CarRepository struct {
	pool *pgxpool.Pool
}

func NewCarRepository(pool *pgxpool.Pool) *CarRepository {
	return &CarRepository{pool: pool}
}

const carColumns = `id, owner_id, title, make, model, year, price_cents, created_at, updated_at`

// GetByIDs resolves car references, preserving the order of ids. Ids without
// a matching row are skipped.
func (r *CarRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Car, error) {
	if len(ids) == 0 {
		return []entity.Car{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+carColumns+`
		FROM cars
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]entity.Car, len(ids))
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]entity.Car, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CarRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Car, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+carColumns+`
		FROM cars
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Car{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (entity.Car, error) {
	var c entity.Car
	err := row.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Make, &c.Model, &c.Year,
		&c.PriceCents, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

var _ repository.CarRepository = (*CarRepository)(nil)
