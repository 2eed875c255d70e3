package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL registrant repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) SaveAll(ctx context.Context, registrants []Registrant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting registrant save: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, reg := range registrants {
		_, err := tx.Exec(ctx,
			`INSERT INTO cvm_registrants (cnpj, name, updated_at)
			 VALUES ($1, $2, NOW())
			 ON CONFLICT (cnpj) DO UPDATE SET name = $2, updated_at = NOW()`,
			reg.CNPJ, reg.Name)
		if err != nil {
			return fmt.Errorf("saving registrant %s: %w", reg.CNPJ, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing registrant save: %w", err)
	}
	return nil
}

func (r *PgRepository) LoadAll(ctx context.Context) ([]Registrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT cnpj, name FROM cvm_registrants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("loading registrants: %w", err)
	}
	defer rows.Close()

	var registrants []Registrant
	for rows.Next() {
		var reg Registrant
		if err := rows.Scan(&reg.CNPJ, &reg.Name); err != nil {
			return nil, fmt.Errorf("scanning registrant: %w", err)
		}
		registrants = append(registrants, reg)
	}
	return registrants, rows.Err()
}
