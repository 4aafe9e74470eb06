package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
	"telegram-dance-technique/internal/infra/metrics"
)

var _ repository.DanceRepository = (*PostgresDanceRepo)(nil)

type PostgresDanceRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresDanceRepo(pool *pgxpool.Pool) *PostgresDanceRepo {
	return &PostgresDanceRepo{pool: pool}
}

func (r *PostgresDanceRepo) Save(ctx context.Context, tx repository.Tx, d *model.Dance) error {
	const sql = `
INSERT INTO dances (id, program_id, name, position, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
  SET program_id = EXCLUDED.program_id,
      name       = EXCLUDED.name,
      position   = EXCLUDED.position;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := withRetry(ctx, "dance.save", func() error {
		_, err := ex.Exec(ctx, sql, d.ID, d.ProgramID, d.Name, d.Position, d.CreatedAt)
		return err
	}); err != nil {
		return fmt.Errorf("Save dance: %w", err)
	}
	return nil
}

func (r *PostgresDanceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Dance, error) {
	const sql = `
SELECT id, program_id, name, position, created_at
  FROM dances
 WHERE id = $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var d model.Dance
	err = withRetry(ctx, "dance.find", func() error {
		return ex.QueryRow(ctx, sql, id).Scan(&d.ID, &d.ProgramID, &d.Name, &d.Position, &d.CreatedAt)
	})
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncCatalogLookup("dance", "not_found")
			return nil, domain.ErrNotFound
		}
		metrics.IncCatalogLookup("dance", "error")
		return nil, fmt.Errorf("FindByID dance: %w", err)
	}
	metrics.IncCatalogLookup("dance", "ok")
	return &d, nil
}

// ListByProgram returns the dances of a program ordered by display
// position. A missing program yields ErrNotFound, so callers can tell
// "unknown program" from "program with no dances yet".
func (r *PostgresDanceRepo) ListByProgram(ctx context.Context, tx repository.Tx, programID string) ([]*model.Dance, error) {
	const sql = `
SELECT id, program_id, name, position, created_at
  FROM dances
 WHERE program_id = $1
 ORDER BY position, name;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var out []*model.Dance
	err = withRetry(ctx, "dance.list", func() error {
		ok, err := exists(ctx, ex, "programs", programID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		rows, err := ex.Query(ctx, sql, programID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var d model.Dance
			if err := rows.Scan(&d.ID, &d.ProgramID, &d.Name, &d.Position, &d.CreatedAt); err != nil {
				return err
			}
			out = append(out, &d)
		}
		return rows.Err()
	})
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncCatalogLookup("dance", "not_found")
			return nil, domain.ErrNotFound
		}
		metrics.IncCatalogLookup("dance", "error")
		return nil, fmt.Errorf("ListByProgram dances: %w", err)
	}
	metrics.IncCatalogLookup("dance", "ok")
	return out, nil
}
