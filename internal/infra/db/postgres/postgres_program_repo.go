package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
	"telegram-dance-technique/internal/infra/metrics"
)

// Ensure interface compliance
var _ repository.ProgramRepository = (*PostgresProgramRepo)(nil)

type PostgresProgramRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProgramRepo(pool *pgxpool.Pool) *PostgresProgramRepo {
	return &PostgresProgramRepo{pool: pool}
}

func (r *PostgresProgramRepo) Save(ctx context.Context, tx repository.Tx, p *model.Program) error {
	const sql = `
INSERT INTO programs (id, name, position, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
  SET name     = EXCLUDED.name,
      position = EXCLUDED.position;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := withRetry(ctx, "program.save", func() error {
		_, err := ex.Exec(ctx, sql, p.ID, p.Name, p.Position, p.CreatedAt)
		return err
	}); err != nil {
		return fmt.Errorf("Save program: %w", err)
	}
	return nil
}

func (r *PostgresProgramRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
	const sql = `
SELECT id, name, position, created_at
  FROM programs
 WHERE id = $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var p model.Program
	err = withRetry(ctx, "program.find", func() error {
		return ex.QueryRow(ctx, sql, id).Scan(&p.ID, &p.Name, &p.Position, &p.CreatedAt)
	})
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncCatalogLookup("program", "not_found")
			return nil, domain.ErrNotFound
		}
		metrics.IncCatalogLookup("program", "error")
		return nil, fmt.Errorf("FindByID program: %w", err)
	}
	metrics.IncCatalogLookup("program", "ok")
	return &p, nil
}

func (r *PostgresProgramRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Program, error) {
	const sql = `
SELECT id, name, position, created_at
  FROM programs
 ORDER BY position, name;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var out []*model.Program
	err = withRetry(ctx, "program.list", func() error {
		rows, err := ex.Query(ctx, sql)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var p model.Program
			if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.CreatedAt); err != nil {
				return err
			}
			out = append(out, &p)
		}
		return rows.Err()
	})
	if err != nil {
		metrics.IncCatalogLookup("program", "error")
		return nil, fmt.Errorf("ListAll programs: %w", err)
	}
	metrics.IncCatalogLookup("program", "ok")
	return out, nil
}

// exists reports whether a row with the given id is present.
func exists(ctx context.Context, ex executor, table, id string) (bool, error) {
	// table is a compile-time constant at every call site
	var ok bool
	err := ex.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1);`, id).Scan(&ok)
	if err != nil && err != pgx.ErrNoRows {
		return false, err
	}
	return ok, nil
}
