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

var _ repository.AuthorRepository = (*PostgresAuthorRepo)(nil)

type PostgresAuthorRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAuthorRepo(pool *pgxpool.Pool) *PostgresAuthorRepo {
	return &PostgresAuthorRepo{pool: pool}
}

func (r *PostgresAuthorRepo) Save(ctx context.Context, tx repository.Tx, a *model.Author) error {
	const sql = `
INSERT INTO authors (id, name, source, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
  SET name   = EXCLUDED.name,
      source = EXCLUDED.source;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := withRetry(ctx, "author.save", func() error {
		_, err := ex.Exec(ctx, sql, a.ID, a.Name, a.Source, a.CreatedAt)
		return err
	}); err != nil {
		return fmt.Errorf("Save author: %w", err)
	}
	return nil
}

func (r *PostgresAuthorRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Author, error) {
	const sql = `
SELECT id, name, source, created_at
  FROM authors
 WHERE id = $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var a model.Author
	err = withRetry(ctx, "author.find", func() error {
		return ex.QueryRow(ctx, sql, id).Scan(&a.ID, &a.Name, &a.Source, &a.CreatedAt)
	})
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncCatalogLookup("author", "not_found")
			return nil, domain.ErrNotFound
		}
		metrics.IncCatalogLookup("author", "error")
		return nil, fmt.Errorf("FindByID author: %w", err)
	}
	metrics.IncCatalogLookup("author", "ok")
	return &a, nil
}

func (r *PostgresAuthorRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Author, error) {
	const sql = `
SELECT id, name, source, created_at
  FROM authors
 ORDER BY name;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var out []*model.Author
	err = withRetry(ctx, "author.list", func() error {
		rows, err := ex.Query(ctx, sql)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var a model.Author
			if err := rows.Scan(&a.ID, &a.Name, &a.Source, &a.CreatedAt); err != nil {
				return err
			}
			out = append(out, &a)
		}
		return rows.Err()
	})
	if err != nil {
		metrics.IncCatalogLookup("author", "error")
		return nil, fmt.Errorf("ListAll authors: %w", err)
	}
	metrics.IncCatalogLookup("author", "ok")
	return out, nil
}
