package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
)

var _ repository.FigureAccessRepository = (*PostgresFigureAccessRepo)(nil)

type PostgresFigureAccessRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresFigureAccessRepo(pool *pgxpool.Pool) *PostgresFigureAccessRepo {
	return &PostgresFigureAccessRepo{pool: pool}
}

func (r *PostgresFigureAccessRepo) Save(ctx context.Context, tx repository.Tx, a *model.FigureAccess) error {
	const sql = `
INSERT INTO user_figure_accesses (user_id, figure_id, opened_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, figure_id) DO NOTHING;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := withRetry(ctx, "access.save", func() error {
		_, err := ex.Exec(ctx, sql, a.UserID, a.FigureID, a.OpenedAt)
		return err
	}); err != nil {
		return fmt.Errorf("Save figure access: %w", err)
	}
	return nil
}

func (r *PostgresFigureAccessRepo) Exists(ctx context.Context, tx repository.Tx, userID int64, figureID string) (bool, error) {
	const sql = `
SELECT EXISTS (
  SELECT 1 FROM user_figure_accesses WHERE user_id = $1 AND figure_id = $2
);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	var ok bool
	err = withRetry(ctx, "access.exists", func() error {
		return ex.QueryRow(ctx, sql, userID, figureID).Scan(&ok)
	})
	if err != nil {
		return false, fmt.Errorf("Exists figure access: %w", err)
	}
	return ok, nil
}

func (r *PostgresFigureAccessRepo) CountByUser(ctx context.Context, tx repository.Tx, userID int64) (int, error) {
	const sql = `SELECT COUNT(*) FROM user_figure_accesses WHERE user_id = $1;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	err = withRetry(ctx, "access.count", func() error {
		return ex.QueryRow(ctx, sql, userID).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("CountByUser figure access: %w", err)
	}
	return n, nil
}
