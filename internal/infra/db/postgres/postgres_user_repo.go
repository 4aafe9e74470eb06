package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const sql = `
INSERT INTO users (
  telegram_id, username, is_subscribed, free_figures_opened, registered_at, last_active_at
) VALUES (
  $1, $2, $3, $4, $5, $6
) ON CONFLICT (telegram_id) DO UPDATE SET
  username            = EXCLUDED.username,
  is_subscribed       = EXCLUDED.is_subscribed,
  free_figures_opened = EXCLUDED.free_figures_opened,
  last_active_at      = EXCLUDED.last_active_at;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := withRetry(ctx, "user.save", func() error {
		_, err := ex.Exec(ctx, sql, u.TelegramID, u.Username, u.IsSubscribed,
			u.FreeFiguresOpened, u.RegisteredAt, u.LastActiveAt)
		return err
	}); err != nil {
		return fmt.Errorf("Save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	const sql = `
SELECT telegram_id, username, is_subscribed, free_figures_opened, registered_at, last_active_at
  FROM users
 WHERE telegram_id = $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var u model.User
	err = withRetry(ctx, "user.find", func() error {
		return ex.QueryRow(ctx, sql, tgID).Scan(&u.TelegramID, &u.Username, &u.IsSubscribed,
			&u.FreeFiguresOpened, &u.RegisteredAt, &u.LastActiveAt)
	})
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByTelegramID user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepo) SetSubscribed(ctx context.Context, tx repository.Tx, tgID int64, subscribed bool) error {
	const sql = `UPDATE users SET is_subscribed = $2 WHERE telegram_id = $1;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	return withRetry(ctx, "user.set_subscribed", func() error {
		ct, err := ex.Exec(ctx, sql, tgID, subscribed)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	err = withRetry(ctx, "user.count", func() error {
		return ex.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
