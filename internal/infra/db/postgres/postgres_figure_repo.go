package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
	"telegram-dance-technique/internal/infra/metrics"
)

var _ repository.FigureRepository = (*PostgresFigureRepo)(nil)

type PostgresFigureRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresFigureRepo(pool *pgxpool.Pool) *PostgresFigureRepo {
	return &PostgresFigureRepo{pool: pool}
}

func (r *PostgresFigureRepo) Save(ctx context.Context, tx repository.Tx, f *model.Figure) error {
	const sql = `
INSERT INTO figures (id, dance_id, name, position, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
  SET dance_id = EXCLUDED.dance_id,
      name     = EXCLUDED.name,
      position = EXCLUDED.position;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := withRetry(ctx, "figure.save", func() error {
		_, err := ex.Exec(ctx, sql, f.ID, f.DanceID, f.Name, f.Position, f.CreatedAt)
		return err
	}); err != nil {
		return fmt.Errorf("Save figure: %w", err)
	}
	return nil
}

func (r *PostgresFigureRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Figure, error) {
	const sql = `
SELECT id, dance_id, name, position, created_at
  FROM figures
 WHERE id = $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var f model.Figure
	err = withRetry(ctx, "figure.find", func() error {
		return ex.QueryRow(ctx, sql, id).Scan(&f.ID, &f.DanceID, &f.Name, &f.Position, &f.CreatedAt)
	})
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncCatalogLookup("figure", "not_found")
			return nil, domain.ErrNotFound
		}
		metrics.IncCatalogLookup("figure", "error")
		return nil, fmt.Errorf("FindByID figure: %w", err)
	}
	metrics.IncCatalogLookup("figure", "ok")
	return &f, nil
}

// ListByDance returns the figures of a dance in stored display order.
// A missing dance yields ErrNotFound.
func (r *PostgresFigureRepo) ListByDance(ctx context.Context, tx repository.Tx, danceID string) ([]*model.Figure, error) {
	const sql = `
SELECT id, dance_id, name, position, created_at
  FROM figures
 WHERE dance_id = $1
 ORDER BY position, name;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var out []*model.Figure
	err = withRetry(ctx, "figure.list", func() error {
		ok, err := exists(ctx, ex, "dances", danceID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		rows, err := ex.Query(ctx, sql, danceID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var f model.Figure
			if err := rows.Scan(&f.ID, &f.DanceID, &f.Name, &f.Position, &f.CreatedAt); err != nil {
				return err
			}
			out = append(out, &f)
		}
		return rows.Err()
	})
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncCatalogLookup("figure", "not_found")
			return nil, domain.ErrNotFound
		}
		metrics.IncCatalogLookup("figure", "error")
		return nil, fmt.Errorf("ListByDance figures: %w", err)
	}
	metrics.IncCatalogLookup("figure", "ok")
	return out, nil
}

func (r *PostgresFigureRepo) SaveVersion(ctx context.Context, tx repository.Tx, v *model.FigureVersion) error {
	const sql = `
INSERT INTO figure_versions (id, figure_id, author_id, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (figure_id, author_id) DO NOTHING;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := withRetry(ctx, "version.save", func() error {
		_, err := ex.Exec(ctx, sql, v.ID, v.FigureID, v.AuthorID, v.CreatedAt)
		return err
	}); err != nil {
		return fmt.Errorf("SaveVersion: %w", err)
	}
	return nil
}

func (r *PostgresFigureRepo) SaveBlock(ctx context.Context, tx repository.Tx, b *model.TechniqueBlock) error {
	const sql = `
INSERT INTO technique_blocks (id, version_id, block, content, position)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
  SET block    = EXCLUDED.block,
      content  = EXCLUDED.content,
      position = EXCLUDED.position;
`
	content, err := json.Marshal(map[string]string{"text": b.Text})
	if err != nil {
		return fmt.Errorf("SaveBlock marshal content: %w", err)
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := withRetry(ctx, "block.save", func() error {
		_, err := ex.Exec(ctx, sql, b.ID, b.VersionID, b.Kind, content, b.Position)
		return err
	}); err != nil {
		return fmt.Errorf("SaveBlock: %w", err)
	}
	return nil
}

// ListVersionAuthors returns the authors that described a figure,
// ordered by name. A missing figure yields ErrNotFound.
func (r *PostgresFigureRepo) ListVersionAuthors(ctx context.Context, tx repository.Tx, figureID string) ([]*model.Author, error) {
	const sql = `
SELECT a.id, a.name, a.source, a.created_at
  FROM figure_versions fv
  JOIN authors a ON a.id = fv.author_id
 WHERE fv.figure_id = $1
 ORDER BY a.name;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var out []*model.Author
	err = withRetry(ctx, "version.authors", func() error {
		ok, err := exists(ctx, ex, "figures", figureID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		rows, err := ex.Query(ctx, sql, figureID)
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
		if err == domain.ErrNotFound {
			metrics.IncCatalogLookup("author", "not_found")
			return nil, domain.ErrNotFound
		}
		metrics.IncCatalogLookup("author", "error")
		return nil, fmt.Errorf("ListVersionAuthors: %w", err)
	}
	metrics.IncCatalogLookup("author", "ok")
	return out, nil
}

// ListVersionBlocks returns the ordered technique blocks of one
// author's version of a figure. A missing version yields ErrNotFound;
// a version without blocks yields an empty slice.
func (r *PostgresFigureRepo) ListVersionBlocks(ctx context.Context, tx repository.Tx, figureID, authorID string) ([]*model.TechniqueBlock, error) {
	const versionSQL = `
SELECT id FROM figure_versions WHERE figure_id = $1 AND author_id = $2;
`
	const blocksSQL = `
SELECT id, version_id, block, content, position
  FROM technique_blocks
 WHERE version_id = $1
 ORDER BY position;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var out []*model.TechniqueBlock
	err = withRetry(ctx, "version.blocks", func() error {
		var versionID string
		if err := ex.QueryRow(ctx, versionSQL, figureID, authorID).Scan(&versionID); err != nil {
			return err
		}
		rows, err := ex.Query(ctx, blocksSQL, versionID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var (
				b   model.TechniqueBlock
				raw []byte
			)
			if err := rows.Scan(&b.ID, &b.VersionID, &b.Kind, &raw, &b.Position); err != nil {
				return err
			}
			var content struct {
				Text string `json:"text"`
			}
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &content); err != nil {
					return fmt.Errorf("block %s content: %w", b.ID, domain.ErrStoreFailure)
				}
			}
			b.Text = content.Text
			out = append(out, &b)
		}
		return rows.Err()
	})
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncCatalogLookup("figure", "not_found")
			return nil, domain.ErrNotFound
		}
		metrics.IncCatalogLookup("figure", "error")
		return nil, fmt.Errorf("ListVersionBlocks: %w", err)
	}
	metrics.IncCatalogLookup("figure", "ok")
	return out, nil
}
