package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
	"telegram-dance-technique/internal/infra/metrics"
	red "telegram-dance-technique/internal/infra/redis"
)

var _ repository.FigureRepository = (*figureRepoCacheDecorator)(nil)

// figureRepoCacheDecorator caches the per-dance figure listing.
// Only successful listings are cached, so a bogus dance id still
// surfaces ErrNotFound instead of a stale empty menu.
type figureRepoCacheDecorator struct {
	inner repository.FigureRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewFigureRepoCacheDecorator(inner repository.FigureRepository, cache red.RedisClient, ttl time.Duration) repository.FigureRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &figureRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func danceFiguresKey(danceID string) string { return fmt.Sprintf("figures:dance:%s", danceID) }

func (d *figureRepoCacheDecorator) ListByDance(ctx context.Context, tx repository.Tx, danceID string) ([]*model.Figure, error) {
	key := danceFiguresKey(danceID)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("figure_list", "hit")
		var figures []*model.Figure
		if json.Unmarshal([]byte(val), &figures) == nil {
			return figures, nil
		}
	}

	metrics.IncCacheRequest("figure_list", "miss")
	figures, err := d.inner.ListByDance(ctx, tx, danceID)
	if err != nil {
		return nil, err
	}
	if len(figures) > 0 {
		bytes, _ := json.Marshal(figures)
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return figures, nil
}

func (d *figureRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, f *model.Figure) error {
	_ = d.cache.Del(ctx, danceFiguresKey(f.DanceID))
	return d.inner.Save(ctx, tx, f)
}

// Pass-throughs: single-row and version reads stay uncached.
func (d *figureRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Figure, error) {
	return d.inner.FindByID(ctx, tx, id)
}

func (d *figureRepoCacheDecorator) SaveVersion(ctx context.Context, tx repository.Tx, v *model.FigureVersion) error {
	return d.inner.SaveVersion(ctx, tx, v)
}

func (d *figureRepoCacheDecorator) SaveBlock(ctx context.Context, tx repository.Tx, b *model.TechniqueBlock) error {
	return d.inner.SaveBlock(ctx, tx, b)
}

func (d *figureRepoCacheDecorator) ListVersionAuthors(ctx context.Context, tx repository.Tx, figureID string) ([]*model.Author, error) {
	return d.inner.ListVersionAuthors(ctx, tx, figureID)
}

func (d *figureRepoCacheDecorator) ListVersionBlocks(ctx context.Context, tx repository.Tx, figureID, authorID string) ([]*model.TechniqueBlock, error) {
	return d.inner.ListVersionBlocks(ctx, tx, figureID, authorID)
}
