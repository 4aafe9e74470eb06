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

var _ repository.ProgramRepository = (*programRepoCacheDecorator)(nil)

// programRepoCacheDecorator is a read-through cache over the program
// repository. The program menu is the hottest read in the bot (rendered
// on every /start), and the catalog only changes through the admin
// write path, which invalidates here.
type programRepoCacheDecorator struct {
	inner repository.ProgramRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewProgramRepoCacheDecorator(inner repository.ProgramRepository, cache red.RedisClient, ttl time.Duration) repository.ProgramRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &programRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func (d *programRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
	key := fmt.Sprintf("program:%s", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("program", "hit")
		var p model.Program
		if json.Unmarshal([]byte(val), &p) == nil {
			return &p, nil
		}
	}

	metrics.IncCacheRequest("program", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		bytes, _ := json.Marshal(p)
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return p, nil
}

func (d *programRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Program, error) {
	key := "programs:all"
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("program_list", "hit")
		var programs []*model.Program
		if json.Unmarshal([]byte(val), &programs) == nil {
			return programs, nil
		}
	}

	metrics.IncCacheRequest("program_list", "miss")
	programs, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(programs) > 0 {
		bytes, _ := json.Marshal(programs)
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return programs, nil
}

// Writes invalidate both the row and the menu list.
func (d *programRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Program) error {
	_ = d.cache.Del(ctx, fmt.Sprintf("program:%s", p.ID), "programs:all")
	return d.inner.Save(ctx, tx, p)
}
