package postgres

import (
	"context"
	"sync"
	"time"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

// fakeRedis is an in-memory RedisClient for decorator tests.
type fakeRedis struct {
	mu    sync.Mutex
	store map[string]string
	gets  int
	sets  int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{store: make(map[string]string)}
}

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	switch v := value.(type) {
	case string:
		f.store[key] = v
	case []byte:
		f.store[key] = string(v)
	}
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.store[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) { return 1, nil }

func (f *fakeRedis) Expire(ctx context.Context, key string, _ time.Duration) error { return nil }

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.store, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }

// stubProgramRepo counts calls so decorator tests can assert read-through behavior.
type stubProgramRepo struct {
	programs []*model.Program
	calls    int
}

func (s *stubProgramRepo) Save(ctx context.Context, tx repository.Tx, p *model.Program) error {
	s.programs = append(s.programs, p)
	return nil
}

func (s *stubProgramRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
	s.calls++
	for _, p := range s.programs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProgramRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Program, error) {
	s.calls++
	return s.programs, nil
}
