package web

import (
	"context"
	"sort"
	"sync"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
)

type noopTxManager struct{}

func (noopTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

type memProgramRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Program
}

func newMemProgramRepo() *memProgramRepo { return &memProgramRepo{store: map[string]*model.Program{}} }

func (m *memProgramRepo) Save(_ context.Context, _ repository.Tx, p *model.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProgramRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memProgramRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Program, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type memDanceRepo struct {
	mu       sync.RWMutex
	store    map[string]*model.Dance
	programs *memProgramRepo
}

func newMemDanceRepo(programs *memProgramRepo) *memDanceRepo {
	return &memDanceRepo{store: map[string]*model.Dance{}, programs: programs}
}

func (m *memDanceRepo) Save(_ context.Context, _ repository.Tx, d *model.Dance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *memDanceRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Dance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memDanceRepo) ListByProgram(ctx context.Context, tx repository.Tx, programID string) ([]*model.Dance, error) {
	if _, err := m.programs.FindByID(ctx, tx, programID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*model.Dance{}
	for _, d := range m.store {
		if d.ProgramID == programID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

type memAuthorRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Author
}

func newMemAuthorRepo() *memAuthorRepo { return &memAuthorRepo{store: map[string]*model.Author{}} }

func (m *memAuthorRepo) Save(_ context.Context, _ repository.Tx, a *model.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *memAuthorRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.store[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memAuthorRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*model.Author{}
	for _, a := range m.store {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memFigureRepo struct {
	mu       sync.RWMutex
	store    map[string]*model.Figure
	versions map[string]*model.FigureVersion
	blocks   map[string][]*model.TechniqueBlock
	dances   *memDanceRepo
	authors  *memAuthorRepo
}

func newMemFigureRepo(dances *memDanceRepo, authors *memAuthorRepo) *memFigureRepo {
	return &memFigureRepo{
		store:    map[string]*model.Figure{},
		versions: map[string]*model.FigureVersion{},
		blocks:   map[string][]*model.TechniqueBlock{},
		dances:   dances,
		authors:  authors,
	}
}

func (m *memFigureRepo) Save(_ context.Context, _ repository.Tx, f *model.Figure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.store[f.ID] = &cp
	return nil
}

func (m *memFigureRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Figure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.store[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memFigureRepo) ListByDance(ctx context.Context, tx repository.Tx, danceID string) ([]*model.Figure, error) {
	if _, err := m.dances.FindByID(ctx, tx, danceID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*model.Figure{}
	for _, f := range m.store {
		if f.DanceID == danceID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memFigureRepo) SaveVersion(_ context.Context, _ repository.Tx, v *model.FigureVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.versions[v.ID] = &cp
	return nil
}

func (m *memFigureRepo) SaveBlock(_ context.Context, _ repository.Tx, b *model.TechniqueBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.blocks[b.VersionID] = append(m.blocks[b.VersionID], &cp)
	return nil
}

func (m *memFigureRepo) ListVersionAuthors(ctx context.Context, tx repository.Tx, figureID string) ([]*model.Author, error) {
	if _, err := m.FindByID(ctx, tx, figureID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*model.Author{}
	for _, v := range m.versions {
		if v.FigureID == figureID {
			if a, err := m.authors.FindByID(ctx, tx, v.AuthorID); err == nil {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (m *memFigureRepo) ListVersionBlocks(_ context.Context, _ repository.Tx, figureID, authorID string) ([]*model.TechniqueBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.versions {
		if v.FigureID == figureID && v.AuthorID == authorID {
			out := append([]*model.TechniqueBlock{}, m.blocks[v.ID]...)
			sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
			return out, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memUserRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{store: map[int64]*model.User{}} }

func (m *memUserRepo) Save(_ context.Context, _ repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *memUserRepo) FindByTelegramID(_ context.Context, _ repository.Tx, tgID int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.store[tgID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) SetSubscribed(_ context.Context, _ repository.Tx, tgID int64, subscribed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsSubscribed = subscribed
	return nil
}

func (m *memUserRepo) CountUsers(_ context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}
