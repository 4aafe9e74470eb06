package usecase

import (
	"context"
	"sort"
	"sync"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
)

// noopTxManager runs the callback without a real transaction. Unit
// tests exercise use-case logic, not store atomicity.
type noopTxManager struct{}

func (noopTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu      sync.RWMutex
	store   map[int64]*model.User
	saveErr error // used by tests to simulate save failures
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, _ repository.Tx, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *memUserRepo) FindByTelegramID(ctx context.Context, _ repository.Tx, tgID int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) SetSubscribed(ctx context.Context, _ repository.Tx, tgID int64, subscribed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsSubscribed = subscribed
	return nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// memProgramRepo keeps programs ordered the way the store would list them.
type memProgramRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Program
}

func newMemProgramRepo() *memProgramRepo {
	return &memProgramRepo{store: make(map[string]*model.Program)}
}

func (m *memProgramRepo) Save(ctx context.Context, _ repository.Tx, p *model.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProgramRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProgramRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.Program, error) {
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
	return &memDanceRepo{store: make(map[string]*model.Dance), programs: programs}
}

func (m *memDanceRepo) Save(ctx context.Context, _ repository.Tx, d *model.Dance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *memDanceRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Dance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDanceRepo) ListByProgram(ctx context.Context, tx repository.Tx, programID string) ([]*model.Dance, error) {
	if _, err := m.programs.FindByID(ctx, tx, programID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Dance
	for _, d := range m.store {
		if d.ProgramID == programID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type memFigureRepo struct {
	mu       sync.RWMutex
	store    map[string]*model.Figure
	versions map[string]*model.FigureVersion   // by version ID
	blocks   map[string][]*model.TechniqueBlock // by version ID
	dances   *memDanceRepo
	authors  *memAuthorRepo
}

func newMemFigureRepo(dances *memDanceRepo, authors *memAuthorRepo) *memFigureRepo {
	return &memFigureRepo{
		store:    make(map[string]*model.Figure),
		versions: make(map[string]*model.FigureVersion),
		blocks:   make(map[string][]*model.TechniqueBlock),
		dances:   dances,
		authors:  authors,
	}
}

func (m *memFigureRepo) Save(ctx context.Context, _ repository.Tx, f *model.Figure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.store[f.ID] = &cp
	return nil
}

func (m *memFigureRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Figure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFigureRepo) ListByDance(ctx context.Context, tx repository.Tx, danceID string) ([]*model.Figure, error) {
	if _, err := m.dances.FindByID(ctx, tx, danceID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Figure
	for _, f := range m.store {
		if f.DanceID == danceID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memFigureRepo) SaveVersion(ctx context.Context, _ repository.Tx, v *model.FigureVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.versions[v.ID] = &cp
	return nil
}

func (m *memFigureRepo) SaveBlock(ctx context.Context, _ repository.Tx, b *model.TechniqueBlock) error {
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
	var out []*model.Author
	for _, v := range m.versions {
		if v.FigureID != figureID {
			continue
		}
		a, err := m.authors.FindByID(ctx, tx, v.AuthorID)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memFigureRepo) ListVersionBlocks(ctx context.Context, _ repository.Tx, figureID, authorID string) ([]*model.TechniqueBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.versions {
		if v.FigureID != figureID || v.AuthorID != authorID {
			continue
		}
		blocks := make([]*model.TechniqueBlock, len(m.blocks[v.ID]))
		for i, b := range m.blocks[v.ID] {
			cp := *b
			blocks[i] = &cp
		}
		sort.Slice(blocks, func(i, j int) bool { return blocks[i].Position < blocks[j].Position })
		return blocks, nil
	}
	return nil, domain.ErrNotFound
}

type memAuthorRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Author
}

func newMemAuthorRepo() *memAuthorRepo {
	return &memAuthorRepo{store: make(map[string]*model.Author)}
}

func (m *memAuthorRepo) Save(ctx context.Context, _ repository.Tx, a *model.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *memAuthorRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAuthorRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Author, 0, len(m.store))
	for _, a := range m.store {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memAccessRepo struct {
	mu    sync.RWMutex
	store map[int64]map[string]*model.FigureAccess
}

func newMemAccessRepo() *memAccessRepo {
	return &memAccessRepo{store: make(map[int64]map[string]*model.FigureAccess)}
}

func (m *memAccessRepo) Save(ctx context.Context, _ repository.Tx, a *model.FigureAccess) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store[a.UserID] == nil {
		m.store[a.UserID] = make(map[string]*model.FigureAccess)
	}
	if _, ok := m.store[a.UserID][a.FigureID]; ok {
		return nil
	}
	cp := *a
	m.store[a.UserID][a.FigureID] = &cp
	return nil
}

func (m *memAccessRepo) Exists(ctx context.Context, _ repository.Tx, userID int64, figureID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[userID][figureID]
	return ok, nil
}

func (m *memAccessRepo) CountByUser(ctx context.Context, _ repository.Tx, userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store[userID]), nil
}
