package usecase

import (
	"context"
	"fmt"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
	"telegram-dance-technique/internal/infra/logging"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

// CatalogUseCase exposes read access to the technique catalog. Listings
// come back in display order; lookups by a missing parent id fail with
// domain.ErrNotFound so callers can tell "empty" from "gone".
type CatalogUseCase interface {
	ListPrograms(ctx context.Context) ([]*model.Program, error)
	ListDances(ctx context.Context, programID string) ([]*model.Dance, error)
	ListFigures(ctx context.Context, danceID string) ([]*model.Figure, error)

	ListAuthors(ctx context.Context) ([]*model.Author, error)

	GetProgram(ctx context.Context, id string) (*model.Program, error)
	GetDance(ctx context.Context, id string) (*model.Dance, error)
	GetFigure(ctx context.Context, id string) (*model.Figure, error)
	GetAuthor(ctx context.Context, id string) (*model.Author, error)

	ListFigureAuthors(ctx context.Context, figureID string) ([]*model.Author, error)
	GetFigureVersion(ctx context.Context, figureID, authorID string) ([]*model.TechniqueBlock, error)
}

type catalogUC struct {
	programs repository.ProgramRepository
	dances   repository.DanceRepository
	figures  repository.FigureRepository
	authors  repository.AuthorRepository

	log *zerolog.Logger
}

func NewCatalogUseCase(
	programs repository.ProgramRepository,
	dances repository.DanceRepository,
	figures repository.FigureRepository,
	authors repository.AuthorRepository,
	logger *zerolog.Logger,
) *catalogUC {
	return &catalogUC{programs: programs, dances: dances, figures: figures, authors: authors, log: logger}
}

// checkID rejects malformed ids before they reach the store, so a typo
// in a callback payload maps to ErrInvalidArgument rather than a store
// round trip that can only end in NotFound.
func checkID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s id %q: %w", kind, id, domain.ErrInvalidArgument)
	}
	return nil
}

func (c *catalogUC) ListPrograms(ctx context.Context) ([]*model.Program, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.ListPrograms")()
	return c.programs.ListAll(ctx, repository.NoTX)
}

func (c *catalogUC) ListDances(ctx context.Context, programID string) ([]*model.Dance, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.ListDances")()
	if err := checkID("program", programID); err != nil {
		return nil, err
	}
	return c.dances.ListByProgram(ctx, repository.NoTX, programID)
}

func (c *catalogUC) ListFigures(ctx context.Context, danceID string) ([]*model.Figure, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.ListFigures")()
	if err := checkID("dance", danceID); err != nil {
		return nil, err
	}
	return c.figures.ListByDance(ctx, repository.NoTX, danceID)
}

func (c *catalogUC) ListAuthors(ctx context.Context) ([]*model.Author, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.ListAuthors")()
	return c.authors.ListAll(ctx, repository.NoTX)
}

func (c *catalogUC) GetProgram(ctx context.Context, id string) (*model.Program, error) {
	if err := checkID("program", id); err != nil {
		return nil, err
	}
	return c.programs.FindByID(ctx, repository.NoTX, id)
}

func (c *catalogUC) GetDance(ctx context.Context, id string) (*model.Dance, error) {
	if err := checkID("dance", id); err != nil {
		return nil, err
	}
	return c.dances.FindByID(ctx, repository.NoTX, id)
}

func (c *catalogUC) GetFigure(ctx context.Context, id string) (*model.Figure, error) {
	if err := checkID("figure", id); err != nil {
		return nil, err
	}
	return c.figures.FindByID(ctx, repository.NoTX, id)
}

func (c *catalogUC) GetAuthor(ctx context.Context, id string) (*model.Author, error) {
	if err := checkID("author", id); err != nil {
		return nil, err
	}
	return c.authors.FindByID(ctx, repository.NoTX, id)
}

func (c *catalogUC) ListFigureAuthors(ctx context.Context, figureID string) ([]*model.Author, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.ListFigureAuthors")()
	if err := checkID("figure", figureID); err != nil {
		return nil, err
	}
	return c.figures.ListVersionAuthors(ctx, repository.NoTX, figureID)
}

func (c *catalogUC) GetFigureVersion(ctx context.Context, figureID, authorID string) ([]*model.TechniqueBlock, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.GetFigureVersion")()
	if err := checkID("figure", figureID); err != nil {
		return nil, err
	}
	if err := checkID("author", authorID); err != nil {
		return nil, err
	}
	return c.figures.ListVersionBlocks(ctx, repository.NoTX, figureID, authorID)
}
