package repository

import (
	"context"

	"telegram-dance-technique/internal/domain/model"
)

// ProgramRepository provides access to the program catalog.
// Listings are ordered by display position, then name.
type ProgramRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Program) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Program, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Program, error)
}

// DanceRepository provides access to dances of a program.
// ListByProgram returns domain.ErrNotFound when the program itself is
// missing, never an empty result ambiguous with "no rows".
type DanceRepository interface {
	Save(ctx context.Context, tx Tx, d *model.Dance) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Dance, error)
	ListByProgram(ctx context.Context, tx Tx, programID string) ([]*model.Dance, error)
}

// FigureRepository provides access to figures, their per-author
// versions and the ordered technique blocks of a version.
type FigureRepository interface {
	Save(ctx context.Context, tx Tx, f *model.Figure) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Figure, error)
	ListByDance(ctx context.Context, tx Tx, danceID string) ([]*model.Figure, error)

	SaveVersion(ctx context.Context, tx Tx, v *model.FigureVersion) error
	SaveBlock(ctx context.Context, tx Tx, b *model.TechniqueBlock) error
	ListVersionAuthors(ctx context.Context, tx Tx, figureID string) ([]*model.Author, error)
	ListVersionBlocks(ctx context.Context, tx Tx, figureID, authorID string) ([]*model.TechniqueBlock, error)
}

// AuthorRepository provides access to technique authors.
type AuthorRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Author) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Author, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Author, error)
}
