package usecase

import (
	"context"

	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
	"telegram-dance-technique/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AdminUseCase = (*adminUC)(nil)

// BlockInput is one technique block of a version create request.
type BlockInput struct {
	Kind     string
	Text     string
	Position int
}

// AdminUseCase covers the write side of the catalog, driven by the
// admin HTTP API. The bot itself never creates catalog rows.
type AdminUseCase interface {
	CreateProgram(ctx context.Context, name string, position int) (*model.Program, error)
	CreateDance(ctx context.Context, programID, name string, position int) (*model.Dance, error)
	CreateFigure(ctx context.Context, danceID, name string, position int) (*model.Figure, error)
	CreateAuthor(ctx context.Context, name, source string) (*model.Author, error)
	CreateFigureVersion(ctx context.Context, figureID, authorID string, blocks []BlockInput) (*model.FigureVersion, error)
}

type adminUC struct {
	programs repository.ProgramRepository
	dances   repository.DanceRepository
	figures  repository.FigureRepository
	authors  repository.AuthorRepository
	tm       repository.TransactionManager

	log *zerolog.Logger
}

func NewAdminUseCase(
	programs repository.ProgramRepository,
	dances repository.DanceRepository,
	figures repository.FigureRepository,
	authors repository.AuthorRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *adminUC {
	return &adminUC{programs: programs, dances: dances, figures: figures, authors: authors, tm: tm, log: logger}
}

func (a *adminUC) CreateProgram(ctx context.Context, name string, position int) (*model.Program, error) {
	defer logging.TraceDuration(a.log, "AdminUC.CreateProgram")()
	p, err := model.NewProgram("", name, position)
	if err != nil {
		return nil, err
	}
	if err := a.programs.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *adminUC) CreateDance(ctx context.Context, programID, name string, position int) (*model.Dance, error) {
	defer logging.TraceDuration(a.log, "AdminUC.CreateDance")()
	if err := checkID("program", programID); err != nil {
		return nil, err
	}
	if _, err := a.programs.FindByID(ctx, repository.NoTX, programID); err != nil {
		return nil, err
	}
	d, err := model.NewDance("", programID, name, position)
	if err != nil {
		return nil, err
	}
	if err := a.dances.Save(ctx, repository.NoTX, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (a *adminUC) CreateFigure(ctx context.Context, danceID, name string, position int) (*model.Figure, error) {
	defer logging.TraceDuration(a.log, "AdminUC.CreateFigure")()
	if err := checkID("dance", danceID); err != nil {
		return nil, err
	}
	if _, err := a.dances.FindByID(ctx, repository.NoTX, danceID); err != nil {
		return nil, err
	}
	f, err := model.NewFigure("", danceID, name, position)
	if err != nil {
		return nil, err
	}
	if err := a.figures.Save(ctx, repository.NoTX, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (a *adminUC) CreateAuthor(ctx context.Context, name, source string) (*model.Author, error) {
	defer logging.TraceDuration(a.log, "AdminUC.CreateAuthor")()
	au, err := model.NewAuthor("", name, source)
	if err != nil {
		return nil, err
	}
	if err := a.authors.Save(ctx, repository.NoTX, au); err != nil {
		return nil, err
	}
	return au, nil
}

// CreateFigureVersion stores the version row and all its blocks in one
// transaction, so a half-written version is never visible to the bot.
func (a *adminUC) CreateFigureVersion(ctx context.Context, figureID, authorID string, blocks []BlockInput) (*model.FigureVersion, error) {
	defer logging.TraceDuration(a.log, "AdminUC.CreateFigureVersion")()
	if err := checkID("figure", figureID); err != nil {
		return nil, err
	}
	if err := checkID("author", authorID); err != nil {
		return nil, err
	}

	var version *model.FigureVersion
	err := a.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := a.figures.FindByID(ctx, tx, figureID); err != nil {
			return err
		}
		if _, err := a.authors.FindByID(ctx, tx, authorID); err != nil {
			return err
		}
		v, err := model.NewFigureVersion("", figureID, authorID)
		if err != nil {
			return err
		}
		if err := a.figures.SaveVersion(ctx, tx, v); err != nil {
			return err
		}
		for _, in := range blocks {
			b, err := model.NewTechniqueBlock("", v.ID, in.Kind, in.Text, in.Position)
			if err != nil {
				return err
			}
			if err := a.figures.SaveBlock(ctx, tx, b); err != nil {
				return err
			}
		}
		version = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}
