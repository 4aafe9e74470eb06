package application

import (
	"context"
	"fmt"

	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/usecase"
)

// BotFacade composes usecases into the high-level operations the
// Telegram adapter drives. Navigation reads go straight to the catalog;
// the two methods below exist because they span more than one usecase.
type BotFacade struct {
	UserUC    usecase.UserUseCase
	CatalogUC usecase.CatalogUseCase
	AccessUC  usecase.AccessUseCase
}

// NewBotFacade constructs a facade from provided usecases. Any of them
// can be nil in partial wiring (but methods that use them will error).
func NewBotFacade(userUC usecase.UserUseCase, catalogUC usecase.CatalogUseCase, accessUC usecase.AccessUseCase) *BotFacade {
	return &BotFacade{
		UserUC:    userUC,
		CatalogUC: catalogUC,
		AccessUC:  accessUC,
	}
}

// HandleStart registers or refreshes the user and returns the user
// together with the top-level program menu.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username string) (*model.User, []*model.Program, error) {
	if b.UserUC == nil || b.CatalogUC == nil {
		return nil, nil, fmt.Errorf("usecases not available")
	}
	user, err := b.UserUC.RegisterOrFetch(ctx, tgID, username)
	if err != nil {
		return nil, nil, fmt.Errorf("register/fetch user: %w", err)
	}
	programs, err := b.CatalogUC.ListPrograms(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list programs: %w", err)
	}
	return user, programs, nil
}

// OpenFigureVersion gates the figure behind the free-access quota and,
// when allowed, loads the chosen author's technique blocks. Repeat
// opens and subscriber opens pass without spending quota; a blocked
// open surfaces domain.ErrFreeQuotaExceeded.
func (b *BotFacade) OpenFigureVersion(ctx context.Context, tgID int64, figureID, authorID string) (*usecase.OpenResult, []*model.TechniqueBlock, error) {
	if b.AccessUC == nil || b.CatalogUC == nil {
		return nil, nil, fmt.Errorf("usecases not available")
	}
	res, err := b.AccessUC.RegisterFigureOpen(ctx, tgID, figureID)
	if err != nil {
		return nil, nil, err
	}
	blocks, err := b.CatalogUC.GetFigureVersion(ctx, figureID, authorID)
	if err != nil {
		return nil, nil, err
	}
	return res, blocks, nil
}
