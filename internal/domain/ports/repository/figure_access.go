package repository

import (
	"context"

	"telegram-dance-technique/internal/domain/model"
)

// FigureAccessRepository records which figures a user has opened.
// CountByUser drives the free-access quota.
type FigureAccessRepository interface {
	Save(ctx context.Context, tx Tx, a *model.FigureAccess) error
	Exists(ctx context.Context, tx Tx, userID int64, figureID string) (bool, error)
	CountByUser(ctx context.Context, tx Tx, userID int64) (int, error)
}
