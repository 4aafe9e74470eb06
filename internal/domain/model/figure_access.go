package model

import (
	"time"

	"telegram-dance-technique/internal/domain"
)

// FigureAccess records that a user opened a figure. Distinct rows per
// user are what the free-access quota counts; re-opening an already
// recorded figure never consumes quota.
type FigureAccess struct {
	UserID   int64
	FigureID string
	OpenedAt time.Time
}

func NewFigureAccess(userID int64, figureID string) (*FigureAccess, error) {
	if userID <= 0 || figureID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &FigureAccess{
		UserID:   userID,
		FigureID: figureID,
		OpenedAt: time.Now(),
	}, nil
}
