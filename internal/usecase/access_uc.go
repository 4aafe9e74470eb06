package usecase

import (
	"context"
	"errors"
	"fmt"

	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
	"telegram-dance-technique/internal/infra/logging"
	"telegram-dance-technique/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AccessUseCase = (*accessUC)(nil)

// Open outcomes as recorded in OpenResult and metrics.
const (
	OpenSubscribed = "subscribed" // subscriber, quota never applies
	OpenRepeat     = "repeat"     // already opened before, no quota spent
	OpenFree       = "free"       // one unit of free quota spent
	OpenBlocked    = "blocked"    // quota exhausted
)

// OpenResult describes the outcome of a figure open attempt.
// Remaining is the free quota left after this open; -1 for subscribers.
type OpenResult struct {
	Outcome   string
	Remaining int
}

// AccessUseCase gates figure content behind the free-access quota.
// Subscribers always pass. A non-subscriber may open up to the
// configured number of distinct figures; re-opening a figure already
// recorded for the user never spends quota.
type AccessUseCase interface {
	RegisterFigureOpen(ctx context.Context, tgID int64, figureID string) (*OpenResult, error)
}

type accessUC struct {
	users    repository.UserRepository
	figures  repository.FigureRepository
	accesses repository.FigureAccessRepository
	tm       repository.TransactionManager

	freeLimit int
	log       *zerolog.Logger
}

func NewAccessUseCase(
	users repository.UserRepository,
	figures repository.FigureRepository,
	accesses repository.FigureAccessRepository,
	tm repository.TransactionManager,
	freeLimit int,
	logger *zerolog.Logger,
) *accessUC {
	return &accessUC{
		users:     users,
		figures:   figures,
		accesses:  accesses,
		tm:        tm,
		freeLimit: freeLimit,
		log:       logger,
	}
}

func (a *accessUC) RegisterFigureOpen(ctx context.Context, tgID int64, figureID string) (*OpenResult, error) {
	defer logging.TraceDuration(a.log, "AccessUC.RegisterFigureOpen")()

	if err := checkID("figure", figureID); err != nil {
		return nil, err
	}

	var res *OpenResult
	// Quota check and quota spend must be atomic, otherwise two quick
	// taps on different figures could both pass a limit of one.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := a.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		user, err := a.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil {
			return fmt.Errorf("open figure: %w", err)
		}
		if _, err := a.figures.FindByID(ctx, tx, figureID); err != nil {
			return fmt.Errorf("open figure: %w", err)
		}

		if user.IsSubscribed {
			res = &OpenResult{Outcome: OpenSubscribed, Remaining: -1}
			return nil
		}

		seen, err := a.accesses.Exists(ctx, tx, tgID, figureID)
		if err != nil {
			return err
		}
		opened, err := a.accesses.CountByUser(ctx, tx, tgID)
		if err != nil {
			return err
		}
		if seen {
			res = &OpenResult{Outcome: OpenRepeat, Remaining: a.freeLimit - opened}
			return nil
		}
		if opened >= a.freeLimit {
			return domain.ErrFreeQuotaExceeded
		}

		access, err := model.NewFigureAccess(tgID, figureID)
		if err != nil {
			return err
		}
		if err := a.accesses.Save(ctx, tx, access); err != nil {
			return err
		}
		user.FreeFiguresOpened = opened + 1
		user.Touch()
		if err := a.users.Save(ctx, tx, user); err != nil {
			return err
		}
		res = &OpenResult{Outcome: OpenFree, Remaining: a.freeLimit - opened - 1}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrFreeQuotaExceeded) {
			metrics.IncFigureOpen(OpenBlocked)
		}
		return nil, err
	}

	metrics.IncFigureOpen(res.Outcome)
	return res, nil
}
