package repository

import (
	"context"

	"telegram-dance-technique/internal/domain/model"
)

// UserRepository stores Telegram users. The only write path the bot
// exercises at runtime: user registration and quota bookkeeping.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	SetSubscribed(ctx context.Context, tx Tx, tgID int64, subscribed bool) error
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
