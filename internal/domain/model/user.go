package model

import (
	"time"

	"telegram-dance-technique/internal/domain"
)

// User is a Telegram user known to the bot. The Telegram ID is the
// primary key; population of the catalog itself happens out-of-band,
// users are the only rows the bot creates at runtime.
type User struct {
	TelegramID        int64
	Username          string
	IsSubscribed      bool
	FreeFiguresOpened int
	RegisteredAt      time.Time
	LastActiveAt      time.Time
}

func NewUser(tgID int64, username string) (*User, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		TelegramID:   tgID,
		Username:     username,
		RegisteredAt: time.Now(),
		LastActiveAt: time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.TelegramID == 0 }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }
