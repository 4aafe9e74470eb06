package telegram

import (
	"context"

	"telegram-dance-technique/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter satisfies the port without talking to Telegram.
// Used in tests and local runs without a bot token.
type NoopBotAdapter struct{}

func NewNoopBotAdapter() *NoopBotAdapter { return &NoopBotAdapter{} }

func (n *NoopBotAdapter) StartPolling(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (n *NoopBotAdapter) StopPolling() {}

func (n *NoopBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	return nil
}

func (n *NoopBotAdapter) SendButtons(ctx context.Context, tgID int64, text string, rows [][]adapter.InlineButton) error {
	return nil
}
