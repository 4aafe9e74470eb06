package adapter

import "context"

// InlineButton is a platform-neutral inline keyboard button.
// Data buttons send callback data; URL buttons open a link.
type InlineButton struct {
	Text string
	Data string
	URL  string
}

// TelegramBotAdapter is the outbound port the application uses to talk
// to the chat platform.
type TelegramBotAdapter interface {
	StartPolling(ctx context.Context) error
	StopPolling()
	SendMessage(ctx context.Context, tgID int64, text string) error
	SendButtons(ctx context.Context, tgID int64, text string, rows [][]InlineButton) error
}
