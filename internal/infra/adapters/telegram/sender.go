package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Telegram allows roughly 30 messages per second per bot. Staying a
// little under that avoids 429s from the API.
const (
	sendRatePerSec = 25
	sendBurst      = 5
)

// Sender wraps the raw bot client with a client-side rate limit and a
// circuit breaker, so a flapping Telegram API degrades into fast
// failures instead of piling up blocked workers.
type Sender struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[tgbotapi.Message]
}

func NewSender(bot *tgbotapi.BotAPI) *Sender {
	settings := gobreaker.Settings{
		Name:    "telegram-send",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Sender{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(sendRatePerSec), sendBurst),
		breaker: gobreaker.NewCircuitBreaker[tgbotapi.Message](settings),
	}
}

// Send delivers any chattable through the limiter and breaker.
func (s *Sender) Send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, err
	}
	return s.breaker.Execute(func() (tgbotapi.Message, error) {
		return s.bot.Send(c)
	})
}

// Request fires an API call that carries no message payload, such as
// answering a callback query to stop the client spinner.
func (s *Sender) Request(c tgbotapi.Chattable) error {
	_, err := s.bot.Request(c)
	return err
}
