package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-dance-technique/internal/application"
	"telegram-dance-technique/internal/config"
	"telegram-dance-technique/internal/domain"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/adapter"
	"telegram-dance-technique/internal/infra/i18n"
	"telegram-dance-technique/internal/infra/logging"
	"telegram-dance-technique/internal/infra/metrics"
	red "telegram-dance-technique/internal/infra/redis"
)

// Telegram rejects messages over 4096 characters; rendered figure
// texts are cut a bit earlier to leave room for the truncation notice.
const maxMessageLen = 3900

// Callback data layout, kept stable because it lives inside messages
// already delivered to users:
//
//	back:root                    program menu
//	program:<id>                 dances of a program
//	dance:<id>                   figures of a dance
//	figure:<id>                  authors of a figure
//	figver:<figureID>:<authorID> one author's technique text
const (
	cbBackRoot      = "back:root"
	cbProgramPrefix = "program:"
	cbDancePrefix   = "dance:"
	cbFigurePrefix  = "figure:"
	cbVersionPrefix = "figver:"
)

// RealTelegramBotAdapter polls updates with tgbotapi and drives the
// catalog navigation through BotFacade.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	sender      *Sender
	cfg         *config.BotConfig
	facade      *application.BotFacade
	tr          *i18n.Translator
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	freeLimit     int
	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	tr *i18n.Translator,
	rateLimiter *red.RateLimiter,
	freeLimit int,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if tr == nil {
		return nil, errors.New("translator is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		sender:        NewSender(bot),
		cfg:           cfg,
		facade:        facade,
		tr:            tr,
		rateLimiter:   rateLimiter,
		log:           logger,
		freeLimit:     freeLimit,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SendMessage implements the adapter port.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	msg := tgbotapi.NewMessage(tgID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := r.sender.Send(ctx, msg)
	return err
}

// SendButtons sends a message with an inline keyboard.
func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, tgID int64, text string, rows [][]adapter.InlineButton) error {
	msg := tgbotapi.NewMessage(tgID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = buildKeyboard(rows)
	_, err := r.sender.Send(ctx, msg)
	return err
}

// editButtons rewrites an existing message in place, which is what
// makes the button navigation feel like a menu instead of a chat log.
func (r *RealTelegramBotAdapter) editButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, buildKeyboard(rows))
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := r.sender.Send(ctx, edit)
	return err
}

func buildKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kbRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, kbRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	// One stuck update must not pin a worker.
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	ctx = logging.WithTraceID(ctx, ulid.Make().String())

	kind := "message"
	switch {
	case update.CallbackQuery != nil:
		kind = "callback"
	case update.Message != nil && update.Message.IsCommand():
		kind = "command"
	}
	metrics.IncBotUpdate(kind)

	start := time.Now()
	var err error
	if update.CallbackQuery != nil {
		err = r.handleQuery(ctx, update.CallbackQuery)
	} else if update.Message != nil {
		err = r.handleMessage(ctx, update.Message)
	}
	metrics.ObserveBotHandle(kind, int(time.Since(start).Milliseconds()), err == nil)
	return err
}

func (r *RealTelegramBotAdapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	tgUser := msg.From
	if tgUser == nil {
		return nil
	}
	tgID := tgUser.ID
	ctx = logging.WithTgID(ctx, tgID)

	command := "message"
	if msg.IsCommand() {
		command = "/" + msg.Command()
	}
	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(tgID, command), 20, time.Minute)
		if err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			return r.SendMessage(ctx, tgID, r.tr.T("rate_limited"))
		}
	}

	switch command {
	case "/start":
		return r.sendStart(ctx, tgID, tgUser.UserName)
	case "/help":
		return r.SendMessage(ctx, tgID, r.tr.T("help"))
	case "/stats":
		if _, ok := r.adminIDsMap[tgID]; !ok {
			return r.SendMessage(ctx, tgID, r.tr.T("help"))
		}
		total, err := r.facade.UserUC.Count(ctx)
		if err != nil {
			logging.With(ctx, r.log).Error().Err(err).Msg("stats failed")
			return r.SendMessage(ctx, tgID, r.tr.T("internal_error"))
		}
		return r.SendMessage(ctx, tgID, r.tr.T("stats_total_users", total))
	default:
		// Free-text messages get the program menu; all real navigation
		// happens through buttons.
		if msg.IsCommand() {
			return r.SendMessage(ctx, tgID, r.tr.T("help"))
		}
		return r.sendStart(ctx, tgID, tgUser.UserName)
	}
}

func (r *RealTelegramBotAdapter) sendStart(ctx context.Context, tgID int64, username string) error {
	_, programs, err := r.facade.HandleStart(ctx, tgID, username)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("start failed")
		return r.SendMessage(ctx, tgID, r.tr.T("internal_error"))
	}
	if len(programs) == 0 {
		return r.SendMessage(ctx, tgID, r.tr.T("no_programs"))
	}
	text := r.tr.T("welcome", r.freeLimit, r.cfg.Username)
	return r.SendButtons(ctx, tgID, text, programRows(programs))
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop telegram spinner when we return
	defer func() { _ = r.sender.Request(tgbotapi.NewCallback(query.ID, "")) }()

	if query.Message == nil || query.Message.Chat == nil {
		return nil
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	ctx = logging.WithTgID(ctx, query.From.ID)

	data := strings.TrimSpace(query.Data)

	if r.rateLimiter != nil {
		if allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(chatID, "callback"), 30, time.Minute); err == nil && !allowed {
			return r.SendMessage(ctx, chatID, r.tr.T("rate_limited"))
		}
	}

	err := r.routeCallback(ctx, query.From.ID, chatID, messageID, data)
	if err != nil &&
		!errors.Is(err, domain.ErrFreeQuotaExceeded) &&
		!errors.Is(err, domain.ErrNotFound) &&
		!errors.Is(err, domain.ErrInvalidArgument) {
		logging.With(ctx, r.log).Error().Err(err).Str("data", data).Msg("callback failed")
		return r.SendMessage(ctx, chatID, r.tr.T("internal_error"))
	}
	return nil
}

func (r *RealTelegramBotAdapter) routeCallback(ctx context.Context, tgID, chatID int64, messageID int, data string) error {
	switch {
	case data == cbBackRoot:
		return r.showPrograms(ctx, chatID, messageID)
	case strings.HasPrefix(data, cbProgramPrefix):
		return r.showDances(ctx, chatID, messageID, strings.TrimPrefix(data, cbProgramPrefix))
	case strings.HasPrefix(data, cbDancePrefix):
		return r.showFigures(ctx, chatID, messageID, strings.TrimPrefix(data, cbDancePrefix))
	case strings.HasPrefix(data, cbFigurePrefix):
		return r.showAuthors(ctx, tgID, chatID, messageID, strings.TrimPrefix(data, cbFigurePrefix))
	case strings.HasPrefix(data, cbVersionPrefix):
		figureID, authorID, ok := splitVersionCallback(data)
		if !ok {
			return fmt.Errorf("callback %q: %w", data, domain.ErrInvalidArgument)
		}
		return r.showVersion(ctx, tgID, chatID, messageID, figureID, authorID)
	default:
		return fmt.Errorf("unknown callback %q: %w", data, domain.ErrInvalidArgument)
	}
}

func (r *RealTelegramBotAdapter) showPrograms(ctx context.Context, chatID int64, messageID int) error {
	programs, err := r.facade.CatalogUC.ListPrograms(ctx)
	if err != nil {
		return err
	}
	if len(programs) == 0 {
		return r.editButtons(ctx, chatID, messageID, r.tr.T("no_programs"), nil)
	}
	return r.editButtons(ctx, chatID, messageID, r.tr.T("choose_program"), programRows(programs))
}

func (r *RealTelegramBotAdapter) showDances(ctx context.Context, chatID int64, messageID int, programID string) error {
	dances, err := r.facade.CatalogUC.ListDances(ctx, programID)
	if err != nil {
		return err
	}
	rows := make([][]adapter.InlineButton, 0, len(dances)+1)
	for _, d := range dances {
		rows = append(rows, []adapter.InlineButton{{Text: d.Name, Data: cbDancePrefix + d.ID}})
	}
	rows = append(rows, backRow(r.tr, cbBackRoot))
	text := r.tr.T("choose_dance")
	if len(dances) == 0 {
		text = r.tr.T("no_dances")
	}
	return r.editButtons(ctx, chatID, messageID, text, rows)
}

func (r *RealTelegramBotAdapter) showFigures(ctx context.Context, chatID int64, messageID int, danceID string) error {
	figures, err := r.facade.CatalogUC.ListFigures(ctx, danceID)
	if err != nil {
		return err
	}
	dance, err := r.facade.CatalogUC.GetDance(ctx, danceID)
	if err != nil {
		return err
	}
	rows := make([][]adapter.InlineButton, 0, len(figures)+1)
	for _, f := range figures {
		rows = append(rows, []adapter.InlineButton{{Text: f.Name, Data: cbFigurePrefix + f.ID}})
	}
	rows = append(rows, backRow(r.tr, cbProgramPrefix+dance.ProgramID))
	text := r.tr.T("choose_figure")
	if len(figures) == 0 {
		text = r.tr.T("no_figures")
	}
	return r.editButtons(ctx, chatID, messageID, text, rows)
}

func (r *RealTelegramBotAdapter) showAuthors(ctx context.Context, tgID, chatID int64, messageID int, figureID string) error {
	figure, err := r.facade.CatalogUC.GetFigure(ctx, figureID)
	if err != nil {
		return err
	}
	authors, err := r.facade.CatalogUC.ListFigureAuthors(ctx, figureID)
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		rows := [][]adapter.InlineButton{backRow(r.tr, cbDancePrefix+figure.DanceID)}
		return r.editButtons(ctx, chatID, messageID, r.tr.T("no_authors"), rows)
	}
	// A single author needs no picker, open the text right away.
	if len(authors) == 1 {
		return r.showVersion(ctx, tgID, chatID, messageID, figureID, authors[0].ID)
	}

	rows := make([][]adapter.InlineButton, 0, len(authors)+1)
	for _, a := range authors {
		rows = append(rows, []adapter.InlineButton{{
			Text: r.tr.T("author_button", a.Name),
			Data: versionCallback(figureID, a.ID),
		}})
	}
	rows = append(rows, backRow(r.tr, cbDancePrefix+figure.DanceID))
	return r.editButtons(ctx, chatID, messageID, r.tr.T("choose_author", figure.Name), rows)
}

func (r *RealTelegramBotAdapter) showVersion(ctx context.Context, tgID, chatID int64, messageID int, figureID, authorID string) error {
	ctx = logging.WithFigureID(ctx, figureID)

	figure, err := r.facade.CatalogUC.GetFigure(ctx, figureID)
	if err != nil {
		return err
	}
	author, err := r.facade.CatalogUC.GetAuthor(ctx, authorID)
	if err != nil {
		return err
	}

	backTo := [][]adapter.InlineButton{backRow(r.tr, cbDancePrefix+figure.DanceID)}

	_, blocks, err := r.facade.OpenFigureVersion(ctx, tgID, figureID, authorID)
	if errors.Is(err, domain.ErrFreeQuotaExceeded) {
		text := r.tr.T("limit_reached", r.freeLimit, r.cfg.Username)
		return r.editButtons(ctx, chatID, messageID, text, backTo)
	}
	if err != nil {
		return err
	}

	text := renderVersionText(r.tr, figure.Name, author.Name, blocks)
	text = truncateText(text, maxMessageLen, r.tr.T("text_truncated"))
	return r.editButtons(ctx, chatID, messageID, text, backTo)
}

func programRows(programs []*model.Program) [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(programs))
	for _, p := range programs {
		rows = append(rows, []adapter.InlineButton{{Text: p.Name, Data: cbProgramPrefix + p.ID}})
	}
	return rows
}

func backRow(tr *i18n.Translator, data string) []adapter.InlineButton {
	return []adapter.InlineButton{{Text: tr.T("back_to_start"), Data: data}}
}

func versionCallback(figureID, authorID string) string {
	return cbVersionPrefix + figureID + ":" + authorID
}

func splitVersionCallback(data string) (figureID, authorID string, ok bool) {
	parts := strings.SplitN(strings.TrimPrefix(data, cbVersionPrefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// renderVersionText assembles the figure message: title, author
// attribution and every technique block under its localized header.
func renderVersionText(tr *i18n.Translator, figureName, authorName string, blocks []*model.TechniqueBlock) string {
	var sb strings.Builder
	sb.WriteString("*" + figureName + "*\n")
	sb.WriteString(tr.T("figure_by_author", authorName))
	if len(blocks) == 0 {
		sb.WriteString("\n\n" + tr.T("no_blocks"))
		return sb.String()
	}
	for _, b := range blocks {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		sb.WriteString("\n\n" + tr.T("block_"+b.Kind) + "\n" + text)
	}
	return sb.String()
}

// truncateText cuts s to at most limit runes and appends the notice.
func truncateText(s string, limit int, notice string) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "\n" + notice
}
