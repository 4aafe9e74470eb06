// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-dance-technique/internal/application"
	"telegram-dance-technique/internal/config"
	"telegram-dance-technique/internal/domain/ports/adapter"
	tele "telegram-dance-technique/internal/infra/adapters/telegram"
	pg "telegram-dance-technique/internal/infra/db/postgres"
	"telegram-dance-technique/internal/infra/httpops"
	"telegram-dance-technique/internal/infra/i18n"
	"telegram-dance-technique/internal/infra/logging"
	"telegram-dance-technique/internal/infra/metrics"
	red "telegram-dance-technique/internal/infra/redis"
	"telegram-dance-technique/internal/infra/sched"
	"telegram-dance-technique/internal/infra/web"
	"telegram-dance-technique/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, *devMode)
	logger.Info().Str("version", version).Str("commit", commit).Msg("starting")

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.QueryTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect")
	}
	defer pool.Close()
	pg.SetRetryPolicy(cfg.Database.RetryAttempts, cfg.Database.RetryBaseWait)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	programRepo := pg.NewProgramRepoCacheDecorator(pg.NewPostgresProgramRepo(pool), redisClient, cfg.Redis.TTL)
	danceRepo := pg.NewPostgresDanceRepo(pool)
	figureRepo := pg.NewFigureRepoCacheDecorator(pg.NewPostgresFigureRepo(pool), redisClient, cfg.Redis.TTL)
	authorRepo := pg.NewPostgresAuthorRepo(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	accessRepo := pg.NewPostgresFigureAccessRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Use cases ----
	catalogUC := usecase.NewCatalogUseCase(programRepo, danceRepo, figureRepo, authorRepo, logger)
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	accessUC := usecase.NewAccessUseCase(userRepo, figureRepo, accessRepo, txManager, cfg.Access.FreeFigureLimit, logger)
	adminUC := usecase.NewAdminUseCase(programRepo, danceRepo, figureRepo, authorRepo, txManager, logger)

	facade := application.NewBotFacade(userUC, catalogUC, accessUC)

	// ---- Telegram bot ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("load locales")
	}

	var bot adapter.TelegramBotAdapter
	if cfg.Bot.Mode == "polling" {
		realBot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, tr, rateLimiter, cfg.Access.FreeFigureLimit, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram bot init")
		}
		bot = realBot
	} else {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("unsupported bot mode, updates disabled")
		bot = tele.NewNoopBotAdapter()
	}

	errCh := make(chan error, 4)
	go func() {
		if err := bot.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("bot polling: %w", err)
		}
	}()

	// ---- Admin API ----
	authMgr := web.NewAuthManager(cfg.Admin.JWTSecret, !*devMode, cfg.Admin.TokenTTL)
	adminSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler:           web.NewServer(catalogUC, adminUC, userUC, authMgr, cfg.Admin.JWTSecret, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", adminSrv.Addr).Msg("admin api listening")
		if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("admin api: %w", err)
		}
	}()

	// ---- Ops endpoints (/health, /metrics) ----
	opsSrv := httpops.NewServer(cfg.Ops.Port, logger)
	go func() {
		if err := opsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ops server: %w", err)
		}
	}()

	// ---- Background workers ----
	poolStats := sched.NewPoolStatsWorker(15*time.Second, pool, logger)
	go func() { _ = poolStats.Run(ctx) }()

	// ---- Shutdown ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("fatal component error, shutting down")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("admin api shutdown")
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown")
	}
	logger.Info().Msg("stopped")
}
