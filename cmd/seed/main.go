// File: cmd/seed/main.go
//
// Seeds a starter catalog so a fresh deployment has something to browse:
// the three Latin programs, the Bronze dances, a handful of Bronze
// Cha Cha figures and one authored technique version. Safe to run once;
// it refuses to touch a database that already has programs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"telegram-dance-technique/internal/config"
	pg "telegram-dance-technique/internal/infra/db/postgres"
	"telegram-dance-technique/internal/infra/logging"
	"telegram-dance-technique/internal/usecase"

	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4, cfg.Database.QueryTimeout)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	programRepo := pg.NewPostgresProgramRepo(pool)
	danceRepo := pg.NewPostgresDanceRepo(pool)
	figureRepo := pg.NewPostgresFigureRepo(pool)
	authorRepo := pg.NewPostgresAuthorRepo(pool)
	txManager := pg.NewTxManager(pool)

	existing, err := programRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list programs: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("catalog already has %d program(s), nothing to do", len(existing))
		return
	}

	adminUC := usecase.NewAdminUseCase(programRepo, danceRepo, figureRepo, authorRepo, txManager, logger)

	if err := seed(ctx, adminUC); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Println("starter catalog created")
}

func seed(ctx context.Context, adminUC usecase.AdminUseCase) error {
	bronze, err := adminUC.CreateProgram(ctx, "Bronze", 0)
	if err != nil {
		return fmt.Errorf("program Bronze: %w", err)
	}
	if _, err := adminUC.CreateProgram(ctx, "Silver", 1); err != nil {
		return fmt.Errorf("program Silver: %w", err)
	}
	if _, err := adminUC.CreateProgram(ctx, "Gold", 2); err != nil {
		return fmt.Errorf("program Gold: %w", err)
	}

	dances := []string{"Cha Cha Cha", "Samba", "Rumba", "Paso Doble", "Jive"}
	var chaCha *model.Dance
	for i, name := range dances {
		d, err := adminUC.CreateDance(ctx, bronze.ID, name, i)
		if err != nil {
			return fmt.Errorf("dance %s: %w", name, err)
		}
		if i == 0 {
			chaCha = d
		}
	}

	figures := []string{"Basic Movement", "New York", "Spot Turn", "Fan", "Hockey Stick"}
	var basic *model.Figure
	for i, name := range figures {
		f, err := adminUC.CreateFigure(ctx, chaCha.ID, name, i)
		if err != nil {
			return fmt.Errorf("figure %s: %w", name, err)
		}
		if i == 0 {
			basic = f
		}
	}

	laird, err := adminUC.CreateAuthor(ctx, "Walter Laird", "Technique of Latin Dancing")
	if err != nil {
		return fmt.Errorf("author: %w", err)
	}

	blocks := []usecase.BlockInput{
		{Kind: model.BlockStepsLeader, Position: 0, Text: "1. LF forward\n2. Replace weight to RF\n3. LF to side (chasse L-R-L begins)\n4&5. Complete chasse"},
		{Kind: model.BlockStepsFollower, Position: 1, Text: "1. RF back\n2. Replace weight to LF\n3. RF to side (chasse R-L-R begins)\n4&5. Complete chasse"},
		{Kind: model.BlockNotes, Position: 2, Text: "Keep latin hip action on every weight change. Count 2, 3, 4&1."},
	}
	if _, err := adminUC.CreateFigureVersion(ctx, basic.ID, laird.ID, blocks); err != nil {
		return fmt.Errorf("figure version: %w", err)
	}
	return nil
}
