// File: cmd/e2e-setup/main.go
//
// Resets a database to a clean, predictable state for manual
// end-to-end testing: applies the schema, wipes runtime tables and
// the catalog cache, and registers one known test user.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"telegram-dance-technique/internal/config"
	"telegram-dance-technique/internal/domain/model"
	"telegram-dance-technique/internal/domain/ports/repository"
	pg "telegram-dance-technique/internal/infra/db/postgres"
	red "telegram-dance-technique/internal/infra/redis"
)

const testUserID = 100000001

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	schemaPath := flag.String("schema", "deploy/postgres/init.sql", "path to schema SQL")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// No statement timeout here; applying the schema can take longer
	// than a runtime query is allowed to.
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4, 0)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema applied")

	if _, err := pool.Exec(ctx, `TRUNCATE user_figure_accesses, users`); err != nil {
		log.Fatalf("truncate runtime tables: %v", err)
	}
	log.Println("runtime tables truncated")

	// Drop the catalog list caches so stale menus cannot leak into a run.
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	if err := redisClient.Del(ctx, "programs:all"); err != nil {
		log.Fatalf("redis cleanup: %v", err)
	}
	log.Println("catalog cache cleared")

	users := pg.NewPostgresUserRepo(pool)
	u, err := model.NewUser(testUserID, "e2e_tester")
	if err != nil {
		log.Fatalf("test user: %v", err)
	}
	if err := users.Save(ctx, repository.NoTX, u); err != nil {
		log.Fatalf("save test user: %v", err)
	}
	log.Printf("test user %d registered", testUserID)
}
