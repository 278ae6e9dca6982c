// Command cleanup deletes delivered Telegram messages past their
// 24-hour retention and purges expired download tokens. It is meant to
// be run every few minutes by an external scheduler (cron).
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/sahilk/bollyfun/internal/cleanup"
	"github.com/sahilk/bollyfun/internal/config"
	"github.com/sahilk/bollyfun/internal/database"
	"github.com/sahilk/bollyfun/internal/database/repository"
	"github.com/sahilk/bollyfun/internal/telegram"
)

func main() {
	godotenv.Load()
	config.Load()

	if config.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	db, err := database.New(config.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	tg, err := telegram.New(config.BotToken, config.ChannelID)
	if err != nil {
		log.Fatalf("Failed to create telegram client: %v", err)
	}

	sweeper := cleanup.NewSweeper(
		repository.NewSentFileRepository(db.DB),
		repository.NewTokenRepository(db.DB),
		tg,
	)

	stats, err := sweeper.Run()
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}

	log.Printf("[CLEANUP] Done: %d deleted, %d already gone, %d failed, %d tokens purged",
		stats.Deleted, stats.AlreadyGone, stats.Failed, stats.TokensPurged)
}
