package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sahilk/bollyfun/internal/bot"
	"github.com/sahilk/bollyfun/internal/config"
	"github.com/sahilk/bollyfun/internal/database"
	"github.com/sahilk/bollyfun/internal/database/repository"
	"github.com/sahilk/bollyfun/internal/download"
	"github.com/sahilk/bollyfun/internal/handler"
	"github.com/sahilk/bollyfun/internal/shortener"
	"github.com/sahilk/bollyfun/internal/telegram"
	"github.com/sahilk/bollyfun/internal/web"
)

func main() {
	godotenv.Load()
	config.Load()

	if config.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		})
	}

	if config.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if config.BotUsername == "" {
		log.Fatal("TELEGRAM_BOT_USERNAME environment variable is not set")
	}

	db, err := database.New(config.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	movieRepo := repository.NewMovieRepository(db.DB)
	tokenRepo := repository.NewTokenRepository(db.DB)
	sentRepo := repository.NewSentFileRepository(db.DB)

	tg, err := telegram.New(config.BotToken, config.ChannelID)
	if err != nil {
		log.Fatalf("Failed to create telegram client: %v", err)
	}

	downloads := download.NewService(movieRepo, tokenRepo, sentRepo, tg)
	short := shortener.New(config.ShrinkEarnAPIKey, config.ShortenerTimeout)

	b := bot.New(tg)
	b.RegisterHandler(handler.NewStartHandler(downloads))

	handlers := web.NewHandlers(movieRepo, sentRepo, downloads, short, b, tg)
	srv := web.NewServer(handlers)

	go func() {
		log.Printf("[SERVER] Listening on :%s", config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("[SERVER] Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[SERVER] Shutdown error: %v", err)
	}
	log.Printf("[SERVER] Stopped")
}
