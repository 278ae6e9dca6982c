// Command setwebhook registers the Telegram webhook once after a
// deployment, pointing the bot at PUBLIC_BASE_URL/telegram/webhook.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/sahilk/bollyfun/internal/config"
	"github.com/sahilk/bollyfun/internal/telegram"
)

func main() {
	godotenv.Load()
	config.Load()

	if config.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	tg, err := telegram.New(config.BotToken, config.ChannelID)
	if err != nil {
		log.Fatalf("Failed to create telegram client: %v", err)
	}

	webhookURL := config.PublicBaseURL + "/telegram/webhook"
	if err := tg.SetWebhook(webhookURL); err != nil {
		log.Fatalf("Failed to set webhook: %v", err)
	}

	log.Printf("Webhook set to %s", webhookURL)
}
