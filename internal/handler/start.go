package handler

import (
	"errors"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sahilk/bollyfun/internal/download"
	"github.com/sahilk/bollyfun/internal/telegram"
)

// StartHandler redeems download tokens carried in /start deep links
type StartHandler struct {
	downloads *download.Service
}

func NewStartHandler(downloads *download.Service) *StartHandler {
	return &StartHandler{downloads: downloads}
}

func (h *StartHandler) CanHandle(update tgbotapi.Update) bool {
	return update.Message != nil && update.Message.IsCommand() && update.Message.Command() == "start"
}

func (h *StartHandler) Handle(client *telegram.Client, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	tokenStr := update.Message.CommandArguments()

	if tokenStr == "" {
		if _, err := client.SendMessage(chatID, welcomeMessage()); err != nil {
			log.Printf("[START] Failed to send welcome: %v", err)
		}
		return
	}

	log.Printf("[START] Redemption attempt from user %d", update.Message.From.ID)

	processingID, err := client.SendMessage(chatID, "⏳ Sending file...")
	if err != nil {
		log.Printf("[START] Failed to send processing message: %v", err)
	}

	delivery, err := h.downloads.Redeem(tokenStr, chatID)

	if processingID != 0 {
		if err := client.DeleteMessage(chatID, processingID); err != nil {
			log.Printf("[START] Failed to delete processing message: %v", err)
		}
	}

	if err != nil {
		if _, serr := client.SendMessage(chatID, redeemErrorMessage(err)); serr != nil {
			log.Printf("[START] Failed to send error message: %v", serr)
		}
		return
	}

	confirmation := fmt.Sprintf(
		"✅ %s for %s sent!\n\n⏰ This message will be deleted automatically after 24 hours.",
		delivery.Quality, delivery.Movie.Title)
	if _, err := client.SendMessage(chatID, confirmation); err != nil {
		log.Printf("[START] Failed to send confirmation: %v", err)
	}
}

func welcomeMessage() string {
	return "🎬 Welcome to BollyFun!\n\n" +
		"Get your download link from the website.\n\n" +
		"⚠️ Files auto-delete after 24 hours."
}

// redeemErrorMessage maps redemption failures to user-facing text
func redeemErrorMessage(err error) string {
	switch {
	case errors.Is(err, download.ErrTokenNotFound):
		return "❌ Invalid or expired link."
	case errors.Is(err, download.ErrTokenExpired):
		return "⏰ Link expired. Get a new one from the movie page."
	case errors.Is(err, download.ErrDeliveryFailed):
		return "❌ Error sending file. Your link is still valid — try again in a moment."
	}
	return "❌ An error occurred."
}
