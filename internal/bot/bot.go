package bot

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sahilk/bollyfun/internal/telegram"
)

type Handler interface {
	CanHandle(update tgbotapi.Update) bool
	Handle(client *telegram.Client, update tgbotapi.Update)
}

type Bot struct {
	client   *telegram.Client
	handlers []Handler
}

func New(client *telegram.Client) *Bot {
	return &Bot{
		client:   client,
		handlers: make([]Handler, 0),
	}
}

func (b *Bot) RegisterHandler(h Handler) {
	b.handlers = append(b.handlers, h)
	log.Printf("[BOT] Registered handler: %T", h)
}

// HandleUpdate dispatches one update to the first matching handler.
// This is the entry point for the webhook transport.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		log.Printf("[BOT] Message from %s (@%s): %s",
			update.Message.From.FirstName,
			update.Message.From.UserName,
			update.Message.Text)
	}

	if update.Message == nil && update.CallbackQuery == nil {
		log.Printf("[BOT] Skipping update: no message or callback")
		return
	}

	for _, handler := range b.handlers {
		if handler.CanHandle(update) {
			handler.Handle(b.client, update)
			return
		}
	}

	log.Printf("[BOT] No handler found for update")
}

// Run consumes updates over long polling. Used for local development
// when no webhook is registered.
func (b *Bot) Run() {
	log.Printf("[BOT] Starting long polling with %d handlers", len(b.handlers))

	for update := range b.client.UpdatesChan() {
		go b.HandleUpdate(update)
	}
}
