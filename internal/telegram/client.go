package telegram

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrMessageNotFound is returned by DeleteMessage when the message is
// already gone on Telegram's side
var ErrMessageNotFound = errors.New("message not found")

// Client is an owned Telegram Bot API handle. It is constructed once at
// startup and passed to everything that talks to Telegram.
type Client struct {
	api       *tgbotapi.BotAPI
	channelID int64
}

// New authorizes against the Bot API. channelID is the private storage
// channel used for admin uploads; it may be 0 when uploads are unused.
func New(token string, channelID int64) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	log.Printf("[TG] Authorized on account %s", api.Self.UserName)

	return &Client{api: api, channelID: channelID}, nil
}

// Username returns the bot's username, used to build t.me deep links
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// SendMessage sends a plain text message and returns its message id
func (c *Client) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sent.MessageID, nil
}

// SendDocument sends a stored file by its file_id and returns the
// message id of the delivered document
func (c *Client) SendDocument(chatID int64, fileID, caption string) (int, error) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	doc.Caption = caption
	sent, err := c.api.Send(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to send document: %w", err)
	}
	return sent.MessageID, nil
}

// DeleteMessage removes a message. A message that is already gone maps
// to ErrMessageNotFound so callers can treat it as the terminal state.
func (c *Client) DeleteMessage(chatID int64, messageID int) error {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := c.api.Request(del); err != nil {
		if strings.Contains(err.Error(), "message to delete not found") {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to delete message %d: %w", messageID, err)
	}
	return nil
}

// UploadDocument uploads a file to the storage channel and returns the
// resulting file_id and channel message id
func (c *Client) UploadDocument(name string, data io.Reader, caption string) (string, int, error) {
	if c.channelID == 0 {
		return "", 0, errors.New("storage channel is not configured")
	}

	doc := tgbotapi.NewDocument(c.channelID, tgbotapi.FileReader{Name: name, Reader: data})
	doc.Caption = caption
	sent, err := c.api.Send(doc)
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload document: %w", err)
	}
	if sent.Document == nil {
		return "", 0, errors.New("upload response carried no document")
	}
	return sent.Document.FileID, sent.MessageID, nil
}

// SetWebhook registers url as the bot's webhook endpoint
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	info, err := c.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("failed to read webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		log.Printf("[TG] Webhook last error: %s", info.LastErrorMessage)
	}
	return nil
}

// UpdatesChan starts long polling, used when no webhook is configured
func (c *Client) UpdatesChan() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	return c.api.GetUpdatesChan(u)
}
