// Package telegram connects the chat bots to the Telegram Bot API through
// go-telegram/bot. A Client is both the update listener of one bot and its
// messenger.Sender.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"jbcnews/internal/chatbot"
	"jbcnews/internal/logger"
	"jbcnews/internal/messenger"
)

// ErrNoToken is returned by New when the bot token is empty. Callers treat it
// as the bot being switched off.
var ErrNoToken = errors.New("bot token is not set")

const defaultTimeout = 10 * time.Second

// Client is one running Telegram bot.
type Client struct {
	name    string
	bot     *tgbot.Bot
	timeout time.Duration
	log     *zap.SugaredLogger
	text    chatbot.HandlerFunc

	mu       sync.RWMutex
	commands map[string]bool
}

// Option customizes the underlying bot.
type Option = tgbot.Option

// New creates the client for one bot token. Every API call made through
// Send and Delete runs under timeout.
func New(name, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{name: name, timeout: timeout, log: logger.Named(name), commands: make(map[string]bool)}
	options := append([]tgbot.Option{
		tgbot.WithMiddlewares(Middleware(c.log, c.routes)),
		tgbot.WithDefaultHandler(c.dispatchText),
	}, opts...)

	b, err := tgbot.New(token, options...)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot %s: %w", name, err)
	}
	c.bot = b
	return c, nil
}

// Name returns the bot name.
func (c *Client) Name() string { return c.name }

// Register routes the updates of the bot to a chat bot.
func (c *Client) Register(routes chatbot.Routes) {
	c.mu.Lock()
	for command := range routes.Commands {
		c.commands[command] = true
	}
	c.mu.Unlock()

	for command, h := range routes.Commands {
		c.bot.RegisterHandler(tgbot.HandlerTypeMessageText, command, tgbot.MatchTypeCommandStartOnly, c.message(h))
	}
	for prefix, h := range routes.Callbacks {
		c.bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, prefix, tgbot.MatchTypePrefix, c.callback(h))
	}
	c.text = routes.Text
}

// routes reports whether command is handled by the registered chat bot.
func (c *Client) routes(command string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.commands[command]
}

// Start polls for updates until ctx is cancelled.
func (c *Client) Start(ctx context.Context) {
	c.log.Infow("starting telegram listener")
	c.bot.Start(ctx)
	c.log.Infow("telegram listener stopped")
}

func (c *Client) message(h chatbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
		if u, ok := FromUpdate(update); ok {
			h(ctx, u)
		}
	}
}

func (c *Client) callback(h chatbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		if update.CallbackQuery != nil {
			answerCtx, cancel := context.WithTimeout(ctx, c.timeout)
			if _, err := b.AnswerCallbackQuery(answerCtx, &tgbot.AnswerCallbackQueryParams{
				CallbackQueryID: update.CallbackQuery.ID,
			}); err != nil {
				c.log.Warnw("failed to answer callback query", "error", err)
			}
			cancel()
		}
		if u, ok := FromUpdate(update); ok {
			h(ctx, u)
		}
	}
}

// dispatchText handles every update no other handler matched.
func (c *Client) dispatchText(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if c.text == nil || update.Message == nil || update.Message.Text == "" {
		return
	}
	if u, ok := FromUpdate(update); ok {
		c.text(ctx, u)
	}
}

// FromUpdate converts a Telegram update into a chatbot.Update. It reports
// false for updates that carry neither a message nor callback data.
func FromUpdate(update *models.Update) (chatbot.Update, bool) {
	switch {
	case update == nil:
		return chatbot.Update{}, false
	case update.Message != nil:
		msg := update.Message
		u := chatbot.Update{ChatID: msg.Chat.ID, MessageID: msg.ID, Text: msg.Text}
		if msg.From != nil {
			u.FromID = msg.From.ID
		}
		return u, true
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		u := chatbot.Update{FromID: query.From.ID, Callback: query.Data}
		switch {
		case query.Message.Message != nil:
			u.ChatID = query.Message.Message.Chat.ID
		case query.Message.InaccessibleMessage != nil:
			u.ChatID = query.Message.InaccessibleMessage.Chat.ID
		default:
			u.ChatID = query.From.ID
		}
		return u, query.Data != ""
	default:
		return chatbot.Update{}, false
	}
}

// Send delivers msg. Messages with a photo go out as a captioned photo and
// fall back to plain text when Telegram rejects the image.
func (c *Client) Send(ctx context.Context, msg messenger.Message) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var parseMode models.ParseMode
	if msg.Markdown {
		parseMode = models.ParseModeMarkdownV1
	}
	markup := replyMarkup(msg.Keyboard)

	if msg.PhotoURL != "" {
		sent, err := c.bot.SendPhoto(ctx, &tgbot.SendPhotoParams{
			ChatID:      msg.ChatID,
			Photo:       &models.InputFileString{Data: msg.PhotoURL},
			Caption:     msg.Text,
			ParseMode:   parseMode,
			ReplyMarkup: markup,
		})
		if err == nil {
			return sent.ID, nil
		}
		if ctx.Err() != nil {
			return 0, fmt.Errorf("sending photo to chat %d: %w", msg.ChatID, err)
		}
		c.log.Warnw("failed to send photo, sending text instead", "chat_id", msg.ChatID, "error", err)
	}

	sent, err := c.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:      msg.ChatID,
		Text:        msg.Text,
		ParseMode:   parseMode,
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, fmt.Errorf("sending message to chat %d: %w", msg.ChatID, err)
	}
	return sent.ID, nil
}

// Delete removes a message from a chat.
func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.bot.DeleteMessage(ctx, &tgbot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		return fmt.Errorf("deleting message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

// replyMarkup returns nil for an empty keyboard so no reply_markup is sent.
func replyMarkup(rows [][]messenger.Button) models.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	keyboard := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btn := models.InlineKeyboardButton{Text: b.Text}
			if b.URL != "" {
				btn.URL = b.URL
			} else {
				btn.CallbackData = b.Data
			}
			buttons = append(buttons, btn)
		}
		keyboard = append(keyboard, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
