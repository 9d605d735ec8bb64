package telegram

import (
	"context"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Middleware logs every update handled by the bot and recovers handler panics.
// Message text is never logged. Only the name of a command the bot routes is,
// since unrouted text may be a password.
func Middleware(log *zap.SugaredLogger, routed func(command string) bool) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			start := time.Now()
			fields := updateFields(update, routed)

			defer func() {
				if r := recover(); r != nil {
					log.Errorw("panic while handling update", append(fields, "panic", r)...)
				}
			}()

			next(ctx, b, update)
			log.Debugw("handled update", append(fields, "duration", time.Since(start))...)
		}
	}
}

func updateFields(update *models.Update, routed func(command string) bool) []any {
	fields := []any{"update_id", update.ID}
	u, ok := FromUpdate(update)
	if !ok {
		return append(fields, "type", "other")
	}
	if u.Callback != "" {
		return append(fields, "type", "callback_query", "chat_id", u.ChatID, "data", u.Callback)
	}
	fields = append(fields, "type", "message", "chat_id", u.ChatID, "message_id", u.MessageID)
	if name, ok := commandName(u.Text); ok && routed != nil && routed(name) {
		fields = append(fields, "command", name)
	}
	return fields
}

// commandName returns the command of a "/name@bot args" message.
func commandName(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return name, name != ""
}
