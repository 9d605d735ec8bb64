// Package messenger is the transport-neutral view of a chat bot: what can be
// sent and deleted. Bots and delivery talk to a Sender; the telegram package
// provides the real one.
package messenger

import (
	"context"
	"strings"
)

// Button is an inline keyboard button. It carries either callback Data or a URL.
type Button struct {
	Text string
	Data string
	URL  string
}

// Message is one outgoing chat message.
type Message struct {
	ChatID   int64
	Text     string
	Markdown bool
	PhotoURL string // when set, Text is sent as the photo caption
	Keyboard [][]Button
}

// Sender delivers messages to chats.
type Sender interface {
	Send(ctx context.Context, msg Message) (messageID int, err error)
	Delete(ctx context.Context, chatID int64, messageID int) error
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes text for legacy Markdown.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
