package chatbot

import (
	"context"
	"fmt"
	"strings"

	"jbcnews/internal/conversation"
	"jbcnews/internal/messenger"
	"jbcnews/internal/models"
)

const supportWelcome = "Welcome to JBC Support Bot! 🎉\n\n" +
	"I can help you with frequently asked questions and support tickets.\n\n" +
	"Commands:\n" +
	"/faq - Show frequently asked questions\n" +
	"/ticket - Create a new support ticket\n" +
	"/status - Check your ticket status\n" +
	"/help - Show help message"

const supportHelp = "JBC Support Bot Help 📖\n\n" +
	"Commands:\n" +
	"/start - Start the bot\n" +
	"/faq - Show frequently asked questions\n" +
	"/ticket - Create a new support ticket\n" +
	"/status - Check your ticket status\n" +
	"/help - Show this help message\n\n" +
	"For any other questions, create a support ticket using /ticket command."

const supportHint = "👋 Hi there! Here's what I can help you with:\n\n" +
	"/faq - Frequently asked questions\n" +
	"/ticket - Create a support ticket\n" +
	"/status - Check your ticket status\n" +
	"/help - Show all commands"

// statusLimit is how many tickets /status lists.
const statusLimit = 5

type faqEntry struct {
	question string
	answer   string
}

var faqs = []faqEntry{
	{"How do I register for JBC News?", "You can register using our Registration Bot or through our website."},
	{"How often is news updated?", "News is updated every 30 minutes from various sources."},
	{"How can I change my country setting?", "Log in to your account on the website and update your profile settings."},
	{"Is the service free to use?", "Yes, JBC News is completely free to use."},
	{"How do I receive breaking news alerts?", "Breaking news alerts are automatically sent to all users through the News Bot."},
}

// SupportBot answers FAQs and takes support tickets.
type SupportBot struct {
	base
	flow *conversation.Ticket
}

// NewSupportBot creates the support bot.
func NewSupportBot(deps Deps, sender messenger.Sender) *SupportBot {
	return &SupportBot{base: newBase(SupportBotName, deps, sender), flow: conversation.NewTicket()}
}

// Routes implements Bot.
func (b *SupportBot) Routes() Routes {
	return Routes{
		Commands: map[string]HandlerFunc{
			"start":  b.handle(b.start),
			"help":   b.handle(b.help),
			"faq":    b.handle(b.faq),
			"ticket": b.handle(b.ticket),
			"status": b.handle(b.status),
			"cancel": b.handle(b.cancel),
		},
		Text: b.handle(b.message),
	}
}

func (b *SupportBot) start(ctx context.Context, u Update, _ *models.ChatSession) {
	b.reply(ctx, u.ChatID, supportWelcome)
}

func (b *SupportBot) help(ctx context.Context, u Update, _ *models.ChatSession) {
	b.reply(ctx, u.ChatID, supportHelp)
}

func (b *SupportBot) faq(ctx context.Context, u Update, _ *models.ChatSession) {
	b.reply(ctx, u.ChatID, FAQText())
}

// FAQText renders the frequently asked questions.
func FAQText() string {
	var sb strings.Builder
	sb.WriteString("📋 Frequently Asked Questions:\n\n")
	for i, f := range faqs {
		fmt.Fprintf(&sb, "%d. Q: %s\n   A: %s\n\n", i+1, f.question, f.answer)
	}
	sb.WriteString("If your question isn't answered here, create a support ticket using /ticket command.")
	return sb.String()
}

func (b *SupportBot) ticket(ctx context.Context, u Update, session *models.ChatSession) {
	begin(ctx, &b.base, u, conversation.FlowTicket, b.flow.Begin(linked(session)))
}

func (b *SupportBot) status(ctx context.Context, u Update, session *models.ChatSession) {
	if !linked(session) {
		b.reply(ctx, u.ChatID, conversation.RegisterFirst)
		return
	}

	tickets, err := b.deps.Tickets.ListForUser(*session.UserID, statusLimit)
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	if len(tickets) == 0 {
		b.reply(ctx, u.ChatID, "You don't have any support tickets. Use /ticket to create one.")
		return
	}
	b.reply(ctx, u.ChatID, TicketStatusText(tickets))
}

// TicketStatusText lists tickets the way /status shows them.
func TicketStatusText(tickets []models.SupportTicket) string {
	var sb strings.Builder
	sb.WriteString("🎫 Your support tickets:\n\n")
	for _, t := range tickets {
		fmt.Fprintf(&sb, "ID: %s\nSubject: %s\nStatus: %s %s\nCreated: %s\n\n",
			t.TicketID, t.Subject, statusEmoji(t.Status), statusLabel(t.Status), t.CreatedAt.Format("02 Jan 2006"))
	}
	sb.WriteString("To create a new ticket, use /ticket command.")
	return sb.String()
}

func statusEmoji(status models.TicketStatus) string {
	switch status {
	case models.TicketStatusOpen:
		return "🟢"
	case models.TicketStatusInProgress:
		return "🟡"
	default:
		return "🔴"
	}
}

// statusLabel turns in_progress into "In Progress".
func statusLabel(status models.TicketStatus) string {
	words := strings.Split(string(status), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (b *SupportBot) cancel(ctx context.Context, u Update, session *models.ChatSession) {
	if !session.InFlow(string(conversation.FlowTicket)) {
		b.cancelIdle(ctx, u.ChatID)
		return
	}
	b.message(ctx, u, session)
}

func (b *SupportBot) message(ctx context.Context, u Update, session *models.ChatSession) {
	if !session.InFlow(string(conversation.FlowTicket)) {
		b.reply(ctx, u.ChatID, supportHint)
		return
	}
	if !linked(session) {
		b.reply(ctx, u.ChatID, conversation.RegisterFirst)
		return
	}
	continueFlow(ctx, &b.base, u, session, conversation.FlowTicket, b.flow, func(effect conversation.Effect) (string, error) {
		create, ok := effect.(conversation.CreateTicket)
		if !ok {
			return "", fmt.Errorf("unexpected ticket effect %T", effect)
		}
		ticket, err := b.deps.Tickets.Create(*session.UserID, create.Subject, create.Description)
		if err != nil {
			return "", err
		}
		b.log.Infow("support ticket created", "chat_id", u.ChatID, "ticket_id", ticket.TicketID)
		return conversation.TicketCreated(ticket), nil
	})
}
