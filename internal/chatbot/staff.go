package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jbcnews/internal/conversation"
	"jbcnews/internal/delivery"
	"jbcnews/internal/messenger"
	"jbcnews/internal/models"
	"jbcnews/internal/services"
)

const staffWelcome = "Welcome to JBC Staff Bot! 👔\n\n" +
	"This bot is for JBC staff members to manage news content.\n\n" +
	"Commands:\n" +
	"/addnews - Add new article\n" +
	"/newslist - List recent news\n" +
	"/push - Mark news as breaking and alert readers\n" +
	"/translate - Translate news\n" +
	"/help - Show help message"

const staffHelp = "JBC Staff Bot Help 📖\n\n" +
	"Commands:\n" +
	"/start - Start the bot\n" +
	"/addnews - Add new article\n" +
	"/newslist - List recent news\n" +
	"/publish <id> - Publish a news article\n" +
	"/unpublish <id> - Unpublish a news article\n" +
	"/push <id> - Mark news as breaking and alert readers\n" +
	"/translate <id> - Translate news\n" +
	"/stats - Show site statistics\n" +
	"/cancel - Cancel the current article\n" +
	"/help - Show this help message\n\n" +
	"This bot is only for authorized JBC staff members."

const staffOnly = "⛔ This command is only available to JBC staff members."

// Pusher runs the breaking news push.
type Pusher interface {
	Breaking(ctx context.Context, newsID string) (*delivery.Report, error)
}

// Retranslator re-runs translation of a stored article.
type Retranslator interface {
	Retranslate(ctx context.Context, newsID string) (*models.News, error)
}

// StaffBot lets staff write and manage articles.
type StaffBot struct {
	base
	flow       *conversation.Authoring
	pusher     Pusher
	translator Retranslator
}

// NewStaffBot creates the staff bot. pusher and translator may be nil, which
// disables /push and /translate.
func NewStaffBot(deps Deps, sender messenger.Sender, pusher Pusher, translator Retranslator) *StaffBot {
	b := &StaffBot{base: newBase(StaffBotName, deps, sender), pusher: pusher, translator: translator}
	b.flow = conversation.NewAuthoring(newDirectory(b.deps))
	return b
}

// Routes implements Bot.
func (b *StaffBot) Routes() Routes {
	return Routes{
		Commands: map[string]HandlerFunc{
			"start":     b.handle(b.start),
			"help":      b.handle(b.help),
			"addnews":   b.handle(b.staff(b.addNews)),
			"newslist":  b.handle(b.staff(b.newsList)),
			"publish":   b.handle(b.staff(b.publish)),
			"unpublish": b.handle(b.staff(b.unpublish)),
			"push":      b.handle(b.staff(b.push)),
			"translate": b.handle(b.staff(b.translate)),
			"stats":     b.handle(b.staff(b.stats)),
			"cancel":    b.handle(b.staff(b.cancel)),
		},
		Callbacks: map[string]HandlerFunc{"": b.handle(b.staff(b.message))},
		Text:      b.handle(b.staff(b.message)),
	}
}

// staff refuses chats that are not linked to an active staff or admin account.
func (b *StaffBot) staff(h sessionHandler) sessionHandler {
	return func(ctx context.Context, u Update, session *models.ChatSession) {
		if !linked(session) || !session.User.Role.CanAuthor() {
			b.log.Warnw("refused staff command", "chat_id", u.ChatID)
			b.reply(ctx, u.ChatID, staffOnly)
			return
		}
		h(ctx, u, session)
	}
}

func (b *StaffBot) start(ctx context.Context, u Update, _ *models.ChatSession) {
	b.reply(ctx, u.ChatID, staffWelcome)
}

func (b *StaffBot) help(ctx context.Context, u Update, _ *models.ChatSession) {
	b.reply(ctx, u.ChatID, staffHelp)
}

func (b *StaffBot) addNews(ctx context.Context, u Update, _ *models.ChatSession) {
	begin(ctx, &b.base, u, conversation.FlowAuthoring, b.flow.Begin())
}

func (b *StaffBot) newsList(ctx context.Context, u Update, _ *models.ChatSession) {
	items, err := b.deps.News.Latest(services.NewsFilter{}, newsLimit)
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	if len(items) == 0 {
		b.reply(ctx, u.ChatID, "No articles yet. Use /addnews to write one.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📰 Latest articles:\n\n")
	for i, n := range items {
		marker := ""
		if n.IsBreaking {
			marker = " 🔴"
		}
		fmt.Fprintf(&sb, "%d. %s%s\n   ID: %s\n", i+1, n.Title, marker, n.ID)
	}
	b.reply(ctx, u.ChatID, sb.String())
}

func (b *StaffBot) publish(ctx context.Context, u Update, session *models.ChatSession) {
	b.setPublished(ctx, u, session, true)
}

func (b *StaffBot) unpublish(ctx context.Context, u Update, session *models.ChatSession) {
	b.setPublished(ctx, u, session, false)
}

func (b *StaffBot) setPublished(ctx context.Context, u Update, session *models.ChatSession, published bool) {
	command, action, verb := "unpublish", services.AuditUnpublish, "Unpublished"
	if published {
		command, action, verb = "publish", services.AuditPublish, "Published"
	}
	id, ok := b.articleID(ctx, u, command)
	if !ok {
		return
	}

	news, err := b.deps.News.SetPublished(id, published)
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	b.deps.Audit.Log(session.User.ID, action, "news", news.ID, "", map[string]any{"is_published": published})
	b.reply(ctx, u.ChatID, fmt.Sprintf("✅ %s: %s", verb, news.Title))
}

func (b *StaffBot) push(ctx context.Context, u Update, session *models.ChatSession) {
	id, ok := b.articleID(ctx, u, "push")
	if !ok {
		return
	}
	if b.pusher == nil {
		b.reply(ctx, u.ChatID, "Breaking news alerts are not configured.")
		return
	}

	report, err := b.pusher.Breaking(ctx, id)
	if errors.Is(err, delivery.ErrNoSender) {
		b.deps.Audit.Log(session.User.ID, services.AuditBreakingPush, "news", id, "", map[string]any{"is_breaking": true})
		b.reply(ctx, u.ChatID, "Marked as breaking, but the News Bot is not running so no alerts were sent.")
		return
	}
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	b.deps.Audit.Log(session.User.ID, services.AuditBreakingPush, "news", id, "", map[string]any{
		"is_breaking": true,
		"recipients":  report.Recipients,
		"delivered":   report.Delivered,
	})
	b.reply(ctx, u.ChatID, fmt.Sprintf("🔴 Breaking news sent to %d of %d readers.", report.Delivered, report.Recipients))
}

func (b *StaffBot) translate(ctx context.Context, u Update, session *models.ChatSession) {
	id, ok := b.articleID(ctx, u, "translate")
	if !ok {
		return
	}
	if b.translator == nil {
		b.reply(ctx, u.ChatID, "Translation is not configured.")
		return
	}

	news, err := b.translator.Retranslate(ctx, id)
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	languages := len(news.Translations.Data())
	b.deps.Audit.Log(session.User.ID, services.AuditTranslate, "news", news.ID, "", map[string]any{"languages": languages})
	b.reply(ctx, u.ChatID, fmt.Sprintf("🌐 %s is now available in %d languages.", news.Title, languages))
}

func (b *StaffBot) stats(ctx context.Context, u Update, _ *models.ChatSession) {
	stats, err := b.deps.Stats.Snapshot()
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	b.reply(ctx, u.ChatID, fmt.Sprintf("📊 JBC News statistics\n\n"+
		"Users: %d\nArticles: %d\nPublished: %d\nBreaking: %d\nOpen tickets: %d",
		stats.Users, stats.Articles, stats.Published, stats.Breaking, stats.OpenTickets))
}

func (b *StaffBot) cancel(ctx context.Context, u Update, session *models.ChatSession) {
	if !session.InFlow(string(conversation.FlowAuthoring)) {
		b.cancelIdle(ctx, u.ChatID)
		return
	}
	b.message(ctx, u, session)
}

func (b *StaffBot) message(ctx context.Context, u Update, session *models.ChatSession) {
	if !session.InFlow(string(conversation.FlowAuthoring)) {
		if u.Callback == "" {
			b.reply(ctx, u.ChatID, staffHelp)
		}
		return
	}
	continueFlow(ctx, &b.base, u, session, conversation.FlowAuthoring, b.flow, func(effect conversation.Effect) (string, error) {
		publish, ok := effect.(conversation.PublishArticle)
		if !ok {
			return "", fmt.Errorf("unexpected authoring effect %T", effect)
		}
		draft := publish.Draft
		news, err := b.deps.News.CreateStaffArticle(session.User, services.ArticleInput{
			Title:      draft.Title,
			Summary:    draft.Summary,
			Content:    draft.Content,
			CategoryID: draft.CategoryID,
		})
		if err != nil {
			return "", err
		}
		b.deps.Audit.Log(session.User.ID, services.AuditCreateArticle, "news", news.ID, "", map[string]any{"title": news.Title})

		if b.translator != nil {
			if _, err := b.translator.Retranslate(ctx, news.ID); err != nil {
				b.log.Warnw("failed to translate new article", "news_id", news.ID, "error", err)
			}
		}
		return "", nil
	})
}

// articleID reads the article id argument of a command.
func (b *StaffBot) articleID(ctx context.Context, u Update, command string) (string, bool) {
	args := u.Args()
	if len(args) != 1 {
		b.reply(ctx, u.ChatID, fmt.Sprintf("Usage: /%s <article id>", command))
		return "", false
	}
	return args[0], true
}
