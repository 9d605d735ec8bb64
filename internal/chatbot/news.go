package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jbcnews/internal/delivery"
	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/messenger"
	"jbcnews/internal/models"
	"jbcnews/internal/services"
)

// DefaultRegistrationURL is where unregistered news bot readers are sent.
const DefaultRegistrationURL = "https://t.me/jbc_registration_bot"

const (
	newsLimit      = 5
	welcomeLimit   = 3
	categoryPrefix = "category_"
)

const newsHelp = "JBC News Bot Help 📖\n\n" +
	"Commands:\n" +
	"/start - Start the bot\n" +
	"/news - Get latest news\n" +
	"/breaking - Get breaking news\n" +
	"/category - Browse news by category\n" +
	"/profile - View your profile\n" +
	"/subscribe - Receive alerts and the daily digest\n" +
	"/unsubscribe - Stop alerts and the daily digest\n" +
	"/help - Show this help message\n\n" +
	"You will automatically receive breaking news alerts and a daily news digest."

// NewsBot serves articles to registered readers.
type NewsBot struct {
	base
	registrationURL string
}

// NewNewsBot creates the news bot. An empty registrationURL uses DefaultRegistrationURL.
func NewNewsBot(deps Deps, sender messenger.Sender, registrationURL string) *NewsBot {
	if registrationURL == "" {
		registrationURL = DefaultRegistrationURL
	}
	return &NewsBot{base: newBase(NewsBotName, deps, sender), registrationURL: registrationURL}
}

// Routes implements Bot.
func (b *NewsBot) Routes() Routes {
	return Routes{
		Commands: map[string]HandlerFunc{
			"start":       b.handle(b.start),
			"help":        b.handle(b.help),
			"news":        b.handle(b.news),
			"breaking":    b.handle(b.breaking),
			"category":    b.handle(b.categories),
			"profile":     b.handle(b.profile),
			"subscribe":   b.handle(b.subscribe),
			"unsubscribe": b.handle(b.unsubscribe),
		},
		Callbacks: map[string]HandlerFunc{categoryPrefix: b.handle(b.category)},
		Text:      b.handle(b.help),
	}
}

func (b *NewsBot) start(ctx context.Context, u Update, session *models.ChatSession) {
	if !linked(session) {
		b.send(ctx, messenger.Message{
			ChatID:   u.ChatID,
			Text:     "Welcome to JBC News Bot! 📰\n\nYou're not registered yet. Please register to receive personalized news.",
			Keyboard: [][]messenger.Button{{{Text: "Register Now", URL: b.registrationURL}}},
		})
		return
	}

	user := session.User
	b.reply(ctx, u.ChatID, fmt.Sprintf("Welcome to JBC News Bot, %s! 📰\n\n"+
		"You will receive personalized news based on your country (%s).\n\n"+
		"Commands:\n"+
		"/news - Get latest news\n"+
		"/breaking - Get breaking news\n"+
		"/category - Browse news by category\n"+
		"/profile - View your profile\n"+
		"/help - Show help message",
		user.Username, countryName(user.Country, "Global")))

	if _, err := b.latest(ctx, u.ChatID, user.Country, countryFilter(user), welcomeLimit); err != nil {
		b.log.Warnw("failed to send welcome news", "chat_id", u.ChatID, "error", err)
	}
}

func (b *NewsBot) help(ctx context.Context, u Update, _ *models.ChatSession) {
	b.reply(ctx, u.ChatID, newsHelp)
}

// news sends the latest articles for the reader's country, or global ones
// when the chat is not linked or the account has no country.
func (b *NewsBot) news(ctx context.Context, u Update, session *models.ChatSession) {
	var viewer *models.Country
	filter := services.NewsFilter{}
	if linked(session) {
		viewer = session.User.Country
		filter = countryFilter(session.User)
	}

	b.reply(ctx, u.ChatID, "Fetching your latest news... 🔍")
	sent, err := b.latest(ctx, u.ChatID, viewer, filter, newsLimit)
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	if sent == 0 {
		b.reply(ctx, u.ChatID, "No news articles found. Please try again later or change your preferences.")
	}
}

func (b *NewsBot) breaking(ctx context.Context, u Update, session *models.ChatSession) {
	if !linked(session) {
		b.reply(ctx, u.ChatID, "You need to register first to get breaking news! Please use the Registration Bot.")
		return
	}

	items, err := b.deps.News.Latest(services.NewsFilter{BreakingOnly: true}, newsLimit)
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	if len(items) == 0 {
		b.reply(ctx, u.ChatID, "No breaking news at the moment. Check back later!")
		return
	}

	b.reply(ctx, u.ChatID, "🔴 BREAKING NEWS 🔴")
	if b.deliver(ctx, u.ChatID, session.User.Country, items) == 0 {
		b.reply(ctx, u.ChatID, "Failed to retrieve breaking news. Please try again later.")
	}
}

func (b *NewsBot) categories(ctx context.Context, u Update, _ *models.ChatSession) {
	categories, err := b.deps.Categories.List()
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	if len(categories) == 0 {
		b.reply(ctx, u.ChatID, "No categories are available yet.")
		return
	}

	var rows [][]messenger.Button
	for i, c := range categories {
		if i%2 == 0 {
			rows = append(rows, nil)
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], messenger.Button{Text: c.Name, Data: categoryPrefix + c.ID})
	}
	b.send(ctx, messenger.Message{ChatID: u.ChatID, Text: "📂 Select a news category:", Keyboard: rows})
}

func (b *NewsBot) category(ctx context.Context, u Update, session *models.ChatSession) {
	if !linked(session) {
		b.reply(ctx, u.ChatID, "You need to register first to get personalized news! Please use the Registration Bot.")
		return
	}

	id := strings.TrimPrefix(u.Callback, categoryPrefix)
	category, err := b.deps.Categories.GetByID(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			b.reply(ctx, u.ChatID, "No news found in this category. Please try another category.")
			return
		}
		b.fail(ctx, u.ChatID, err)
		return
	}

	b.reply(ctx, u.ChatID, "Fetching news for the selected category... 🔍")
	items, err := b.deps.News.Latest(services.NewsFilter{CategoryID: category.ID}, newsLimit)
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	if len(items) == 0 {
		b.reply(ctx, u.ChatID, "No news found in this category. Please try another category.")
		return
	}

	b.replyMarkdown(ctx, u.ChatID, fmt.Sprintf("📂 *%s News*", messenger.EscapeMarkdown(category.Name)))
	b.deliver(ctx, u.ChatID, session.User.Country, items)
}

func (b *NewsBot) profile(ctx context.Context, u Update, session *models.ChatSession) {
	if !linked(session) {
		b.reply(ctx, u.ChatID, "You need to register first! Please use the Registration Bot.")
		return
	}
	b.replyMarkdown(ctx, u.ChatID, ProfileText(session.User))
}

// ProfileText renders an account for /profile.
func ProfileText(user *models.User) string {
	esc := messenger.EscapeMarkdown
	var sb strings.Builder
	sb.WriteString("👤 *Your Profile*\n\n")
	fmt.Fprintf(&sb, "*Username:* %s\n", esc(user.Username))
	fmt.Fprintf(&sb, "*Email:* %s\n", esc(user.Email))
	fmt.Fprintf(&sb, "*Phone:* %s\n", esc(user.Phone))
	fmt.Fprintf(&sb, "*Location:* %s\n", esc(user.Location))
	fmt.Fprintf(&sb, "*Country:* %s\n", esc(countryName(user.Country, "Not set")))
	fmt.Fprintf(&sb, "*Joined:* %s\n\n", user.CreatedAt.Format("02 Jan 2006"))
	sb.WriteString("To update your profile, please visit the JBC website.")
	return sb.String()
}

func (b *NewsBot) subscribe(ctx context.Context, u Update, _ *models.ChatSession) {
	if err := b.deps.Sessions.SetActive(u.ChatID, true); err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	b.reply(ctx, u.ChatID, "✅ You are subscribed to breaking news alerts and the daily digest.")
}

func (b *NewsBot) unsubscribe(ctx context.Context, u Update, _ *models.ChatSession) {
	if err := b.deps.Sessions.SetActive(u.ChatID, false); err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	b.reply(ctx, u.ChatID, "🔕 You will no longer receive breaking news alerts or the daily digest. Use /subscribe to opt back in.")
}

func (b *NewsBot) latest(ctx context.Context, chatID int64, viewer *models.Country, filter services.NewsFilter, limit int) (int, error) {
	items, err := b.deps.News.Latest(filter, limit)
	if err != nil {
		return 0, err
	}
	return b.deliver(ctx, chatID, viewer, items), nil
}

// deliver sends each article and returns how many went out.
func (b *NewsBot) deliver(ctx context.Context, chatID int64, viewer *models.Country, items []models.News) int {
	sent := 0
	for i := range items {
		if _, err := b.sender.Send(ctx, delivery.Render(chatID, &items[i], viewer)); err != nil {
			b.log.Warnw("failed to send article", "chat_id", chatID, "news_id", items[i].ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

func countryFilter(user *models.User) services.NewsFilter {
	if user == nil || user.CountryID == nil {
		return services.NewsFilter{}
	}
	return services.NewsFilter{CountryID: *user.CountryID}
}

func countryName(c *models.Country, fallback string) string {
	if c == nil {
		return fallback
	}
	return c.Name
}
