// Package chatbot implements the four chat bots on top of the conversation
// machines and the services. It is transport neutral: updates come in as
// Update values and replies leave through a messenger.Sender.
package chatbot

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"jbcnews/internal/conversation"
	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/lock"
	"jbcnews/internal/logger"
	"jbcnews/internal/messenger"
	"jbcnews/internal/models"
	"jbcnews/internal/services"
)

// Update is one inbound chat event.
type Update struct {
	ChatID    int64
	FromID    int64
	MessageID int
	Text      string
	Callback  string
}

// Args returns the words following the command in the message text.
func (u Update) Args() []string {
	fields := strings.Fields(u.Text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// HandlerFunc handles one update.
type HandlerFunc func(ctx context.Context, u Update)

// Routes tells a transport which handler serves which update.
type Routes struct {
	// Commands maps a command name without the leading slash to its handler.
	Commands map[string]HandlerFunc
	// Callbacks maps a callback data prefix to its handler. The empty prefix matches every callback.
	Callbacks map[string]HandlerFunc
	// Text handles every other text message.
	Text HandlerFunc
}

// Bot is a chat bot front-end.
type Bot interface {
	Name() string
	Routes() Routes
}

// Deps are the services shared by every bot.
type Deps struct {
	Sessions   services.SessionServicer
	Users      services.UserServicer
	Countries  services.CountryServicer
	Categories services.CategoryServicer
	News       services.NewsServicer
	Tickets    services.TicketServicer
	Stats      services.StatsServicer
	Audit      services.AuditServicer
	// Locks serializes updates per chat across all bots.
	Locks *lock.Keyed[int64]
}

// Bot names, also used as logger names.
const (
	RegistrationBotName = "registration_bot"
	SupportBotName      = "support_bot"
	NewsBotName         = "news_bot"
	StaffBotName        = "staff_bot"
)

type sessionHandler func(ctx context.Context, u Update, session *models.ChatSession)

// base carries what every bot needs to answer a chat.
type base struct {
	name   string
	deps   Deps
	sender messenger.Sender
	log    *zap.SugaredLogger
	// secrets marks bots whose flows collect passwords
	secrets bool
}

func newBase(name string, deps Deps, sender messenger.Sender) base {
	if deps.Locks == nil {
		deps.Locks = lock.NewKeyed[int64]()
	}
	return base{name: name, deps: deps, sender: sender, log: logger.Named(name)}
}

// Name returns the bot name.
func (b *base) Name() string { return b.name }

// handle serializes updates of the same chat and loads its session,
// creating it on first contact.
func (b *base) handle(h sessionHandler) HandlerFunc {
	return func(ctx context.Context, u Update) {
		unlock := b.deps.Locks.Lock(u.ChatID)
		defer unlock()

		session, err := b.deps.Sessions.Ensure(u.ChatID)
		if err != nil {
			if b.secrets && u.Callback == "" {
				// the step is unknown, so the text may be a password
				b.scrub(ctx, u)
			}
			b.fail(ctx, u.ChatID, err)
			return
		}
		h(ctx, u, session)
	}
}

func (b *base) send(ctx context.Context, msg messenger.Message) {
	if _, err := b.sender.Send(ctx, msg); err != nil {
		b.log.Warnw("failed to send message", "chat_id", msg.ChatID, "error", err)
	}
}

func (b *base) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, messenger.Message{ChatID: chatID, Text: text})
}

func (b *base) replyMarkdown(ctx context.Context, chatID int64, text string) {
	b.send(ctx, messenger.Message{ChatID: chatID, Text: text, Markdown: true})
}

func (b *base) replyWith(ctx context.Context, chatID int64, r conversation.Reply) {
	if r.Text == "" {
		return
	}
	b.send(ctx, messenger.Message{ChatID: chatID, Text: r.Text, Keyboard: buttons(r.Keyboard)})
}

// fail logs err and tells the chat something went wrong.
func (b *base) fail(ctx context.Context, chatID int64, err error) {
	b.log.Errorw("failed to handle update", "chat_id", chatID, "error", err)
	b.reply(ctx, chatID, failureText(err))
}

// failureText is the chat-safe message for err.
func failureText(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch {
		case appErr.Retryable():
			return "We couldn't save that just now. Please send your last message again."
		case appErr.StatusCode < 500:
			return appErr.Message
		}
	}
	return conversation.GenericFailure
}

// scrub deletes a sensitive inbound message. Failure is only logged.
func (b *base) scrub(ctx context.Context, u Update) {
	if u.MessageID == 0 {
		return
	}
	if err := b.sender.Delete(ctx, u.ChatID, u.MessageID); err != nil {
		b.log.Warnw("failed to delete sensitive message", "chat_id", u.ChatID, "error", err)
	}
}

// perform carries out a flow effect and returns the text to send instead of
// the transition reply, if any.
type perform func(effect conversation.Effect) (string, error)

// rewind is returned by a perform to move the flow to an earlier step
// instead of completing it.
type rewind struct {
	step  conversation.StepID
	draft any
	reply conversation.Reply
}

func (r *rewind) Error() string { return "flow rewound to " + string(r.step) }

func rewindTo[D any](tr conversation.Transition[D]) error {
	return &rewind{step: tr.Step, draft: tr.Draft, reply: tr.Reply}
}

// advance persists a transition. When the effect fails the session keeps its
// previous step and draft.
func advance[D any](ctx context.Context, b *base, u Update, flow conversation.Flow, tr conversation.Transition[D], do perform) {
	if tr.Sensitive {
		b.scrub(ctx, u)
	}

	reply := tr.Reply
	if tr.Effect != nil {
		text, err := do(tr.Effect)
		var rw *rewind
		if errors.As(err, &rw) {
			if err := b.deps.Sessions.SaveStep(u.ChatID, string(flow), string(rw.step), rw.draft); err != nil {
				b.fail(ctx, u.ChatID, err)
				return
			}
			b.replyWith(ctx, u.ChatID, rw.reply)
			return
		}
		if err != nil {
			b.fail(ctx, u.ChatID, err)
			return
		}
		if text != "" {
			reply.Text = text
		}
	}

	var err error
	if tr.Ended() {
		err = b.deps.Sessions.ClearFlow(u.ChatID)
	} else {
		err = b.deps.Sessions.SaveStep(u.ChatID, string(flow), string(tr.Step), tr.Draft)
	}
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}
	b.replyWith(ctx, u.ChatID, reply)
}

// cancelIdle answers /cancel outside a flow.
func (b *base) cancelIdle(ctx context.Context, chatID int64) {
	b.reply(ctx, chatID, "There is nothing to cancel.")
}

func buttons(rows [][]conversation.Button) [][]messenger.Button {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]messenger.Button, len(rows))
	for i, row := range rows {
		out[i] = make([]messenger.Button, len(row))
		for j, btn := range row {
			out[i][j] = messenger.Button{Text: btn.Text, Data: btn.Data}
		}
	}
	return out
}

func linked(session *models.ChatSession) bool {
	return session.Registered && session.UserID != nil && session.User != nil && session.User.IsActive
}

// directory adapts the services to conversation.Directory.
type directory struct {
	users      services.UserServicer
	countries  services.CountryServicer
	categories services.CategoryServicer
}

func newDirectory(deps Deps) *directory {
	return &directory{users: deps.Users, countries: deps.Countries, categories: deps.Categories}
}

func (d *directory) UsernameTaken(username string) (bool, error) {
	return d.users.UsernameTaken(username)
}

func (d *directory) EmailTaken(email string) (bool, error) {
	return d.users.EmailTaken(email)
}

func (d *directory) Countries() ([]models.Country, error) {
	return d.countries.List()
}

func (d *directory) Categories() ([]models.Category, error) {
	return d.categories.List()
}

type machine[D any] interface {
	Step(step conversation.StepID, in conversation.Input, draft D) (conversation.Transition[D], error)
}

// continueFlow feeds an update to the machine owning the session's flow.
func continueFlow[D any](ctx context.Context, b *base, u Update, session *models.ChatSession, flow conversation.Flow, m machine[D], do perform) {
	// secrets are deleted whatever becomes of the update
	scrubbed := conversation.SensitiveStep(conversation.StepID(session.Step)) && u.Callback == ""
	if scrubbed {
		b.scrub(ctx, u)
	}

	draft, err := conversation.DecodeDraft[D](session.Draft)
	if err != nil {
		b.fail(ctx, u.ChatID, err)
		return
	}

	tr, err := m.Step(conversation.StepID(session.Step), conversation.Input{Text: u.Text, Callback: u.Callback}, draft)
	if err != nil {
		if errors.Is(err, conversation.ErrUnknownStep) {
			if clearErr := b.deps.Sessions.ClearFlow(u.ChatID); clearErr != nil {
				b.log.Errorw("failed to clear stale flow", "chat_id", u.ChatID, "error", clearErr)
			}
		}
		b.fail(ctx, u.ChatID, err)
		return
	}
	if scrubbed {
		tr.Sensitive = false
	}
	advance(ctx, b, u, flow, tr, do)
}

// begin starts a flow. A transition that ends immediately is only replied to,
// so a refusal never clobbers another flow in progress.
func begin[D any](ctx context.Context, b *base, u Update, flow conversation.Flow, tr conversation.Transition[D]) {
	if tr.Ended() {
		b.replyWith(ctx, u.ChatID, tr.Reply)
		return
	}
	advance(ctx, b, u, flow, tr, nil)
}
