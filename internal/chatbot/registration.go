package chatbot

import (
	"context"
	"errors"
	"fmt"

	"jbcnews/internal/conversation"
	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/messenger"
	"jbcnews/internal/models"
	"jbcnews/internal/services"
)

const registrationWelcome = "Welcome to JBC Registration Bot! 🎉\n\n" +
	"I can help you register for the JARAR BROADCASTING CORPORATION news system.\n\n" +
	"Commands:\n" +
	"/register - Start registration process\n" +
	"/help - Show help message\n" +
	"/cancel - Cancel current operation"

const registrationHelp = "JBC Registration Bot Help 📖\n\n" +
	"Commands:\n" +
	"/register - Start registration process\n" +
	"/help - Show this help message\n" +
	"/cancel - Cancel current operation\n\n" +
	"During registration, you will be asked to provide:\n" +
	"- Username\n" +
	"- Email\n" +
	"- Phone number\n" +
	"- Location\n" +
	"- Country\n" +
	"- Password\n\n" +
	"After registration, you can use the JBC News Bot to receive personalized news."

// RegistrationBot signs up new readers over chat.
type RegistrationBot struct {
	base
	flow *conversation.Registration
}

// NewRegistrationBot creates the registration bot.
func NewRegistrationBot(deps Deps, sender messenger.Sender) *RegistrationBot {
	b := &RegistrationBot{base: newBase(RegistrationBotName, deps, sender)}
	b.secrets = true
	b.flow = conversation.NewRegistration(newDirectory(b.deps))
	return b
}

// Routes implements Bot.
func (b *RegistrationBot) Routes() Routes {
	return Routes{
		Commands: map[string]HandlerFunc{
			"start":    b.handle(b.start),
			"help":     b.handle(b.help),
			"register": b.handle(b.register),
			"cancel":   b.handle(b.cancel),
		},
		Callbacks: map[string]HandlerFunc{"": b.handle(b.message)},
		Text:      b.handle(b.message),
	}
}

func (b *RegistrationBot) start(ctx context.Context, u Update, _ *models.ChatSession) {
	b.reply(ctx, u.ChatID, registrationWelcome)
}

func (b *RegistrationBot) help(ctx context.Context, u Update, _ *models.ChatSession) {
	b.reply(ctx, u.ChatID, registrationHelp)
}

func (b *RegistrationBot) register(ctx context.Context, u Update, session *models.ChatSession) {
	if session.Registered {
		b.reply(ctx, u.ChatID, "You are already registered! 👍\nUse the JBC News Bot to receive personalized news.")
		return
	}
	begin(ctx, &b.base, u, conversation.FlowRegistration, b.flow.Begin())
}

func (b *RegistrationBot) cancel(ctx context.Context, u Update, session *models.ChatSession) {
	if !session.InFlow(string(conversation.FlowRegistration)) {
		b.cancelIdle(ctx, u.ChatID)
		return
	}
	b.message(ctx, u, session)
}

func (b *RegistrationBot) message(ctx context.Context, u Update, session *models.ChatSession) {
	if !session.InFlow(string(conversation.FlowRegistration)) {
		if u.Callback == "" {
			b.reply(ctx, u.ChatID, "Use /register to start registration or /help to see what I can do.")
		}
		return
	}
	continueFlow(ctx, &b.base, u, session, conversation.FlowRegistration, b.flow, func(effect conversation.Effect) (string, error) {
		create, ok := effect.(conversation.CreateAccount)
		if !ok {
			return "", fmt.Errorf("unexpected registration effect %T", effect)
		}
		draft := create.Draft
		_, err := b.deps.Users.RegisterFromChat(services.RegistrationInput{
			ChatID:       u.ChatID,
			TelegramID:   u.FromID,
			Username:     draft.Username,
			Email:        draft.Email,
			PasswordHash: draft.PasswordHash,
			Phone:        draft.Phone,
			Location:     draft.Location,
			CountryID:    draft.CountryID,
		})
		switch {
		case errors.Is(err, apperrors.ErrDuplicateUsername):
			return "", rewindTo(b.flow.Conflict(conversation.StepCollectName, draft))
		case errors.Is(err, apperrors.ErrDuplicateEmail):
			return "", rewindTo(b.flow.Conflict(conversation.StepCollectEmail, draft))
		case err != nil:
			return "", err
		}
		b.log.Infow("user registered", "chat_id", u.ChatID, "username", draft.Username)
		return "", nil
	})
}
