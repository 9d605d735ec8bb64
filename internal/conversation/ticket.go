package conversation

import (
	"fmt"

	"jbcnews/internal/models"
)

// TicketDraft is the data collected by the ticket flow.
type TicketDraft struct {
	Subject string `json:"subject,omitempty"`
}

// Ticket collects a support ticket from a registered user.
type Ticket struct{}

// NewTicket creates the ticket machine.
func NewTicket() *Ticket {
	return &Ticket{}
}

// Begin starts a ticket. Chats not linked to an account are refused.
func (m *Ticket) Begin(linked bool) Transition[TicketDraft] {
	if !linked {
		return Transition[TicketDraft]{Reply: Reply{Text: RegisterFirst}}
	}
	return Transition[TicketDraft]{
		Step:  StepCollectSubject,
		Reply: Reply{Text: "Let's create a support ticket! 🎫\n\nFirst, please enter a brief subject for your ticket:"},
	}
}

// RegisterFirst tells an unlinked chat to register before using the support bot.
const RegisterFirst = "You need to register first! 📝\n\nPlease use the Registration Bot to create an account."

// Step advances the ticket flow by one message.
func (m *Ticket) Step(step StepID, in Input, draft TicketDraft) (Transition[TicketDraft], error) {
	if in.IsCancel() {
		return Transition[TicketDraft]{Reply: Reply{Text: "Ticket creation cancelled. Use /ticket to start again."}}, nil
	}

	text := in.text()
	switch step {
	case StepCollectSubject:
		if text == "" {
			return Transition[TicketDraft]{Step: step, Draft: draft, Reply: Reply{Text: "Please enter a brief subject for your ticket:"}}, nil
		}
		draft.Subject = text
		return Transition[TicketDraft]{
			Step:  StepCollectDescription,
			Draft: draft,
			Reply: Reply{Text: "Great! Now, please provide a detailed description of your issue:"},
		}, nil
	case StepCollectDescription:
		if text == "" {
			return Transition[TicketDraft]{Step: step, Draft: draft, Reply: Reply{Text: "Please provide a detailed description of your issue:"}}, nil
		}
		return Transition[TicketDraft]{Effect: CreateTicket{Subject: draft.Subject, Description: text}}, nil
	default:
		return Transition[TicketDraft]{}, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
}

// TicketCreated is the confirmation sent once a ticket is stored.
func TicketCreated(ticket *models.SupportTicket) string {
	return fmt.Sprintf("✅ Support ticket created successfully!\n\n"+
		"Ticket ID: %s\n"+
		"Subject: %s\n"+
		"Status: Open\n\n"+
		"Our support team will get back to you soon. You can check the status of your ticket using /status command.",
		ticket.TicketID, ticket.Subject)
}
