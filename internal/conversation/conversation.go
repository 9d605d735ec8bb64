// Package conversation holds the chat flows as pure state machines. A machine
// maps the current step, the inbound message and the draft collected so far to
// a Transition; bots persist the result and carry out its Effect.
package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jbcnews/internal/models"
)

// Flow names a conversation. A chat session runs at most one flow at a time.
type Flow string

const (
	FlowRegistration Flow = "registration"
	FlowTicket       Flow = "ticket"
	FlowAuthoring    Flow = "authoring"
)

// StepID is the state of a flow. The empty StepID means no flow is running.
type StepID string

// Registration steps.
const (
	StepCollectName     StepID = "collect_name"
	StepCollectEmail    StepID = "collect_email"
	StepCollectPhone    StepID = "collect_phone"
	StepCollectLocation StepID = "collect_location"
	StepCollectCountry  StepID = "collect_country"
	StepCollectPassword StepID = "collect_password"
	StepConfirmPassword StepID = "confirm_password"
)

// SensitiveStep reports whether text sent at step is a secret that must be
// deleted from the chat.
func SensitiveStep(step StepID) bool {
	return step == StepCollectPassword || step == StepConfirmPassword
}

// Ticket steps.
const (
	StepCollectSubject     StepID = "collect_subject"
	StepCollectDescription StepID = "collect_description"
)

// Authoring steps.
const (
	StepTitle    StepID = "title"
	StepSummary  StepID = "summary"
	StepContent  StepID = "content"
	StepCategory StepID = "category"
	StepConfirm  StepID = "confirm"
)

// CancelCommand aborts whatever flow is running.
const CancelCommand = "/cancel"

// GenericFailure is sent when a step could not be completed for internal reasons.
const GenericFailure = "Sorry, there was an error. Please try again later or contact support."

// ErrUnknownStep is returned when a session holds a step the machine does not own.
var ErrUnknownStep = errors.New("unknown conversation step")

// Input is one inbound chat event: free text or a keyboard callback payload.
type Input struct {
	Text     string
	Callback string
}

// IsCancel reports whether the input asks to abort the flow.
func (in Input) IsCancel() bool {
	return strings.EqualFold(strings.TrimSpace(in.Text), CancelCommand)
}

func (in Input) text() string {
	return strings.TrimSpace(in.Text)
}

// Button is an inline keyboard button carrying callback data.
type Button struct {
	Text string
	Data string
}

// Reply is the message a bot sends back after a transition.
type Reply struct {
	Text     string
	Keyboard [][]Button
}

// Effect is a side effect a bot must carry out when a flow completes.
type Effect interface {
	effect()
}

// CreateAccount materializes the registration draft as a user account.
type CreateAccount struct {
	Draft RegistrationDraft
}

// CreateTicket opens a support ticket for the linked account.
type CreateTicket struct {
	Subject     string
	Description string
}

// PublishArticle stores the authored article as published.
type PublishArticle struct {
	Draft ArticleDraft
}

func (CreateAccount) effect()  {}
func (CreateTicket) effect()   {}
func (PublishArticle) effect() {}

// Transition is the outcome of one step. An empty Step ends the flow. When
// Effect is set the flow ends only if the effect succeeds; otherwise the bot
// keeps the previous step and draft.
type Transition[D any] struct {
	Step      StepID
	Draft     D
	Reply     Reply
	Effect    Effect
	Sensitive bool // the inbound message must be deleted from the chat
}

// Ended reports whether the flow is over after this transition.
func (t Transition[D]) Ended() bool {
	return t.Step == ""
}

// Directory answers the lookups the machines need.
type Directory interface {
	UsernameTaken(username string) (bool, error)
	EmailTaken(email string) (bool, error)
	Countries() ([]models.Country, error)
	Categories() ([]models.Category, error)
}

// DecodeDraft decodes a stored draft. An empty draft decodes to the zero value.
func DecodeDraft[D any](raw []byte) (D, error) {
	var draft D
	if len(raw) == 0 {
		return draft, nil
	}
	if err := json.Unmarshal(raw, &draft); err != nil {
		return draft, fmt.Errorf("decoding draft: %w", err)
	}
	return draft, nil
}

// keyboard lays buttons out perRow to a row.
func keyboard(buttons []Button, perRow int) [][]Button {
	var rows [][]Button
	for start := 0; start < len(buttons); start += perRow {
		end := min(start+perRow, len(buttons))
		rows = append(rows, buttons[start:end])
	}
	return rows
}
