package models

import "time"

// TicketStatus represents the lifecycle state of a support ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// SupportTicket is a user's request for help
type SupportTicket struct {
	Base
	UserID    string            `gorm:"type:uuid;not null;index" json:"user_id"`
	TicketID  string            `gorm:"size:10;uniqueIndex;not null" json:"ticket_id"`
	Subject   string            `gorm:"not null" json:"subject"`
	Message   string            `gorm:"not null" json:"message"`
	Status    TicketStatus      `gorm:"not null;default:'open'" json:"status"`
	ClosedAt  *time.Time        `json:"closed_at,omitempty"`
	User      *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Responses []SupportResponse `gorm:"foreignKey:TicketID" json:"responses,omitempty"`
}

// SupportResponse is one entry in a ticket's append-only reply thread
type SupportResponse struct {
	Base
	TicketID    string `gorm:"type:uuid;not null;index" json:"ticket_id"`
	ResponderID string `gorm:"type:uuid;not null" json:"responder_id"`
	Message     string `gorm:"not null" json:"message"`
}
