package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChatSession is the server-side conversational state of one external chat
type ChatSession struct {
	Base
	ChatID     int64          `gorm:"uniqueIndex;not null" json:"chat_id"`
	Registered bool           `gorm:"default:false" json:"registered"`
	Flow       string         `json:"flow,omitempty"`
	Step       string         `json:"step,omitempty"`
	Draft      datatypes.JSON `gorm:"not null;default:'{}'" json:"-"`
	UserID     *string        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	LastSeenAt *time.Time     `json:"last_seen_at,omitempty"`
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// InFlow reports whether the session has an unfinished flow named flow.
func (s *ChatSession) InFlow(flow string) bool {
	return s.Flow == flow && s.Step != ""
}

// EmptyDraft is the draft stored while no flow is in progress.
func EmptyDraft() datatypes.JSON {
	return datatypes.JSON("{}")
}
