package testutil

import (
	"context"
	"errors"
	"sync"

	"jbcnews/internal/messenger"
)

// ErrSendFailed is returned by a RecordingSender for chats marked as failing.
var ErrSendFailed = errors.New("send failed")

// RecordingSender is an in-memory messenger.Sender that records every call.
type RecordingSender struct {
	mu       sync.Mutex
	nextID   int
	Messages []messenger.Message
	Deleted  []int
	failing  map[int64]bool
}

// NewRecordingSender creates an empty RecordingSender.
func NewRecordingSender() *RecordingSender {
	return &RecordingSender{failing: make(map[int64]bool)}
}

// FailFor makes every send to chatID fail.
func (s *RecordingSender) FailFor(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[chatID] = true
}

// Send records msg.
func (s *RecordingSender) Send(_ context.Context, msg messenger.Message) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[msg.ChatID] {
		return 0, ErrSendFailed
	}
	s.nextID++
	s.Messages = append(s.Messages, msg)
	return s.nextID, nil
}

// Delete records the deleted message id.
func (s *RecordingSender) Delete(_ context.Context, _ int64, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, messageID)
	return nil
}

// To returns the messages sent to chatID.
func (s *RecordingSender) To(chatID int64) []messenger.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []messenger.Message
	for _, m := range s.Messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// Last returns the last message sent to chatID.
func (s *RecordingSender) Last(chatID int64) (messenger.Message, bool) {
	msgs := s.To(chatID)
	if len(msgs) == 0 {
		return messenger.Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Reset forgets everything recorded so far.
func (s *RecordingSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = nil
	s.Deleted = nil
}
