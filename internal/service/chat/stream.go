package chat

import (
	"github.com/anthonytapias/charmefy/internal/analysis/markup"
	chatmodel "github.com/anthonytapias/charmefy/internal/model/chat"
)

// Stream is the ordered log of messages shown to the user. It is append
// only between resets, rendering order equals insertion order, and local
// ids are strictly increasing within one lifetime. Not safe for concurrent
// use; the owning Client serializes access.
type Stream struct {
	messages []chatmodel.Message
	nextID   int
}

// Reset clears the log and restarts the id counter. Called exactly once
// per partner switch, before any connection attempt.
func (s *Stream) Reset() {
	s.messages = nil
	s.nextID = 0
}

// ReplaceWithHistory swaps the whole log for the stored transcript,
// assigning fresh local ids in the given order. History is authoritative:
// anything appended before its arrival is discarded.
func (s *Stream) ReplaceWithHistory(history []chatmodel.HistoryMessage) {
	s.messages = make([]chatmodel.Message, 0, len(history))
	s.nextID = 0
	for _, entry := range history {
		sender := chatmodel.SenderPartner
		if entry.Sender == string(chatmodel.SenderUser) {
			sender = chatmodel.SenderUser
		}
		s.append(sender, entry.Content)
	}
}

// AppendUser adds one user-authored message and returns it.
func (s *Stream) AppendUser(content string) chatmodel.Message {
	return s.append(chatmodel.SenderUser, content)
}

// AppendPartner adds one partner message and returns it.
func (s *Stream) AppendPartner(content string) chatmodel.Message {
	return s.append(chatmodel.SenderPartner, content)
}

// Messages returns a copy of the log in insertion order.
func (s *Stream) Messages() []chatmodel.Message {
	return append([]chatmodel.Message(nil), s.messages...)
}

// Len reports the number of messages in the log.
func (s *Stream) Len() int {
	return len(s.messages)
}

func (s *Stream) append(sender chatmodel.Sender, content string) chatmodel.Message {
	s.nextID++
	msg := chatmodel.Message{
		ID:      s.nextID,
		Sender:  sender,
		Content: content,
	}
	if sender == chatmodel.SenderPartner && markup.Composite(content) {
		msg.Annotation = chatmodel.AnnotationComposite
	}
	s.messages = append(s.messages, msg)
	return msg
}
