package conversation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionRequired      = errors.New("session id is required")
	ErrConversationNotFound = errors.New("conversation not found")
)

// Conversation binds one client session to one character. A session holds
// at most one conversation per character; reconnecting resumes it.
type Conversation struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"sessionId"`
	CharacterID     int       `json:"characterId"`
	CharacterName   string    `json:"characterName"`
	CharacterAvatar string    `json:"characterAvatar"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Message is one stored turn of a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary is the sidebar projection of a conversation.
type Summary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	LastMessage string `json:"lastMessage"`
	Time        string `json:"time"`
}

// Service encapsulates conversation state management.
type Service struct {
	mu            sync.RWMutex
	conversations map[string]Conversation
	index         map[string]string // sessionID+characterID -> conversation id
	messages      map[string][]Message
}

// NewService bootstraps the in-memory conversation store.
func NewService() *Service {
	return &Service{
		conversations: make(map[string]Conversation),
		index:         make(map[string]string),
		messages:      make(map[string][]Message),
	}
}

// GetOrCreate resumes the conversation between a session and a character,
// creating it on first contact.
func (s *Service) GetOrCreate(_ context.Context, sessionID string, characterID int, name, avatar string) (Conversation, error) {
	if sessionID == "" {
		return Conversation{}, ErrSessionRequired
	}

	key := indexKey(sessionID, characterID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.index[key]; ok {
		return s.conversations[id], nil
	}

	now := time.Now().UTC()
	conv := Conversation{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		CharacterID:     characterID,
		CharacterName:   name,
		CharacterAvatar: avatar,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.conversations[conv.ID] = conv
	s.index[key] = conv.ID
	s.messages[conv.ID] = make([]Message, 0, 16)
	return conv, nil
}

// Append stores one turn and bumps the conversation's recency.
func (s *Service) Append(_ context.Context, conversationID, sender, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return ErrConversationNotFound
	}

	msg := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	s.messages[conversationID] = append(s.messages[conversationID], msg)

	conv.UpdatedAt = msg.CreatedAt
	s.conversations[conversationID] = conv
	return nil
}

// Transcript returns stored messages for the conversation in order.
func (s *Service) Transcript(_ context.Context, conversationID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}

	copied := make([]Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Recent lists up to ten of the session's conversations, most recently
// active first, in the shape the sidebar renders.
func (s *Service) Recent(_ context.Context, sessionID string) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var convs []Conversation
	for _, conv := range s.conversations {
		if conv.SessionID == sessionID {
			convs = append(convs, conv)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	if len(convs) > 10 {
		convs = convs[:10]
	}

	summaries := make([]Summary, 0, len(convs))
	for _, conv := range convs {
		preview := "Start a conversation..."
		timestamp := ""
		if stored := s.messages[conv.ID]; len(stored) > 0 {
			last := stored[len(stored)-1]
			preview = last.Content
			if len(preview) > 40 {
				preview = preview[:40] + "..."
			}
			timestamp = conv.UpdatedAt.Format("15:04")
		}
		summaries = append(summaries, Summary{
			ID:          conv.CharacterID,
			Name:        conv.CharacterName,
			Avatar:      conv.CharacterAvatar,
			LastMessage: preview,
			Time:        timestamp,
		})
	}
	return summaries
}

func indexKey(sessionID string, characterID int) string {
	return fmt.Sprintf("%s/%d", sessionID, characterID)
}
