package chat

// Wire frames exchanged over the chat websocket. Every frame carries a
// "type" discriminator; unknown or unparseable frames are dropped by the
// receiver.

const (
	FrameInit    = "init"
	FrameMessage = "message"
	FrameSession = "session"
	FrameHistory = "history"
	FrameTyping  = "typing"
	FrameError   = "error"
)

// CharacterDescriptor is the partner context transmitted in the init frame.
// The system prompt is opaque to the client; the backend uses it to
// establish the conversation context.
type CharacterDescriptor struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	SystemPrompt string `json:"systemPrompt"`
}

// InitFrame is sent exactly once, immediately after the connection opens
// and before any user message.
type InitFrame struct {
	Type      string              `json:"type"`
	SessionID string              `json:"sessionId"`
	Character CharacterDescriptor `json:"character"`
}

// MessageFrame carries one user-authored message to the backend.
type MessageFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// HistoryMessage is one stored turn replayed inside a history frame.
type HistoryMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// ServerFrame is the inbound envelope. Exactly one payload field is
// populated depending on Type.
type ServerFrame struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
	Content   string           `json:"content,omitempty"`
	Message   string           `json:"message,omitempty"`
}
