package chat

import chatmodel "github.com/anthonytapias/charmefy/internal/model/chat"

// EventKind discriminates client notifications.
type EventKind string

const (
	EventStateChanged EventKind = "state"
	EventHistory      EventKind = "history"
	EventMessage      EventKind = "message"
	EventTyping       EventKind = "typing"
	EventRecents      EventKind = "recents"
	EventSendFailed   EventKind = "send-failed"
	EventServerError  EventKind = "server-error"
)

// Event is a coarse change notification emitted to the view. Consumers
// are expected to re-read the client snapshot; delivery is best effort and
// a dropped event never loses state.
type Event struct {
	Kind    EventKind
	State   State
	Message chatmodel.Message
	Err     string
}
