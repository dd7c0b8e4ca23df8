package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anthonytapias/charmefy/internal/auth"
	"github.com/anthonytapias/charmefy/internal/model/character"
	chatmodel "github.com/anthonytapias/charmefy/internal/model/chat"
	"github.com/anthonytapias/charmefy/internal/service/recent"
	"github.com/anthonytapias/charmefy/internal/service/session"
)

// ErrNotOpen rejects sends outside the open state. The view is expected
// never to offer the affordance then; hitting it is a contract violation
// upstream, not a recoverable error path.
var ErrNotOpen = errors.New("connection is not open")

// State describes the lifecycle of the single live connection slot.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateFailed       State = "closed-with-error"
)

// transport is the subset of *websocket.Conn the client writes to and
// reads from, injectable for deterministic tests.
type transport interface {
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

type dialFunc func(ctx context.Context, rawURL string) (transport, error)

// Config wires the client's collaborators. Identity and Auth are
// mandatory; Recent may be nil when no sidebar is attached.
type Config struct {
	ServerURL string
	Identity  *session.Provider
	Auth      auth.Accessor
	Recent    recent.Fetcher
}

// Client owns the live chat connection for the active conversation
// partner: it opens and authenticates the transport, feeds inbound frames
// into the message stream and typing signal, and rebuilds everything on
// partner switch. All state transitions happen under one mutex in
// response to discrete events; nothing blocks while holding it across
// network calls.
type Client struct {
	serverURL string
	identity  *session.Provider
	auth      auth.Accessor
	recent    recent.Fetcher
	dial      dialFunc

	mu         sync.Mutex
	state      State
	conn       transport
	gen        int
	partner    character.Character
	sessionID  string
	stream     Stream
	typing     bool
	recents    []recent.Summary

	events chan Event
}

// New builds a disconnected client. No network activity happens until a
// partner is selected.
func New(cfg Config) *Client {
	return &Client{
		serverURL: cfg.ServerURL,
		identity:  cfg.Identity,
		auth:      cfg.Auth,
		recent:    cfg.Recent,
		dial:      dialWebsocket,
		state:     StateDisconnected,
		events:    make(chan Event, 64),
	}
}

// Events exposes the change notification channel consumed by the view.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Snapshot is a consistent copy of everything the chat view renders.
type Snapshot struct {
	State    State
	Partner  character.Character
	Messages []chatmodel.Message
	Typing   bool
	Recents  []recent.Summary
}

// Snapshot returns the current view state.
func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:    c.state,
		Partner:  c.partner,
		Messages: c.stream.Messages(),
		Typing:   c.typing,
		Recents:  append([]recent.Summary(nil), c.recents...),
	}
}

// SwitchPartner makes ch the active conversation partner. The previous
// connection is torn down, the message log and typing signal reset, and a
// fresh connection attempt starts. Unauthenticated callers stay
// disconnected: visitors may browse a character but never open a live
// connection.
func (c *Client) SwitchPartner(ctx context.Context, ch character.Character) {
	c.mu.Lock()
	c.teardownLocked()
	c.partner = ch
	c.stream.Reset()
	c.typing = false

	state := c.auth.State()
	if !state.LoggedIn() {
		c.mu.Unlock()
		c.emit(Event{Kind: EventStateChanged, State: StateDisconnected})
		return
	}

	c.state = StateConnecting
	c.sessionID = c.identity.Identity(state)
	gen := c.gen
	sessionID := c.sessionID
	c.mu.Unlock()

	c.emit(Event{Kind: EventStateChanged, State: StateConnecting})
	go c.connect(ctx, gen, ch, sessionID)
}

// Close tears the active connection down and leaves the client
// disconnected. Safe to call in any state.
func (c *Client) Close() {
	c.mu.Lock()
	c.teardownLocked()
	c.mu.Unlock()
	c.emit(Event{Kind: EventStateChanged, State: StateDisconnected})
}

// Send appends content optimistically to the log, marks the partner as
// typing, and transmits one message frame. Sends outside the open state
// are rejected without touching the log: the view must not have offered
// the affordance.
func (c *Client) Send(content string) error {
	c.mu.Lock()
	if c.state != StateOpen || c.conn == nil {
		c.mu.Unlock()
		log.Printf("[chat] rejecting send, connection not open")
		return ErrNotOpen
	}
	msg := c.stream.AppendUser(content)
	c.typing = true
	conn := c.conn
	c.mu.Unlock()

	c.emit(Event{Kind: EventMessage, Message: msg})

	if err := conn.WriteJSON(chatmodel.MessageFrame{Type: chatmodel.FrameMessage, Content: content}); err != nil {
		// The optimistic append stays; the failure is surfaced so a view
		// can mark the message instead of waiting on a reply forever.
		log.Printf("[chat] send failed: %v", err)
		c.emit(Event{Kind: EventSendFailed, Err: err.Error()})
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// RefreshRecents fetches the sidebar listing once, e.g. on initial mount.
// Failures are logged and otherwise ignored.
func (c *Client) RefreshRecents(ctx context.Context) {
	if c.recent == nil {
		return
	}
	state := c.auth.State()
	if !state.LoggedIn() {
		return
	}
	c.mu.Lock()
	gen := c.gen
	sessionID := c.sessionID
	c.mu.Unlock()
	if sessionID == "" {
		sessionID = c.identity.Identity(state)
	}
	c.fetchRecents(ctx, gen, sessionID)
}

// connect dials the backend and, on success, transmits the init frame
// before the connection is considered open. A stale generation means the
// attempt was superseded by a partner switch and the transport is
// discarded silently.
func (c *Client) connect(ctx context.Context, gen int, ch character.Character, sessionID string) {
	conn, err := c.dial(ctx, c.wsURL(ch.ID))

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.state = StateFailed
		c.mu.Unlock()
		log.Printf("[chat] connect to character %d failed: %v", ch.ID, err)
		c.emit(Event{Kind: EventStateChanged, State: StateFailed})
		return
	}
	c.conn = conn
	c.mu.Unlock()

	init := chatmodel.InitFrame{
		Type:      chatmodel.FrameInit,
		SessionID: sessionID,
		Character: ch.Descriptor(),
	}
	if err := conn.WriteJSON(init); err != nil {
		log.Printf("[chat] init frame failed: %v", err)
		c.failConn(gen)
		conn.Close()
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.state = StateOpen
	c.mu.Unlock()

	c.emit(Event{Kind: EventStateChanged, State: StateOpen})
	go c.readLoop(gen, conn)
}

// readLoop delivers inbound frames in transport order until the
// connection dies or is superseded.
func (c *Client) readLoop(gen int, conn transport) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			current := gen == c.gen
			if current {
				c.state = StateFailed
				c.typing = false
				c.conn = nil
			}
			c.mu.Unlock()
			conn.Close()
			if current {
				log.Printf("[chat] connection closed: %v", err)
				c.emit(Event{Kind: EventStateChanged, State: StateFailed})
			}
			return
		}
		c.handleFrame(gen, data)
	}
}

// handleFrame is the single ingestion point for inbound frames. Feeding a
// recorded frame sequence through it replays a session deterministically.
func (c *Client) handleFrame(gen int, data []byte) {
	var frame chatmodel.ServerFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("[chat] dropping malformed frame: %v", err)
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}

	switch frame.Type {
	case chatmodel.FrameSession:
		sessionID := frame.SessionID
		c.mu.Unlock()
		if sessionID != "" {
			c.identity.SetServerIdentity(sessionID)
		}
	case chatmodel.FrameHistory:
		c.stream.ReplaceWithHistory(frame.Messages)
		c.mu.Unlock()
		c.emit(Event{Kind: EventHistory})
	case chatmodel.FrameMessage:
		c.typing = false
		msg := c.stream.AppendPartner(frame.Content)
		sessionID := c.sessionID
		c.mu.Unlock()
		c.emit(Event{Kind: EventMessage, Message: msg})
		if c.recent != nil {
			go c.fetchRecents(context.Background(), gen, sessionID)
		}
	case chatmodel.FrameTyping:
		c.typing = true
		c.mu.Unlock()
		c.emit(Event{Kind: EventTyping})
	case chatmodel.FrameError:
		c.typing = false
		c.mu.Unlock()
		// Application-level error: the connection stays open and usable.
		log.Printf("[chat] server error: %s", frame.Message)
		c.emit(Event{Kind: EventServerError, Err: frame.Message})
	default:
		c.mu.Unlock()
		log.Printf("[chat] dropping frame with unknown type %q", frame.Type)
	}
}

// fetchRecents refreshes the sidebar listing. The result is applied only
// if the connection slot has not changed since the fetch started; a stale
// refresh completing after a partner switch is discarded.
func (c *Client) fetchRecents(ctx context.Context, gen int, sessionID string) {
	summaries, err := c.recent.Fetch(ctx, sessionID)
	if err != nil {
		log.Printf("[recent] refresh failed: %v", err)
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.recents = summaries
	c.mu.Unlock()
	c.emit(Event{Kind: EventRecents})
}

// failConn moves the slot to closed-with-error unless it was superseded.
func (c *Client) failConn(gen int) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = StateFailed
	c.typing = false
	c.conn = nil
	c.mu.Unlock()
	c.emit(Event{Kind: EventStateChanged, State: StateFailed})
}

// teardownLocked retires the current connection slot. An open connection
// gets a graceful close frame; a connecting or failed one is discarded.
// Bumping the generation makes in-flight dials, read loops and recent
// refreshes no-ops when they resolve.
func (c *Client) teardownLocked() {
	c.gen++
	if c.conn != nil {
		if c.state == StateOpen {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
		}
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
}

func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		// The view re-reads the snapshot on every event, so dropping a
		// notification under backpressure loses nothing.
	}
}

// wsURL derives the websocket endpoint for one character from the
// backend base URL, upgrading the scheme in kind (https gets wss).
func (c *Client) wsURL(characterID int) string {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Sprintf("ws://localhost/ws/chat/%d", characterID)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = fmt.Sprintf("/ws/chat/%d", characterID)
	return u.String()
}

func dialWebsocket(ctx context.Context, rawURL string) (transport, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	conn, _, err := dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}
