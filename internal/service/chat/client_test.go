package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anthonytapias/charmefy/internal/auth"
	"github.com/anthonytapias/charmefy/internal/model/character"
	chatmodel "github.com/anthonytapias/charmefy/internal/model/chat"
	"github.com/anthonytapias/charmefy/internal/service/recent"
	"github.com/anthonytapias/charmefy/internal/service/session"
)

type fakeTransport struct {
	mu        sync.Mutex
	writes    []any
	frames    chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	failWrite bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		frames: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return errors.New("transport not writable")
	}
	f.writes = append(f.writes, v)
	return nil
}

func (f *fakeTransport) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, messageType)
	return nil
}

func (f *fakeTransport) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.frames:
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) push(t *testing.T, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	f.frames <- data
}

func (f *fakeTransport) pushRaw(data []byte) {
	f.frames <- data
}

func (f *fakeTransport) written() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.writes...)
}

func loggedIn() auth.StaticAccessor {
	return auth.StaticAccessor{Current: auth.State{Token: "token", UserID: "42"}}
}

func guest() auth.StaticAccessor {
	return auth.StaticAccessor{Current: auth.State{}}
}

func newTestClient(a auth.Accessor, fetcher recent.Fetcher) *Client {
	return New(Config{
		ServerURL: "http://chat.test",
		Identity:  session.NewProvider(nil),
		Auth:      a,
		Recent:    fetcher,
	})
}

// waitEvent drains the event channel until kind arrives or the deadline hits.
func waitEvent(t *testing.T, c *Client, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func waitState(t *testing.T, c *Client, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events():
			if ev.Kind == EventStateChanged && ev.State == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func openClient(t *testing.T, c *Client, tr *fakeTransport, ch character.Character) {
	t.Helper()
	c.dial = func(ctx context.Context, rawURL string) (transport, error) {
		return tr, nil
	}
	c.SwitchPartner(context.Background(), ch)
	waitState(t, c, StateOpen)
}

func TestUnauthenticatedNeverConnects(t *testing.T) {
	dials := 0
	c := newTestClient(guest(), nil)
	c.dial = func(ctx context.Context, rawURL string) (transport, error) {
		dials++
		return newFakeTransport(), nil
	}

	c.SwitchPartner(context.Background(), character.Character{ID: 1, Name: "Jemma"})
	waitState(t, c, StateDisconnected)

	if dials != 0 {
		t.Fatalf("expected no dial attempts, got %d", dials)
	}
	if snap := c.Snapshot(); snap.State != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", snap.State)
	}
}

func TestSendRejectedWhenNotOpen(t *testing.T) {
	c := newTestClient(loggedIn(), nil)

	if err := c.Send("hello"); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	if snap := c.Snapshot(); len(snap.Messages) != 0 {
		t.Fatalf("rejected send must not touch the log, got %d messages", len(snap.Messages))
	}
}

func TestInitFrameSentBeforeOpen(t *testing.T) {
	tr := newFakeTransport()
	c := newTestClient(loggedIn(), nil)
	ch := character.Character{ID: 2, Name: "Amelia", Avatar: "a.png", SystemPrompt: "You are Amelia."}
	openClient(t, c, tr, ch)

	writes := tr.written()
	if len(writes) == 0 {
		t.Fatal("expected init frame to be written")
	}
	init, ok := writes[0].(chatmodel.InitFrame)
	if !ok {
		t.Fatalf("first write is %T, want InitFrame", writes[0])
	}
	if init.Type != chatmodel.FrameInit {
		t.Fatalf("unexpected frame type %q", init.Type)
	}
	if init.SessionID == "" {
		t.Fatal("init frame must carry the session identity")
	}
	if init.Character.ID != 2 || init.Character.Name != "Amelia" || init.Character.SystemPrompt != "You are Amelia." {
		t.Fatalf("init frame carries wrong descriptor: %+v", init.Character)
	}
}

func TestHistoryReplacementIsTotal(t *testing.T) {
	tr := newFakeTransport()
	c := newTestClient(loggedIn(), nil)
	openClient(t, c, tr, character.Character{ID: 1, Name: "Jemma"})

	// Messages appended before history arrives are discarded by it.
	if err := c.Send("early"); err != nil {
		t.Fatalf("send err: %v", err)
	}

	tr.push(t, chatmodel.ServerFrame{Type: chatmodel.FrameHistory, Messages: []chatmodel.HistoryMessage{
		{Sender: "user", Content: "hello"},
		{Sender: "character", Content: "hi there"},
	}})
	waitEvent(t, c, EventHistory)

	snap := c.Snapshot()
	if len(snap.Messages) != 2 {
		t.Fatalf("expected 2 messages after history, got %d", len(snap.Messages))
	}
	if snap.Messages[0].ID != 1 || snap.Messages[1].ID != 2 {
		t.Fatalf("expected fresh ids 1 and 2, got %d and %d", snap.Messages[0].ID, snap.Messages[1].ID)
	}
	if snap.Messages[0].Sender != chatmodel.SenderUser || snap.Messages[1].Sender != chatmodel.SenderPartner {
		t.Fatalf("unexpected senders: %+v", snap.Messages)
	}
}

func TestMessageFramesAppendInArrivalOrder(t *testing.T) {
	tr := newFakeTransport()
	c := newTestClient(loggedIn(), nil)
	openClient(t, c, tr, character.Character{ID: 1, Name: "Jemma"})

	contents := []string{"one", "two", "three"}
	for i, content := range contents {
		tr.push(t, chatmodel.ServerFrame{Type: chatmodel.FrameMessage, Content: content})
		waitEvent(t, c, EventMessage)

		snap := c.Snapshot()
		if len(snap.Messages) != i+1 {
			t.Fatalf("expected %d messages, got %d", i+1, len(snap.Messages))
		}
		if snap.Typing {
			t.Fatal("typing must clear on message arrival")
		}
	}

	snap := c.Snapshot()
	for i, content := range contents {
		if snap.Messages[i].Content != content {
			t.Fatalf("message %d out of order: got %q want %q", i, snap.Messages[i].Content, content)
		}
	}
}

func TestScenarioConversation(t *testing.T) {
	tr := newFakeTransport()
	c := newTestClient(loggedIn(), nil)
	openClient(t, c, tr, character.Character{ID: 1, Name: "Jemma"})

	tr.push(t, chatmodel.ServerFrame{Type: chatmodel.FrameHistory, Messages: []chatmodel.HistoryMessage{
		{Sender: "user", Content: "hey"},
		{Sender: "character", Content: "welcome back"},
	}})
	waitEvent(t, c, EventHistory)

	if err := c.Send("hi"); err != nil {
		t.Fatalf("send err: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Messages) != 3 {
		t.Fatalf("expected 3 messages after send, got %d", len(snap.Messages))
	}
	if got := snap.Messages[2]; got.ID != 3 || got.Sender != chatmodel.SenderUser || got.Content != "hi" {
		t.Fatalf("unexpected optimistic append: %+v", got)
	}
	if !snap.Typing {
		t.Fatal("typing must be set after a send")
	}

	tr.push(t, chatmodel.ServerFrame{Type: chatmodel.FrameTyping})
	waitEvent(t, c, EventTyping)
	if !c.Snapshot().Typing {
		t.Fatal("typing frame must keep the signal set")
	}

	tr.push(t, chatmodel.ServerFrame{Type: chatmodel.FrameMessage, Content: "hello"})
	waitEvent(t, c, EventMessage)

	snap = c.Snapshot()
	if len(snap.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(snap.Messages))
	}
	if got := snap.Messages[3]; got.ID != 4 || got.Sender != chatmodel.SenderPartner {
		t.Fatalf("unexpected partner message: %+v", got)
	}
	if snap.Typing {
		t.Fatal("typing must clear after the reply")
	}
}

func TestErrorFrameKeepsConnectionUsable(t *testing.T) {
	tr := newFakeTransport()
	c := newTestClient(loggedIn(), nil)
	openClient(t, c, tr, character.Character{ID: 1, Name: "Jemma"})

	if err := c.Send("hi"); err != nil {
		t.Fatalf("send err: %v", err)
	}

	tr.push(t, chatmodel.ServerFrame{Type: chatmodel.FrameError, Message: "rate limited"})
	ev := waitEvent(t, c, EventServerError)
	if ev.Err != "rate limited" {
		t.Fatalf("unexpected error payload %q", ev.Err)
	}

	snap := c.Snapshot()
	if snap.State != StateOpen {
		t.Fatalf("error frame must not close the connection, state=%s", snap.State)
	}
	if snap.Typing {
		t.Fatal("error frame must clear typing")
	}
	if len(snap.Messages) != 1 {
		t.Fatalf("error frame must not touch the log, got %d messages", len(snap.Messages))
	}

	if err := c.Send("still there?"); err != nil {
		t.Fatalf("send after error frame must be accepted: %v", err)
	}
}

func TestMalformedFrameDropped(t *testing.T) {
	tr := newFakeTransport()
	c := newTestClient(loggedIn(), nil)
	openClient(t, c, tr, character.Character{ID: 1, Name: "Jemma"})

	tr.pushRaw([]byte("{not json"))
	// A well-formed frame after the garbage proves the loop survived.
	tr.push(t, chatmodel.ServerFrame{Type: chatmodel.FrameTyping})
	waitEvent(t, c, EventTyping)

	if snap := c.Snapshot(); len(snap.Messages) != 0 || snap.State != StateOpen {
		t.Fatalf("malformed frame must not change state: %+v", snap)
	}
}

func TestPartnerSwitchResetsEverything(t *testing.T) {
	trA := newFakeTransport()
	c := newTestClient(loggedIn(), nil)
	openClient(t, c, trA, character.Character{ID: 1, Name: "Jemma"})

	trA.push(t, chatmodel.ServerFrame{Type: chatmodel.FrameMessage, Content: "hi"})
	waitEvent(t, c, EventMessage)
	trA.push(t, chatmodel.ServerFrame{Type: chatmodel.FrameTyping})
	waitEvent(t, c, EventTyping)

	c.mu.Lock()
	staleGen := c.gen
	c.mu.Unlock()

	trB := newFakeTransport()
	c.dial = func(ctx context.Context, rawURL string) (transport, error) {
		return trB, nil
	}
	c.SwitchPartner(context.Background(), character.Character{ID: 2, Name: "Amelia"})
	waitState(t, c, StateOpen)

	snap := c.Snapshot()
	if len(snap.Messages) != 0 {
		t.Fatalf("switch must reset the log, got %d messages", len(snap.Messages))
	}
	if snap.Typing {
		t.Fatal("switch must clear typing")
	}
	if snap.Partner.ID != 2 {
		t.Fatalf("expected partner 2, got %d", snap.Partner.ID)
	}

	writes := trB.written()
	if len(writes) == 0 {
		t.Fatal("expected init frame on the new connection")
	}
	init, ok := writes[0].(chatmodel.InitFrame)
	if !ok || init.Character.ID != 2 {
		t.Fatalf("new connection must carry the new descriptor, got %+v", writes[0])
	}

	// A frame from the superseded connection is discarded silently.
	stale, _ := json.Marshal(chatmodel.ServerFrame{Type: chatmodel.FrameMessage, Content: "stale"})
	c.handleFrame(staleGen, stale)
	if snap := c.Snapshot(); len(snap.Messages) != 0 {
		t.Fatalf("stale connection frame applied: %+v", snap.Messages)
	}
}

func TestConnectFailureHasNoRetry(t *testing.T) {
	dials := 0
	c := newTestClient(loggedIn(), nil)
	c.dial = func(ctx context.Context, rawURL string) (transport, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	c.SwitchPartner(context.Background(), character.Character{ID: 1, Name: "Jemma"})
	waitState(t, c, StateFailed)

	time.Sleep(50 * time.Millisecond)
	if dials != 1 {
		t.Fatalf("expected a single dial attempt, got %d", dials)
	}
	if err := c.Send("hi"); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen after failure, got %v", err)
	}
}

func TestSendFailureIsObservable(t *testing.T) {
	tr := newFakeTransport()
	c := newTestClient(loggedIn(), nil)
	openClient(t, c, tr, character.Character{ID: 1, Name: "Jemma"})

	tr.mu.Lock()
	tr.failWrite = true
	tr.mu.Unlock()

	if err := c.Send("hi"); err == nil {
		t.Fatal("expected send error")
	}
	waitEvent(t, c, EventSendFailed)

	// The optimistic append stays; there is no rollback path.
	if snap := c.Snapshot(); len(snap.Messages) != 1 || !snap.Typing {
		t.Fatalf("optimistic state lost after failed send: %+v", snap)
	}
}

func TestTransportErrorMovesToFailed(t *testing.T) {
	tr := newFakeTransport()
	c := newTestClient(loggedIn(), nil)
	openClient(t, c, tr, character.Character{ID: 1, Name: "Jemma"})

	tr.Close()
	waitState(t, c, StateFailed)

	if snap := c.Snapshot(); snap.Typing {
		t.Fatal("typing must clear on disconnect")
	}
}

func TestWebsocketURLDerivedFromServerScheme(t *testing.T) {
	cases := []struct {
		server string
		want   string
	}{
		{"http://chat.test", "ws://chat.test/ws/chat/7"},
		{"https://chat.test", "wss://chat.test/ws/chat/7"},
		{"http://localhost:8080", "ws://localhost:8080/ws/chat/7"},
	}
	for _, tc := range cases {
		c := New(Config{ServerURL: tc.server, Identity: session.NewProvider(nil), Auth: guest()})
		if got := c.wsURL(7); got != tc.want {
			t.Fatalf("wsURL(%q) = %q, want %q", tc.server, got, tc.want)
		}
	}
}
