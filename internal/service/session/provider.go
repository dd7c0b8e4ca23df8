package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/anthonytapias/charmefy/internal/auth"
)

const (
	guestKey      = "session_id_guest"
	userKeyFormat = "session_id_user_%s"
	serverKey     = "session_id"
)

// Store persists session tokens across restarts. Implementations may fail
// to persist; the provider degrades to in-memory tokens in that case.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Provider derives stable session identities scoped to either an
// authenticated user or an anonymous guest. Tokens are minted lazily on
// first need and never rotated; the guest token outlives login.
type Provider struct {
	mu    sync.Mutex
	store Store
	mem   map[string]string
}

// NewProvider wraps the given store. A nil store keeps every token
// in-memory for the lifetime of the process.
func NewProvider(store Store) *Provider {
	return &Provider{
		store: store,
		mem:   make(map[string]string),
	}
}

// Identity returns the session token for the given auth scope, minting and
// persisting one if absent. Repeated calls with the same scope return the
// same token.
func (p *Provider) Identity(state auth.State) string {
	key := guestKey
	mint := func() string { return "guest_" + uuid.NewString() }
	if state.LoggedIn() && state.UserID != "" {
		key = fmt.Sprintf(userKeyFormat, state.UserID)
		mint = func() string { return fmt.Sprintf("user_%s_%s", state.UserID, uuid.NewString()) }
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if token, ok := p.lookup(key); ok {
		return token
	}

	token := mint()
	p.save(key, token)
	return token
}

// SetServerIdentity stores a server-issued session id. The server is
// authoritative once it responds; the token is kept under its own key so
// scoped identities are never rewritten.
func (p *Provider) SetServerIdentity(id string) {
	if id == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.save(serverKey, id)
}

// ClearUser removes the persisted identity for one user, as part of an
// explicit logout. Guest identity is never cleared.
func (p *Provider) ClearUser(userID string) {
	if userID == "" {
		return
	}
	key := fmt.Sprintf(userKeyFormat, userID)

	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.mem, key)
	if p.store != nil {
		// Persistence failures degrade to the in-memory view.
		_ = p.store.Delete(key)
	}
}

func (p *Provider) lookup(key string) (string, bool) {
	if token, ok := p.mem[key]; ok {
		return token, true
	}
	if p.store != nil {
		if token, ok := p.store.Get(key); ok && token != "" {
			p.mem[key] = token
			return token, true
		}
	}
	return "", false
}

func (p *Provider) save(key, token string) {
	p.mem[key] = token
	if p.store != nil {
		// A store that cannot write is not a failure: the token simply
		// lives for this process only.
		_ = p.store.Set(key, token)
	}
}
