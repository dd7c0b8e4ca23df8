// Package auth exposes the authentication state the chat core consumes.
// Login itself happens elsewhere; the core only needs to know whether a
// token is present and which user it belongs to.
package auth

// State is a snapshot of the caller's authentication status.
type State struct {
	Token  string
	UserID string
}

// LoggedIn reports whether a live connection may be opened at all.
// Unauthenticated visitors can browse characters but never chat.
func (s State) LoggedIn() bool {
	return s.Token != ""
}

// Accessor supplies the current auth state on demand, so the connection
// manager never reads ambient storage directly.
type Accessor interface {
	State() State
}

// StaticAccessor returns a fixed state, suitable for CLI wiring and tests.
type StaticAccessor struct {
	Current State
}

// State implements Accessor.
func (a StaticAccessor) State() State {
	return a.Current
}
