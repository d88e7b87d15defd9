package session

import (
	"context"
	"sync"
)

// Peer is the single connected remote participant of a session. Push sends
// one named RPC call with a JSON-serializable payload.
type Peer interface {
	Identity() string
	Push(ctx context.Context, method string, payload any) error
}

// Session binds an id, its entity store and at most one connected peer.
// All mutation entry points run through Exec, which serializes them; pushes
// performed inside Exec are therefore observable to the client strictly
// after the mutation they announce.
type Session struct {
	id string

	mu    sync.Mutex
	state *State
	peer  Peer
}

func newSession(id string) *Session {
	return &Session{id: id, state: NewState()}
}

func (s *Session) ID() string {
	return s.id
}

// Exec runs fn with exclusive access to the session state and whatever peer
// is attached at that moment (possibly nil).
func (s *Session) Exec(fn func(state *State, peer Peer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state, s.peer)
}

// AttachPeer installs the remote participant, replacing any previous one.
// A session addresses exactly one implicit peer.
func (s *Session) AttachPeer(p Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peer = p
}

// DetachPeer removes the peer if it is still the current one, so a stale
// disconnect cannot drop a newer connection.
func (s *Session) DetachPeer(p Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer == p {
		s.peer = nil
	}
}
