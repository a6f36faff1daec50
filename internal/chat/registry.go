package chat

import (
	"context"
	"sync"

	"github.com/mycollege/chatbot-engine/pkg/zlog"
)

// Sender is the outbound side of one conversational session: the opaque
// handle carries accumulated history on the provider side.
type Sender interface {
	SendMessage(ctx context.Context, text string, image []byte, mimeType string) (string, error)
}

// SessionFactory builds a fresh session handle with the service's fixed
// model configuration.
type SessionFactory func() Sender

// Registry maps user ids to live session handles. Entries survive until an
// explicit Clear or process exit; there is no TTL and no capacity bound, so
// the map grows with the number of distinct users seen.
type Registry struct {
	mu       sync.Mutex
	factory  SessionFactory
	sessions map[uint64]Sender
}

func NewRegistry(factory SessionFactory) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[uint64]Sender),
	}
}

// Resolve returns the user's session, creating one on first contact. The lock
// is held across lookup-and-create, so two concurrent first messages from the
// same user share a single handle.
func (r *Registry) Resolve(userID uint64) Sender {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[userID]; ok {
		return sess
	}
	zlog.Infof("creating new chat session for user %d", userID)
	sess := r.factory()
	r.sessions[userID] = sess
	return sess
}

// Clear drops the user's session if present. Clearing an absent session is
// not an error; the return value distinguishes the two outcomes.
func (r *Registry) Clear(userID uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[userID]; !ok {
		return false
	}
	delete(r.sessions, userID)
	zlog.Infof("cleared chat session for user %d", userID)
	return true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
