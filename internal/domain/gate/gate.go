// Package gate implements the shared access-code gate in front of the
// entry form.
//
// The code is a soft deterrent for an office dashboard, not a security
// boundary: anyone who knows the code gets write access.
package gate

import (
	"context"
	"crypto/subtle"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const defaultMaxSessions = 1024

// State is the unlock state of a caller.
type State int

// Gate states.
const (
	Locked State = iota
	Unlocked
)

// String returns the lower-case state name.
func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// node is one issued session token, linked oldest to newest.
type node struct {
	token string
	next  *node
}

// Gate checks the access code and tracks unlocked sessions.
type Gate struct {
	code        string
	maxSessions int

	mu       sync.Mutex
	sessions map[string]*node
	oldest   *node
	newest   *node
	size     atomic.Int64
	newToken func() string
}

// New returns a gate for code.
func New(code string, opts ...Option) *Gate {
	g := &Gate{
		code:        code,
		maxSessions: defaultMaxSessions,
		sessions:    make(map[string]*node),
		newToken:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check reports whether input equals the configured code.
func (g *Gate) Check(input string) bool {
	if g.code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(input), []byte(g.code)) == 1
}

// Unlock issues a session token when input matches the code. The oldest
// session is dropped once the set is full.
func (g *Gate) Unlock(_ context.Context, input string) (string, error) {
	if !g.Check(input) {
		return "", ErrWrongCode
	}

	token := g.newToken()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.maxSessions > 0 && len(g.sessions) >= g.maxSessions {
		g.evictOldest()
	}
	n := &node{token: token}
	if g.newest != nil {
		g.newest.next = n
	} else {
		g.oldest = n
	}
	g.newest = n
	g.sessions[token] = n
	g.size.Add(1)
	return token, nil
}

// State returns Unlocked when token belongs to a live session.
func (g *Gate) State(_ context.Context, token string) State {
	if token == "" {
		return Locked
	}
	g.mu.Lock()
	_, ok := g.sessions[token]
	g.mu.Unlock()
	if ok {
		return Unlocked
	}
	return Locked
}

// Lock forgets token. Unknown tokens are ignored.
func (g *Gate) Lock(_ context.Context, token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.sessions[token]
	if !ok {
		return
	}
	delete(g.sessions, token)
	g.size.Add(-1)

	if g.oldest == n {
		g.oldest = n.next
		if g.oldest == nil {
			g.newest = nil
		}
		return
	}
	prev := g.oldest
	for prev != nil && prev.next != n {
		prev = prev.next
	}
	if prev != nil {
		prev.next = n.next
		if g.newest == n {
			g.newest = prev
		}
	}
}

// Sessions returns the number of live sessions.
func (g *Gate) Sessions() int64 {
	return g.size.Load()
}

// evictOldest must be called with g.mu held.
func (g *Gate) evictOldest() {
	n := g.oldest
	if n == nil {
		return
	}
	delete(g.sessions, n.token)
	g.oldest = n.next
	if g.oldest == nil {
		g.newest = nil
	}
	g.size.Add(-1)
}
