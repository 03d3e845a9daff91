package ws

import "sync"

// Registry maps a user id to at most one live client. It is the only place
// that decides whether a user is reachable on a given channel scope.
//
// Register and Deregister for the same user are serialized by one mutex, and
// Deregister only removes the entry it was asked about, so a session that was
// replaced can never remove its successor's registration.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register installs c for userID and returns the client it replaced, if any.
func (r *Registry) Register(userID string, c *Client) (superseded *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.clients[userID]
	r.clients[userID] = c
	if prev == c {
		return nil
	}
	return prev
}

// Deregister removes userID only while it still maps to c. It reports whether
// an entry was removed; calling it again, or after c was replaced, is a no-op.
func (r *Registry) Deregister(userID string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.clients[userID]; ok && cur == c {
		delete(r.clients, userID)
		return true
	}
	return false
}

// Lookup returns the live client for userID.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[userID]
	return c, ok
}

// Snapshot returns the registered clients at one point in time.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}

// Users returns the ids of every registered user.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.clients))
	for id := range r.clients {
		users = append(users, id)
	}
	return users
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
