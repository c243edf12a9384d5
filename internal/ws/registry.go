package ws

import "sort"

// Registry maps a user ID to that user's single active client. A newer
// connection from the same user replaces the older one.
//
// Registry does no locking of its own: the Hub serializes every mutation on
// its event loop and guards reads with its own mutex.
type Registry struct {
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Set inserts or overwrites the entry for userID and returns the client it
// replaced, if any.
func (r *Registry) Set(userID string, c *Client) *Client {
	prev := r.clients[userID]
	r.clients[userID] = c
	return prev
}

// Delete removes userID. Removing an absent user is a no-op that returns false.
func (r *Registry) Delete(userID string) bool {
	if _, ok := r.clients[userID]; !ok {
		return false
	}
	delete(r.clients, userID)
	return true
}

// DeleteIf removes userID only while it still maps to c, so a replaced
// connection closing late cannot evict its successor.
func (r *Registry) DeleteIf(userID string, c *Client) bool {
	if cur, ok := r.clients[userID]; !ok || cur != c {
		return false
	}
	delete(r.clients, userID)
	return true
}

func (r *Registry) Get(userID string) (*Client, bool) {
	c, ok := r.clients[userID]
	return c, ok
}

// Users returns the sorted key set.
func (r *Registry) Users() []string {
	users := make([]string, 0, len(r.clients))
	for id := range r.clients {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

func (r *Registry) Len() int {
	return len(r.clients)
}

func (r *Registry) all() []*Client {
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

func (r *Registry) reset() {
	r.clients = make(map[string]*Client)
}
