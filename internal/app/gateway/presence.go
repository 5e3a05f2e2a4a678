/*
Package gateway is the event-dispatched boundary of the session core.

This file implements the presence registry: the per-user connection sets and
the derived online set. Presence has its own lock and never takes a room or
room-registry lock, so rooms may query it from under their own mutex.
*/
package gateway

import (
	"sync"

	"gambit/internal/app/game"
)

// presenceRegistry tracks live connections per user. A user is online iff its
// connection set is non-empty.
type presenceRegistry struct {
	mu sync.RWMutex

	// connections maps userID to its live clients keyed by connection ID.
	connections map[string]map[string]*Client

	// identities maps userID to its public identity while online.
	identities map[string]game.Player
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{
		connections: make(map[string]map[string]*Client),
		identities:  make(map[string]game.Player),
	}
}

// add registers a connection and reports whether the user just came online.
func (p *presenceRegistry) add(c *Client) (cameOnline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.connections[c.user.UserID]
	if !ok {
		set = make(map[string]*Client)
		p.connections[c.user.UserID] = set
		p.identities[c.user.UserID] = c.user.Player()
	}

	set[c.connID] = c

	return !ok
}

// remove unregisters a connection and reports whether the user went offline.
func (p *presenceRegistry) remove(c *Client) (wentOffline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.connections[c.user.UserID]
	if !ok {
		return false
	}

	if current, exists := set[c.connID]; !exists || current != c {
		return false
	}

	delete(set, c.connID)

	if len(set) == 0 {
		delete(p.connections, c.user.UserID)
		delete(p.identities, c.user.UserID)
		return true
	}

	return false
}

// Online reports whether the user has at least one live connection.
func (p *presenceRegistry) Online(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.connections[userID]) > 0
}

// ToUser delivers an event to every live connection of the user.
func (p *presenceRegistry) ToUser(userID, event string, payload any) {
	p.mu.RLock()
	clients := make([]*Client, 0, len(p.connections[userID]))
	for _, c := range p.connections[userID] {
		clients = append(clients, c)
	}
	p.mu.RUnlock()

	for _, c := range clients {
		c.SendEvent(event, payload)
	}
}

// broadcast delivers an event to every live connection of every user.
func (p *presenceRegistry) broadcast(event string, payload any) {
	p.mu.RLock()
	clients := make([]*Client, 0, len(p.connections))
	for _, set := range p.connections {
		for _, c := range set {
			clients = append(clients, c)
		}
	}
	p.mu.RUnlock()

	for _, c := range clients {
		c.SendEvent(event, payload)
	}
}

// onlineList snapshots the online users for the presence broadcast.
func (p *presenceRegistry) onlineList() []game.Player {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]game.Player, 0, len(p.identities))
	for _, u := range p.identities {
		users = append(users, u)
	}
	return users
}

// allClients snapshots every live client, used at shutdown.
func (p *presenceRegistry) allClients() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	clients := make([]*Client, 0)
	for _, set := range p.connections {
		for _, c := range set {
			clients = append(clients, c)
		}
	}
	return clients
}

// reset clears the registry.
func (p *presenceRegistry) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connections = make(map[string]map[string]*Client)
	p.identities = make(map[string]game.Player)
}
