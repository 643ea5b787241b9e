package presence

import (
	"sort"
	"sync"
)

// Directory tracks which users currently hold one or more live sockets.
// A user is online iff its connection set is non-empty; an empty set is
// removed in the same critical section that emptied it.
type Directory struct {
	mu     sync.RWMutex
	users  map[string]map[string]struct{} // userID -> connIDs
	owners map[string]string              // connID -> userID
}

// NewDirectory creates an empty presence directory
func NewDirectory() *Directory {
	return &Directory{
		users:  make(map[string]map[string]struct{}),
		owners: make(map[string]string),
	}
}

// Register adds connID to userID's set and reports whether this moved the user
// from offline to online.
//
// If connID is already owned by another user it is detached from that user
// first; the returned Detached result describes that user's state so the
// caller can announce the offline transition.
func (d *Directory) Register(userID, connID string) (online bool, detached Detached) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.owners[connID]; ok {
		if prev == userID {
			return false, Detached{}
		}
		detached = Detached{UserID: prev, Offline: d.removeLocked(prev, connID), OK: true}
	}

	conns, ok := d.users[userID]
	if !ok {
		conns = make(map[string]struct{})
		d.users[userID] = conns
	}
	conns[connID] = struct{}{}
	d.owners[connID] = userID

	return len(conns) == 1, detached
}

// Detached describes a user that lost a socket.
type Detached struct {
	UserID  string
	Offline bool // the user has no sockets left
	OK      bool // a mapping existed
}

// Unregister removes connID from whichever user owns it. Unknown ids are a
// no-op and return ok=false, so a repeated call never re-fires offline.
func (d *Directory) Unregister(connID string) (userID string, offline bool, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, ok = d.owners[connID]
	if !ok {
		return "", false, false
	}
	return userID, d.removeLocked(userID, connID), true
}

// must be called with d.mu held
func (d *Directory) removeLocked(userID, connID string) bool {
	delete(d.owners, connID)

	conns, ok := d.users[userID]
	if !ok {
		return false
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(d.users, userID)
		return true
	}
	return false
}

// SocketsFor returns the live connection ids of userID (empty when offline).
func (d *Directory) SocketsFor(userID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	conns := d.users[userID]
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsOnline reports whether userID has at least one live socket
func (d *Directory) IsOnline(userID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[userID]
	return ok
}

// OwnerOf returns the user registered on connID, if any
func (d *Directory) OwnerOf(connID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	userID, ok := d.owners[connID]
	return userID, ok
}

// Snapshot returns every online user id, sorted.
func (d *Directory) Snapshot() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.users))
	for id := range d.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stats returns the number of online users, registered sockets and users
// with more than one socket.
func (d *Directory) Stats() (users, sockets, multiDevice int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, conns := range d.users {
		if len(conns) > 1 {
			multiDevice++
		}
	}
	return len(d.users), len(d.owners), multiDevice
}
