// Package push attempts best-effort real-time delivery of notifications to
// connected staff accounts. Delivery state in the database is the source of
// truth; a failed or dropped push only means the recipient catches up on
// their next connect.
package push

import (
	"sync"

	"docseal/internal/domain"
)

// Conn is one live client connection able to receive notifications.
type Conn interface {
	Send(n domain.Notification) error
}

// Registry tracks at most one live connection per account. A newer
// connection replaces the old one.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]Conn)}
}

func (r *Registry) Register(accountID int64, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[accountID] = conn
}

// Unregister removes conn for accountID. If a newer connection has already
// replaced it, the newer one stays.
func (r *Registry) Unregister(accountID int64, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[accountID] == conn {
		delete(r.conns, accountID)
	}
}

func (r *Registry) Get(accountID int64) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[accountID]
	return conn, ok
}
