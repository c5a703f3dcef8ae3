package domain

import (
	"sync"
)

// CommonKeyChain is the process-wide cache of decrypted common keys, keyed by common key
// id. It is safe for concurrent use: batch operations read cached keys from several
// goroutines while a miss is being filled.
//
// The chain is owned by the key use case and cleared on logout; tests construct their
// own instances.
type CommonKeyChain struct {
	mu        sync.RWMutex
	currentID string   // id of the common key new records are written with
	keys      sync.Map // common key id -> *Key
}

// NewCommonKeyChain creates an empty chain.
func NewCommonKeyChain() *CommonKeyChain {
	return &CommonKeyChain{}
}

// CurrentID returns the id of the current common key, or "" when unknown.
func (c *CommonKeyChain) CurrentID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentID
}

// SetCurrentID marks id as the current common key.
func (c *CommonKeyChain) SetCurrentID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentID = id
}

// Get returns the cached common key for id.
func (c *CommonKeyChain) Get(id string) (*Key, bool) {
	if key, ok := c.keys.Load(id); ok {
		return key.(*Key), true
	}
	return nil, false
}

// Store caches key under id, replacing any previous entry. A replaced key is dropped, not
// zeroed, because an operation that resolved it earlier may still be using it.
func (c *CommonKeyChain) Store(id string, key *Key) {
	c.keys.Store(id, key)
}

// Len returns the number of cached keys.
func (c *CommonKeyChain) Len() int {
	n := 0
	c.keys.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Clear drops every cached key and forgets the current id. Keys handed out before the
// call stay usable by the operations holding them; later lookups miss and must go back to
// the key store or the server.
func (c *CommonKeyChain) Clear() {
	c.keys.Clear()

	c.mu.Lock()
	c.currentID = ""
	c.mu.Unlock()
}
