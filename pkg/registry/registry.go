// Package registry offers an optional process-wide directory of named
// clients, for applications that share one connection between
// components. The core client never depends on it.
package registry

import (
	"fmt"
	"sync"

	"github.com/voxbridge/go-amiws/pkg/client"
)

// Registry maps names to clients.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*client.Client
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{clients: make(map[string]*client.Client)}
}

// Register adds a client under name. Registering an existing name is
// an error; Remove it first.
func (r *Registry) Register(name string, c *client.Client) error {
	if c == nil {
		return fmt.Errorf("registry: nil client for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[name]; exists {
		return fmt.Errorf("registry: client %q already registered", name)
	}
	r.clients[name] = c
	return nil
}

// Get returns the named client.
func (r *Registry) Get(name string) (*client.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[name]
	return c, ok
}

// Remove forgets the named client without closing it.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, name)
}

// Range calls fn for each registered client until fn returns false.
func (r *Registry) Range(fn func(name string, c *client.Client) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, c := range r.clients {
		if !fn(name, c) {
			return
		}
	}
}

// Default is a shared registry for applications that want one.
var Default = New()
