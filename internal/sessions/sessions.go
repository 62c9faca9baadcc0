// Package sessions maps visitor cookies to their in-memory contact flows.
package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/manojvamsi/portfolio/internal/contact"
)

// Registry holds one contact.Flow per visitor. Entries expire after ttl
// without use, and the least recently used entry is dropped once capacity
// is reached.
type Registry struct {
	mu      sync.Mutex
	flows   *expirable.LRU[string, *contact.Flow]
	newFlow func() *contact.Flow
}

// New returns a registry that builds flows with newFlow.
func New(capacity int, ttl time.Duration, newFlow func() *contact.Flow) *Registry {
	return &Registry{
		flows:   expirable.NewLRU[string, *contact.Flow](capacity, nil, ttl),
		newFlow: newFlow,
	}
}

// Get returns the flow for id and refreshes its expiry.
func (r *Registry) Get(id string) (*contact.Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.touch(id)
}

// Acquire returns the flow for id, starting a new session when id is empty,
// unknown, or expired. The returned id is the one the caller should hand
// back to the visitor.
func (r *Registry) Acquire(id string) (string, *contact.Flow) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if flow, ok := r.touch(id); ok {
		return id, flow
	}
	id = uuid.NewString()
	flow := r.newFlow()
	r.flows.Add(id, flow)
	return id, flow
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flows.Len()
}

func (r *Registry) touch(id string) (*contact.Flow, bool) {
	if id == "" {
		return nil, false
	}
	flow, ok := r.flows.Get(id)
	if !ok {
		return nil, false
	}
	r.flows.Add(id, flow)
	return flow, true
}
