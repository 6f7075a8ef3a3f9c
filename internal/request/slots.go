package request

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/corpsite/corpsite/internal/catalog"
)

// DefaultSlotTTL is how long an untouched request survives.
const DefaultSlotTTL = 30 * time.Minute

// Slots holds one workflow per visitor.
type Slots struct {
	mu    sync.Mutex // serializes read-refresh against replacement
	deps  Deps
	cache *cache.Cache
}

// NewSlots returns a slot store whose entries expire after ttl of inactivity.
func NewSlots(deps Deps, ttl time.Duration) *Slots {
	if ttl <= 0 {
		ttl = DefaultSlotTTL
	}

	return &Slots{
		deps:  deps,
		cache: cache.New(ttl, 2*ttl), //nolint:mnd
	}
}

// Open starts a new request for the visitor, replacing any previous one.
func (s *Slots) Open(visitor string, resource catalog.Resource) (*Workflow, error) {
	w := New(s.deps)
	if err := w.Open(resource); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache.SetDefault(visitor, w)
	s.mu.Unlock()

	return w, nil
}

// Get returns the visitor's workflow and refreshes its expiry.
func (s *Slots) Get(visitor string) (*Workflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(visitor)
}

func (s *Slots) get(visitor string) (*Workflow, bool) {
	v, found := s.cache.Get(visitor)
	if !found {
		return nil, false
	}

	w, ok := v.(*Workflow)
	if !ok {
		return nil, false
	}

	s.cache.SetDefault(visitor, w)

	return w, true
}

// Close drops the visitor's workflow.
func (s *Slots) Close(visitor string) {
	s.mu.Lock()
	w, ok := s.get(visitor)
	s.cache.Delete(visitor)
	s.mu.Unlock()

	if ok {
		w.Close()
	}
}

// Len returns the number of live slots.
func (s *Slots) Len() int {
	return s.cache.ItemCount()
}
