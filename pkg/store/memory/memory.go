// Package memory implements core.Storage in process memory. It backs
// STORE=memory deployments and the service tests.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/apothecary/core"
	"github.com/lborres/apothecary/pkg/crypto"
)

var _ core.Storage = (*Store)(nil)

// Store keeps users and potions in maps guarded by one RWMutex.
// Returned records are copies; callers may mutate them freely.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*core.User // keyed by name
	potions map[string]*core.Potion
	order   []string // potion ids in insertion order

	ids *crypto.IDGenerator
	now func() time.Time

	// counters
	reads   int64
	writes  int64
	deletes int64
}

// Stats reports store size and operation counters.
type Stats struct {
	Users   int   `json:"users"`
	Potions int   `json:"potions"`
	Reads   int64 `json:"reads"`
	Writes  int64 `json:"writes"`
	Deletes int64 `json:"deletes"`
}

func New() *Store {
	return &Store{
		users:   make(map[string]*core.User),
		potions: make(map[string]*core.Potion),
		ids:     crypto.NewDefaultIDGenerator(),
		now:     time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Stats returns a snapshot of the counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	users, potions := len(s.users), len(s.potions)
	s.mu.RUnlock()

	return Stats{
		Users:   users,
		Potions: potions,
		Reads:   atomic.LoadInt64(&s.reads),
		Writes:  atomic.LoadInt64(&s.writes),
		Deletes: atomic.LoadInt64(&s.deletes),
	}
}

// Reset removes every record. Counters are kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*core.User)
	s.potions = make(map[string]*core.Potion)
	s.order = nil
}
