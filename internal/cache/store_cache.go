// Package cache implements the tenant resolution cache on top of
// dgraph-io/ristretto as an in-process concurrent store.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/CodeStorm-Hub/stormcom/internal/domain"
	"github.com/CodeStorm-Hub/stormcom/internal/tenant"
)

const (
	// Hostnames cached at once; one counter slot per expected item, x10.
	maxEntries  = 16384
	numCounters = maxEntries * 10
)

type entry struct {
	ref       domain.StoreRef
	expiresAt time.Time
}

// StoreCache caches successful host-to-store resolutions for a fixed TTL.
// Expiry is checked lazily on read against the injected clock, so tests
// control time without sleeping. There is no background sweep; ristretto's
// own TTL acts as a wall-clock backstop for memory reclamation.
type StoreCache struct {
	c   *ristretto.Cache[string, entry]
	ttl time.Duration
	now func() time.Time
}

// New creates a resolution cache with the given TTL. A nil clock defaults to
// time.Now.
func New(ttl time.Duration, clock func() time.Time) (*StoreCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, entry]{
		NumCounters: numCounters,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}
	return &StoreCache{c: c, ttl: ttl, now: clock}, nil
}

func (s *StoreCache) Get(host string) (domain.StoreRef, bool) {
	e, found := s.c.Get(host)
	if !found {
		return domain.StoreRef{}, false
	}
	if s.now().After(e.expiresAt) {
		s.c.Del(host)
		return domain.StoreRef{}, false
	}
	return e.ref, true
}

func (s *StoreCache) Set(host string, ref domain.StoreRef) {
	s.c.SetWithTTL(host, entry{ref: ref, expiresAt: s.now().Add(s.ttl)}, 1, s.ttl)
}

func (s *StoreCache) Invalidate(host string) {
	s.c.Del(host)
}

// Wait blocks until pending writes are applied. Ristretto admits writes
// asynchronously; callers that need read-after-write semantics call this.
func (s *StoreCache) Wait() {
	s.c.Wait()
}

// Close releases the cache's resources.
func (s *StoreCache) Close() {
	s.c.Close()
}

var _ tenant.ResolutionCache = (*StoreCache)(nil)
