// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package query

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/juju/juju-dashboard/internal/store"
)

// Memo caches derived views of a store. Entries are keyed by the query and
// its filters and are dropped whenever the store revision moves on.
type Memo struct {
	mu       sync.Mutex
	data     *gocache.Cache
	revision uint64
}

// NewMemo returns an empty Memo. A ttl of zero keeps entries until the
// store changes.
func NewMemo(ttl time.Duration) *Memo {
	if ttl <= 0 {
		return &Memo{data: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Memo{data: gocache.New(ttl, ttl*2)}
}

// sync flushes the cache if the store has changed since it was filled.
func (m *Memo) sync(s *store.Store) {
	if rev := s.Revision(); rev != m.revision {
		m.data.Flush()
		m.revision = rev
	}
}

func (m *Memo) get(s *store.Store, key string, compute func() any) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sync(s)
	if value, ok := m.data.Get(key); ok {
		return value
	}
	value := compute()
	m.data.SetDefault(key, value)
	return value
}

// GroupByStatus returns the memoised GroupByStatus of the store's
// snapshots. The result is shared and must not be modified.
func (m *Memo) GroupByStatus(s *store.Store, filters Filters) StatusGroups {
	return m.get(s, "status|"+filters.Key(), func() any {
		return GroupByStatus(s.ModelData(), filters)
	}).(StatusGroups)
}

// GroupByCloud returns the memoised GroupByCloud of the store's snapshots.
func (m *Memo) GroupByCloud(s *store.Store, filters Filters) map[string][]store.ModelData {
	return m.get(s, "cloud|"+filters.Key(), func() any {
		return GroupByCloud(s.ModelData(), filters)
	}).(map[string][]store.ModelData)
}

// GroupByOwner returns the memoised GroupByOwner of the store's snapshots.
func (m *Memo) GroupByOwner(s *store.Store, filters Filters) map[string][]store.ModelData {
	return m.get(s, "owner|"+filters.Key(), func() any {
		return GroupByOwner(s.ModelData(), filters)
	}).(map[string][]store.ModelData)
}

// Len returns the number of cached views.
func (m *Memo) Len() int {
	return m.data.ItemCount()
}
