package cartstore

import (
	"context"
	"sync"
	"time"

	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/core/domain/model"
	"foodbridge/internal/order-service/core/ports"
)

const cleanupInterval = time.Minute

type entry struct {
	basket    model.Basket
	expiresAt time.Time
}

// MemoryStore keeps baskets in memory. A basket dies either when its TTL runs
// out or when it has seen no update for inactiveTTL.
type MemoryStore struct {
	mu          sync.Mutex
	entries     map[string]entry
	inactiveTTL time.Duration
	mylog       mylogger.Logger
}

func New(ctx context.Context, mylog mylogger.Logger, inactiveTTL time.Duration) ports.CartStore {
	s := &MemoryStore{
		entries:     make(map[string]entry),
		inactiveTTL: inactiveTTL,
		mylog:       mylog,
	}
	go s.janitor(ctx)
	return s
}

func (s *MemoryStore) Get(key string) (model.Basket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return model.Basket{}, false
	}
	if s.expired(e, time.Now()) {
		delete(s.entries, key)
		return model.Basket{}, false
	}
	return cloneBasket(e.basket), true
}

func (s *MemoryStore) Set(key string, basket model.Basket, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		basket:    cloneBasket(basket),
		expiresAt: time.Now().Add(ttl),
	}
}

// cloneBasket copies the items slice so callers never share a backing array
// with the store.
func cloneBasket(b model.Basket) model.Basket {
	if b.Items != nil {
		items := make([]model.CartItem, len(b.Items))
		copy(items, b.Items)
		b.Items = items
	}
	return b
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

func (s *MemoryStore) expired(e entry, now time.Time) bool {
	if now.After(e.expiresAt) {
		return true
	}
	return s.inactiveTTL > 0 && now.Sub(e.basket.UpdatedAt) > s.inactiveTTL
}

func (s *MemoryStore) janitor(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.mu.Lock()
			removed := 0
			for k, e := range s.entries {
				if s.expired(e, now) {
					delete(s.entries, k)
					removed++
				}
			}
			s.mu.Unlock()
			if removed > 0 {
				s.mylog.Action("cart_cleanup").Info("removed expired baskets", "count", removed)
			}
		}
	}
}
