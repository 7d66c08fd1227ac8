package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/IndexFi/oracle-order-svc/internal/data"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// orders is a mutex-guarded in-memory implementation of data.Orders, used in
// tests and cache-only runs. Writers are last-writer-wins per order hash,
// matching the postgres implementation.
type orders struct {
	mu      sync.RWMutex
	entries map[string]data.OrderCacheEntry
}

func NewOrders() data.Orders {
	return &orders{entries: make(map[string]data.OrderCacheEntry)}
}

func (q *orders) Insert(entry data.OrderCacheEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[entry.OrderHash]; ok {
		return errors.New("order cache entry already exists")
	}
	q.entries[entry.OrderHash] = entry
	return nil
}

func (q *orders) Get(orderHash string) (*data.OrderCacheEntry, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	entry, ok := q.entries[orderHash]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (q *orders) Update(entry data.OrderCacheEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[entry.OrderHash]; !ok {
		return errors.New("order cache entry does not exist")
	}
	q.entries[entry.OrderHash] = entry
	return nil
}

func (q *orders) ListByMaker(maker string) ([]data.OrderCacheEntry, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var result []data.OrderCacheEntry
	for _, e := range q.entries {
		if e.Maker == maker {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (q *orders) ListConditional(conditional bool) ([]data.OrderCacheEntry, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var result []data.OrderCacheEntry
	for _, e := range q.entries {
		if e.Operator.Valid == conditional {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (q *orders) ListActive() ([]data.OrderCacheEntry, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var result []data.OrderCacheEntry
	for _, e := range q.entries {
		if !e.Status.Terminal() {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (q *orders) Delete(orderHash string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.entries, orderHash)
	return nil
}

func (q *orders) DeleteByMaker(maker string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for hash, e := range q.entries {
		if e.Maker == maker {
			delete(q.entries, hash)
		}
	}
	return nil
}

func (q *orders) DeleteAll() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = make(map[string]data.OrderCacheEntry)
	return nil
}

func (q *orders) DeleteTerminalBefore(t time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for hash, e := range q.entries {
		if e.Status.Terminal() && e.CreatedAt.Before(t) {
			delete(q.entries, hash)
		}
	}
	return nil
}
