// Package queue implements spec.md §4.5: per-client diff fanout with
// backlog and subscription lifecycle. It is grounded on
// internal/graph/hotswap.go's mutex-guarded delegate style and
// internal/graph/arena_writer.go's stopCh channel idiom, adapted here as a
// per-client "data available" signal instead of a single shutdown signal.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/argonsync/argon/api"
)

// client is one subscriber's state, per spec.md §4.5's
// {client_id, backlog, subscribed_at, last_delivery}.
type client struct {
	backlog      []api.ChangeSet
	subscribedAt time.Time
	lastDelivery time.Time
	notify       chan struct{} // closed and replaced whenever backlog grows from empty
}

// Queue fans out change sets to subscribed clients, preserving
// cross-subscriber ordering (spec.md §4.5, §5's "Ordering guarantees").
type Queue struct {
	mu       sync.Mutex
	clients  map[uint64]*client
	backlogCap int // 0 means unbounded
}

// New creates an empty Queue. backlogCap <= 0 means unbounded backlogs
// (spec.md §4.5's default); a positive cap evicts the oldest entries with
// a Resync sentinel once exceeded.
func New(backlogCap int) *Queue {
	return &Queue{clients: make(map[uint64]*client), backlogCap: backlogCap}
}

// Subscribe creates an empty backlog for clientID, per spec.md §4.5's
// subscribe op: "if the id is already present, resets its backlog
// (idempotent re-subscribe)."
func (q *Queue) Subscribe(clientID uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.clients[clientID] = &client{
		subscribedAt: time.Now(),
		notify:       make(chan struct{}),
	}
}

// Unsubscribe removes clientID's entry, returning whether it existed.
func (q *Queue) Unsubscribe(clientID uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	c, ok := q.clients[clientID]
	if !ok {
		return false
	}
	delete(q.clients, clientID)
	close(c.notify)
	return true
}

// Push appends changeSet to every subscribed client's backlog, in a single
// critical section so all clients see it in the same relative position
// among their other messages (spec.md §4.5's push contract).
func (q *Queue) Push(changeSet api.ChangeSet) {
	q.pushExcept(changeSet, nil)
}

// PushExcept behaves like Push but withholds changeSet from excludeClient,
// per spec.md §9 scenario S2: a client's own patch is echoed to every
// *other* subscriber, not back to the author.
func (q *Queue) PushExcept(changeSet api.ChangeSet, excludeClient uint64) {
	q.pushExcept(changeSet, &excludeClient)
}

func (q *Queue) pushExcept(changeSet api.ChangeSet, excludeClient *uint64) {
	if len(changeSet) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for id, c := range q.clients {
		if excludeClient != nil && id == *excludeClient {
			continue
		}
		wasEmpty := len(c.backlog) == 0
		c.backlog = append(c.backlog, changeSet)

		if q.backlogCap > 0 && len(c.backlog) > q.backlogCap {
			// One slot of the cap goes to the Resync sentinel itself.
			overflow := len(c.backlog) - q.backlogCap + 1
			c.backlog = append([]api.ChangeSet{resyncSentinel()}, c.backlog[overflow:]...)
		}

		if wasEmpty {
			close(c.notify)
			c.notify = make(chan struct{})
		}
	}
}

// resyncSentinel is the change set a client receives in place of evicted
// history, per spec.md §4.5: "evict the oldest entries with a Resync
// sentinel (client must refetch full snapshot)."
func resyncSentinel() api.ChangeSet {
	return api.ChangeSet{{Kind: api.Resync}}
}

// Drain atomically returns and clears clientID's backlog, per spec.md
// §4.5's drain op. It blocks until at least one change is available or
// timeout elapses (returning an empty slice on timeout), or until ctx is
// canceled.
func (q *Queue) Drain(ctx context.Context, clientID uint64, timeout time.Duration) ([]api.ChangeSet, error) {
	q.mu.Lock()
	c, ok := q.clients[clientID]
	if !ok {
		q.mu.Unlock()
		return nil, ErrUnknownClient
	}
	if len(c.backlog) > 0 {
		drained := c.backlog
		c.backlog = nil
		c.lastDelivery = time.Now()
		q.mu.Unlock()
		return drained, nil
	}
	notify := c.notify
	q.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-notify:
		return q.drainNow(clientID), nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *Queue) drainNow(clientID uint64) []api.ChangeSet {
	q.mu.Lock()
	defer q.mu.Unlock()

	c, ok := q.clients[clientID]
	if !ok {
		return nil
	}
	drained := c.backlog
	c.backlog = nil
	c.lastDelivery = time.Now()
	return drained
}

// Subscribed reports whether clientID currently has a live subscription.
func (q *Queue) Subscribed(clientID uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.clients[clientID]
	return ok
}
