package queue

import (
	"context"
	"testing"
	"time"

	"github.com/argonsync/argon/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func changeSet(id string) api.ChangeSet {
	return api.ChangeSet{{Kind: api.Added, ID: id}}
}

// S4 from spec.md §9: subscribe(c1); push A,B,C; drain(c1) returns [A,B,C];
// immediate drain(c1) blocks until timeout, then returns [].
func TestSubscribeDrainScenario(t *testing.T) {
	q := New(0)
	q.Subscribe(1)

	q.Push(changeSet("A"))
	q.Push(changeSet("B"))
	q.Push(changeSet("C"))

	ctx := context.Background()
	drained, err := q.Drain(ctx, 1, time.Second)
	require.NoError(t, err)
	require.Len(t, drained, 3)
	assert.Equal(t, "A", drained[0][0].ID)
	assert.Equal(t, "C", drained[2][0].ID)

	drained, err = q.Drain(ctx, 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, drained)
}

// Testable Property 3: for any sequence of pushes interleaved with any
// subscribe operations, each subscriber's drained sequence is a suffix of
// the full push sequence since its subscription.
func TestQueueFairnessIsSuffixOfPushSequence(t *testing.T) {
	q := New(0)
	q.Subscribe(1)
	q.Push(changeSet("A"))

	q.Subscribe(2) // subscribes after A
	q.Push(changeSet("B"))
	q.Push(changeSet("C"))

	ctx := context.Background()
	d1, err := q.Drain(ctx, 1, time.Second)
	require.NoError(t, err)
	d2, err := q.Drain(ctx, 2, time.Second)
	require.NoError(t, err)

	ids1 := idsOf(d1)
	ids2 := idsOf(d2)

	assert.Equal(t, []string{"A", "B", "C"}, ids1)
	assert.Equal(t, []string{"B", "C"}, ids2)
}

func idsOf(sets []api.ChangeSet) []string {
	out := make([]string, 0, len(sets))
	for _, cs := range sets {
		out = append(out, cs[0].ID)
	}
	return out
}

func TestUnsubscribeReturnsWhetherItExisted(t *testing.T) {
	q := New(0)
	assert.False(t, q.Unsubscribe(99))

	q.Subscribe(1)
	assert.True(t, q.Unsubscribe(1))
	assert.False(t, q.Subscribed(1))
}

func TestResubscribeResetsBacklog(t *testing.T) {
	q := New(0)
	q.Subscribe(1)
	q.Push(changeSet("A"))

	q.Subscribe(1) // idempotent re-subscribe

	drained, err := q.Drain(context.Background(), 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, drained)
}

func TestBacklogCapEvictsWithResyncSentinel(t *testing.T) {
	q := New(2)
	q.Subscribe(1)
	q.Push(changeSet("A"))
	q.Push(changeSet("B"))
	q.Push(changeSet("C"))

	drained, err := q.Drain(context.Background(), 1, time.Second)
	require.NoError(t, err)
	require.Len(t, drained, 2)
	assert.Equal(t, api.Resync, drained[0][0].Kind)
}

func TestDrainUnknownClientFails(t *testing.T) {
	q := New(0)
	_, err := q.Drain(context.Background(), 42, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrUnknownClient)
}
