package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/liftbank/core/model"
)

func TestQueueFIFO(t *testing.T) {
	q := New()
	a := model.Call{Floor: 2, Direction: model.Up}
	b := model.Call{Floor: 3, Direction: model.Down}
	require.True(t, q.Push(Request{Call: a}))
	require.True(t, q.Push(Request{Call: b}))
	assert.Equal(t, []model.Call{a, b}, q.Calls())

	r, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, a, r.Call)
	assert.False(t, q.Contains(a))
	assert.True(t, q.Contains(b))
	assert.Equal(t, 1, q.Len())
}

func TestQueueDedup(t *testing.T) {
	q := New()
	c := model.Call{Floor: 4, Direction: model.Up}
	assert.True(t, q.Push(Request{Call: c, Submitted: time.Unix(1, 0)}))
	assert.False(t, q.Push(Request{Call: c, Submitted: time.Unix(2, 0)}))
	assert.True(t, q.Push(Request{Call: model.Call{Floor: 4, Direction: model.Down}}))
	assert.Equal(t, 2, q.Len())

	r, _ := q.Peek()
	assert.Equal(t, time.Unix(1, 0), r.Submitted, "first submission is kept")

	q.Pop()
	assert.True(t, q.Push(Request{Call: c}), "call can be queued again once removed")
}

func TestQueueEmpty(t *testing.T) {
	q := New()
	_, ok := q.Pop()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
	assert.Empty(t, q.Calls())
}
