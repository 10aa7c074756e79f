// Package queue keeps hall calls waiting for a car.
package queue

import (
	"time"

	"github.com/kilianp07/liftbank/core/model"
)

// Request is a queued call with the time it was submitted.
type Request struct {
	Call      model.Call
	Submitted time.Time
}

// RequestQueue is a FIFO of calls in which each (floor, direction) appears
// at most once. It is not safe for concurrent use.
type RequestQueue struct {
	items []Request
	index map[model.Call]struct{}
}

// New returns an empty queue.
func New() *RequestQueue {
	return &RequestQueue{index: make(map[model.Call]struct{})}
}

// Push appends r unless an equal call is already queued.
func (q *RequestQueue) Push(r Request) bool {
	if _, ok := q.index[r.Call]; ok {
		return false
	}
	q.index[r.Call] = struct{}{}
	q.items = append(q.items, r)
	return true
}

// Peek returns the oldest request without removing it.
func (q *RequestQueue) Peek() (Request, bool) {
	if len(q.items) == 0 {
		return Request{}, false
	}
	return q.items[0], true
}

// Pop removes and returns the oldest request.
func (q *RequestQueue) Pop() (Request, bool) {
	r, ok := q.Peek()
	if !ok {
		return r, false
	}
	q.items[0] = Request{}
	q.items = q.items[1:]
	delete(q.index, r.Call)
	return r, true
}

// Contains reports whether the call is queued.
func (q *RequestQueue) Contains(c model.Call) bool {
	_, ok := q.index[c]
	return ok
}

func (q *RequestQueue) Len() int { return len(q.items) }

// Calls returns the queued calls in submission order.
func (q *RequestQueue) Calls() []model.Call {
	out := make([]model.Call, len(q.items))
	for i, r := range q.items {
		out[i] = r.Call
	}
	return out
}
