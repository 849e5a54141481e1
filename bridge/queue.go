package bridge

import (
	"sync"
)

// EventQueue is an ordered per-object queue of pending outlet events.
//
// Any goroutine may Push; only the drain loop on the host thread may Pop.
type EventQueue struct {
	mu       sync.Mutex
	items    []Event
	head     int
	capacity int
	closed   bool
}

// NewEventQueue creates a queue. If capacity <= 0, the queue is unbounded.
func NewEventQueue(capacity int) *EventQueue {
	return &EventQueue{capacity: capacity}
}

// Push appends an event. It fails with ErrQueueFull when a bounded queue is
// at capacity and with ErrQueueClosed after Close.
func (q *EventQueue) Push(ev Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.capacity > 0 && len(q.items)-q.head >= q.capacity {
		return ErrQueueFull
	}

	q.items = append(q.items, ev)
	return nil
}

// Pop removes the oldest event. more reports whether further events are
// pending after this one; ok is false if the queue was empty.
func (q *EventQueue) Pop() (ev Event, more bool, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		return Event{}, false, false
	}

	ev = q.items[q.head]
	q.items[q.head] = Event{}
	q.head++

	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return ev, q.head < len(q.items), true
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Close rejects further pushes and discards pending events. It returns the
// number of discarded events.
func (q *EventQueue) Close() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items) - q.head
	q.items = nil
	q.head = 0
	q.closed = true
	return n
}
