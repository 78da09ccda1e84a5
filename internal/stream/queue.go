package stream

import "sync"

// QueueStats is a point-in-time snapshot of queue counters.
type QueueStats struct {
	Count       int
	Capacity    int
	TotalPushed int64
	TotalPopped int64
	ResizeCount int
}

// Queue is the FIFO handoff between the receiver and the processor: a
// ring buffer under one mutex with a condition variable for the blocking
// consumer. The producer never blocks; the ring doubles once it passes
// 70% occupancy, so a stalled handler costs memory rather than frames.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []T
	head   int
	tail   int
	count  int
	cap    int
	closed bool

	pushed  int64
	popped  int64
	resizes int
}

// NewQueue creates a queue with the given initial capacity (minimum 1).
func NewQueue[T any](initialCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	q := &Queue[T]{
		buf: make([]T, initialCapacity),
		cap: initialCapacity,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item, growing the ring first when occupancy would
// cross the threshold. Returns false once the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	threshold := (q.cap * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if q.count+1 >= threshold {
		q.grow()
	}

	q.buf[q.tail] = item
	q.tail = (q.tail + 1) % q.cap
	q.count++
	q.pushed++

	q.cond.Signal()
	return true
}

// Pop returns the oldest item, waiting for one when the queue is empty.
// After Close, remaining items still drain; the second return is false
// only once the queue is both closed and empty.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

// TryPop is Pop without the wait.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

// Close stops accepting pushes and wakes every blocked consumer.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the current ring capacity.
func (q *Queue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cap
}

// Stats returns the queue counters.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Count:       q.count,
		Capacity:    q.cap,
		TotalPushed: q.pushed,
		TotalPopped: q.popped,
		ResizeCount: q.resizes,
	}
}

func (q *Queue[T]) popLocked() T {
	item := q.buf[q.head]
	var zero T
	q.buf[q.head] = zero // release the slot for GC
	q.head = (q.head + 1) % q.cap
	q.count--
	q.popped++
	return item
}

// grow doubles the ring, unrolling a wrapped buffer into the new slice.
// Caller holds the lock.
func (q *Queue[T]) grow() {
	newBuf := make([]T, q.cap*2)

	if q.count > 0 {
		if q.head < q.tail {
			copy(newBuf, q.buf[q.head:q.tail])
		} else {
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.tail])
		}
	}

	q.buf = newBuf
	q.head = 0
	q.tail = q.count
	q.cap = len(newBuf)
	q.resizes++
}
