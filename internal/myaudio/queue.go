package myaudio

import (
	"sync"
	"sync/atomic"
)

// Chunk is the minimal unit of audio delivered by the capture device per
// read: little-endian signed 16-bit mono PCM. Seq is a monotonic arrival
// sequence number, not a wall clock timestamp.
type Chunk struct {
	Seq uint64
	PCM []byte
}

// ChunkQueue is the bounded hand-off queue between the capture flow and the
// processing flow. Capture must never block on inference, so when the queue
// is full the oldest unprocessed chunk is dropped in favor of the new one:
// stale audio is useless for waking a snorer. Drops are counted, not
// silent.
type ChunkQueue struct {
	mu      sync.Mutex
	ch      chan Chunk
	dropped atomic.Uint64
}

// NewChunkQueue creates a queue holding at most capacity chunks.
func NewChunkQueue(capacity int) *ChunkQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &ChunkQueue{ch: make(chan Chunk, capacity)}
}

// Push enqueues a chunk, evicting the oldest queued chunk if the queue is
// full. It never blocks. Returns true if an eviction happened.
func (q *ChunkQueue) Push(c Chunk) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	var droppedOne bool
	for {
		select {
		case q.ch <- c:
			return droppedOne
		default:
		}
		select {
		case <-q.ch:
			q.dropped.Add(1)
			droppedOne = true
		default:
			// Consumer raced us and made room, retry the send.
		}
	}
}

// Chunks returns the receive side for the processing flow.
func (q *ChunkQueue) Chunks() <-chan Chunk {
	return q.ch
}

// Len returns the number of chunks currently queued.
func (q *ChunkQueue) Len() int {
	return len(q.ch)
}

// Dropped returns the total number of chunks evicted so far.
func (q *ChunkQueue) Dropped() uint64 {
	return q.dropped.Load()
}

// Close closes the queue. Only call after the producing capture goroutine
// has exited.
func (q *ChunkQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	close(q.ch)
}
