package myaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkQueueDropsOldestWhenFull(t *testing.T) {
	q := NewChunkQueue(4)

	// Produce faster than anything drains: 10 chunks into a queue of 4.
	for i := uint64(1); i <= 10; i++ {
		q.Push(Chunk{Seq: i})
	}

	assert.Equal(t, uint64(6), q.Dropped())

	// The newest chunks are always retained, in order.
	var got []uint64
	for i := 0; i < 4; i++ {
		c := <-q.Chunks()
		got = append(got, c.Seq)
	}
	assert.Equal(t, []uint64{7, 8, 9, 10}, got)

	select {
	case c := <-q.Chunks():
		t.Fatalf("queue should be empty, got chunk %d", c.Seq)
	default:
	}
}

func TestChunkQueuePushReportsEviction(t *testing.T) {
	q := NewChunkQueue(2)

	assert.False(t, q.Push(Chunk{Seq: 1}))
	assert.False(t, q.Push(Chunk{Seq: 2}))
	assert.True(t, q.Push(Chunk{Seq: 3}))
	assert.Equal(t, uint64(1), q.Dropped())
}

func TestChunkQueueInterleavedProducerConsumer(t *testing.T) {
	q := NewChunkQueue(4)

	var received []uint64
	for i := uint64(1); i <= 100; i++ {
		q.Push(Chunk{Seq: i})
		if i%2 == 0 {
			c := <-q.Chunks()
			received = append(received, c.Seq)
		}
	}

	// Draining every other push keeps the queue under capacity: no drops
	// and strictly increasing sequence numbers.
	require.Equal(t, uint64(0), q.Dropped())
	for i := 1; i < len(received); i++ {
		assert.Greater(t, received[i], received[i-1])
	}
}

func TestChunkQueueMinimumCapacity(t *testing.T) {
	q := NewChunkQueue(0)
	q.Push(Chunk{Seq: 1})
	q.Push(Chunk{Seq: 2})

	c := <-q.Chunks()
	assert.Equal(t, uint64(2), c.Seq)
	assert.Equal(t, uint64(1), q.Dropped())
}

func TestChunkQueueClose(t *testing.T) {
	q := NewChunkQueue(2)
	q.Push(Chunk{Seq: 1})
	q.Close()

	c, ok := <-q.Chunks()
	require.True(t, ok)
	assert.Equal(t, uint64(1), c.Seq)

	_, ok = <-q.Chunks()
	assert.False(t, ok)
}
