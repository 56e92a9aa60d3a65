// audio_queue.go - Lock-free SPSC event queue for the PicoSynth voice engine

/*
(c) 2025 - 2026 Char Culbert
https://github.com/charCulbert/picosynth
License: GPLv3 or later
*/

package main

import "sync/atomic"

// SPSCQueue is a bounded single-producer/single-consumer queue. One goroutine
// may Push and one other may Pop concurrently with no locks; the indices are
// exchanged through atomics. Capacity is rounded up to a power of two so the
// ring positions reduce to a mask.
//
// The audio context Pops at the start of every block and must never block or
// allocate; a full queue rejects the Push on the producer side instead.
type SPSCQueue[T any] struct {
	buf  []T
	mask uint32
	head atomic.Uint32 // next slot to pop (consumer-owned)
	tail atomic.Uint32 // next slot to push (producer-owned)
}

func NewSPSCQueue[T any](capacity int) *SPSCQueue[T] {
	if capacity < 2 {
		capacity = 2
	}
	size := uint32(1)
	for int(size) < capacity {
		size <<= 1
	}
	return &SPSCQueue[T]{
		buf:  make([]T, size),
		mask: size - 1,
	}
}

// Push enqueues v, returning false if the queue is full. Producer side only.
func (q *SPSCQueue[T]) Push(v T) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() > q.mask {
		return false
	}
	q.buf[tail&q.mask] = v
	q.tail.Store(tail + 1)
	return true
}

// Pop dequeues the oldest element. Consumer side only.
func (q *SPSCQueue[T]) Pop() (T, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		var zero T
		return zero, false
	}
	v := q.buf[head&q.mask]
	q.head.Store(head + 1)
	return v, true
}

// Len reports how many elements are queued. Approximate under concurrency.
func (q *SPSCQueue[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

func (q *SPSCQueue[T]) Cap() int {
	return len(q.buf)
}

// NoteEventKind tags a NoteEvent.
type NoteEventKind uint8

const (
	EventNoteOn NoteEventKind = iota
	EventNoteOff
	EventAllNotesOff
)

// NoteEvent is the fixed-width entry crossing from the control context to the
// audio context. Note and Velocity carry 7-bit MIDI values; out-of-range
// numbers are clamped on the audio side before use.
type NoteEvent struct {
	Kind     NoteEventKind
	Note     uint8
	Velocity uint8
}
