package utils

import (
	"go.uber.org/atomic"
)

// A Mailbox is a single slot holding the most recent value posted to it. Posting never blocks
// and replaces whatever was there; readers always see a complete value.
type Mailbox[T any] struct {
	slot atomic.Pointer[T]
	seq  atomic.Uint64
}

// NewMailbox returns a mailbox holding initial.
func NewMailbox[T any](initial T) *Mailbox[T] {
	m := &Mailbox[T]{}
	m.slot.Store(&initial)
	return m
}

// Post replaces the held value.
func (m *Mailbox[T]) Post(v T) {
	m.slot.Store(&v)
	m.seq.Inc()
}

// Load returns the held value.
func (m *Mailbox[T]) Load() T {
	return *m.slot.Load()
}

// Seq returns the number of values posted since construction.
func (m *Mailbox[T]) Seq() uint64 {
	return m.seq.Load()
}
