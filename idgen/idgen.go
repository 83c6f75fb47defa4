// Package idgen provides record-id generators satisfying the journal's
// IDGenerator collaborator interface: NextRecordID,
// LastGeneratedRecordID, NotifyHighestRecordID.
package idgen

import "sync/atomic"

// Atomic is the default, in-memory IDGenerator: a monotonic counter
// with no persistence of its own. An application that always replays
// the journal directory before writing (as Open does) never needs
// anything more durable than this.
type Atomic struct {
	counter atomic.Uint64
}

// NewAtomic returns an Atomic generator starting at 0; the first
// NextRecordID call returns 1.
func NewAtomic() *Atomic {
	return &Atomic{}
}

func (a *Atomic) NextRecordID() uint64 {
	return a.counter.Add(1)
}

func (a *Atomic) LastGeneratedRecordID() uint64 {
	return a.counter.Load()
}

// NotifyHighestRecordID hard-sets the high-water mark to id. This is
// used both to raise the floor after replay and, by batch rollback, to
// restore the pre-batch mark exactly: a rewind is a plain store, not a
// floor that can only ever go up.
func (a *Atomic) NotifyHighestRecordID(id uint64) {
	a.counter.Store(id)
}
