package wal

import "fmt"

// segmentDirectory holds the ordered set of segments belonging to one
// journal instance. All structural mutation (push/pop) happens under
// the Append Engine's directory mutex; iteration for replay and
// shutdown happens before the writer goroutine starts or after it has
// drained, so it needs no locking of its own.
type segmentDirectory struct {
	segments []*segmentFile // oldest first; segments[len-1] is head
}

// head returns the current head segment, or nil if the directory is empty.
func (d *segmentDirectory) head() *segmentFile {
	if len(d.segments) == 0 {
		return nil
	}
	return d.segments[len(d.segments)-1]
}

// pushHead adds a newly opened segment as head. It panics if seg's
// logNumber does not strictly exceed the previous head's, which would
// indicate a bug in the caller (logNumber must strictly increase across
// segments in a journal directory).
func (d *segmentDirectory) pushHead(seg *segmentFile) {
	if h := d.head(); h != nil && seg.logNumber() <= h.logNumber() {
		panic(fmt.Sprintf("wal: segment logNumber must strictly increase (had %d, got %d)", h.logNumber(), seg.logNumber()))
	}
	d.segments = append(d.segments, seg)
}

// popHead removes and returns the current head. Used only by batch
// rollback, to discard an aborted BATCH segment.
func (d *segmentDirectory) popHead() *segmentFile {
	n := len(d.segments)
	if n == 0 {
		return nil
	}
	seg := d.segments[n-1]
	d.segments = d.segments[:n-1]
	return seg
}

// iterOldestToNewest calls f for every segment in ascending logNumber
// order, stopping early if f returns false.
func (d *segmentDirectory) iterOldestToNewest(f func(*segmentFile) bool) {
	for _, seg := range d.segments {
		if !f(seg) {
			return
		}
	}
}

// nextLogNumber returns the logNumber the next freshly opened segment
// should use: the previous head's logNumber + 1, or 0 when empty.
func (d *segmentDirectory) nextLogNumber() uint64 {
	h := d.head()
	if h == nil {
		return 0
	}
	return h.logNumber() + 1
}
