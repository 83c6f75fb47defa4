package wal

import "testing"

func TestSegmentDirectoryPushPopOrder(t *testing.T) {
	var d segmentDirectory
	ok(t, d.head() == nil)
	eq(t, d.nextLogNumber(), uint64(0))

	s0 := &segmentFile{header: fileHeader{logNumber: 0}}
	s1 := &segmentFile{header: fileHeader{logNumber: 1}}
	d.pushHead(s0)
	eq(t, d.head(), s0)
	eq(t, d.nextLogNumber(), uint64(1))

	d.pushHead(s1)
	eq(t, d.head(), s1)

	popped := d.popHead()
	eq(t, popped, s1)
	eq(t, d.head(), s0)
}

func TestSegmentDirectoryPushHeadPanicsOnNonIncreasing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on non-increasing logNumber")
		}
	}()
	var d segmentDirectory
	d.pushHead(&segmentFile{header: fileHeader{logNumber: 5}})
	d.pushHead(&segmentFile{header: fileHeader{logNumber: 5}})
}

func TestSegmentDirectoryIterOldestToNewest(t *testing.T) {
	var d segmentDirectory
	d.pushHead(&segmentFile{header: fileHeader{logNumber: 0}})
	d.pushHead(&segmentFile{header: fileHeader{logNumber: 1}})
	d.pushHead(&segmentFile{header: fileHeader{logNumber: 2}})

	var seen []uint64
	d.iterOldestToNewest(func(s *segmentFile) bool {
		seen = append(seen, s.logNumber())
		return true
	})
	eq(t, len(seen), 3)
	eq(t, seen[0], uint64(0))
	eq(t, seen[2], uint64(2))

	seen = nil
	d.iterOldestToNewest(func(s *segmentFile) bool {
		seen = append(seen, s.logNumber())
		return s.logNumber() < 1
	})
	eq(t, len(seen), 2)
}
