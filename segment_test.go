package wal

import (
	"io"
	"path/filepath"
	"testing"
)

func TestSegmentAppendSuccess(t *testing.T) {
	dir := t.TempDir()
	seg, err := openNewSegment(filepath.Join(dir, "0.wal"), 0, 4096, fileTypeDefault)
	noerr(t, err)
	defer seg.close()

	outcome, err := seg.append([]byte("hello"), 1, 1)
	noerr(t, err)
	eq(t, outcome, outcomeSuccess)
	eq(t, seg.position(), uint32(fileHeaderSize+recordHeaderSize+len("hello")))
}

func TestSegmentAppendOverflow(t *testing.T) {
	dir := t.TempDir()
	// Room for the header and exactly one 10-byte payload frame, nothing more.
	maxSize := uint32(fileHeaderSize + recordHeaderSize + 10)
	seg, err := openNewSegment(filepath.Join(dir, "0.wal"), 0, maxSize, fileTypeDefault)
	noerr(t, err)
	defer seg.close()

	outcome, err := seg.append(make([]byte, 10), 0, 1)
	noerr(t, err)
	eq(t, outcome, outcomeSuccess)

	outcome, err = seg.append([]byte("x"), 0, 2)
	noerr(t, err)
	eq(t, outcome, outcomeOverflow)
}

func TestSegmentAppendFullOverflow(t *testing.T) {
	dir := t.TempDir()
	maxSize := uint32(fileHeaderSize + recordHeaderSize + 10)
	seg, err := openNewSegment(filepath.Join(dir, "0.wal"), 0, maxSize, fileTypeDefault)
	noerr(t, err)
	defer seg.close()

	// A payload too large for even a freshly opened segment of this maxSize.
	outcome, err := seg.append(make([]byte, 11), 0, 1)
	noerr(t, err)
	eq(t, outcome, outcomeFullOverflow)
	eq(t, seg.position(), uint32(fileHeaderSize)) // nothing written
}

func TestSegmentAppendFitsExactly(t *testing.T) {
	dir := t.TempDir()
	payload := make([]byte, 20)
	maxSize := uint32(fileHeaderSize + recordHeaderSize + len(payload))
	seg, err := openNewSegment(filepath.Join(dir, "0.wal"), 0, maxSize, fileTypeOverflow)
	noerr(t, err)
	defer seg.close()

	outcome, err := seg.append(payload, 0, 1)
	noerr(t, err)
	eq(t, outcome, outcomeSuccess)
	eq(t, seg.position(), maxSize)
}

func TestOpenExistingSegmentPositionsAtEOF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.wal")
	seg, err := openNewSegment(path, 3, 4096, fileTypeDefault)
	noerr(t, err)
	_, err = seg.append([]byte("abc"), 0, 1)
	noerr(t, err)
	noerr(t, seg.close())

	reopened, err := openExistingSegment(path)
	noerr(t, err)
	defer reopened.close()
	eq(t, reopened.logNumber(), uint64(3))
	eq(t, reopened.position(), uint32(fileHeaderSize+recordHeaderSize+3))
}

func TestSegmentReaderIsIndependentOfAppendCursor(t *testing.T) {
	dir := t.TempDir()
	seg, err := openNewSegment(filepath.Join(dir, "0.wal"), 0, 4096, fileTypeDefault)
	noerr(t, err)
	defer seg.close()

	_, err = seg.append([]byte("abc"), 0, 1)
	noerr(t, err)

	f, r, err := seg.reader()
	noerr(t, err)
	defer f.Close()
	buf, err := io.ReadAll(r)
	noerr(t, err)
	eq(t, len(buf), recordHeaderSize+3)

	// Reading didn't disturb the writer's own cursor.
	_, err = seg.append([]byte("d"), 0, 2)
	noerr(t, err)
}

func TestCompareSegments(t *testing.T) {
	a := &segmentFile{header: fileHeader{logNumber: 1}}
	b := &segmentFile{header: fileHeader{logNumber: 2}}
	ok(t, compareSegments(a, b) < 0)
	ok(t, compareSegments(b, a) > 0)
	ok(t, compareSegments(a, a) == 0)
}
