package wal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// appendOutcome is the result of attempting to append a frame to a
// segment file.
type appendOutcome int

const (
	// outcomeSuccess means the frame was fully written and fsynced.
	outcomeSuccess appendOutcome = iota
	// outcomeOverflow means the frame does not fit in the remaining space
	// of this DEFAULT segment, but would fit a fresh one. No bytes written.
	outcomeOverflow
	// outcomeFullOverflow means the frame is larger than the segment's
	// maxSize itself; it needs a dedicated OVERFLOW segment. No bytes written.
	outcomeFullOverflow
)

// segmentFile is the exclusive owner of one on-disk segment file: its
// header and its append cursor. All appends to a given segment go
// through appendLock, which covers the entire frame-then-write so no
// partial interleaving can occur even if a future caller admits
// concurrent appenders (today the Append Engine funnels everything
// through one goroutine at a time; the lock here is defensive).
type segmentFile struct {
	path string
	f    *os.File

	header fileHeader
	cursor uint32 // append offset, always points past the last full record

	appendLock sync.Mutex
}

// openNewSegment creates path, writes and fsyncs the file header, and
// positions the cursor at byte fileHeaderSize.
func openNewSegment(path string, logNumber uint64, maxSize uint32, ft fileType) (*segmentFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}

	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(path)
		}
	}()

	h := fileHeader{
		magic:     magic,
		version:   formatVersion,
		fileType:  ft,
		maxSize:   maxSize,
		logNumber: logNumber,
	}
	if _, err := f.Write(encodeFileHeader(h)); err != nil {
		return nil, err
	}
	if err := f.Sync(); err != nil {
		return nil, &fsyncFailedError{Cause: err}
	}

	ok = true
	return &segmentFile{
		path:   path,
		f:      f,
		header: h,
		cursor: fileHeaderSize,
	}, nil
}

// openExistingSegment opens path for read/append, parses and validates
// the file header, and sets the cursor to end-of-file. The caller is
// responsible for repositioning the cursor (via truncate) if the file
// holds a crash-truncated tail that should not be appended after.
func openExistingSegment(path string) (*segmentFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			f.Close()
		}
	}()

	var hbuf [fileHeaderSize]byte
	if _, err := io.ReadFull(f, hbuf[:]); err != nil {
		return nil, fmt.Errorf("wal: reading segment header: %w", err)
	}
	h, err := decodeFileHeader(hbuf[:])
	if err != nil {
		return nil, err
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	ok = true
	return &segmentFile{
		path:   path,
		f:      f,
		header: h,
		cursor: uint32(size),
	}, nil
}

// append frames payload and writes it under the append lock, returning
// the outcome. On outcomeSuccess the bytes are already fsynced to disk.
func (s *segmentFile) append(payload []byte, typ uint8, recordID uint64) (appendOutcome, error) {
	s.appendLock.Lock()
	defer s.appendLock.Unlock()

	frameLen := recordHeaderSize + len(payload)
	if uint64(fileHeaderSize)+uint64(frameLen) > uint64(s.header.maxSize) {
		// Doesn't fit even a freshly opened segment of this maxSize.
		return outcomeFullOverflow, nil
	}
	if uint64(s.cursor)+uint64(frameLen) > uint64(s.header.maxSize) {
		return outcomeOverflow, nil
	}

	frame := encodeRecord(payload, typ, recordID)
	if _, err := s.f.Seek(int64(s.cursor), io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := s.f.Write(frame); err != nil {
		return 0, err
	}
	if err := s.f.Sync(); err != nil {
		return 0, &fsyncFailedError{Cause: err}
	}
	s.cursor += uint32(frameLen)
	return outcomeSuccess, nil
}

// close flushes and releases the file handle. It is safe to call more
// than once.
func (s *segmentFile) close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// delete closes and removes the underlying file; used only by batch
// rollback.
func (s *segmentFile) delete() error {
	_ = s.close()
	return os.Remove(s.path)
}

func (s *segmentFile) position() uint32       { return s.cursor }
func (s *segmentFile) logNumber() uint64      { return s.header.logNumber }
func (s *segmentFile) fileHeader() fileHeader { return s.header }

// reader returns a buffered reader positioned at byte fileHeaderSize.
// It opens a fresh, independent file handle so it never disturbs the
// append cursor of a live writer. (replaySegment does not use it; it
// opens segment files by path itself.)
func (s *segmentFile) reader() (*os.File, *bufio.Reader, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, err
	}
	if _, err := f.Seek(fileHeaderSize, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, bufio.NewReader(f), nil
}

// compareSegments orders segments by logNumber, ascending.
func compareSegments(a, b *segmentFile) int {
	switch {
	case a.header.logNumber < b.header.logNumber:
		return -1
	case a.header.logNumber > b.header.logNumber:
		return 1
	default:
		return 0
	}
}
