package wal

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// rawReplayedRecord is one frame decoded from disk during replay, before
// the Journal facade decodes its payload into V.
type rawReplayedRecord struct {
	id        uint64
	typ       uint8
	payload   []byte
	logNumber uint64
	offset    uint32
}

// replay scans dir for segment files recognized by naming, orders them
// by logNumber, and decodes every committed record in each, calling
// onRecord for each in order. It returns the highest record id seen
// across every segment (0 if none) and the highest logNumber seen (-1
// if none), so the caller can resume id allocation and segment
// numbering strictly above what is already on disk.
//
// A magic/version mismatch on any segment is fatal and aborts replay
// immediately (ReplayError). A truncated or corrupt tail within a
// segment is not: decoding of that segment simply stops, and replay
// continues with the next segment in order -- a segment's tail can be
// left mid-write by a crash, and that is an expected, recoverable
// condition rather than a corrupt journal.
func replay[V any](dir string, naming NamingStrategy, decoder EntryDecoder[V], logger *slog.Logger, debugName string, onRecord func(rawReplayedRecord, V)) (maxSeenID uint64, maxLogNumber int64, err error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return 0, -1, err
	}

	type candidate struct {
		name      string
		logNumber uint64
	}
	var candidates []candidate
	for _, ent := range ents {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if !naming.IsJournal(name) {
			continue
		}
		logNumber, err := naming.ExtractLogNumber(name)
		if err != nil {
			return 0, -1, &ReplayError{File: name, Cause: err}
		}
		candidates = append(candidates, candidate{name: name, logNumber: logNumber})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].logNumber < candidates[j].logNumber })

	maxLogNumber = -1
	for _, c := range candidates {
		path := filepath.Join(dir, c.name)
		n, err := replaySegment(path, c.logNumber, decoder, logger, debugName, onRecord)
		if err != nil {
			return 0, -1, &ReplayError{File: c.name, Cause: err}
		}
		if n > maxSeenID {
			maxSeenID = n
		}
		if int64(c.logNumber) > maxLogNumber {
			maxLogNumber = int64(c.logNumber)
		}
	}
	return maxSeenID, maxLogNumber, nil
}

// replaySegment decodes one segment file, returning the highest record
// id it successfully decoded (0 if none). Apart from I/O errors opening,
// seeking or reading the file header, only a file-header mismatch
// (wrong magic/version) returns an error; everything else about a torn
// tail -- a header too short to read, a length that doesn't fit the
// remaining file, a truncated payload, an undecodable payload -- is
// swallowed here and just stops decoding at that point. A BATCH segment
// whose file is shorter than its header's maxSize is a torn batch: none
// of its records are replayed.
func replaySegment[V any](path string, logNumber uint64, decoder EntryDecoder[V], logger *slog.Logger, debugName string, onRecord func(rawReplayedRecord, V)) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var hbuf [fileHeaderSize]byte
	if _, err := io.ReadFull(f, hbuf[:]); err != nil {
		return 0, err
	}
	h, err := decodeFileHeader(hbuf[:])
	if err != nil {
		return 0, err
	}
	fileSize, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if h.fileType == fileTypeBatch && fileSize < int64(h.maxSize) {
		logger.Debug("wal: skipping torn batch segment", "journal", debugName, "file", path, "size", fileSize, "maxSize", h.maxSize)
		return 0, nil
	}
	if _, err := f.Seek(fileHeaderSize, io.SeekStart); err != nil {
		return 0, err
	}

	r := bufio.NewReader(f)
	var offset uint32 = fileHeaderSize
	var maxSeenID uint64
	var decoded int

	for {
		remainingAfterHeader := fileSize - int64(offset) - recordHeaderSize
		hdr, err := peekRecordHeader(r, remainingAfterHeader)
		if err != nil {
			if err == errEndOfSegment || err == errCorruptRecord {
				logger.Debug("wal: stopping replay at segment tail", "journal", debugName, "file", path, "offset", offset, "reason", err)
				break
			}
			return maxSeenID, err
		}

		if _, err := r.Discard(recordHeaderSize); err != nil {
			return maxSeenID, err
		}
		payload := make([]byte, int(hdr.length)-recordHeaderSize)
		if _, err := io.ReadFull(r, payload); err != nil {
			logger.Debug("wal: stopping replay at truncated payload", "journal", debugName, "file", path, "offset", offset)
			break
		}

		value, err := decoder.Decode(payload, hdr.typ)
		if err != nil {
			logger.Debug("wal: stopping replay at undecodable payload", "journal", debugName, "file", path, "offset", offset, "err", err)
			break
		}

		onRecord(rawReplayedRecord{
			id:        hdr.recordID,
			typ:       hdr.typ,
			payload:   payload,
			logNumber: logNumber,
			offset:    offset,
		}, value)

		if hdr.recordID > maxSeenID {
			maxSeenID = hdr.recordID
		}
		offset += hdr.length
		decoded++
	}

	logger.Debug("wal: replayed segment", "journal", debugName, "file", path, "records", decoded)
	return maxSeenID, nil
}

// peekRecordHeader reads (without discarding) the next record header
// from r, reporting errEndOfSegment when fewer than recordHeaderSize
// bytes remain and errCorruptRecord when the header's length field is
// internally inconsistent or its payload would overrun the file.
func peekRecordHeader(r *bufio.Reader, remainingAfterHeader int64) (recordHeader, error) {
	b, err := r.Peek(recordHeaderSize)
	if err != nil && len(b) < recordHeaderSize {
		return recordHeader{}, errEndOfSegment
	}
	return decodeRecordHeader(b, remainingAfterHeader)
}
