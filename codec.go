// Package wal implements a durable, append-only write-ahead journal for
// values of an application-defined type V.
//
// A journal is split into segments; the most recently opened segment is
// the only one accepting appends. Segments are plain files: a fixed
// 25-byte file header followed by zero or more fixed-header framed
// records, laid out contiguously with no padding.
//
// # File format
//
// All multi-byte integers are big-endian.
//
//	file header (25 bytes):
//	  magic      [4]byte
//	  version    uint16
//	  fileType   uint8
//	  maxSize    uint32
//	  logNumber  uint64
//	  reserved   [6]byte
//
//	record header (17 bytes):
//	  length     uint32  // total framed length, header included
//	  type       uint8
//	  recordId   uint64
//	  reserved   [4]byte
//
// Three segment kinds exist: DEFAULT segments hold a run of ordinary
// appends up to a configured ceiling; OVERFLOW segments hold exactly
// one record too large to fit a DEFAULT segment; BATCH segments hold
// exactly the records of one atomic batch commit, sized exactly to fit
// it so that a torn batch is detectable at replay.
package wal

import (
	"encoding/binary"
	"fmt"
)

type fileType uint8

const (
	fileTypeDefault  fileType = 1
	fileTypeOverflow fileType = 2
	fileTypeBatch    fileType = 3
)

func (t fileType) String() string {
	switch t {
	case fileTypeDefault:
		return "DEFAULT"
	case fileTypeOverflow:
		return "OVERFLOW"
	case fileTypeBatch:
		return "BATCH"
	default:
		return fmt.Sprintf("fileType(%d)", uint8(t))
	}
}

const (
	magic          uint32 = 'W'<<24 | 'A'<<16 | 'L'<<8 | '1'
	formatVersion  uint16 = 1
	fileHeaderSize        = 25
	recordHeaderSize      = 17

	// overflowOverhead is FILE_HEADER + RECORD_HEADER, the fixed cost of an
	// OVERFLOW segment holding exactly one record.
	overflowOverhead = fileHeaderSize + recordHeaderSize
)

// fileHeader is the first 25 bytes of every segment file.
type fileHeader struct {
	magic     uint32
	version   uint16
	fileType  fileType
	maxSize   uint32
	logNumber uint64
}

func encodeFileHeader(h fileHeader) []byte {
	buf := make([]byte, fileHeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.magic)
	binary.BigEndian.PutUint16(buf[4:6], h.version)
	buf[6] = byte(h.fileType)
	binary.BigEndian.PutUint32(buf[7:11], h.maxSize)
	binary.BigEndian.PutUint64(buf[11:19], h.logNumber)
	// buf[19:25] reserved, left zero
	return buf
}

func decodeFileHeader(buf []byte) (fileHeader, error) {
	if len(buf) < fileHeaderSize {
		return fileHeader{}, errCorruptRecord
	}
	h := fileHeader{
		magic:     binary.BigEndian.Uint32(buf[0:4]),
		version:   binary.BigEndian.Uint16(buf[4:6]),
		fileType:  fileType(buf[6]),
		maxSize:   binary.BigEndian.Uint32(buf[7:11]),
		logNumber: binary.BigEndian.Uint64(buf[11:19]),
	}
	if h.magic != magic {
		return h, ErrIncompatibleMagic
	}
	if h.version > formatVersion {
		return h, ErrUnsupportedVersion
	}
	return h, nil
}

// recordHeader is the fixed 17-byte prefix of every framed record.
type recordHeader struct {
	length   uint32
	typ      uint8
	recordID uint64
}

// encodeRecord frames payload into a complete record: header plus bytes.
// It never touches segment state; it is pure.
func encodeRecord(payload []byte, typ uint8, recordID uint64) []byte {
	length := recordHeaderSize + len(payload)
	buf := make([]byte, length)
	binary.BigEndian.PutUint32(buf[0:4], uint32(length))
	buf[4] = typ
	binary.BigEndian.PutUint64(buf[5:13], recordID)
	// buf[13:17] reserved, left zero
	copy(buf[recordHeaderSize:], payload)
	return buf
}

// decodeRecordHeader parses a 17-byte record header previously peeked or
// read from a stream. remaining is the number of bytes left in the file
// after this header, used to reject a length that would overrun it.
func decodeRecordHeader(buf []byte, remaining int64) (recordHeader, error) {
	if len(buf) < recordHeaderSize {
		return recordHeader{}, errEndOfSegment
	}
	length := binary.BigEndian.Uint32(buf[0:4])
	if length < recordHeaderSize {
		return recordHeader{}, errCorruptRecord
	}
	payloadLen := int64(length) - recordHeaderSize
	if payloadLen > remaining {
		return recordHeader{}, errCorruptRecord
	}
	return recordHeader{
		length:   length,
		typ:      buf[4],
		recordID: binary.BigEndian.Uint64(buf[5:13]),
	}, nil
}
