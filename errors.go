package wal

import "fmt"

// Error taxonomy. ConfigurationError and EncodingError are returned
// synchronously to the caller; SynchronousJournalError is delivered to
// a Listener's OnFailure; ReplayError aborts Open.
var (
	// ErrNotADirectory is returned when Options.Path does not name a directory.
	ErrNotADirectory = fmt.Errorf("wal: journal path is not a directory")

	// ErrInvalidMaxFileSize is returned when Options.MaxLogFileSize is not positive.
	ErrInvalidMaxFileSize = fmt.Errorf("wal: maxLogFileSize must be positive")

	// ErrIncompatibleMagic is returned when a segment file's magic does not
	// match this format.
	ErrIncompatibleMagic = fmt.Errorf("wal: incompatible segment file (bad magic)")

	// ErrUnsupportedVersion is returned when a segment file's version is newer
	// than this implementation understands.
	ErrUnsupportedVersion = fmt.Errorf("wal: unsupported segment version")

	// ErrClosed is returned by append operations after the journal has been closed.
	ErrClosed = fmt.Errorf("wal: journal is closed")

	// errEndOfSegment signals the codec reached the end of readable frames:
	// either a clean EOF or a crash-truncated tail too short to be a header.
	errEndOfSegment = fmt.Errorf("wal: end of segment")

	// errCorruptRecord signals a record header whose length is internally
	// inconsistent or would overrun the file.
	errCorruptRecord = fmt.Errorf("wal: corrupt record")
)

// fsyncFailedError wraps an I/O error encountered while flushing a segment.
// Once this happens the segment's durability guarantee is void.
type fsyncFailedError struct {
	Cause error
}

func (e *fsyncFailedError) Error() string {
	return fmt.Sprintf("wal: fsync failed: %v", e.Cause)
}

func (e *fsyncFailedError) Unwrap() error { return e.Cause }

// ReplayError reports a fatal failure while replaying a journal directory
// at startup; Open aborts when this occurs.
type ReplayError struct {
	File  string
	Cause error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("wal: replay failed on %s: %v", e.File, e.Cause)
}

func (e *ReplayError) Unwrap() error { return e.Cause }

// fatalRolloverError reports that an oversize-record retry did not
// succeed against the freshly opened segment it was sized for; this
// should never happen for a correctly sized OVERFLOW segment and
// indicates a bug or a concurrent external modification of the journal
// directory.
type fatalRolloverError struct {
	Cause error
}

func (e *fatalRolloverError) Error() string {
	return fmt.Sprintf("wal: rollover retry did not succeed: %v", e.Cause)
}

func (e *fatalRolloverError) Unwrap() error { return e.Cause }
