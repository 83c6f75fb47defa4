package wal

import (
	"log/slog"
	"path/filepath"
	"sync"
)

// rawResult is what a successful append produced, before the Journal
// facade wraps it into a Record[V] (it already holds the V it appended,
// so no decode is needed on the success path -- only Replayer needs to
// decode bytes back into V).
type rawResult struct {
	id        uint64
	logNumber uint64
	offset    uint32
}

// batchPayload is one pre-encoded member of a batch passed to commitBatchLocked.
type batchPayload struct {
	payload []byte
	typ     uint8
}

// appendEngine implements the synchronous and asynchronous write paths,
// segment rollover, and atomic batch commit. The directory mutex (mu)
// serializes the entire body of every synchronous append, batch
// commit, and rollover -- it is the only lock correctness of the append
// path depends on.
type appendEngine struct {
	dir            string
	naming         NamingStrategy
	idgen          IDGenerator
	maxLogFileSize uint32
	logger         *slog.Logger
	debugName      string
	metrics        Metrics

	mu        sync.Mutex
	directory segmentDirectory
}

func newAppendEngine(dir string, naming NamingStrategy, idgen IDGenerator, maxLogFileSize uint32, logger *slog.Logger, debugName string, metrics Metrics) *appendEngine {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &appendEngine{
		dir:            dir,
		naming:         naming,
		idgen:          idgen,
		maxLogFileSize: maxLogFileSize,
		logger:         logger,
		debugName:      debugName,
		metrics:        metrics,
	}
}

func (e *appendEngine) segmentPath(logNumber uint64) string {
	return filepath.Join(e.dir, e.naming.Generate(logNumber))
}

// openFreshHeadLocked opens a brand-new segment of the given type/size
// and pushes it as head. Caller must hold mu.
func (e *appendEngine) openFreshHeadLocked(ft fileType, maxSize uint32) (*segmentFile, error) {
	logNumber := e.directory.nextLogNumber()
	seg, err := openNewSegment(e.segmentPath(logNumber), logNumber, maxSize, ft)
	if err != nil {
		return nil, err
	}
	e.directory.pushHead(seg)
	return seg, nil
}

// ensureHeadLocked opens the first DEFAULT segment if the directory is
// empty. Used defensively; Open() normally does this once at startup.
func (e *appendEngine) ensureHeadLocked() (*segmentFile, error) {
	if h := e.directory.head(); h != nil {
		return h, nil
	}
	return e.openFreshHeadLocked(fileTypeDefault, e.maxLogFileSize)
}

// openInitialHead opens the first DEFAULT segment of a freshly started
// journal at the given logNumber -- one past the highest logNumber seen
// during replay, or 0 if replay found nothing. Called once by Open,
// before the writer goroutine starts.
func (e *appendEngine) openInitialHead(logNumber uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	seg, err := openNewSegment(e.segmentPath(logNumber), logNumber, e.maxLogFileSize, fileTypeDefault)
	if err != nil {
		return err
	}
	e.directory.pushHead(seg)
	return nil
}

// appendLocked performs one logical append, including at most one
// rollover to a fresh DEFAULT segment and at most one rollover to a
// dedicated OVERFLOW segment (both can happen when the head is a full
// OVERFLOW or BATCH segment and the payload exceeds maxLogFileSize), retrying
// with a freshly allocated record id each time an in-progress id is
// discarded by a rollover.
func (e *appendEngine) appendLocked(payload []byte, typ uint8) (rawResult, error) {
	head, err := e.ensureHeadLocked()
	if err != nil {
		return rawResult{}, err
	}

	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		offsetBefore := head.position()
		id := e.idgen.NextRecordID()
		outcome, err := head.append(payload, typ, id)
		if err != nil {
			e.metrics.Appended(false)
			return rawResult{}, err
		}

		switch outcome {
		case outcomeSuccess:
			e.metrics.Appended(true)
			return rawResult{id: id, logNumber: head.logNumber(), offset: offsetBefore}, nil

		case outcomeOverflow:
			e.logger.Debug("wal: rolling over to a new default segment", "journal", e.debugName, "segment", head.logNumber())
			if err := head.close(); err != nil {
				return rawResult{}, err
			}
			head, err = e.openFreshHeadLocked(fileTypeDefault, e.maxLogFileSize)
			if err != nil {
				return rawResult{}, err
			}
			e.metrics.RolledOver("overflow")
			continue

		case outcomeFullOverflow:
			needed := uint32(len(payload) + overflowOverhead)
			e.logger.Debug("wal: routing oversize record to a dedicated overflow segment", "journal", e.debugName, "size", needed)
			if err := head.close(); err != nil {
				return rawResult{}, err
			}
			head, err = e.openFreshHeadLocked(fileTypeOverflow, needed)
			if err != nil {
				return rawResult{}, err
			}
			e.metrics.RolledOver("full_overflow")
			continue
		}
	}

	err = &fatalRolloverError{Cause: errCorruptRecord}
	return rawResult{}, err
}

// appendSync runs appendLocked under the directory mutex and invokes
// exactly one of onSuccess/onFailure while still holding it, so that a
// concurrent appender can never observe a gap between the append
// completing and its listener notification.
func (e *appendEngine) appendSync(payload []byte, typ uint8, onSuccess func(rawResult), onFailure func(error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.appendLocked(payload, typ)
	if err != nil {
		if onFailure != nil {
			onFailure(err)
		}
		return err
	}
	if onSuccess != nil {
		onSuccess(res)
	}
	return nil
}

// commitBatch runs commitBatchLocked under the directory mutex, which
// appends every item of a batch to a freshly opened BATCH segment sized
// exactly for them. Any non-success outcome aborts: the segment is
// popped, closed, deleted, and the id generator's high-water mark is
// restored to its pre-batch value. Exactly one of onSuccess/onFailure
// is invoked while the mutex is still held.
func (e *appendEngine) commitBatch(items []batchPayload, onSuccess func([]rawResult), onFailure func(error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.commitBatchLocked(items)
	if err != nil {
		if onFailure != nil {
			onFailure(err)
		}
		return err
	}
	if onSuccess != nil {
		onSuccess(res)
	}
	return nil
}

func (e *appendEngine) commitBatchLocked(items []batchPayload) ([]rawResult, error) {
	mark := e.idgen.LastGeneratedRecordID()

	batchSize := int64(fileHeaderSize)
	for _, it := range items {
		batchSize += int64(recordHeaderSize + len(it.payload))
	}

	seg, err := e.openFreshHeadLocked(fileTypeBatch, uint32(batchSize))
	if err != nil {
		e.metrics.BatchCommitted(false, len(items))
		return nil, err
	}

	results := make([]rawResult, 0, len(items))
	for _, it := range items {
		offsetBefore := seg.position()
		id := e.idgen.NextRecordID()
		outcome, err := seg.append(it.payload, it.typ, id)
		if err == nil && outcome != outcomeSuccess {
			err = errCorruptRecord
		}
		if err != nil {
			e.abortBatchLocked(seg, mark)
			e.metrics.BatchCommitted(false, len(items))
			return nil, err
		}
		results = append(results, rawResult{id: id, logNumber: seg.logNumber(), offset: offsetBefore})
	}

	e.metrics.BatchCommitted(true, len(items))
	return results, nil
}

// abortBatchLocked discards an in-progress BATCH segment: pops it from
// the directory, closes and deletes its file, and restores the id
// generator's high-water mark to the batch's pre-commit value. Caller
// must hold mu and seg must be the current head.
func (e *appendEngine) abortBatchLocked(seg *segmentFile, mark uint64) {
	e.logger.Debug("wal: aborting batch segment", "journal", e.debugName, "segment", seg.logNumber(), "restoredMark", mark)
	e.directory.popHead()
	_ = seg.delete()
	e.idgen.NotifyHighestRecordID(mark)
}

// closeAll closes every segment currently in the directory; used by
// Journal.Close during shutdown, after the writer goroutine has drained.
func (e *appendEngine) closeAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var first error
	e.directory.iterOldestToNewest(func(seg *segmentFile) bool {
		if err := seg.close(); err != nil && first == nil {
			first = err
		}
		return true
	})
	return first
}
