package wal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tidewal/wal/idgen"
)

// Options configures a Journal[V]. Path, MaxLogFileSize, Encoder and
// Decoder are required; everything else has a sane default.
type Options[V any] struct {
	// Path is the directory holding this journal's segment files. It must
	// already exist.
	Path string
	// MaxLogFileSize is the ceiling applied to freshly opened DEFAULT
	// segments, in bytes. Must be positive.
	MaxLogFileSize uint32
	// Name labels this journal instance in diagnostics.
	Name string

	// Context bounds the lifetime of log calls made by this journal. It
	// does not cancel in-flight appends.
	Context context.Context

	Encoder EntryEncoder[V]
	Decoder EntryDecoder[V]

	IDGenerator IDGenerator
	Naming      NamingStrategy
	Listener    Listener[V]
	Logger      *slog.Logger
	Metrics     Metrics
}

// Journal is a durable, append-only write-ahead journal of values of
// type V. Create one with Open; release it with Close.
type Journal[V any] struct {
	opts       Options[V]
	ctx        context.Context
	logger     *slog.Logger
	debugName  string
	instanceID string

	engine *appendEngine
	queue  *asyncQueue

	writerDone chan struct{}
	closed     atomic.Bool
	closeOnce  sync.Once
}

// Open validates opts, replays any existing journal directory, and
// starts accepting appends. Replay runs before the writer goroutine is
// started and before any segment is opened for writing, so a listener
// never sees a fresh append interleaved with records still being
// recovered from a prior run.
func Open[V any](opts Options[V]) (*Journal[V], error) {
	info, err := os.Stat(opts.Path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotADirectory
	}
	if opts.MaxLogFileSize == 0 {
		return nil, ErrInvalidMaxFileSize
	}
	if opts.Encoder == nil || opts.Decoder == nil {
		return nil, fmt.Errorf("wal: Encoder and Decoder are required")
	}

	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Naming == nil {
		opts.Naming = DefaultNaming("", ".wal")
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = idgen.NewAtomic()
	}
	if opts.Listener == nil {
		opts.Listener = NopListener[V]{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Name == "" {
		opts.Name = "wal"
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}

	j := &Journal[V]{
		opts:       opts,
		ctx:        opts.Context,
		logger:     opts.Logger,
		debugName:  opts.Name,
		instanceID: uuid.NewString(),
		queue:      newAsyncQueue(),
		writerDone: make(chan struct{}),
	}

	j.engine = newAppendEngine(opts.Path, opts.Naming, opts.IDGenerator, opts.MaxLogFileSize, j.logger, j.debugName, opts.Metrics)

	var replayedCount int
	maxSeenID, maxLogNumber, err := replay[V](opts.Path, opts.Naming, opts.Decoder, j.logger, j.debugName, func(raw rawReplayedRecord, value V) {
		replayedCount++
		rec := Record[V]{ID: raw.id, Type: raw.typ, Value: value, LogNumber: raw.logNumber, Offset: raw.offset}
		j.safeNotify(func() { opts.Listener.OnReplay(rec) })
	})
	if err != nil {
		return nil, err
	}
	opts.Metrics.Replayed(replayedCount)
	if maxSeenID > 0 {
		opts.IDGenerator.NotifyHighestRecordID(maxSeenID)
	}

	nextLogNumber := uint64(0)
	if maxLogNumber >= 0 {
		nextLogNumber = uint64(maxLogNumber) + 1
	}
	if err := j.engine.openInitialHead(nextLogNumber); err != nil {
		return nil, err
	}

	go j.writerLoop()

	j.logger.LogAttrs(j.ctx, slog.LevelInfo, "wal: journal opened",
		slog.String("journal", j.debugName), slog.String("instance", j.instanceID), slog.String("path", opts.Path))
	return j, nil
}

// writerLoop is the single dedicated writer goroutine behind the
// asynchronous append path: it drains the queue with a blocking take
// and performs each append synchronously, so on-disk order matches
// enqueue order.
func (j *Journal[V]) writerLoop() {
	defer close(j.writerDone)
	for {
		work, ok := j.queue.take()
		if !ok {
			return
		}
		work()
	}
}

// safeNotify recovers from a panicking listener so it cannot corrupt
// engine state or abort the caller's or the writer goroutine's append
// loop.
func (j *Journal[V]) safeNotify(f func()) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("wal: listener panicked", "journal", j.debugName, "recovered", r)
		}
	}()
	f()
}

// Append synchronously writes value to the journal, returning once it
// is durable (or once a failure has been delivered to Listener). Types
// describe the entry for the application; the journal does not
// interpret them.
func (j *Journal[V]) Append(value V, typ uint8) error {
	if j.closed.Load() {
		return ErrClosed
	}
	payload, err := j.opts.Encoder.Encode(value)
	if err != nil {
		return err
	}
	item := BatchItem[V]{Value: value, Type: typ}
	return j.engine.appendSync(payload, typ,
		func(res rawResult) { j.notifyCommit(res, value, typ) },
		func(cause error) { j.notifyFailure([]BatchItem[V]{item}, false, cause) },
	)
}

// AppendAsync enqueues value for the writer goroutine and returns
// immediately, without waiting for a commit acknowledgment. Encoding
// failures are still returned synchronously: an entry that cannot be
// encoded never reaches the queue.
func (j *Journal[V]) AppendAsync(value V, typ uint8) error {
	if j.closed.Load() {
		return ErrClosed
	}
	payload, err := j.opts.Encoder.Encode(value)
	if err != nil {
		return err
	}
	item := BatchItem[V]{Value: value, Type: typ}
	j.queue.offer(func() {
		_ = j.engine.appendSync(payload, typ,
			func(res rawResult) { j.notifyCommit(res, value, typ) },
			func(cause error) { j.notifyFailure([]BatchItem[V]{item}, false, cause) },
		)
	})
	return nil
}

// CommitBatch atomically appends every item in order to a dedicated
// BATCH segment: either all of them become durable and are delivered to
// Listener.OnCommit in order, or none do and a single OnFailure fires
// for the whole batch.
func (j *Journal[V]) CommitBatch(items []BatchItem[V]) error {
	if j.closed.Load() {
		return ErrClosed
	}
	if len(items) == 0 {
		return nil
	}
	payloads := make([]batchPayload, len(items))
	for i, it := range items {
		p, err := j.opts.Encoder.Encode(it.Value)
		if err != nil {
			return err
		}
		payloads[i] = batchPayload{payload: p, typ: it.Type}
	}
	return j.engine.commitBatch(payloads,
		func(results []rawResult) {
			for i, res := range results {
				j.notifyCommit(res, items[i].Value, items[i].Type)
			}
		},
		func(cause error) { j.notifyFailure(items, true, cause) },
	)
}

func (j *Journal[V]) notifyCommit(res rawResult, value V, typ uint8) {
	rec := Record[V]{ID: res.id, Type: typ, Value: value, LogNumber: res.logNumber, Offset: res.offset}
	j.safeNotify(func() { j.opts.Listener.OnCommit(rec) })
}

func (j *Journal[V]) notifyFailure(items []BatchItem[V], batch bool, cause error) {
	j.safeNotify(func() { j.opts.Listener.OnFailure(FailedAppend[V]{Items: items, Batch: batch}, cause) })
}

// Close stops accepting new async work, waits for the queue to drain,
// and closes every open segment. It is idempotent.
func (j *Journal[V]) Close() error {
	var err error
	j.closeOnce.Do(func() {
		j.closed.Store(true)
		j.queue.stop()
		<-j.writerDone
		err = j.engine.closeAll()
		j.logger.LogAttrs(j.ctx, slog.LevelInfo, "wal: journal closed",
			slog.String("journal", j.debugName), slog.String("instance", j.instanceID))
	})
	return err
}
