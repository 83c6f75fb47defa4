package wal

import (
	"log/slog"
	"strings"
	"testing"
)

func testLogger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(&logWriter{t}, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
	}))
}

type logWriter struct{ t testing.TB }

func (c *logWriter) Write(buf []byte) (int, error) {
	msg := strings.TrimSuffix(string(buf), "\n")
	c.t.Log(msg)
	return len(buf), nil
}

func ok(t testing.TB, cond bool) {
	if !cond {
		t.Helper()
		t.Fatalf("** condition mismatched")
	}
}

func eq[T comparable](t testing.TB, a, e T) {
	if a != e {
		t.Helper()
		t.Fatalf("** got %v, wanted %v", a, e)
	}
}

func noerr(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatalf("** unexpected error: %v", err)
	}
}

// stringCodec is a trivial EntryEncoder/EntryDecoder for string, used by
// tests that don't care about the entry body format.
type stringCodec struct{}

func (stringCodec) Encode(v string) ([]byte, error) { return []byte(v), nil }
func (stringCodec) Decode(b []byte, typ uint8) (string, error) { return string(b), nil }

// recordingListener captures every notification in order, for assertions.
type recordingListener struct {
	commits  []Record[string]
	replays  []Record[string]
	failures []FailedAppend[string]
}

func (l *recordingListener) OnCommit(rec Record[string]) { l.commits = append(l.commits, rec) }
func (l *recordingListener) OnReplay(rec Record[string]) { l.replays = append(l.replays, rec) }
func (l *recordingListener) OnFailure(work FailedAppend[string], cause error) {
	l.failures = append(l.failures, work)
}
