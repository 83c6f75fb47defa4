package wal

// Metrics is an optional observability port the engine reports into.
// It is not a required collaborator -- a journal works perfectly well
// with it left nil -- but the engine calls
// it at the same points a caller would want counters: every append
// attempt, every rollover, every batch, every replayed record. See the
// metrics package for a Prometheus-backed Recorder.
type Metrics interface {
	Appended(success bool)
	RolledOver(kind string)
	BatchCommitted(success bool, size int)
	Replayed(count int)
}

type nopMetrics struct{}

func (nopMetrics) Appended(bool)            {}
func (nopMetrics) RolledOver(string)        {}
func (nopMetrics) BatchCommitted(bool, int) {}
func (nopMetrics) Replayed(int)             {}
