// Package metrics provides a Prometheus-backed implementation of the
// journal's optional Metrics port.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder counts appends, rollovers, batch commits and replayed
// records. It satisfies the journal's Metrics port structurally; import
// this package only where an application wants Prometheus export.
type Recorder struct {
	appends      *prometheus.CounterVec
	rollovers    *prometheus.CounterVec
	batches      *prometheus.CounterVec
	batchRecords prometheus.Counter
	replayed     prometheus.Counter
}

// NewRecorder builds a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer, namespace string) (*Recorder, error) {
	r := &Recorder{
		appends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "wal_appends_total", Help: "Append attempts by outcome.",
		}, []string{"outcome"}),
		rollovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "wal_rollovers_total", Help: "Segment rollovers by kind.",
		}, []string{"kind"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "wal_batches_total", Help: "Batch commits by outcome.",
		}, []string{"outcome"}),
		batchRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "wal_batch_records_total", Help: "Records submitted across all batch commits.",
		}),
		replayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "wal_replayed_records_total", Help: "Records emitted during startup replay.",
		}),
	}
	for _, c := range []prometheus.Collector{r.appends, r.rollovers, r.batches, r.batchRecords, r.replayed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) Appended(success bool) {
	if success {
		r.appends.WithLabelValues("success").Inc()
	} else {
		r.appends.WithLabelValues("failure").Inc()
	}
}

func (r *Recorder) RolledOver(kind string) {
	r.rollovers.WithLabelValues(kind).Inc()
}

func (r *Recorder) BatchCommitted(success bool, size int) {
	if success {
		r.batches.WithLabelValues("success").Inc()
	} else {
		r.batches.WithLabelValues("failure").Inc()
	}
	r.batchRecords.Add(float64(size))
}

func (r *Recorder) Replayed(count int) {
	r.replayed.Add(float64(count))
}
