package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRecorderCountsAppendsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg, "wal_test")
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	r.Appended(true)
	r.Appended(true)
	r.Appended(false)
	r.RolledOver("overflow")
	r.BatchCommitted(true, 3)
	r.Replayed(5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	metric := findCounter(t, families, "wal_test_wal_appends_total", "outcome", "success")
	if metric.GetCounter().GetValue() != 2 {
		t.Fatalf("got %v success appends, wanted 2", metric.GetCounter().GetValue())
	}
	metric = findCounter(t, families, "wal_test_wal_appends_total", "outcome", "failure")
	if metric.GetCounter().GetValue() != 1 {
		t.Fatalf("got %v failed appends, wanted 1", metric.GetCounter().GetValue())
	}
}

func findCounter(t *testing.T, families []*dto.MetricFamily, name, labelName, labelValue string) *dto.Metric {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == labelName && lp.GetValue() == labelValue {
					return m
				}
			}
		}
	}
	t.Fatalf("no metric %s{%s=%s} found", name, labelName, labelValue)
	return nil
}
