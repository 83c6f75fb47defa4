package idgen

import (
	"path/filepath"
	"testing"
)

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idgen.db")

	b, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	if got := b.NextRecordID(); got != 1 {
		t.Fatalf("got %d, wanted 1", got)
	}
	if got := b.NextRecordID(); got != 2 {
		t.Fatalf("got %d, wanted 2", got)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if got := reopened.LastGeneratedRecordID(); got != 2 {
		t.Fatalf("got %d, wanted 2 (persisted mark)", got)
	}
	if got := reopened.NextRecordID(); got != 3 {
		t.Fatalf("got %d, wanted 3", got)
	}
}

func TestBoltNotifyHighestRecordIDHardSets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idgen.db")
	b, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	defer b.Close()

	b.NotifyHighestRecordID(50)
	if got := b.NextRecordID(); got != 51 {
		t.Fatalf("got %d, wanted 51", got)
	}

	b.NotifyHighestRecordID(10)
	if got := b.LastGeneratedRecordID(); got != 10 {
		t.Fatalf("got %d, wanted 10", got)
	}
}
