package idgen

import (
	"encoding/binary"
	"sync"

	"go.etcd.io/bbolt"
)

var bucketName = []byte("wal_idgen")
var markKey = []byte("high_water_mark")

// Bolt is a crash-durable IDGenerator backed by a bbolt database,
// persisting its high-water mark outside the journal directory itself.
// Unlike Atomic, a Bolt generator keeps handing out ids strictly above
// the last persisted mark even for a journal directory that was
// recreated empty (backup restore, directory rebuild) -- Open's replay
// alone cannot recover a mark no segment file carries any more.
type Bolt struct {
	db *bbolt.DB

	mu      sync.Mutex
	current uint64
}

// OpenBolt opens (creating if necessary) a bbolt database at path and
// loads its persisted high-water mark.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, err
	}

	b := &Bolt{db: db}
	err = db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		if v := bucket.Get(markKey); v != nil {
			b.current = binary.BigEndian.Uint64(v)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) NextRecordID() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current++
	b.persistLocked()
	return b.current
}

func (b *Bolt) LastGeneratedRecordID() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Bolt) NotifyHighestRecordID(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = id
	b.persistLocked()
}

// persistLocked writes the current mark to bolt. IDGenerator's methods
// return no error, so a write failure here is swallowed.
func (b *Bolt) persistLocked() {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], b.current)
	_ = b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(markKey, buf[:])
	})
}
