// Package msgpack provides an EntryEncoder/EntryDecoder pair backed by
// github.com/vmihailenco/msgpack/v5, for applications that don't want
// to hand-write their own entry writer/reader collaborator.
package msgpack

import "github.com/vmihailenco/msgpack/v5"

// Codec implements both wal.EntryEncoder[V] and wal.EntryDecoder[V] by
// marshaling/unmarshaling V with msgpack. It ignores the record's type
// tag entirely -- applications that need per-type decoding should write
// their own EntryDecoder that switches on typ instead.
type Codec[V any] struct{}

// New returns a Codec for V.
func New[V any]() Codec[V] {
	return Codec[V]{}
}

func (Codec[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (Codec[V]) Decode(payload []byte, typ uint8) (V, error) {
	var v V
	err := msgpack.Unmarshal(payload, &v)
	return v, err
}
