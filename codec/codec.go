// Package codec provides value serialization for nscache. JSON is the codec
// the cache wires in by default; every write and every read of a key go
// through the same codec, so encode/decode stay symmetric.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
