// Package codec defines the serialization boundary used by filelinked.
//
// A Codec[V] turns a value into the exact bytes stored in a linked file and
// back. Implementations must be stateless (or immutable after construction)
// so one instance can be shared by many handles.
//
// Decode must never fabricate a value: empty, truncated or otherwise
// malformed input is an error.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
