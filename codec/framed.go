package codec

import (
	"fmt"

	"github.com/unkn0wn-root/filelinked/internal/wire"
)

// ErrCorruptFrame is returned by Framed.Decode when the envelope is invalid.
var ErrCorruptFrame = wire.ErrCorrupt

// Framed wraps another codec in a small envelope:
//
//	magic "FLNK" | version(1) | payload length (u32 be) | payload
//
// The envelope catches truncated or foreign files before Inner sees them,
// which matters for codecs that accept short input (Bytes, String, Protobuf).
// Choosing Framed changes the on-disk format; files written without it
// cannot be opened with it and vice versa.
type Framed[V any] struct {
	Inner Codec[V]
}

func (c Framed[V]) Encode(v V) ([]byte, error) {
	p, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if uint64(len(p)) > wire.MaxPayload {
		return nil, fmt.Errorf("codec: payload of %d bytes exceeds frame limit", len(p))
	}
	return wire.Encode(p), nil
}

func (c Framed[V]) Decode(b []byte) (V, error) {
	p, err := wire.Decode(b)
	if err != nil {
		var zero V
		return zero, err
	}
	return c.Inner.Decode(p)
}
