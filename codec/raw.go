package codec

import "errors"

// ErrEmpty is returned by the identity codecs when asked to decode nothing.
var ErrEmpty = errors.New("codec: empty payload")

// Bytes is an identity codec for []byte values. Encode returns the input
// unchanged. Decode returns a copy so the handle never aliases a read buffer.
// An empty file is rejected: a linked value always has at least one byte,
// otherwise a truncated file would load as a valid empty value.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrEmpty
	}
	return append([]byte(nil), b...), nil
}

// String is a trivial codec for Go string values. Encode converts to []byte,
// and Decode converts back to string. By convention this assumes UTF-8 and
// performs no validation. Empty input is rejected like Bytes.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) {
	if len(b) == 0 {
		return "", ErrEmpty
	}
	return string(b), nil
}
