package filelinked

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is; every error returned by this package matches
// exactly one of them.
var (
	ErrIO     = errors.New("filelinked: io")
	ErrEncode = errors.New("filelinked: encode")
	ErrDecode = errors.New("filelinked: decode")
)

// ErrNotRegular is the cause of an IOError when the path exists but is not a
// regular file (directory, device, socket).
var ErrNotRegular = errors.New("not a regular file")

// IOError reports a failed filesystem operation on the linked file.
// Op is one of "stat", "mkdir", "open", "create", "read", "write", "sync",
// "chmod", "close", "rename".
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("filelinked: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// EncodeError reports that the codec could not encode the current value.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("filelinked: encode for %q: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() []error { return []error{ErrEncode, e.Err} }

// DecodeError reports that the bytes read from Path are not a valid encoding
// of the target type. Size is the number of bytes read.
type DecodeError struct {
	Path string
	Size int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("filelinked: decode %q (%d bytes): %v", e.Path, e.Size, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }
