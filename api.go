package filelinked

import (
	"io/fs"

	c "github.com/unkn0wn-root/filelinked/codec"
)

const defaultPerm fs.FileMode = 0o644

// Options tune how a handle encodes and writes its file.
// The zero value is usable: CBOR (deterministic), no logging, direct writes.
type Options[V any] struct {
	Codec  c.Codec[V] // nil => deterministic CBOR
	Logger Logger     // if nil, NopLogger is used
	Hooks  Hooks      // if nil, NopHooks is used

	Perm       fs.FileMode // mode for newly created files, less the umask; 0 => 0644
	Sync       bool        // fsync the file after every write
	Atomic     bool        // write a temp file next to the (symlink-resolved) file, then rename over it
	CreateDirs bool        // create missing parent directories on New/OpenOrCreate
}

func (o Options[V]) codec() (c.Codec[V], error) {
	if o.Codec != nil {
		return o.Codec, nil
	}
	return c.NewCBOR[V](true)
}

// New takes ownership of value, writes its encoding to path (creating or
// truncating the file) and returns the handle. On failure no handle is
// returned; a partially written file may be left behind unless Atomic is set.
func New[V any](value V, path string, opts Options[V]) (*Linked[V], error) {
	l, err := newLinked(path, opts)
	if err != nil {
		return nil, err
	}
	if opts.CreateDirs {
		if err := ensureDir(path); err != nil {
			l.log.Error("create parent dirs failed", Fields{"path": path, "err": err})
			return nil, err
		}
	}
	l.val = value
	if err := l.persist(); err != nil {
		return nil, err
	}
	return l, nil
}

// Open reads and decodes the file at path. The file must exist and be a
// regular file. A successful decode is a syntactic guarantee only: the
// default format carries no type or version tag.
func Open[V any](path string, opts Options[V]) (*Linked[V], error) {
	l, err := newLinked(path, opts)
	if err != nil {
		return nil, err
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// OpenOrCreate opens path if it exists; otherwise it links the zero value of V
// and writes it, like New. A path that exists but is not a regular file is an
// IOError with op "stat".
func OpenOrCreate[V any](path string, opts Options[V]) (*Linked[V], error) {
	exists, err := statRegular(path)
	if err != nil {
		return nil, err
	}
	if exists {
		return Open(path, opts)
	}
	var zero V
	return New(zero, path, opts)
}
