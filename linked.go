package filelinked

import (
	"errors"
	"fmt"

	c "github.com/unkn0wn-root/filelinked/codec"
)

// Linked owns a value of type V and the file it is persisted to.
// Create it with New, Open or OpenOrCreate.
type Linked[V any] struct {
	val   V
	path  string
	codec c.Codec[V]
	log   Logger
	hooks Hooks
	w     writeOpts

	stale bool
}

func newLinked[V any](path string, opts Options[V]) (*Linked[V], error) {
	if path == "" {
		return nil, &IOError{Op: "open", Path: path, Err: errors.New("empty path")}
	}
	cd, err := opts.codec()
	if err != nil {
		return nil, &EncodeError{Path: path, Err: fmt.Errorf("default codec: %w", err)}
	}
	return &Linked[V]{
		path:  path,
		codec: cd,
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
		w: writeOpts{
			perm:   coalesce(opts.Perm, defaultPerm),
			sync:   opts.Sync,
			atomic: opts.Atomic,
		},
	}, nil
}

// Path returns the file this handle is bound to.
func (l *Linked[V]) Path() string { return l.path }

// Readonly returns the current value without touching the file.
//
// The result is a shallow copy. Maps, slices and pointers inside it are
// shared with the handle and must not be modified; use Mutate.
func (l *Linked[V]) Readonly() V { return l.val }

// Stale reports whether the last persist failed, i.e. the file may not hold
// the encoding of the current value.
func (l *Linked[V]) Stale() bool { return l.stale }

// Mutate calls fn with exclusive access to the value, then re-encodes the
// whole value and overwrites the file. If that fails the change made by fn
// is kept in memory and the handle becomes stale.
func (l *Linked[V]) Mutate(fn func(*V)) error {
	fn(&l.val)
	return l.persist()
}

// MutateResult is Mutate for callbacks that produce a result. The result is
// returned even when the persist fails.
func MutateResult[V, U any](l *Linked[V], fn func(*V) U) (U, error) {
	out := fn(&l.val)
	return out, l.persist()
}

// Replace swaps in a new value and persists it, with the same failure
// behavior as Mutate.
func (l *Linked[V]) Replace(value V) error {
	l.val = value
	return l.persist()
}

// Persist rewrites the file from the current value. Use it to repair a stale
// handle once the underlying problem is fixed.
func (l *Linked[V]) Persist() error { return l.persist() }

// String formats the linked value.
func (l *Linked[V]) String() string { return fmt.Sprintf("%v", l.val) }

func (l *Linked[V]) persist() error {
	b, err := l.codec.Encode(l.val)
	if err != nil {
		l.stale = true
		l.log.Error("encode failed", Fields{"path": l.path, "err": err})
		l.hooks.PersistFailed(l.path, "encode", err)
		return &EncodeError{Path: l.path, Err: err}
	}
	if err := writeFile(l.path, b, l.w); err != nil {
		l.stale = true
		op := "write"
		var ioe *IOError
		if errors.As(err, &ioe) {
			op = ioe.Op
		}
		l.log.Error("persist failed", Fields{"path": l.path, "op": op, "bytes": len(b), "err": err})
		l.hooks.PersistFailed(l.path, op, err)
		return err
	}
	l.stale = false
	l.log.Debug("persisted", Fields{"path": l.path, "bytes": len(b)})
	l.hooks.Persisted(l.path, len(b))
	return nil
}

func (l *Linked[V]) load() error {
	b, err := readFile(l.path)
	if err != nil {
		l.log.Warn("read failed", Fields{"path": l.path, "err": err})
		return err
	}
	v, err := l.codec.Decode(b)
	if err != nil {
		l.log.Warn("decode rejected", Fields{"path": l.path, "bytes": len(b), "err": err})
		l.hooks.DecodeRejected(l.path, len(b), err)
		return &DecodeError{Path: l.path, Size: len(b), Err: err}
	}
	l.val = v
	l.log.Debug("loaded", Fields{"path": l.path, "bytes": len(b)})
	l.hooks.Loaded(l.path, len(b))
	return nil
}
