// Package filelinked binds an in-memory value to a single file and keeps the
// two in sync: every mutation made through the handle is followed by a full
// re-encode and overwrite of the file.
//
// Components:
//   - Linked[V]: the owning handle. Readonly is pure (no I/O); Mutate,
//     MutateResult and Replace apply a change and persist the whole value.
//   - Codec[V]: (de)serializes V <-> []byte. CBOR (deterministic) by default,
//     see package codec for the others.
//
// Usage:
//
//	l, err := filelinked.New(cfg, "state.cbor", filelinked.Options[Config]{})
//	...
//	err = l.Mutate(func(c *Config) { c.Runs++ }) // file rewritten here
//	...
//	l, err = filelinked.Open("state.cbor", filelinked.Options[Config]{})
//
// Write failures: the change is applied to the live value first. If the
// encode or write then fails, the value stays changed, Stale reports true and
// the file still holds the previous (or a partially overwritten) encoding.
// The next successful Mutate, Replace or Persist clears the stale state.
// Options.Atomic avoids partially overwritten files.
//
// A handle is meant for one goroutine. Share it only behind a mutex held for
// the whole Mutate call. Two handles on the same path are not supported.
package filelinked
