package filelinked

// Hooks lightweight callbacks for handle lifecycle events.
// Implementations MUST be cheap and non-blocking; they run inline with
// Open, New and every Mutate.
type Hooks interface {
	// A file was read and decoded. size is the file length in bytes.
	Loaded(path string, size int)

	// The full value was encoded and written. size is the encoded length.
	Persisted(path string, size int)

	// A persist failed; the handle is now stale.
	// op is "encode" or the failed filesystem operation (see IOError.Op).
	PersistFailed(path, op string, err error)

	// Bytes read from path were rejected by the codec.
	DecodeRejected(path string, size int, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Loaded(string, int)                  {}
func (NopHooks) Persisted(string, int)               {}
func (NopHooks) PersistFailed(string, string, error) {}
func (NopHooks) DecodeRejected(string, int, error)   {}
