// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    PersistedEvery: 100, // sample: ~every 100th successful write
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	l, err := filelinked.New(state, "state.cbor", filelinked.Options[State]{
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/filelinked"
)

// Hooks forwards events to inner on background workers. When the queue is
// full events are dropped and counted, never blocking the handle.
type Hooks struct {
	inner   filelinked.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed vs. sends on q
	closed  bool
	dropped atomic.Uint64
}

var _ filelinked.Hooks = (*Hooks)(nil)

func New(inner filelinked.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are
// dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped returns how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Loaded(p string, n int)    { h.try(func() { h.inner.Loaded(p, n) }) }
func (h *Hooks) Persisted(p string, n int) { h.try(func() { h.inner.Persisted(p, n) }) }
func (h *Hooks) PersistFailed(p, op string, err error) {
	h.try(func() { h.inner.PersistFailed(p, op, err) })
}
func (h *Hooks) DecodeRejected(p string, n int, err error) {
	h.try(func() { h.inner.DecodeRejected(p, n, err) })
}
