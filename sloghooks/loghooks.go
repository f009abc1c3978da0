package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/filelinked"
)

type Options struct {
	// Sampling to avoid floods on hot handles; 0/1 = log all.
	PersistedEvery uint64
	// Optional path redactor. Defaults to the path itself; set RedactPaths
	// to log a SHA-256 prefix instead.
	Redact      func(string) string
	RedactPaths bool
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	persistedCtr atomic.Uint64
}

var _ filelinked.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(p string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(p)
	}
	if !h.opts.RedactPaths {
		return p
	}
	sum := sha256.Sum256([]byte(p))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Loaded(path string, size int) {
	if h.l == nil {
		return
	}
	h.l.Debug("filelinked.loaded",
		"path", h.redact(path),
		"bytes", size)
}

func (h *Hooks) Persisted(path string, size int) {
	if h.l == nil || !sample(h.opts.PersistedEvery, &h.persistedCtr) {
		return
	}
	h.l.Debug("filelinked.persisted",
		"path", h.redact(path),
		"bytes", size)
}

func (h *Hooks) PersistFailed(path, op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("filelinked.persist_failed",
		"path", h.redact(path),
		"op", op,
		"err", err)
}

func (h *Hooks) DecodeRejected(path string, size int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("filelinked.decode_rejected",
		"path", h.redact(path),
		"bytes", size,
		"err", err)
}
