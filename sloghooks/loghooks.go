// Package sloghooks emits nscache degradation events through log/slog with
// optional sampling, so a flapping backing store doesn't flood the logs.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/stellarpay/nscache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	StoreErrorEvery uint64
	CodecErrorEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	storeErrCtr atomic.Uint64
	codecErrCtr atomic.Uint64
}

var _ nscache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) StoreError(op, key string, err error) {
	if h.l == nil || !sample(h.opts.StoreErrorEvery, &h.storeErrCtr) {
		return
	}
	h.l.Warn("nscache.store_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) CodecError(key string, err error) {
	if h.l == nil || !sample(h.opts.CodecErrorEvery, &h.codecErrCtr) {
		return
	}
	h.l.Warn("nscache.codec_error",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) UnknownNamespace(ns string) {
	if h.l == nil {
		return
	}
	h.l.Error("nscache.unknown_namespace",
		"ns", ns,
		"msg", "fell back to general namespace")
}
